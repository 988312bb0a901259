// Package redesign turns an existing website into Markdown that can be fed
// to the generation prompt when a user asks for a redesign.
package redesign

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "NineProsBuilder/1.0 (+https://9pros.ai)"
	maxBodyBytes     = 5 << 20
	// DefaultMaxChars bounds the Markdown sent to the model.
	DefaultMaxChars = 20000
)

// noiseSelectors carry no content worth redesigning. Navigation, header and
// footer are kept since they describe the site structure.
var noiseSelectors = []string{
	"script", "style", "noscript", "template",
	"iframe", "video", "audio", "svg", "canvas",
	"form", "input", "select", "textarea",
}

// Fetcher downloads a page and converts its content to Markdown.
type Fetcher struct {
	client   *http.Client
	maxChars int
}

// NewFetcher creates a Fetcher. maxChars <= 0 uses DefaultMaxChars.
func NewFetcher(maxChars int) *Fetcher {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	return &Fetcher{
		client:   &http.Client{Timeout: defaultTimeout},
		maxChars: maxChars,
	}
}

// Fetch retrieves rawURL and returns its main content as Markdown.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("invalid redesign url %q", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("unexpected status %d for %s", resp.StatusCode, rawURL)
	}

	return f.toMarkdown(io.LimitReader(resp.Body, maxBodyBytes))
}

func (f *Fetcher) toMarkdown(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}
	for _, sel := range noiseSelectors {
		doc.Find(sel).Remove()
	}

	content := doc.Find("body").First()
	if content.Length() == 0 {
		return "", fmt.Errorf("no body found in HTML")
	}
	html, err := goquery.OuterHtml(content)
	if err != nil {
		return "", fmt.Errorf("serializing content: %w", err)
	}

	markdown, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("converting HTML to markdown: %w", err)
	}
	markdown = strings.TrimSpace(markdown)
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		markdown = "Title: " + title + "\n\n" + markdown
	}
	return truncate(markdown, f.maxChars), nil
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func utf8RuneStart(b byte) bool { return b&0xC0 != 0x80 }
