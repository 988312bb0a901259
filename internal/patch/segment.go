package patch

import (
	"regexp"
	"strings"
)

// BlockKind distinguishes page updates from whole new pages.
type BlockKind int

const (
	BlockUpdate BlockKind = iota
	BlockNewPage
)

func (k BlockKind) String() string {
	if k == BlockNewPage {
		return "new_page"
	}
	return "update_page"
}

// Block is one page-addressed region of a model response.
type Block struct {
	Kind       BlockKind
	TargetPath string
	Body       string
}

// Segments holds the blocks found in a response, each list in stream order.
type Segments struct {
	Updates  []Block
	NewPages []Block
}

// Empty reports whether no page-aware block was found.
func (s Segments) Empty() bool {
	return len(s.Updates) == 0 && len(s.NewPages) == 0
}

// Segment splits text into update and new-page blocks. A block body runs from
// the end of its header to the next header start of either kind, or to the
// end of text.
func Segment(text string) Segments {
	return Segments{
		Updates:  scanHeaders(text, BlockUpdate, UpdatePageStart, UpdatePageEnd),
		NewPages: scanHeaders(text, BlockNewPage, NewPageStart, NewPageEnd),
	}
}

func scanHeaders(text string, kind BlockKind, start, end string) []Block {
	var blocks []Block
	pos := 0
	for {
		i := strings.Index(text[pos:], start)
		if i < 0 {
			return blocks
		}
		open := pos + i + len(start)
		path, bodyStart, ok := readHeader(text, open, end)
		if !ok {
			// Unterminated header: no block, keep scanning after it.
			pos = open
			continue
		}
		bodyEnd := nextHeaderStart(text, bodyStart)
		blocks = append(blocks, Block{
			Kind:       kind,
			TargetPath: path,
			Body:       text[bodyStart:bodyEnd],
		})
		pos = bodyStart
	}
}

// readHeader reads the path between a header's start and end tokens. The
// header must close on the same line and before any other header opens.
func readHeader(text string, open int, end string) (path string, after int, ok bool) {
	line := text[open:]
	if nl := strings.IndexAny(line, "\r\n"); nl >= 0 {
		line = line[:nl]
	}
	j := strings.Index(line, strings.TrimLeft(end, " "))
	if j < 0 {
		return "", 0, false
	}
	header := line[:j]
	if strings.Contains(header, UpdatePageStart) || strings.Contains(header, NewPageStart) {
		return "", 0, false
	}
	fields := strings.Fields(header)
	if len(fields) == 0 {
		return "", 0, false
	}
	return fields[0], open + j + len(strings.TrimLeft(end, " ")), true
}

func nextHeaderStart(text string, from int) int {
	next := len(text)
	for _, tok := range []string{UpdatePageStart, NewPageStart} {
		if i := strings.Index(text[from:], tok); i >= 0 && from+i < next {
			next = from + i
		}
	}
	return next
}

var fencedRe = regexp.MustCompile("(?s)```(?i:html)[ \\t]*\\r?\\n?(.*?)```")

// ExtractHTML returns the interior of the first ```html fenced block in body,
// trimmed. The fence only counts when it opens before the first SearchStart,
// so code samples inside replacement text are left alone. Without a fence
// the body is returned verbatim. A fence that is opened but never closed
// (truncated output) only loses its opening line.
func ExtractHTML(body string) string {
	limit := len(body)
	if i := strings.Index(body, SearchStart); i >= 0 {
		limit = i
	}
	if m := fencedRe.FindStringSubmatchIndex(body); m != nil && m[0] < limit {
		return strings.TrimSpace(body[m[2]:m[3]])
	}
	trimmed := strings.TrimLeft(body, " \t\r\n")
	if len(trimmed) >= 7 && strings.EqualFold(trimmed[:7], "```html") {
		if nl := strings.IndexByte(trimmed, '\n'); nl >= 0 {
			return trimmed[nl+1:]
		}
		return ""
	}
	return body
}
