package utils

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// Simple retry check (customize as needed)
func ShouldRetry(err error) bool {
	if err == nil {
		return false
	}
	// Retry on transient errors like rate limits or server errors
	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "rate limit") ||
		strings.Contains(errMsg, "500 internal server error") ||
		strings.Contains(errMsg, "502 bad gateway") ||
		strings.Contains(errMsg, "503 service unavailable") ||
		strings.Contains(errMsg, "504 gateway timeout") ||
		strings.Contains(errMsg, "timeout") ||
		strings.Contains(errMsg, "connection reset by peer") {
		return true
	}
	if status := statusCode(err); status >= 500 || status == 429 {
		return true
	}
	return false
}

// statusCode returns the HTTP status carried by a go-openai error, or 0.
// Error bodies that are not JSON come back as *openai.RequestError.
func statusCode(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}

// quotaPhrases mark upstream failures caused by billing or exhausted credits.
var quotaPhrases = []string{
	"exceeded your monthly included credits",
	"insufficient_quota",
	"exceeded your current quota",
	"payment required",
	"billing",
	"quota",
	"credits",
}

// UpstreamStatus maps an upstream model error to the HTTP status returned to
// the browser: 402 for quota/billing problems, 500 for everything else.
func UpstreamStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if statusCode(err) == http.StatusPaymentRequired {
		return http.StatusPaymentRequired
	}
	errMsg := strings.ToLower(err.Error())
	for _, phrase := range quotaPhrases {
		if strings.Contains(errMsg, phrase) {
			return http.StatusPaymentRequired
		}
	}
	return http.StatusInternalServerError
}

// ContentType returns the MIME type used when serving a page or asset.
// Paths without an extension are pages.
func ContentType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case "", ".html", ".htm":
		return "text/html; charset=utf-8"
	case ".css":
		return "text/css; charset=utf-8"
	case ".js":
		return "application/javascript; charset=utf-8"
	case ".json":
		return "application/json"
	case ".svg":
		return "image/svg+xml"
	case ".txt", ".md":
		return "text/plain; charset=utf-8"
	case ".xml":
		return "application/xml"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".ico":
		return "image/x-icon"
	default:
		return "application/octet-stream"
	}
}
