package types

// Page is one virtual page of a generated site.
type Page struct {
	Path string `json:"path"` // e.g. "/", "/about.html"
	HTML string `json:"html"`
}

// LineRange is an inclusive, 1-indexed [start, end] line span inside a page.
// It is UI highlighting metadata only.
type LineRange [2]int

// HomePaths are the page paths treated as the site's main page.
var HomePaths = []string{"/", "/index", "index"}

// IsHomePath reports whether path names the main page.
func IsHomePath(path string) bool {
	for _, p := range HomePaths {
		if path == p {
			return true
		}
	}
	return false
}

// ClonePages returns a copy of pages that can be mutated freely.
func ClonePages(pages []Page) []Page {
	out := make([]Page, len(pages))
	copy(out, pages)
	return out
}
