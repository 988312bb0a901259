package patch

import (
	"strings"

	"ninepros_server/internal/types"
)

// Result is the outcome of applying one model response to a page set.
type Result struct {
	Pages        []types.Page      `json:"pages"`
	UpdatedLines []types.LineRange `json:"updatedLines"`
	// HTML is the main page after the edit, used as the preview document.
	HTML string `json:"html"`
}

// Apply parses modelText and applies it to pages. pages is not modified.
func Apply(pages []types.Page, modelText string) Result {
	return Reconcile(pages, Segment(modelText), modelText)
}

// Reconcile merges segmented blocks into a copy of pages.
//
// Updates run first, in stream order, against the cumulative result. New-page
// blocks then create pages or fully overwrite existing ones. When the page
// count is unchanged and raw never mentions UpdatePageStart, raw is applied
// as a plain search/replace body to the main page (older single-page format).
func Reconcile(pages []types.Page, segs Segments, raw string) Result {
	out := types.ClonePages(pages)
	ranges := []types.LineRange{}

	for _, b := range segs.Updates {
		i := indexOfPath(out, b.TargetPath)
		if i < 0 {
			continue
		}
		html, r := ApplyEdits(out[i].HTML, ExtractHTML(b.Body))
		out[i].HTML = html
		ranges = append(ranges, r...)
	}

	for _, b := range segs.NewPages {
		html := strings.TrimSpace(ExtractHTML(b.Body))
		if i := indexOfPath(out, b.TargetPath); i >= 0 {
			out[i].HTML = html
			continue
		}
		out = append(out, types.Page{Path: b.TargetPath, HTML: html})
	}

	home := homeIndex(out)
	if len(out) == len(pages) && !strings.Contains(raw, UpdatePageStart) && home >= 0 {
		html, r := ApplyEdits(out[home].HTML, raw)
		out[home].HTML = html
		ranges = append(ranges, r...)
	}

	res := Result{Pages: out, UpdatedLines: ranges}
	if home >= 0 {
		res.HTML = out[home].HTML
	}
	return res
}

func indexOfPath(pages []types.Page, path string) int {
	for i, p := range pages {
		if p.Path == path {
			return i
		}
	}
	return -1
}

// homeIndex returns the main page, falling back to the first page when no
// page uses a home path. -1 for an empty set.
func homeIndex(pages []types.Page) int {
	for i, p := range pages {
		if types.IsHomePath(p.Path) {
			return i
		}
	}
	if len(pages) > 0 {
		return 0
	}
	return -1
}
