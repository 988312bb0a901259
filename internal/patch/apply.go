package patch

import (
	"strings"

	"ninepros_server/internal/types"
)

// EditOp is one search/replace pair. An empty (whitespace-only) Search
// prepends Replace to the page.
type EditOp struct {
	Search  string
	Replace string
}

// ParseEditOps returns the complete SEARCH/REPLACE triples in body, in order.
// A trailing triple missing its divider or end token is dropped.
func ParseEditOps(body string) []EditOp {
	var ops []EditOp
	cursor := 0
	for {
		op, next, ok := nextEditOp(body, cursor)
		if !ok {
			return ops
		}
		ops = append(ops, op)
		cursor = next
	}
}

// ApplyEdits applies every edit op in body, in order, to currentHTML. Each op
// sees the result of the ones before it. Ops whose search text is not found
// are skipped. The returned ranges locate each replacement in the html as it
// was right after that op.
func ApplyEdits(currentHTML, body string) (string, []types.LineRange) {
	html := currentHTML
	var ranges []types.LineRange
	for _, op := range ParseEditOps(body) {
		var (
			r  types.LineRange
			ok bool
		)
		html, r, ok = op.Apply(html)
		if ok {
			ranges = append(ranges, r)
		}
	}
	return html, ranges
}

// Apply applies op to html. ok is false when the search text does not occur.
// Only the first occurrence is replaced.
func (op EditOp) Apply(html string) (out string, r types.LineRange, ok bool) {
	if strings.TrimSpace(op.Search) == "" {
		return op.Replace + "\n" + html, types.LineRange{1, countLines(op.Replace)}, true
	}
	p := strings.Index(html, op.Search)
	if p < 0 {
		return html, types.LineRange{}, false
	}
	start := countLines(html[:p])
	end := start + countLines(op.Replace) - 1
	return html[:p] + op.Replace + html[p+len(op.Search):], types.LineRange{start, end}, true
}

func nextEditOp(body string, cursor int) (EditOp, int, bool) {
	s := strings.Index(body[cursor:], SearchStart)
	if s < 0 {
		return EditOp{}, 0, false
	}
	searchFrom := cursor + s + len(SearchStart)
	d := strings.Index(body[searchFrom:], Divider)
	if d < 0 {
		return EditOp{}, 0, false
	}
	replaceFrom := searchFrom + d + len(Divider)
	r := strings.Index(body[replaceFrom:], ReplaceEnd)
	if r < 0 {
		return EditOp{}, 0, false
	}
	replaceTo := replaceFrom + r
	op := EditOp{
		Search:  trimTokenLines(body[searchFrom : searchFrom+d]),
		Replace: trimTokenLines(body[replaceFrom:replaceTo]),
	}
	return op, replaceTo + len(ReplaceEnd), true
}

// trimTokenLines drops the line break that separates a span from the
// delimiter lines around it. Everything else in the span is kept as is.
func trimTokenLines(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 && strings.TrimRight(s[:i], " \t\r") == "" {
		s = s[i+1:]
	}
	if i := strings.LastIndexByte(s, '\n'); i >= 0 && strings.TrimLeft(s[i+1:], " \t") == "" {
		s = strings.TrimSuffix(s[:i], "\r")
	}
	return s
}

// countLines counts lines the way a split on "\n" does: "" is one line.
func countLines(s string) int {
	return strings.Count(s, "\n") + 1
}
