package prompts

import (
	"fmt"
	"strings"

	"ninepros_server/internal/patch"
	"ninepros_server/internal/types"
)

// GetSiteCodeChangeSystemPrompt documents the page-aware search/replace
// format the model must answer follow-up edits with.
func GetSiteCodeChangeSystemPrompt() string {
	return fmt.Sprintf(`You are an expert web developer modifying an existing multi-page website.
The user wants to apply changes based on their request.
You MUST output ONLY the changes required, using the exact formats below. Do NOT output entire files unless you create a new page.
Do NOT explain the changes or what you did, just return the expected result.

To update an existing page, start a block with its path:
%[4]s/about.html%[5]s
then one or more edit blocks:
%[1]s
<exact lines copied from the current page>
%[2]s
<new lines that replace them>
%[3]s

Rules for edit blocks:
- The SEARCH part must match the current page EXACTLY, including whitespace and indentation.
- Keep each SEARCH part short but unique within the page.
- To insert at the very top of the page, leave the SEARCH part empty.
- To delete code, leave the REPLACE part empty.

To create a new page, start a block with its path and give the complete HTML document:
%[6]s/contact.html%[7]s
`+"```html"+`
<!DOCTYPE html>
...
`+"```"+`

Remember to update the navigation of every existing page when you add a page.
`, patch.SearchStart, patch.Divider, patch.ReplaceEnd,
		patch.UpdatePageStart, patch.UpdatePageEnd,
		patch.NewPageStart, patch.NewPageEnd)
}

// GetSiteCodeChangePrompt builds the user message for a follow-up edit:
// the current pages, an optional selected element and the instruction.
func GetSiteCodeChangePrompt(userQuery string, pages []types.Page, selectedElementHTML string) string {
	var b strings.Builder
	b.WriteString("Here are the current pages of the website:\n\n")
	for _, p := range pages {
		fmt.Fprintf(&b, "Page %s:\n```html\n%s\n```\n\n", p.Path, p.HTML)
	}
	if strings.TrimSpace(selectedElementHTML) != "" {
		fmt.Fprintf(&b, "Only update this element and its children, nothing else:\n```html\n%s\n```\n\n", selectedElementHTML)
	}
	fmt.Fprintf(&b, "User's instruction:\n---\n%s\n---\n", userQuery)
	return b.String()
}
