package prompts

import (
	"fmt"
	"strings"
)

// GetSiteGenerationSystemPrompt returns the system prompt for first-time
// generation of a single self-contained page.
func GetSiteGenerationSystemPrompt() string {
	return `
		You are an expert web designer and front-end developer.
		You build complete, modern, responsive websites for small businesses.

		Rules:
		1.  Respond with ONE complete HTML document, starting with <!DOCTYPE html> and ending with </html>.
		2.  Use TailwindCSS from the CDN: <script src="https://cdn.tailwindcss.com"></script>.
		3.  Put any extra CSS in a <style> tag and any JavaScript in a <script> tag in the same file.
		4.  Use semantic sections: header with navigation, hero, services, testimonials, contact, footer.
		5.  Use placeholder images from https://placehold.co when an image is needed.
		6.  Write real, persuasive copy for the business. No lorem ipsum.

		Only output the HTML, no explanation and no markdown fences.
	`
}

// GetSiteGenerationPrompt builds the user message for generation. redesign
// holds the markdown of an existing site to redesign and may be empty.
func GetSiteGenerationPrompt(userPrompt, redesign string) string {
	var b strings.Builder
	if strings.TrimSpace(userPrompt) != "" {
		fmt.Fprintf(&b, "Build a website for the following business:\n\n---\n%s\n---\n", userPrompt)
	}
	if strings.TrimSpace(redesign) != "" {
		fmt.Fprintf(&b, "\nRedesign this existing website. Keep its content and structure, modernize the look:\n\n---\n%s\n---\n", redesign)
	}
	return b.String()
}
