package advisor

import (
	"fmt"
	"strings"

	"github.com/GriffinCanCode/edgeoptimizer/internal/shared/types"
)

const maxPromptImages = 10

// BuildPrompt renders the instruction for one page. It depends only on its
// arguments.
func BuildPrompt(page types.PageContext, site string) string {
	var b strings.Builder

	b.WriteString("You are a web performance and SEO expert. Analyze this page and suggest optimizations.\n\n")
	fmt.Fprintf(&b, "Website: %s\n", site)
	fmt.Fprintf(&b, "Title: %s\n", orNone(page.Title))
	fmt.Fprintf(&b, "H1: %s\n", orNone(page.Heading))
	fmt.Fprintf(&b, "Current meta description: %s\n", orNone(page.Description))
	fmt.Fprintf(&b, "Images (%d): %s\n", len(page.ImageSources), orNone(strings.Join(head(page.ImageSources, maxPromptImages), ", ")))
	fmt.Fprintf(&b, "External domains: %s\n\n", orNone(strings.Join(page.ExternalDomains, ", ")))

	b.WriteString("Return a single JSON object with exactly these fields:\n")
	b.WriteString("1. \"jsonLd\": a schema.org JSON-LD object describing this page\n")
	b.WriteString("2. \"metaDescription\": an improved meta description under 160 characters, or null if the current one is good\n")
	b.WriteString("3. \"preconnectDomains\": up to 5 external origins (scheme and host) worth preconnecting to\n")
	b.WriteString("4. \"criticalResources\": paths or URLs of resources to preload\n\n")
	b.WriteString("Respond with the JSON object only, no markdown and no explanation.")

	return b.String()
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "None"
	}
	return s
}

func head(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
