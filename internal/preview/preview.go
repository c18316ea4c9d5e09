// Package preview computes the live listing preview shown while a draft is
// edited: the display title assembled from identity fields and the canonical
// URL path the marketplace will serve the listing under.
package preview

import (
	"strings"

	"github.com/gosimple/slug"
)

// Preview is the derived presentation of a draft.
type Preview struct {
	Title string
	Path  string
}

// DisplayTitle joins manufacturer, name and model with single spaces, skipping
// blank parts. An all-blank input yields an empty title.
func DisplayTitle(manufacturer, name, model string) string {
	parts := make([]string, 0, 3)
	for _, part := range []string{manufacturer, name, model} {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, " ")
}

// CanonicalPath returns the slug path the published listing resolves to. An
// empty or unsluggable name maps to the bare prefix.
func CanonicalPath(name string) string {
	return "/products/" + slug.Make(name)
}

// Compute derives the full preview for the given identity fields.
func Compute(manufacturer, name, model string) Preview {
	return Preview{
		Title: DisplayTitle(manufacturer, name, model),
		Path:  CanonicalPath(name),
	}
}
