package mapper

import (
	"fmt"
	"strings"

	"github.com/yairfalse/silta/types"
)

// Annotation keys surfaced in document content. Everything else is
// dropped: annotations often carry internal-only machinery references.
var shownAnnotations = []struct {
	Key   string
	Label string
}{
	{"backstage.io/techdocs-ref", "Documentation"},
	{"github.com/project-slug", "GitHub Project"},
	{"backstage.io/source-location", "Source Location"},
}

// synthesizeContent builds the human-readable document body from
// entity fields: a details section, tags, links, and allow-listed
// annotations.
func synthesizeContent(e *types.Entity) string {
	var parts []string

	parts = append(parts, "## Details")
	parts = append(parts, fmt.Sprintf("- **Kind**: %s", e.Kind))
	parts = append(parts, fmt.Sprintf("- **Type**: %s", orNA(e.SpecType())))
	parts = append(parts, fmt.Sprintf("- **Lifecycle**: %s", orNA(e.Lifecycle())))
	if owner := e.Owner(); owner != "" {
		parts = append(parts, fmt.Sprintf("- **Owner**: %s", owner))
	}
	if system := e.System(); system != "" {
		parts = append(parts, fmt.Sprintf("- **System**: %s", system))
	}
	if domain := e.Domain(); domain != "" {
		parts = append(parts, fmt.Sprintf("- **Domain**: %s", domain))
	}

	if len(e.Metadata.Tags) > 0 {
		parts = append(parts, "", fmt.Sprintf("**Tags**: %s", strings.Join(e.Metadata.Tags, ", ")))
	}

	if len(e.Metadata.Links) > 0 {
		parts = append(parts, "", "## Links")
		for _, link := range e.Metadata.Links {
			title := link.Title
			if title == "" {
				title = "Link"
			}
			parts = append(parts, fmt.Sprintf("- [%s](%s)", title, link.URL))
		}
	}

	var annotationLines []string
	for _, a := range shownAnnotations {
		if v, ok := e.Metadata.Annotations[a.Key]; ok {
			annotationLines = append(annotationLines, fmt.Sprintf("- **%s**: %s", a.Label, v))
		}
	}
	if len(annotationLines) > 0 {
		parts = append(parts, "", "## Annotations")
		parts = append(parts, annotationLines...)
	}

	return strings.Join(parts, "\n")
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
