package mapper

import (
	"regexp"
	"strings"
)

// Best-effort markdown to plain text reduction: a fixed, order-sensitive
// sequence of textual substitutions with no nested-structure awareness.
var (
	reCodeSpan   = regexp.MustCompile("`([^`]+)`")
	reHeader     = regexp.MustCompile(`(?m)^#+\s+`)
	reBold       = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	reItalic     = regexp.MustCompile(`\*([^*]+)\*`)
	reBoldUnder  = regexp.MustCompile(`__([^_]+)__`)
	reItalUnder  = regexp.MustCompile(`_([^_]+)_`)
	reImage      = regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`)
	reLink       = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	reHorizRule  = regexp.MustCompile(`(?m)^[-*_]{3,}$`)
	reBlankLines = regexp.MustCompile(`\n{3,}`)
	reFence      = regexp.MustCompile("```[^`]*```")
)

// PlainText reduces markdown to readable plain text.
// Text without markdown comes back unchanged apart from whitespace trim.
func PlainText(text string) string {
	// Code fences: drop the markers, keep the inner text
	text = reFence.ReplaceAllStringFunc(text, func(m string) string {
		return strings.ReplaceAll(m, "```", "")
	})
	text = reCodeSpan.ReplaceAllString(text, "$1")

	text = reHeader.ReplaceAllString(text, "")

	text = reBold.ReplaceAllString(text, "$1")
	text = reItalic.ReplaceAllString(text, "$1")
	text = reBoldUnder.ReplaceAllString(text, "$1")
	text = reItalUnder.ReplaceAllString(text, "$1")

	// Images before links: link conversion would otherwise turn
	// ![alt](url) into "!alt" and images would never be dropped
	text = reImage.ReplaceAllString(text, "")
	text = reLink.ReplaceAllString(text, "$1")

	text = reHorizRule.ReplaceAllString(text, "")
	text = reBlankLines.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}
