// Package speech turns extracted transcript text into audible speech:
// it normalizes markup-heavy text for natural reading and drives the
// synthesis engine and audio playback.
package speech

import (
	"regexp"
	"strings"
)

var (
	fencedCodeRE = regexp.MustCompile("(?s)```.*?```")
	inlineCodeRE = regexp.MustCompile("`[^`\n]*`")
	linkRE       = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	markupRE     = regexp.MustCompile("[*_~`#]+")
	whitespaceRE = regexp.MustCompile(`\s+`)
)

// glyphReplacer strips decorative symbols that synthesis engines either
// skip awkwardly or read out by name.
var glyphReplacer = strings.NewReplacer(
	"✅", "", "⛔", "", "🎤", "", "⚡", "", "📊", "",
	"✓", "", "✔", "", "✗", "", "✖", "", "•", "", "◦", "",
	"→", "", "←", "", "📝", "", "🔧", "", "🚀", "",
	"⚠️", "", "⚠", "", "❌", "",
)

// Normalize strips formatting noise from text so it reads naturally
// aloud: fenced code blocks and inline code are removed entirely, links
// collapse to their label, emphasis markers and decorative glyphs are
// dropped, and all whitespace runs collapse to single spaces.
//
// Normalize is pure and idempotent.
func Normalize(text string) string {
	text = fencedCodeRE.ReplaceAllString(text, " ")
	text = inlineCodeRE.ReplaceAllString(text, " ")
	text = linkRE.ReplaceAllString(text, "$1")
	text = markupRE.ReplaceAllString(text, "")
	text = glyphReplacer.Replace(text)
	text = whitespaceRE.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
