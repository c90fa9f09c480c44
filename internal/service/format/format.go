// Package format turns raw model output into the HTML fragment shown in the chat.
package format

import (
	"html"
	"regexp"
	"strings"
)

// Apology is returned when there is nothing to format.
const Apology = `<p>Mohon maaf, saya perlu waktu sejenak. Silakan coba ajukan pertanyaan dengan cara yang berbeda.</p>`

// MessageClass is the css class carried by every formatted answer.
const MessageClass = "professional-message"

const (
	lineBreak = "<br>"
	bullet    = "• "
)

// space matches unicode whitespace; RE2's \s alone is ASCII only and misses
// no-break spaces and vertical tabs that models emit.
const space = `[\s\v\p{Z}]`

var (
	tagPattern         = regexp.MustCompile(`<[^>]+>`)
	listMarkerPattern  = regexp.MustCompile(`\p{Nd}+\.` + space)
	sentenceGapPattern = regexp.MustCompile(`\.([\p{L}\p{N}_])`)
	spacePattern       = regexp.MustCompile(space + `+`)
	emptyBulletPattern = regexp.MustCompile(`<br>` + space + `<br>`)
)

// Format strips markup from raw, turns numbered items into bullets, normalizes
// spacing and wraps the result in a single styled paragraph.
func Format(raw string) string {
	if raw == "" {
		return Apology
	}

	text := tagPattern.ReplaceAllString(raw, "")
	text = html.EscapeString(text)

	text = listMarkerPattern.ReplaceAllString(text, lineBreak+bullet)
	text = strings.TrimPrefix(text, lineBreak)

	text = sentenceGapPattern.ReplaceAllString(text, ". $1")
	text = spacePattern.ReplaceAllString(text, " ")
	text = emptyBulletPattern.ReplaceAllString(text, lineBreak)

	return `<p class="` + MessageClass + `">` + text + `</p>`
}
