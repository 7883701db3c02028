package texttools

import (
	"regexp"
	"strings"
)

var (
	timestampPrefixRe = regexp.MustCompile(`^\s*\d+-\d+s:\s*`)
	markdownHeadingRe = regexp.MustCompile(`(?m)^#{1,6}\s*`)
	whitespaceRe      = regexp.MustCompile(`\s+`)
)

// TextSanitizer normalizes caption/script text into speakable plain text for
// the TTS backends.
type TextSanitizer struct{}

// NewTextSanitizer creates a sanitizer instance.
func NewTextSanitizer() *TextSanitizer {
	return &TextSanitizer{}
}

// Sanitize turns arbitrary caption text into length-bounded plain text.
// The truncation is a hard cut with no ellipsis and no word-boundary
// snapping; callers needing a time-correct script length must derive
// maxChars from the voice's chars-per-second rate. maxChars <= 0 disables
// truncation. Sanitize is idempotent.
func (s *TextSanitizer) Sanitize(text string, maxChars int) string {
	// Strip to a fixpoint: removing quotes or markdown can expose a fresh
	// leading timestamp token, e.g. `"0-5s: Hello` loses the quote first.
	for {
		stripped := stripMarkup(text)
		if stripped == text {
			break
		}
		text = stripped
	}

	text = strings.ReplaceAll(text, "\r\n", " ")
	text = strings.ReplaceAll(text, "\n", " ")
	text = whitespaceRe.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)

	if maxChars > 0 {
		runes := []rune(text)
		if len(runes) > maxChars {
			text = string(runes[:maxChars])
		}
	}

	// Trim again: the hard cut may land on a space.
	return strings.TrimSpace(text)
}

// stripMarkup removes one layer of template and markup noise: leading
// timestamp tokens like "0-5s:" from script templates, markdown headings,
// quote characters and emphasis markers, and emoji.
func stripMarkup(text string) string {
	text = timestampPrefixRe.ReplaceAllString(text, "")
	text = markdownHeadingRe.ReplaceAllString(text, "")
	text = strings.Map(func(r rune) rune {
		switch r {
		case '"', '\'', '“', '”', '‘', '’', '«', '»', '*', '_', '`', '~':
			return -1
		}
		return r
	}, text)
	return stripEmoji(text)
}

// stripEmoji removes supplementary-plane symbols (emoji, pictographs) plus
// the joiners and variation selectors that glue them together.
func stripEmoji(text string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 0x1F000 && r <= 0x1FAFF: // emoji, pictographs, symbols
			return -1
		case r >= 0x2600 && r <= 0x27BF: // misc symbols and dingbats
			return -1
		case r == 0x200D || r == 0xFE0F: // ZWJ, variation selector
			return -1
		}
		return r
	}, text)
}
