// Package sanitize cleans free text typed into lead and activity forms before it is stored.
package sanitize

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	markupPattern = regexp.MustCompile(`<[^>]*>`)

	entityDecoder = strings.NewReplacer(
		"&lt;", "<",
		"&gt;", ">",
		"&amp;", "&",
		"&quot;", `"`,
		"&#39;", "'",
		"&nbsp;", " ",
	)
)

// StripHTML removes markup, including markup smuggled in as entities.
func StripHTML(s string) string {
	out := markupPattern.ReplaceAllString(s, "")
	out = entityDecoder.Replace(out)
	return markupPattern.ReplaceAllString(out, "")
}

// Text strips markup, drops control characters and collapses runs of whitespace.
func Text(s string) string {
	stripped := StripHTML(s)
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return ' '
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, stripped)
	return strings.Join(strings.Fields(cleaned), " ")
}

// TextPtr applies Text to an optional field. Blank results become nil.
func TextPtr(s *string) *string {
	if s == nil {
		return nil
	}
	if out := Text(*s); out != "" {
		return &out
	}
	return nil
}
