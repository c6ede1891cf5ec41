package announcements

import (
	"regexp"
	"strings"
)

var (
	emailRe   = regexp.MustCompile(`\S+@\S+`)
	urlRe     = regexp.MustCompile(`http\S+|www\S+`)
	dateRe    = regexp.MustCompile(`\b\d{1,2}[-/.]\d{1,2}[-/.]\d{2,4}\b`)
	ordinalRe = regexp.MustCompile(`\b\d+[a-z]+\b`)
	punctRe   = regexp.MustCompile(`[^\w\s%.]`)
	spaceRe   = regexp.MustCompile(`\s+`)
)

// Clean lower-cases text and strips emails, URLs, dates, ordinals ("25th") and punctuation
// other than '%' and '.', then squeezes whitespace.
func Clean(text string) string {
	text = strings.ToLower(text)
	text = emailRe.ReplaceAllString(text, "")
	text = urlRe.ReplaceAllString(text, "")
	text = dateRe.ReplaceAllString(text, "")
	text = ordinalRe.ReplaceAllString(text, "")
	text = punctRe.ReplaceAllString(text, "")
	return strings.TrimSpace(spaceRe.ReplaceAllString(text, " "))
}

// Excerpt returns at most n runes of s.
func Excerpt(s string, n int) string {
	if n <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
