package service

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	slugStrip = regexp.MustCompile(`[^\w\s-]`)
	slugDash  = regexp.MustCompile(`[-\s]+`)
)

// Slugify lowercases s, drops accents and punctuation and joins words with dashes.
func Slugify(s string) string {
	var b strings.Builder
	for _, r := range norm.NFKD.String(s) {
		if r < unicode.MaxASCII && !unicode.Is(unicode.Mn, r) {
			b.WriteRune(r)
		}
	}
	slug := slugStrip.ReplaceAllString(strings.ToLower(b.String()), "")
	slug = slugDash.ReplaceAllString(strings.TrimSpace(slug), "-")
	return strings.Trim(slug, "-_")
}
