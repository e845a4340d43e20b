package skillfeed

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	reWhitespace = regexp.MustCompile(`\s`)
	reNonSlug    = regexp.MustCompile(`[^A-Za-z0-9_-]`)
)

// Slugify turns a display name into a technology id:
// whitespace becomes "_", accents are folded, anything outside
// [A-Za-z0-9_-] is dropped and the result is lower-cased.
//
//	"Google App Engine" -> "google_app_engine"
//	"[Java]"            -> "java"
func Slugify(name string) string {
	s := reWhitespace.ReplaceAllString(name, "_")

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(t, s); err == nil {
		s = folded
	}

	s = reNonSlug.ReplaceAllString(s, "")
	return strings.ToLower(s)
}
