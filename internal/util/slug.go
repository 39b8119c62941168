// Package util provides text helpers shared by the catalog services.
package util

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	// Matches any run of non-alphanumeric characters.
	nonAlphanumericRe = regexp.MustCompile(`[^a-z0-9]+`)
	// Matches multiple consecutive dashes.
	multipleDashRe = regexp.MustCompile(`-+`)
)

// maxSlugLen bounds generated slugs; longer inputs are cut at a dash.
const maxSlugLen = 80

// Slugify converts user input to a URL-safe slug.
//
//	"Walnut Desk Lamp"  → "walnut-desk-lamp"
//	"Café Crème"        → "cafe-creme"
//	"Sci-Fi/Fantasy"    → "sci-fi-fantasy"
//	"🐉 Dragons!"        → "dragons"
func Slugify(input string) string {
	// Decompose accented characters so the base letter survives.
	s := norm.NFKD.String(input)
	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)

	s = strings.ToLower(s)
	s = nonAlphanumericRe.ReplaceAllString(s, "-")
	s = multipleDashRe.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")

	if len(s) > maxSlugLen {
		s = s[:maxSlugLen]
		if i := strings.LastIndexByte(s, '-'); i > 0 {
			s = s[:i]
		}
	}
	return s
}

// IsSlug reports whether s is already in canonical slug form.
func IsSlug(s string) bool {
	return s != "" && Slugify(s) == s
}

// SlugWithSuffix returns base with a numeric suffix, used to retry after a
// slug conflict: ("desk", 2) → "desk-2".
func SlugWithSuffix(base string, n int) string {
	if n <= 1 {
		return base
	}
	return base + "-" + strconv.Itoa(n)
}
