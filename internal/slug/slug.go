// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package slug turns free text such as dataset titles into folder names.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ASCII whitespace includes the vertical tab and the \x1c-\x1f separators,
// which RE2's \s leaves out.
var (
	asciiWord          = regexp.MustCompile(`[^a-z0-9_\t\n\v\f\r \x1c-\x1f-]`)
	dashOrSpace        = regexp.MustCompile(`[-\t\n\v\f\r \x1c-\x1f]+`)
	dashOrUnicodeSpace = regexp.MustCompile(`[-\t\n\v\f\r \x1c-\x1f\x85\p{Z}]+`)
)

// Make converts value to ASCII, lowercases it, drops characters that are not
// alphanumerics, underscores, hyphens or whitespace, replaces runs of
// whitespace and hyphens with a single hyphen and trims leading and trailing
// hyphens and underscores.
//
// "My Test Data!!" becomes "my-test-data".
func Make(value string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.Predicate(func(r rune) bool {
		return r > unicode.MaxASCII
	})))
	ascii, _, err := transform.String(t, value)
	if err != nil {
		ascii = strings.Map(func(r rune) rune {
			if r > unicode.MaxASCII {
				return -1
			}
			return r
		}, norm.NFKD.String(value))
	}
	s := asciiWord.ReplaceAllString(strings.ToLower(ascii), "")
	return strings.Trim(dashOrSpace.ReplaceAllString(s, "-"), "-_")
}

// MakeUnicode is like Make but keeps non-ASCII letters and digits. The input
// is normalized to NFKC instead of being stripped to ASCII.
func MakeUnicode(value string) string {
	s := strings.ToLower(norm.NFKC.String(value))
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsMark(r) || r == '_' || r == '-' || isSpace(r) {
			return r
		}
		return -1
	}, s)
	return strings.Trim(dashOrUnicodeSpace.ReplaceAllString(s, "-"), "-_")
}

func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}
