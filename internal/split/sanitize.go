// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package split

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// MaxNameLength is the longest sanitized title, in characters.
const MaxNameLength = 50

var (
	disallowed = regexp.MustCompile(`[^\p{L}\p{N}_\s\p{Z}-]`)
	separators = regexp.MustCompile(`[-\s\p{Z}]+`)
)

// SanitizeTitle turns a bookmark title into a filesystem-safe file stem.
// Characters other than letters, digits, underscores, whitespace and hyphens
// are removed, runs of whitespace and hyphens become one underscore, and the
// result is trimmed of underscores and cut to MaxNameLength characters.
// An empty result falls back to section_NNN using the 1-indexed position.
// Applying it to its own output returns the output unchanged.
func SanitizeTitle(title string, position int) string {
	s := norm.NFC.String(title)
	// Stripping can bring composable runes together, so normalise again.
	s = norm.NFC.String(disallowed.ReplaceAllString(s, ""))
	s = separators.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")

	if r := []rune(s); len(r) > MaxNameLength {
		s = strings.TrimRight(string(r[:MaxNameLength]), "_")
	}

	if s == "" {
		s = fmt.Sprintf("section_%03d", position)
	}
	return s
}
