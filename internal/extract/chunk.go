package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

	// Standard international/US formats plus bare 7-digit local numbers.
	phonePattern = regexp.MustCompile(
		`(\+\d{1,3}[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}\b|\b\d{3}[-.\s]?\d{4}\b`)
)

// ContactChunk finds the earliest email or phone number in pageText and
// returns it with contextChars of surrounding context on each side. It
// returns "" when neither pattern matches.
func ContactChunk(pageText string, contextChars int) string {
	if contextChars <= 0 {
		contextChars = 1000
	}

	emailLoc := emailPattern.FindStringIndex(pageText)
	phoneLoc := phonePattern.FindStringIndex(pageText)

	var loc []int
	switch {
	case emailLoc == nil && phoneLoc == nil:
		return ""
	case emailLoc == nil:
		loc = phoneLoc
	case phoneLoc == nil:
		loc = emailLoc
	case emailLoc[0] <= phoneLoc[0]:
		loc = emailLoc
	default:
		loc = phoneLoc
	}

	// The offsets are in bytes; keep both window edges on rune boundaries
	// so the chunk stays valid UTF-8.
	start := loc[0] - contextChars
	if start < 0 {
		start = 0
	}
	for start > 0 && !utf8.RuneStart(pageText[start]) {
		start--
	}
	end := loc[1] + contextChars
	if end > len(pageText) {
		end = len(pageText)
	}
	for end < len(pageText) && !utf8.RuneStart(pageText[end]) {
		end++
	}
	return strings.TrimSpace(pageText[start:end])
}
