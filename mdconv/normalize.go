package mdconv

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes to NFD and removes combining marks, so "Videó" and
// "Video" compare equal. Recomposition keeps the output valid NFC.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize prepares text for tolerant comparison: lowercase, diacritics
// stripped, punctuation and whitespace runs collapsed to single spaces,
// ends trimmed. Pure and total; it never fails and never mutates stored
// output (matching only).
func Normalize(s string) string {
	if s == "" {
		return ""
	}

	out, _, err := transform.String(stripMarks, s)
	if err != nil {
		out = s
	}
	out = strings.ToLower(out)

	var sb strings.Builder
	sb.Grow(len(out))
	space := true // treat leading separators as already-emitted space
	for _, r := range out {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
			space = false
			continue
		}
		// Punctuation, symbols, and whitespace all become one separator.
		if !space {
			sb.WriteByte(' ')
			space = true
		}
	}
	return strings.TrimRight(sb.String(), " ")
}
