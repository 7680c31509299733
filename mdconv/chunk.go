package mdconv

import (
	"strings"
	"unicode/utf8"
)

// breakLookback is how far back from the character budget the chunker will
// search for a paragraph or sentence boundary before cutting hard.
const breakLookback = 200

// ChunkText splits text into overlapping chunks of at most maxLen characters.
// Each chunk after the first begins exactly overlap characters before the end
// of its predecessor, so stripping that prefix from every chunk but the first
// reconstructs the input. Always returns at least one element; empty input
// yields a single empty chunk. Cuts prefer the nearest preceding paragraph
// break, then a sentence end, within breakLookback of the budget.
//
// All positions are rune indices, so chunk boundaries never split a UTF-8
// sequence and maxLen/overlap count characters, not bytes.
//
// Termination: overlap < maxLen is enforced by Config.Validate, and every cut
// lands past start+overlap, so the cursor always advances.
func ChunkText(text string, maxLen, overlap int) []string {
	if maxLen <= 0 || utf8.RuneCountInString(text) <= maxLen {
		return []string{text}
	}
	if overlap < 0 || overlap >= maxLen {
		overlap = 0
	}

	runes := []rune(text)
	var chunks []string
	start := 0
	for len(runes)-start > maxLen {
		cut := breakPoint(runes, start, overlap, maxLen)
		chunks = append(chunks, string(runes[start:cut]))
		start = cut - overlap
	}
	return append(chunks, string(runes[start:]))
}

// breakPoint picks the cut position for the chunk starting at start.
// The cut is always in (start+overlap, start+maxLen].
func breakPoint(runes []rune, start, overlap, maxLen int) int {
	hard := start + maxLen
	floor := start + overlap + 1

	lo := hard - breakLookback
	if lo < floor {
		lo = floor
	}
	window := string(runes[lo:hard])

	// Paragraph boundary: cut just after the blank line. The separator is
	// ASCII, so the byte index from LastIndex converts to a rune offset by
	// counting the runes before it.
	if idx := strings.LastIndex(window, "\n\n"); idx >= 0 {
		return lo + utf8.RuneCountInString(window[:idx]) + 2
	}
	// Sentence boundary: cut just after "period, space".
	if idx := strings.LastIndex(window, ". "); idx >= 0 {
		return lo + utf8.RuneCountInString(window[:idx]) + 2
	}

	return hard
}

// ChunkCount estimates how many chunks ChunkText will produce for a text of
// n characters; exact when every cut is a hard cut.
func ChunkCount(n, maxLen, overlap int) int {
	if maxLen <= 0 || n <= maxLen {
		return 1
	}
	step := maxLen - overlap
	return (n - overlap + step - 1) / step
}
