package mdconv

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestChunkTextFitsInOne(t *testing.T) {
	if got := ChunkText("rövid", 100, 10); len(got) != 1 || got[0] != "rövid" {
		t.Fatalf("got %q", got)
	}
}

func TestChunkTextEmpty(t *testing.T) {
	got := ChunkText("", 100, 10)
	if len(got) != 1 || got[0] != "" {
		t.Fatalf("empty input must yield one empty chunk, got %q", got)
	}
}

func TestChunkTextUnbrokenText(t *testing.T) {
	text := strings.Repeat("X", 6000)
	got := ChunkText(text, 5500, 400)
	if len(got) != 2 {
		t.Fatalf("got %d chunks, want 2", len(got))
	}
	if len(got[0]) != 5500 {
		t.Fatalf("first chunk len = %d, want 5500", len(got[0]))
	}
	if len(got[1]) != 900 {
		t.Fatalf("second chunk len = %d, want 900", len(got[1]))
	}
	if got[0][5100:] != got[1][:400] {
		t.Fatal("chunk overlap mismatch")
	}
	if want := ChunkCount(len(text), 5500, 400); want != len(got) {
		t.Fatalf("ChunkCount = %d, ChunkText produced %d", want, len(got))
	}
}

func TestChunkTextPrefersParagraphBreak(t *testing.T) {
	text := strings.Repeat("A", 5400) + "\n\n" + strings.Repeat("B", 1000)
	got := ChunkText(text, 5500, 400)
	if len(got) != 2 {
		t.Fatalf("got %d chunks, want 2", len(got))
	}
	if !strings.HasSuffix(got[0], "\n\n") {
		t.Fatalf("first chunk should end at the paragraph break, got suffix %q", got[0][len(got[0])-5:])
	}
	if len(got[0]) != 5402 {
		t.Fatalf("first chunk len = %d, want 5402", len(got[0]))
	}
}

func TestChunkTextPrefersSentenceBreak(t *testing.T) {
	text := strings.Repeat("A", 5400) + ". " + strings.Repeat("B", 1000)
	got := ChunkText(text, 5500, 400)
	if !strings.HasSuffix(got[0], ". ") {
		t.Fatalf("first chunk should end after the sentence, got suffix %q", got[0][len(got[0])-5:])
	}
}

func TestChunkTextRoundTrip(t *testing.T) {
	// Stripping the overlap prefix from every chunk but the first must
	// reconstruct the input exactly, whatever boundaries were chosen.
	var sb strings.Builder
	for i := 0; i < 400; i++ {
		sb.WriteString("Ez egy mondat a hosszú tananyagból, sorszáma nem számít. ")
		if i%7 == 0 {
			sb.WriteString("\n\n")
		}
	}
	text := sb.String()

	for _, overlap := range []int{0, 50, 400} {
		chunks := ChunkText(text, 1000, overlap)
		if len(chunks) < 2 {
			t.Fatalf("overlap %d: expected multiple chunks", overlap)
		}
		var re strings.Builder
		re.WriteString(chunks[0])
		for _, ch := range chunks[1:] {
			re.WriteString(string([]rune(ch)[overlap:]))
		}
		if re.String() != text {
			t.Fatalf("overlap %d: reconstruction mismatch", overlap)
		}
		for i, ch := range chunks {
			if n := utf8.RuneCountInString(ch); n > 1000 {
				t.Fatalf("overlap %d: chunk %d exceeds budget: %d chars", overlap, i, n)
			}
		}
	}
}

func TestChunkTextMultibyteStaysValidUTF8(t *testing.T) {
	// 2-byte runes and no break candidates, so every cut is a hard cut.
	// Odd overlaps would land mid-rune under byte arithmetic; every chunk
	// must still be well-formed UTF-8 and reconstruct the input.
	text := strings.Repeat("é", 3000)
	for _, overlap := range []int{0, 100, 101, 333} {
		chunks := ChunkText(text, 1001, overlap)
		if len(chunks) < 2 {
			t.Fatalf("overlap %d: expected multiple chunks", overlap)
		}
		for i, ch := range chunks {
			if !utf8.ValidString(ch) {
				t.Fatalf("overlap %d: chunk %d is not valid UTF-8", overlap, i)
			}
			if n := utf8.RuneCountInString(ch); n > 1001 {
				t.Fatalf("overlap %d: chunk %d has %d chars", overlap, i, n)
			}
		}
		var re strings.Builder
		re.WriteString(chunks[0])
		for _, ch := range chunks[1:] {
			re.WriteString(string([]rune(ch)[overlap:]))
		}
		if re.String() != text {
			t.Fatalf("overlap %d: reconstruction mismatch", overlap)
		}
	}
}

func TestChunkCount(t *testing.T) {
	cases := []struct {
		n, maxLen, overlap, want int
	}{
		{0, 100, 10, 1},
		{100, 100, 10, 1},
		{101, 100, 10, 2},
		{6000, 5500, 400, 2},
		{1000, 100, 0, 10},
	}
	for _, tc := range cases {
		if got := ChunkCount(tc.n, tc.maxLen, tc.overlap); got != tc.want {
			t.Fatalf("ChunkCount(%d,%d,%d) = %d, want %d", tc.n, tc.maxLen, tc.overlap, got, tc.want)
		}
	}
}
