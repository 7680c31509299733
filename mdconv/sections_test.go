package mdconv

import (
	"strings"
	"testing"
)

func TestSplitSectionsBoundaries(t *testing.T) {
	doc := strings.Join([]string{
		"# Cím",
		"intro",
		"## Videó szöveg",
		"first line",
		"### Megjegyzés",
		"nested stays inside",
		"## Következő",
		"other",
	}, "\n")

	blocks := SplitSections(doc, map[int]bool{2: true, 3: true, 4: true})
	if len(blocks) != 3 {
		t.Fatalf("got %d blocks, want 3", len(blocks))
	}

	video := blocks[0]
	if video.Heading != "Videó szöveg" || video.Level != 2 {
		t.Fatalf("unexpected first block: %+v", video)
	}
	// A deeper heading does not close the block.
	if !strings.Contains(video.Body, "nested stays inside") {
		t.Fatalf("deeper subsection should stay in body, got %q", video.Body)
	}
	// The next H2 does.
	if strings.Contains(video.Body, "other") {
		t.Fatalf("body leaked past sibling heading: %q", video.Body)
	}
}

func TestSplitSectionsClosedByShallowerUnmatchedHeading(t *testing.T) {
	// H1 is not a configured level but still terminates the open H2 block.
	doc := "## Videó szöveg\nbody\n# Új oldal\nafter"
	blocks := SplitSections(doc, map[int]bool{2: true})
	if len(blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(blocks))
	}
	if got := strings.TrimSpace(blocks[0].Body); got != "body" {
		t.Fatalf("body = %q, want %q", got, "body")
	}
}

func TestSplitSectionsIgnoresUnconfiguredLevels(t *testing.T) {
	doc := "##### Videó szöveg\ndeep\n## Tananyag\nshallow"
	blocks := SplitSections(doc, map[int]bool{2: true, 3: true, 4: true})
	if len(blocks) != 1 || blocks[0].Heading != "Tananyag" {
		t.Fatalf("unexpected blocks: %+v", blocks)
	}
}

func TestExtractSectionVideoWins(t *testing.T) {
	doc := strings.Join([]string{
		"# Lecke 1",
		"## Lecke szöveg",
		"lesson body",
		"## Videó szöveg",
		"video body",
	}, "\n")

	sel := ExtractSection(doc, DefaultConfig())
	if sel.Category != CategoryVideo {
		t.Fatalf("category = %q, want video", sel.Category)
	}
	if sel.Heading != "Videó szöveg" || sel.Body != "video body" {
		t.Fatalf("unexpected selection: %+v", sel)
	}
	if sel.VideoLen != len("video body") || sel.LessonLen != len("lesson body") {
		t.Fatalf("candidate lengths wrong: video=%d lesson=%d", sel.VideoLen, sel.LessonLen)
	}
}

func TestExtractSectionEmptyVideoFallsThrough(t *testing.T) {
	doc := strings.Join([]string{
		"## Videó szöveg",
		"",
		"## Tananyag",
		"Y",
	}, "\n")

	sel := ExtractSection(doc, DefaultConfig())
	if sel.Category != CategoryLesson {
		t.Fatalf("category = %q, want lesson", sel.Category)
	}
	if sel.Body != "Y" {
		t.Fatalf("body = %q, want Y", sel.Body)
	}
	if sel.VideoLen != 0 {
		t.Fatalf("empty video candidate should not report a length, got %d", sel.VideoLen)
	}
}

func TestExtractSectionFirstOccurrenceWins(t *testing.T) {
	doc := strings.Join([]string{
		"## Videó szöveg",
		"first",
		"## Videó leirat",
		"second",
	}, "\n")

	sel := ExtractSection(doc, DefaultConfig())
	if sel.Heading != "Videó szöveg" || sel.Body != "first" {
		t.Fatalf("unexpected selection: %+v", sel)
	}
}

func TestExtractSectionNoMatch(t *testing.T) {
	doc := "## Bevezetés\nsemmi\n## Összefoglalás\nsemmi"
	sel := ExtractSection(doc, DefaultConfig())
	if sel.Category != CategoryNone || sel.Body != "" {
		t.Fatalf("unexpected selection: %+v", sel)
	}
}

func TestFirstH1(t *testing.T) {
	if got := FirstH1("intro\n# Cím\n## Al"); got != "Cím" {
		t.Fatalf("FirstH1 = %q", got)
	}
	if got := FirstH1("## Csak H2\nbody"); got != "" {
		t.Fatalf("FirstH1 on H2-only doc = %q, want empty", got)
	}
}
