package mdconv

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var headingRe = regexp.MustCompile(`^(#{1,6})\s+(.*)$`)

type headingLine struct {
	line  int
	level int
	text  string
}

func scanHeadings(lines []string) []headingLine {
	var out []headingLine
	for i, ln := range lines {
		m := headingRe.FindStringSubmatch(ln)
		if m == nil {
			continue
		}
		out = append(out, headingLine{line: i, level: len(m[1]), text: strings.TrimSpace(m[2])})
	}
	return out
}

// SplitSections parses a markdown document into heading-delimited blocks.
// Only headings whose depth is in levels open a block, but a block is closed
// by the next heading of equal or shallower depth at ANY level, configured or
// not — an H1 closes every open section, while a deeper H3 inside a matched
// H2 block stays part of its body.
func SplitSections(doc string, levels map[int]bool) []Block {
	lines := strings.Split(doc, "\n")
	headings := scanHeadings(lines)

	var blocks []Block
	for i, h := range headings {
		if !levels[h.level] {
			continue
		}
		end := len(lines)
		for _, next := range headings[i+1:] {
			if next.level <= h.level {
				end = next.line
				break
			}
		}
		body := strings.Join(lines[h.line+1:end], "\n")
		blocks = append(blocks, Block{Level: h.level, Heading: h.text, Body: body})
	}
	return blocks
}

// ExtractSection finds the content to export from one document: the first
// video-classified block with a non-blank body wins; otherwise the first
// lesson-classified block with a non-blank body; otherwise CategoryNone with
// an empty body. Matched headings with blank bodies fall through. Never
// fails: a document with no recognizable headings simply yields CategoryNone.
func ExtractSection(doc string, cfg Config) Selection {
	blocks := SplitSections(doc, cfg.levelSet())
	labels := cfg.LabelSet()

	sel := Selection{Category: CategoryNone}
	var lesson *Block

	for i := range blocks {
		b := &blocks[i]
		body := strings.TrimSpace(b.Body)
		if body == "" {
			continue
		}
		switch MatchHeading(b.Heading, labels) {
		case CategoryVideo:
			if sel.VideoLen == 0 {
				sel.VideoLen = utf8.RuneCountInString(body)
			}
			if sel.Category != CategoryVideo {
				sel.Category = CategoryVideo
				sel.Heading = b.Heading
				sel.Body = body
			}
		case CategoryLesson:
			if sel.LessonLen == 0 {
				sel.LessonLen = utf8.RuneCountInString(body)
			}
			if lesson == nil {
				lesson = b
			}
		}
	}

	if sel.Category == CategoryNone && lesson != nil {
		sel.Category = CategoryLesson
		sel.Heading = lesson.Heading
		sel.Body = strings.TrimSpace(lesson.Body)
	}
	return sel
}

// FirstH1 returns the text of the first level-one heading, or "".
func FirstH1(doc string) string {
	for _, h := range scanHeadings(strings.Split(doc, "\n")) {
		if h.level == 1 {
			return h.text
		}
	}
	return ""
}
