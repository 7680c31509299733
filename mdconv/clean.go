package mdconv

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	fenceRe        = regexp.MustCompile("^\\s*```")
	numItemRe      = regexp.MustCompile(`^(\s*)(\d+)\.\s+(.*)$`)
	headingSpaceRe = regexp.MustCompile(`(?m)^(#{1,6})([^\s#])`)
	headingGapRe   = regexp.MustCompile(`\n#{1,6} `)
	quoteGapRe     = regexp.MustCompile(`\n> `)
	quoteDashRe    = regexp.MustCompile(`(?m)^>\s-\s`)
	blankRunRe     = regexp.MustCompile(`\n{3,}`)
)

// htmlPolicy and htmlConverter are stateless after construction and safe for
// concurrent use.
var (
	htmlPolicy    = bluemonday.UGCPolicy()
	htmlConverter = converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
)

// Clean normalizes a selected markdown body for emission: line endings,
// zero-width/control characters, inline HTML islands, heading/blockquote
// spacing, blank-line runs, and ordered-list numbering. Idempotent:
// Clean(Clean(x)) == Clean(x).
func Clean(s string) string {
	if s == "" {
		return ""
	}

	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = stripControl(s)
	s = convertHTMLIslands(s)

	// "#Heading" → "# Heading", and force a blank line before headings and
	// blockquotes so downstream splitters see them as their own paragraphs.
	s = headingSpaceRe.ReplaceAllString(s, "$1 $2")
	s = headingGapRe.ReplaceAllString(s, "\n\n$0")
	s = quoteGapRe.ReplaceAllString(s, "\n\n$0")
	s = quoteDashRe.ReplaceAllString(s, "- ")

	s = renumberOrderedLists(s)
	s = blankRunRe.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// stripControl removes zero-width characters and control characters other
// than newline and tab.
func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '\u200b', '\u200c', '\u200d', '\u2060', '\ufeff', '\u00ad':
			return -1
		}
		if r < 0x20 && r != '\n' && r != '\t' {
			return -1
		}
		if r == 0x7f {
			return -1
		}
		return r
	}, s)
}

// renumberOrderedLists rewrites "1." numbering so each list counts up from 1,
// skipping fenced code blocks. Notion exports frequently emit every item as
// "1." which survives markdown rendering but reads poorly as training text.
func renumberOrderedLists(md string) string {
	lines := strings.Split(md, "\n")
	out := make([]string, 0, len(lines))

	inCode := false
	counters := map[int]int{}
	activeIndent := -1

	for _, line := range lines {
		if fenceRe.MatchString(line) {
			inCode = !inCode
			out = append(out, line)
			continue
		}
		if inCode {
			out = append(out, line)
			continue
		}

		m := numItemRe.FindStringSubmatch(line)
		if m == nil {
			activeIndent = -1
			out = append(out, line)
			continue
		}

		indent := len(m[1])
		if indent != activeIndent {
			activeIndent = indent
			for k := range counters {
				if k >= indent {
					delete(counters, k)
				}
			}
			counters[indent] = 1
		} else {
			counters[indent]++
		}
		out = append(out, fmt.Sprintf("%s%d. %s", m[1], counters[indent], m[3]))
	}

	return strings.Join(out, "\n")
}

// convertHTMLIslands finds paragraph-level blocks that are raw HTML (Notion
// embeds callouts, toggles, and tables as inline HTML) and converts them to
// markdown after sanitizing. Blocks that fail to convert are left untouched.
func convertHTMLIslands(md string) string {
	paras := splitParagraphs(md)
	changed := false
	for i, p := range paras {
		if !isHTMLBlock(p) {
			continue
		}
		conv := htmlBlockToMarkdown(p)
		if conv != "" && conv != p {
			paras[i] = conv
			changed = true
		}
	}
	if !changed {
		return md
	}
	return strings.Join(paras, "\n\n")
}

// splitParagraphs splits on blank lines, keeping fenced code blocks whole.
func splitParagraphs(md string) []string {
	var out []string
	var buf []string
	inCode := false
	for _, ln := range strings.Split(md, "\n") {
		if fenceRe.MatchString(ln) {
			inCode = !inCode
		}
		if !inCode && strings.TrimSpace(ln) == "" {
			if len(buf) > 0 {
				out = append(out, strings.Join(buf, "\n"))
				buf = nil
			}
			continue
		}
		buf = append(buf, ln)
	}
	if len(buf) > 0 {
		out = append(out, strings.Join(buf, "\n"))
	}
	return out
}

var htmlBlockAtoms = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Table: true, atom.Ul: true,
	atom.Ol: true, atom.Li: true, atom.Aside: true, atom.Details: true,
	atom.Summary: true, atom.Figure: true, atom.Figcaption: true,
	atom.Blockquote: true, atom.Iframe: true, atom.Video: true,
	atom.Img: true, atom.A: true, atom.Span: true, atom.B: true,
	atom.Strong: true, atom.Em: true, atom.I: true,
}

// isHTMLBlock reports whether a paragraph block is an HTML fragment worth
// converting: it starts with a tag and parses to at least one known element.
func isHTMLBlock(p string) bool {
	t := strings.TrimSpace(p)
	if !strings.HasPrefix(t, "<") {
		return false
	}
	doc, err := html.Parse(strings.NewReader(t))
	if err != nil {
		return false
	}
	return hasKnownElement(doc)
}

func hasKnownElement(n *html.Node) bool {
	if n.Type == html.ElementNode && htmlBlockAtoms[n.DataAtom] {
		return true
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if hasKnownElement(c) {
			return true
		}
	}
	return false
}

func htmlBlockToMarkdown(p string) string {
	sanitized := htmlPolicy.Sanitize(p)
	md, err := htmlConverter.ConvertString(sanitized)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(md)
}
