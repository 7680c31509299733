package mdconv

import (
	"fmt"
	"log/slog"
	"path"
	"regexp"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/adrg/frontmatter"
	"github.com/goliatone/go-slug"

	"github.com/hazyhaar/notionconv/idgen"
)

// Notion appends the 32-hex page id to exported file names.
var pageIDRe = regexp.MustCompile(`([0-9a-fA-F]{32})$`)

// Assembler runs the per-file pipeline (extract → clean → chunk) and builds
// records and report rows. Safe for concurrent use; all state is immutable
// after construction.
type Assembler struct {
	cfg Config
	log *slog.Logger

	// clean points at Clean; tests swap it to fault single files.
	clean func(string) string
}

// NewAssembler validates the configuration and returns a ready assembler.
// A missing RunID is generated.
func NewAssembler(cfg Config) (*Assembler, error) {
	cfg.defaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("conversion config: %w", err)
	}
	if cfg.RunID == "" {
		cfg.RunID = idgen.RunID()
	}
	return &Assembler{cfg: cfg, log: cfg.Logger, clean: Clean}, nil
}

// Config returns the effective configuration, defaults applied.
func (a *Assembler) Config() Config { return a.cfg }

// PageIDFromName extracts the trailing 32-hex Notion page id from an exported
// file name, or "" when absent.
func PageIDFromName(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	stem := strings.TrimSuffix(base, path.Ext(base))
	m := pageIDRe.FindStringSubmatch(strings.TrimSpace(stem))
	if m == nil {
		return ""
	}
	return strings.ToLower(m[1])
}

// DocID derives the stable document identifier: slug of the title plus the
// page id (or "noid").
func DocID(title, pageID string) string {
	s, err := slug.Normalize(title)
	if err != nil || s == "" {
		s = strings.ReplaceAll(Normalize(title), " ", "-")
	}
	if pageID == "" {
		pageID = "noid"
	}
	return s + "_" + pageID
}

// Assemble converts one exported markdown file. It never returns an error:
// parse anomalies become an empty selection with a flagged report row, and a
// panic while processing the file is recovered into a StatusError row so one
// bad document cannot abort the batch.
func (a *Assembler) Assemble(fileName, raw, pageID string) (recs []Record, row ReportRow) {
	base := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	stem := strings.TrimSuffix(base, path.Ext(base))

	defer func() {
		if r := recover(); r != nil {
			a.log.Error("assemble panic", "file", base, "panic", r)
			recs = nil
			row = ReportRow{
				FileName:        base,
				PageID:          pageID,
				SelectedSection: CategoryNone,
				Status:          StatusError,
			}
		}
	}()

	if pageID == "" {
		pageID = PageIDFromName(fileName)
	}

	body, fmTitle := splitFrontMatter(raw)

	title := fmTitle
	if title == "" {
		title = FirstH1(body)
	}
	if title == "" {
		title = stem
	}

	sel := ExtractSection(body, a.cfg)
	cleaned := a.clean(sel.Body)
	docID := DocID(title, pageID)

	chunks := []string{cleaned}
	if !a.cfg.NoChunk {
		chunks = ChunkText(cleaned, a.cfg.ChunkMaxLen, a.cfg.ChunkOverlap)
	}

	for i, ch := range chunks {
		recs = append(recs, Record{
			RunID:           a.cfg.RunID,
			DocID:           docID,
			PageID:          pageID,
			FileName:        base,
			PageTitle:       title,
			SelectedSection: sel.Category,
			SelectedHeading: sel.Heading,
			ChunkIndex:      i + 1,
			TextMarkdown:    ch,
			CharLen:         utf8.RuneCountInString(ch),
		})
	}

	status := StatusOK
	if sel.Category == CategoryNone || cleaned == "" {
		status = StatusEmpty
	}
	row = ReportRow{
		FileName:        base,
		PageID:          pageID,
		PageTitle:       title,
		VideoLen:        sel.VideoLen,
		LessonLen:       sel.LessonLen,
		SelectedSection: sel.Category,
		CharLen:         utf8.RuneCountInString(cleaned),
		Status:          status,
	}
	return recs, row
}

// AssembleAll converts a whole export: file-level fan-out across a bounded
// worker pool, results joined in file-name order so output is deterministic.
// pageIDs (from the Notion index CSV) may be nil.
func (a *Assembler) AssembleAll(files map[string]string, pageIDs map[string]string) *Result {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	perFile := make([][]Record, len(names))
	rows := make([]ReportRow, len(names))

	sem := make(chan struct{}, a.cfg.Workers)
	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			perFile[i], rows[i] = a.Assemble(name, files[name], pageIDs[name])
		}(i, name)
	}
	wg.Wait()

	res := &Result{RunID: a.cfg.RunID, Report: rows}
	for _, recs := range perFile {
		res.Records = append(res.Records, recs...)
	}
	return res
}

// splitFrontMatter strips an optional YAML front matter block, returning the
// markdown body and the front matter title (if any). Documents without front
// matter pass through unchanged.
func splitFrontMatter(raw string) (body, title string) {
	var meta struct {
		Title string `yaml:"title"`
	}
	rest, err := frontmatter.Parse(strings.NewReader(raw), &meta)
	if err != nil {
		return raw, ""
	}
	return string(rest), strings.TrimSpace(meta.Title)
}
