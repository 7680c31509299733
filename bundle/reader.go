// Package bundle reads Notion markdown export archives and writes the
// converted dataset artifacts (JSONL, CSV, report, provenance).
package bundle

import (
	"archive/zip"
	"encoding/csv"
	"fmt"
	"io"
	"path"
	"regexp"
	"sort"
	"strings"
)

var (
	hexIDRe = regexp.MustCompile(`[0-9a-fA-F]{32}`)
	// Anchored to the cell end: Notion URLs and bare ids both finish with
	// the 32-hex page id, and anchoring keeps hex-looking title characters
	// from matching first.
	cellIDRe = regexp.MustCompile(`([0-9a-fA-F]{32})$`)
)

// Export is the usable content of one uploaded archive.
type Export struct {
	// Files maps archive path to markdown content, invalid UTF-8 replaced.
	Files map[string]string
	// PageIDs maps archive path to the page id recovered from an index CSV,
	// for files whose name does not embed one.
	PageIDs map[string]string
	// Flagged lists files whose content contained invalid UTF-8.
	Flagged []string
}

// ReadExport collects the markdown pages of a Notion export archive.
// Directory entries, macOS resource forks, and hidden files are skipped.
// CSV entries are treated as database indexes and mined for page ids.
func ReadExport(zr *zip.Reader) (*Export, error) {
	ex := &Export{
		Files:   map[string]string{},
		PageIDs: map[string]string{},
	}
	var indexes [][]byte

	for _, f := range zr.File {
		if f.FileInfo().IsDir() || skipEntry(f.Name) {
			continue
		}
		switch strings.ToLower(path.Ext(f.Name)) {
		case ".md":
			content, replaced, err := readEntry(f)
			if err != nil {
				return nil, fmt.Errorf("bundle: read %s: %w", f.Name, err)
			}
			ex.Files[f.Name] = content
			if replaced {
				ex.Flagged = append(ex.Flagged, f.Name)
			}
		case ".csv":
			content, _, err := readEntry(f)
			if err != nil {
				return nil, fmt.Errorf("bundle: read %s: %w", f.Name, err)
			}
			indexes = append(indexes, []byte(content))
		}
	}
	if len(ex.Files) == 0 {
		return nil, fmt.Errorf("bundle: archive contains no markdown files")
	}
	sort.Strings(ex.Flagged)

	for _, idx := range indexes {
		ex.applyIndex(idx)
	}
	return ex, nil
}

func skipEntry(name string) bool {
	if strings.HasPrefix(name, "__MACOSX/") {
		return true
	}
	return strings.HasPrefix(path.Base(name), ".")
}

func readEntry(f *zip.File) (content string, replaced bool, err error) {
	rc, err := f.Open()
	if err != nil {
		return "", false, err
	}
	defer rc.Close()

	b, err := io.ReadAll(rc)
	if err != nil {
		return "", false, err
	}
	s := string(b)
	valid := strings.ToValidUTF8(s, "�")
	return valid, valid != s, nil
}

// applyIndex scans a Notion database CSV for rows carrying a 32-hex page id
// and pairs them with markdown files by page title. Files whose name already
// embeds the id don't need this; the index covers renamed exports.
func (ex *Export) applyIndex(data []byte) {
	r := csv.NewReader(strings.NewReader(string(data)))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	rows, err := r.ReadAll()
	if err != nil || len(rows) < 2 {
		return
	}

	byStem := map[string]string{}
	for name := range ex.Files {
		base := path.Base(name)
		stem := strings.TrimSuffix(base, path.Ext(base))
		// Strip the trailing hex id Notion appends, if present.
		stem = strings.TrimSpace(hexIDRe.ReplaceAllString(stem, ""))
		byStem[stem] = name
	}

	for _, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		title := strings.TrimSpace(row[0])
		if title == "" {
			continue
		}
		var id string
		for _, cell := range row[1:] {
			id = cellID(cell)
			if id != "" {
				break
			}
		}
		if id == "" {
			continue
		}
		if name, ok := byStem[title]; ok {
			ex.PageIDs[name] = id
		}
	}
}

func cellID(cell string) string {
	s := strings.TrimSpace(cell)
	if m := cellIDRe.FindStringSubmatch(s); m != nil {
		return strings.ToLower(m[1])
	}
	// Dashed UUID form.
	if m := cellIDRe.FindStringSubmatch(strings.ReplaceAll(s, "-", "")); m != nil {
		return strings.ToLower(m[1])
	}
	return ""
}
