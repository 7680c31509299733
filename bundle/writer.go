package bundle

import (
	"archive/zip"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/hazyhaar/notionconv/mdconv"
)

// Provenance records how an archive was produced, written alongside the
// datasets so runs stay reproducible.
type Provenance struct {
	RunID         string   `json:"run_id"`
	CreatedAt     string   `json:"created_at"`
	SourceName    string   `json:"source_name"`
	VideoLabels   []string `json:"video_labels"`
	LessonLabels  []string `json:"lesson_labels"`
	HeadingLevels []int    `json:"heading_levels"`
	ChunkMaxLen   int      `json:"chunk_max_len"`
	ChunkOverlap  int      `json:"chunk_overlap"`
	NoChunk       bool     `json:"no_chunk"`
	FileCount     int      `json:"file_count"`
	RecordCount   int      `json:"record_count"`
}

// NewProvenance snapshots the configuration and counts of one run.
func NewProvenance(cfg mdconv.Config, sourceName string, res *mdconv.Result) Provenance {
	return Provenance{
		RunID:         res.RunID,
		CreatedAt:     time.Now().UTC().Format(time.RFC3339),
		SourceName:    sourceName,
		VideoLabels:   cfg.VideoLabels,
		LessonLabels:  cfg.LessonLabels,
		HeadingLevels: cfg.HeadingLevels,
		ChunkMaxLen:   cfg.ChunkMaxLen,
		ChunkOverlap:  cfg.ChunkOverlap,
		NoChunk:       cfg.NoChunk,
		FileCount:     len(res.Report),
		RecordCount:   len(res.Records),
	}
}

// ArchiveName is the download file name for a run's artifact bundle.
func ArchiveName(runID string) string { return "converted_" + runID + ".zip" }

// WriteJSONL writes one JSON object per record, UTF-8, no escaping of
// non-ASCII text.
func WriteJSONL(w io.Writer, recs []mdconv.Record) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, r := range recs {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("bundle: write jsonl: %w", err)
		}
	}
	return nil
}

// WriteCSV writes the dataset CSV, one row per record, content in the
// tartalom column.
func WriteCSV(w io.Writer, recs []mdconv.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{
		"file_name", "page_id", "page_title", "selected_section",
		"selected_heading", "char_len", "tartalom",
	}); err != nil {
		return fmt.Errorf("bundle: write csv header: %w", err)
	}
	for _, r := range recs {
		if err := cw.Write([]string{
			r.FileName, r.PageID, r.PageTitle, string(r.SelectedSection),
			r.SelectedHeading, strconv.Itoa(r.CharLen), r.TextMarkdown,
		}); err != nil {
			return fmt.Errorf("bundle: write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteReport writes the per-file quality report CSV.
func WriteReport(w io.Writer, rows []mdconv.ReportRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{
		"file_name", "page_id", "page_title", "video_len", "lesson_len",
		"selected_section", "char_len", "status",
	}); err != nil {
		return fmt.Errorf("bundle: write report header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write([]string{
			r.FileName, r.PageID, r.PageTitle,
			strconv.Itoa(r.VideoLen), strconv.Itoa(r.LessonLen),
			string(r.SelectedSection), strconv.Itoa(r.CharLen), r.Status,
		}); err != nil {
			return fmt.Errorf("bundle: write report row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteArchive bundles the run artifacts into one deflated ZIP:
// output.jsonl, output.csv, report.csv, provenance.json.
func WriteArchive(w io.Writer, res *mdconv.Result, prov Provenance) error {
	zw := zip.NewWriter(w)

	files := []struct {
		name  string
		write func(io.Writer) error
	}{
		{"output.jsonl", func(w io.Writer) error { return WriteJSONL(w, res.Records) }},
		{"output.csv", func(w io.Writer) error { return WriteCSV(w, res.Records) }},
		{"report.csv", func(w io.Writer) error { return WriteReport(w, res.Report) }},
		{"provenance.json", func(w io.Writer) error {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(prov)
		}},
	}
	for _, f := range files {
		fw, err := zw.Create(f.name)
		if err != nil {
			return fmt.Errorf("bundle: create %s: %w", f.name, err)
		}
		if err := f.write(fw); err != nil {
			return err
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("bundle: close archive: %w", err)
	}
	return nil
}
