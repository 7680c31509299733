// Package runlog persists conversion run history to SQLite: one row per run
// plus one row per processed file, so past conversions can be listed and
// audited through the service API.
package runlog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hazyhaar/notionconv/dbopen"
	"github.com/hazyhaar/notionconv/mdconv"
)

// Schema for the runs and run_files tables. Call Store.Init() or apply via
// dbopen.WithSchema.
const Schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	started_at INTEGER NOT NULL,
	source_name TEXT NOT NULL,
	file_count INTEGER NOT NULL,
	record_count INTEGER NOT NULL,
	ok_count INTEGER NOT NULL,
	empty_count INTEGER NOT NULL,
	error_count INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

CREATE TABLE IF NOT EXISTS run_files (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
	file_name TEXT NOT NULL,
	page_id TEXT,
	page_title TEXT,
	selected_section TEXT NOT NULL,
	video_len INTEGER NOT NULL,
	lesson_len INTEGER NOT NULL,
	char_len INTEGER NOT NULL,
	status TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_run_files_run ON run_files(run_id);
`

// Run summarizes one recorded conversion.
type Run struct {
	RunID       string    `json:"run_id"`
	StartedAt   time.Time `json:"started_at"`
	SourceName  string    `json:"source_name"`
	FileCount   int       `json:"file_count"`
	RecordCount int       `json:"record_count"`
	OKCount     int       `json:"ok_count"`
	EmptyCount  int       `json:"empty_count"`
	ErrorCount  int       `json:"error_count"`
}

// Store persists run history. Safe for concurrent use; writes run in
// transactions retried on SQLITE_BUSY.
type Store struct {
	db *sql.DB
}

// NewStore creates a run-history store backed by the given database.
func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// Init creates the tables if they don't exist.
func (s *Store) Init() error {
	_, err := s.db.Exec(Schema)
	return err
}

// RecordRun persists one conversion result atomically: the run summary plus
// one row per processed file.
func (s *Store) RecordRun(ctx context.Context, sourceName string, res *mdconv.Result) error {
	var okN, emptyN, errN int
	for _, row := range res.Report {
		switch row.Status {
		case mdconv.StatusOK:
			okN++
		case mdconv.StatusEmpty:
			emptyN++
		default:
			errN++
		}
	}

	return dbopen.RunTx(ctx, s.db, func(tx *sql.Tx) error {
		return s.insertRun(ctx, tx, sourceName, res, okN, emptyN, errN)
	})
}

func (s *Store) insertRun(ctx context.Context, tx *sql.Tx, sourceName string, res *mdconv.Result, okN, emptyN, errN int) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO runs (run_id, started_at, source_name, file_count, record_count, ok_count, empty_count, error_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		res.RunID, time.Now().Unix(), sourceName,
		len(res.Report), len(res.Records), okN, emptyN, errN)
	if err != nil {
		return fmt.Errorf("runlog: insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO run_files (run_id, file_name, page_id, page_title, selected_section, video_len, lesson_len, char_len, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("runlog: prepare: %w", err)
	}
	defer stmt.Close()

	for _, row := range res.Report {
		if _, err := stmt.ExecContext(ctx,
			res.RunID, row.FileName, row.PageID, row.PageTitle,
			string(row.SelectedSection), row.VideoLen, row.LessonLen,
			row.CharLen, row.Status); err != nil {
			return fmt.Errorf("runlog: insert file row: %w", err)
		}
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, started_at, source_name, file_count, record_count, ok_count, empty_count, error_count
		FROM runs ORDER BY started_at DESC, run_id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("runlog: list runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var ts int64
		if err := rows.Scan(&r.RunID, &ts, &r.SourceName, &r.FileCount,
			&r.RecordCount, &r.OKCount, &r.EmptyCount, &r.ErrorCount); err != nil {
			return nil, fmt.Errorf("runlog: scan run: %w", err)
		}
		r.StartedAt = time.Unix(ts, 0).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

// RunFiles returns the per-file report rows of one run, in insertion order.
func (s *Store) RunFiles(ctx context.Context, runID string) ([]mdconv.ReportRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT file_name, page_id, page_title, selected_section, video_len, lesson_len, char_len, status
		FROM run_files WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("runlog: run files: %w", err)
	}
	defer rows.Close()

	var out []mdconv.ReportRow
	for rows.Next() {
		var r mdconv.ReportRow
		var section string
		if err := rows.Scan(&r.FileName, &r.PageID, &r.PageTitle, &section,
			&r.VideoLen, &r.LessonLen, &r.CharLen, &r.Status); err != nil {
			return nil, fmt.Errorf("runlog: scan file row: %w", err)
		}
		r.SelectedSection = mdconv.Category(section)
		out = append(out, r)
	}
	return out, rows.Err()
}
