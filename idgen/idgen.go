// Package idgen generates the identifiers notionconv stamps on runs and
// uploads.
package idgen

import (
	"time"

	"github.com/google/uuid"
)

// RunID returns the wall-clock run identifier used in output archive names
// and on every emitted record, e.g. "20260829_153012". Local time, matching
// what users see in their download folder.
func RunID() string {
	return time.Now().Format("20060102_150405")
}

// New returns a UUIDv7 string for correlation ids (uploads, log lines).
// Time-sortable, globally unique.
func New() string {
	return uuid.Must(uuid.NewV7()).String()
}
