package idgen

import (
	"regexp"
	"testing"
)

func TestRunIDFormat(t *testing.T) {
	id := RunID()
	if !regexp.MustCompile(`^\d{8}_\d{6}$`).MatchString(id) {
		t.Fatalf("RunID() = %q, want YYYYMMDD_HHMMSS", id)
	}
}

func TestNewIsUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := New()
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}
