package render

import (
	"strings"
	"testing"
)

func TestHTML(t *testing.T) {
	got, err := HTML("# Cím\n\n**félkövér** és [link](https://example.com)\n\n| a | b |\n|---|---|\n| 1 | 2 |")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"<h1", "Cím", "<strong>félkövér</strong>", "<table>"} {
		if !strings.Contains(got, want) {
			t.Fatalf("output missing %q:\n%s", want, got)
		}
	}
}

func TestHTMLSanitizesScript(t *testing.T) {
	got, err := HTML("szöveg\n\n<script>alert(1)</script>")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(got, "<script") {
		t.Fatalf("script tag survived: %s", got)
	}
}

func TestHTMLEmpty(t *testing.T) {
	got, err := HTML("")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(got) != "" {
		t.Fatalf("empty input rendered %q", got)
	}
}
