package mdconv

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"lowercase", "VIDEO", "video"},
		{"diacritics", "Videó szöveg", "video szoveg"},
		{"hungarian full", "Árvíztűrő tükörfúrógép", "arvizturo tukorfurogep"},
		{"punctuation runs", "Videó - szöveg!!!", "video szoveg"},
		{"whitespace runs", "  lecke \t  anyag  ", "lecke anyag"},
		{"digits kept", "3. fejezet", "3 fejezet"},
		{"empty", "", ""},
		{"only punctuation", "---***---", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Normalize(tc.in); got != tc.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	in := "Videó — Szöveg (1. rész)"
	once := Normalize(in)
	if twice := Normalize(once); twice != once {
		t.Fatalf("not idempotent: %q vs %q", once, twice)
	}
}
