package normalize

import (
	"errors"
	"testing"
)

func TestNormalize(t *testing.T) {
	n := MustNew(map[string]string{"vinere": "vineri"})

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercase", "Bună Ziua", "bună ziua"},
		{"exception applied", "Vinere", "vineri"},
		{"already canonical", "vineri", "vineri"},
		{"exception inside phrase", "pe vinere seara", "pe vineri seara"},
		{"whitespace collapsed", "  bună \t ziua \n", "bună ziua"},
		{"empty", "", ""},
		{"only whitespace", " \t\n ", ""},
		{"token match only", "vinereau", "vinereau"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	n := MustNew(map[string]string{
		"vinere": "vineri",
		"Luni":   "luni",
		"marti":  "marți",
		"azi":    "astăzi",
		"astazi": "azi",
	})

	inputs := []string{
		"Vinere", "vineri", "MARTI azi", "astazi", "  Sâmbătă  ",
		"înțelegere", "İstanbul", "ǅemal", "", "a  b\tc", "ΣΟΦΊΑ",
	}

	for _, in := range inputs {
		once := n.Normalize(in)
		twice := n.Normalize(once)
		if once != twice {
			t.Errorf("not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestNewResolvesChains(t *testing.T) {
	n, err := New(map[string]string{"a": "b", "b": "c"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if got := n.Normalize("a b"); got != "c c" {
		t.Errorf("Normalize() = %q, want %q", got, "c c")
	}
}

func TestNewRejectsCycle(t *testing.T) {
	_, err := New(map[string]string{"a": "b", "b": "a"})
	if !errors.Is(err, ErrCycle) {
		t.Errorf("expected ErrCycle, got %v", err)
	}
}

func TestNewRejectsInvalidTables(t *testing.T) {
	tests := []struct {
		name  string
		table map[string]string
	}{
		{"multi-word key", map[string]string{"bună ziua": "salut"}},
		{"empty key", map[string]string{" ": "x"}},
		{"replacement contains mapped word", map[string]string{"x": "y z", "z": "w"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.table); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestExceptionsCopy(t *testing.T) {
	n := MustNew(map[string]string{"vinere": "vineri"})
	ex := n.Exceptions()
	ex["vinere"] = "modified"
	if n.Normalize("vinere") != "vineri" {
		t.Error("normalizer was modified through returned map")
	}
}
