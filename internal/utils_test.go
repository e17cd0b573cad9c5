package internal

import (
	"testing"
	"time"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"bună ziua", "bună_ziua"},
		{"vineri", "vineri"},
		{"a/b\\c", "a_b_c"},
		{"ce faci?", "ce_faci_"},
		{"înțelegere", "înțelegere"},
		{"ябълка", "ябълка"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := SanitizeFilename(tt.input); got != tt.want {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSessionFileName(t *testing.T) {
	ts := time.Date(2026, 3, 7, 9, 5, 1, 0, time.UTC)
	if got := SessionFileName(ts); got != "session_20260307_090501.csv" {
		t.Errorf("SessionFileName() = %q", got)
	}
}
