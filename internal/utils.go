package internal

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// Version is the application version reported by the CLI
const Version = "0.3.0"

// SessionFileName returns the file name of a session snapshot created at t
// Format: session_YYYYMMDD_HHMMSS.csv
func SessionFileName(t time.Time) string {
	return fmt.Sprintf("session_%s.csv", t.Format("20060102_150405"))
}

// SanitizeFilename creates a safe filename from a string.
// Spaces become underscores, letters of any script are kept.
func SanitizeFilename(s string) string {
	var b strings.Builder
	for _, r := range s {
		if isAlphaNumeric(r) || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

// isAlphaNumeric checks if a rune is a letter, a digit or a combining mark
func isAlphaNumeric(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}
