package batch

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Entry is one phrase to process
type Entry struct {
	Phrase      string
	Translation string
	// NeedsReverse means Phrase is empty and Translation must first be
	// translated into the study language
	NeedsReverse bool
}

// ReadFile reads entries from a batch file.
// Supported line formats:
//   - phrase only: "bună ziua" (translated by the backend)
//   - with translation: "bună ziua = добрый день" (no lookup needed)
//   - translation only: "= добрый день" (reverse translated into the study language)
//
// Blank lines and lines starting with '#' are ignored.
func ReadFile(filename string) ([]Entry, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}
	defer f.Close()

	entries, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}
	return entries, nil
}

// Read parses entries from r
func Read(r io.Reader) ([]Entry, error) {
	var entries []Entry

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if entry, ok := ParseLine(scanner.Text()); ok {
			entries = append(entries, entry)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

// ParseLine parses a single batch line. ok is false for lines that carry no
// phrase.
func ParseLine(line string) (Entry, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return Entry{}, false
	}

	phrase, translation, found := strings.Cut(line, "=")
	if !found {
		return Entry{Phrase: line}, true
	}

	phrase = strings.TrimSpace(phrase)
	translation = strings.TrimSpace(translation)

	switch {
	case phrase == "" && translation != "":
		return Entry{Translation: translation, NeedsReverse: true}, true
	case phrase != "" && translation != "":
		return Entry{Phrase: phrase, Translation: translation}, true
	case phrase != "":
		// "phrase =" is treated as a bare phrase
		return Entry{Phrase: phrase}, true
	default:
		return Entry{}, false
	}
}

// FromArgs turns command line arguments into entries
func FromArgs(args []string) []Entry {
	var entries []Entry
	for _, arg := range args {
		if entry, ok := ParseLine(arg); ok {
			entries = append(entries, entry)
		}
	}
	return entries
}

// Dedupe drops repeated entries, keeping the first occurrence of each in
// its original position
func Dedupe(entries []Entry) []Entry {
	seen := make(map[Entry]bool, len(entries))
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if seen[e] {
			continue
		}
		seen[e] = true
		out = append(out, e)
	}
	return out
}
