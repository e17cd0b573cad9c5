package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/olegs18/transcriber/internal/record"
)

// SchemaVersion is the version of the column layout written by Save
const SchemaVersion = 2

// Header is the column layout written by Save
var Header = []string{
	"original", "normalized", "ipa", "approx_phonetic", "translation",
	"lang", "known", "category", "date_added", "date_known",
}

// legacy column names and their current equivalents
var columnAliases = map[string]string{
	"ru_phonetic": "approx_phonetic",
}

// ErrNoSession is returned by LoadExisting when the file does not exist
var ErrNoSession = errors.New("session not found")

// Defaults supplies values that are not stored per row
type Defaults struct {
	StudyLang  string
	TargetLang string // used only when the file has no lang column

	// Normalize derives the normalized column for files that predate it.
	// When nil, the original text is lowercased.
	Normalize func(string) string
}

// LoadReport describes what Load had to repair or skip
type LoadReport struct {
	Rows         int // data rows read
	Loaded       int // records in the resulting store
	Skipped      int // rows without normalized text or language
	Duplicates   int // rows whose key was already loaded (last one wins)
	BlankedDates int // unparseable dates that were cleared
	BadKnown     int // unrecognized known values read as false
	Legacy       []string
}

// HasProblems reports whether anything was skipped or repaired
func (r LoadReport) HasProblems() bool {
	return r.Skipped > 0 || r.BlankedDates > 0 || r.BadKnown > 0
}

// Load reads a record file. A missing file yields an empty store.
func Load(path string, defaults Defaults) (*record.Store, LoadReport, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return record.NewStore(), LoadReport{}, nil
		}
		return nil, LoadReport{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	s, report, err := Read(f, defaults)
	if err != nil {
		return nil, report, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return s, report, nil
}

// LoadExisting is like Load but fails with ErrNoSession when path is missing
func LoadExisting(path string, defaults Defaults) (*record.Store, LoadReport, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, LoadReport{}, fmt.Errorf("%w: %s", ErrNoSession, path)
	}
	return Load(path, defaults)
}

// Read parses records from CSV data. Columns are located by header name.
func Read(rd io.Reader, defaults Defaults) (*record.Store, LoadReport, error) {
	var report LoadReport
	s := record.NewStore()

	r := csv.NewReader(rd)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return s, report, nil
	}
	if err != nil {
		return nil, report, fmt.Errorf("failed to read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if alias, ok := columnAliases[name]; ok {
			report.Legacy = append(report.Legacy, name)
			name = alias
		}
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}

	if _, ok := cols["normalized"]; !ok {
		if _, ok := cols["original"]; !ok {
			return nil, report, fmt.Errorf("file has neither normalized nor original column")
		}
		report.Legacy = append(report.Legacy, "missing normalized")
	}
	_, hasLang := cols["lang"]

	normalize := defaults.Normalize
	if normalize == nil {
		normalize = func(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
	}

	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, report, fmt.Errorf("failed to read row: %w", err)
		}
		report.Rows++

		// Free text is kept verbatim; identity and status columns are trimmed
		raw := func(col string) string {
			i, ok := cols[col]
			if !ok || i >= len(row) {
				return ""
			}
			return row[i]
		}
		get := func(col string) string {
			return strings.TrimSpace(raw(col))
		}

		rec := record.Record{
			Original:       raw("original"),
			Normalized:     get("normalized"),
			IPA:            raw("ipa"),
			ApproxPhonetic: raw("approx_phonetic"),
			Translation:    raw("translation"),
			TargetLang:     get("lang"),
			StudyLang:      defaults.StudyLang,
			Category:       raw("category"),
		}

		if _, ok := cols["normalized"]; !ok {
			rec.Normalized = normalize(rec.Original)
		}
		if !hasLang {
			rec.TargetLang = defaults.TargetLang
		}
		if strings.TrimSpace(rec.Original) == "" {
			rec.Original = rec.Normalized
		}

		if !rec.Key().Valid() {
			report.Skipped++
			continue
		}

		known, ok := parseKnown(get("known"))
		if !ok {
			report.BadKnown++
		}
		rec.Known = known

		rec.DateAdded = parseDate(get("date_added"), &report)
		rec.DateKnown = parseDate(get("date_known"), &report)

		if s.Has(rec.Key()) {
			report.Duplicates++
		}
		s.Put(rec)
	}

	report.Loaded = s.Len()
	return s, report, nil
}

func parseDate(s string, report *LoadReport) record.Date {
	d, err := record.ParseDate(s)
	if err != nil {
		report.BlankedDates++
		return record.Date{}
	}
	return d
}

// parseKnown accepts the spellings found in files written by older
// versions and by hand. Empty means not known.
func parseKnown(s string) (known bool, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "✅":
		return true, true
	case "false", "0", "no", "❌", "":
		return false, true
	default:
		return false, false
	}
}

// Save writes every record of s to path, replacing the file as a whole
func Save(s *record.Store, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if err := Write(tmp, s); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// Write encodes s as CSV in store order
func Write(w io.Writer, s *record.Store) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Header); err != nil {
		return err
	}

	for _, rec := range s.Records() {
		row := []string{
			rec.Original,
			rec.Normalized,
			rec.IPA,
			rec.ApproxPhonetic,
			rec.Translation,
			rec.TargetLang,
			fmt.Sprintf("%t", rec.Known),
			rec.Category,
			rec.DateAdded.String(),
			rec.DateKnown.String(),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
