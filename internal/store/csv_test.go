package store

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/olegs18/transcriber/internal/record"
)

const wellFormed = `original,normalized,ipa,approx_phonetic,translation,lang,known,category,date_added,date_known
Bună ziua,bună ziua,bunə ziua,бунэ зиуа,добрый день,ru,false,greetings,2024-03-01,
Vinere,vineri,vineri,винери,пятница,ru,true,,2024-03-01,2024-03-05
"ce faci, bine?","ce faci, bine?",t͡ʃe faci bine?,че фачи бине?,"как дела, хорошо?",ru,false,,2024-03-02,
`

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cache.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}
	return path
}

func TestRoundTrip(t *testing.T) {
	path := writeFile(t, wellFormed)

	s, report, err := Load(path, Defaults{StudyLang: "ro"})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if report.Loaded != 3 || report.HasProblems() {
		t.Errorf("Unexpected report: %+v", report)
	}

	out := filepath.Join(t.TempDir(), "out.csv")
	if err := Save(s, out); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != wellFormed {
		t.Errorf("Round trip mismatch\nExpected:\n%s\nActual:\n%s", wellFormed, got)
	}
}

func TestRoundTripKeepsPadding(t *testing.T) {
	s := record.NewStore()
	s.Put(record.Record{
		Original:    "bună ziua ",
		Normalized:  "bună ziua",
		Translation: " добрый день",
		TargetLang:  "ru",
	})

	var buf bytes.Buffer
	if err := Write(&buf, s); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	got, _, err := Read(&buf, Defaults{})
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	rec, ok := got.Get(record.Key{Normalized: "bună ziua", TargetLang: "ru"})
	if !ok {
		t.Fatalf("Record missing after round trip: %v", got.Keys())
	}
	if rec.Original != "bună ziua " || rec.Translation != " добрый день" {
		t.Errorf("Padding lost: original=%q translation=%q", rec.Original, rec.Translation)
	}
}

func TestLoadFields(t *testing.T) {
	s, _, err := Load(writeFile(t, wellFormed), Defaults{StudyLang: "ro"})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	rec, ok := s.Get(record.Key{Normalized: "vineri", TargetLang: "ru"})
	if !ok {
		t.Fatal("vineri not loaded")
	}
	if rec.Original != "Vinere" || rec.Translation != "пятница" || !rec.Known {
		t.Errorf("Unexpected record: %+v", rec)
	}
	if rec.StudyLang != "ro" {
		t.Errorf("StudyLang = %q, want ro", rec.StudyLang)
	}
	if rec.DateKnown.String() != "2024-03-05" {
		t.Errorf("DateKnown = %q", rec.DateKnown)
	}

	keys := s.Keys()
	if keys[0].Normalized != "bună ziua" || keys[2].Normalized != "ce faci, bine?" {
		t.Errorf("File order not preserved: %v", keys)
	}
}

func TestLoadMissingFile(t *testing.T) {
	s, report, err := Load(filepath.Join(t.TempDir(), "nope.csv"), Defaults{})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.Len() != 0 || report.Rows != 0 {
		t.Errorf("Expected empty store, got %d records", s.Len())
	}

	_, _, err = LoadExisting(filepath.Join(t.TempDir(), "nope.csv"), Defaults{})
	if !errors.Is(err, ErrNoSession) {
		t.Errorf("Expected ErrNoSession, got %v", err)
	}
}

func TestLoadEmptyFile(t *testing.T) {
	s, _, err := Load(writeFile(t, ""), Defaults{})
	if err != nil || s.Len() != 0 {
		t.Errorf("Load empty = %d records, %v", s.Len(), err)
	}
}

func TestLoadLegacyColumns(t *testing.T) {
	// Layout written before category and dates existed
	content := `original,normalized,ipa,ru_phonetic,translation,lang,known
Vinere,vineri,vineri,винери,пятница,ru,✅
cine,cine,t͡ʃine,чине,кто,ru,❌
joi,joi,joi,жой,четверг,ru,
`
	s, report, err := Load(writeFile(t, content), Defaults{StudyLang: "ro"})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.Len() != 3 {
		t.Fatalf("Expected 3 records, got %d", s.Len())
	}
	if len(report.Legacy) != 1 || report.Legacy[0] != "ru_phonetic" {
		t.Errorf("Legacy = %v", report.Legacy)
	}

	vineri, _ := s.Get(record.Key{Normalized: "vineri", TargetLang: "ru"})
	if vineri.ApproxPhonetic != "винери" || !vineri.Known {
		t.Errorf("Unexpected record: %+v", vineri)
	}

	joi, _ := s.Get(record.Key{Normalized: "joi", TargetLang: "ru"})
	if joi.Known || joi.Category != "" || !joi.DateAdded.IsZero() || !joi.DateKnown.IsZero() {
		t.Errorf("Missing columns not back-filled: %+v", joi)
	}
}

func TestLoadOldestLayout(t *testing.T) {
	// Neither normalized nor lang existed in the first version
	content := `original,ipa,ru_phonetic,translation
Vinere,vineri,винери,пятница
`
	normalize := func(s string) string {
		if strings.EqualFold(s, "vinere") {
			return "vineri"
		}
		return strings.ToLower(s)
	}
	s, _, err := Load(writeFile(t, content), Defaults{StudyLang: "ro", TargetLang: "ru", Normalize: normalize})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !s.Has(record.Key{Normalized: "vineri", TargetLang: "ru"}) {
		t.Errorf("Expected derived key, got %v", s.Keys())
	}
}

func TestLoadKnownSpellings(t *testing.T) {
	tests := []struct {
		value   string
		want    bool
		wantBad int
	}{
		{"true", true, 0},
		{"True", true, 0},
		{"1", true, 0},
		{"yes", true, 0},
		{"✅", true, 0},
		{"false", false, 0},
		{"0", false, 0},
		{"no", false, 0},
		{"❌", false, 0},
		{"", false, 0},
		{"maybe", false, 1},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			content := "normalized,lang,known\nvineri,ru," + tt.value + "\n"
			s, report, err := Read(strings.NewReader(content), Defaults{})
			if err != nil {
				t.Fatalf("Read failed: %v", err)
			}
			rec, _ := s.Get(record.Key{Normalized: "vineri", TargetLang: "ru"})
			if rec.Known != tt.want {
				t.Errorf("known(%q) = %v, want %v", tt.value, rec.Known, tt.want)
			}
			if report.BadKnown != tt.wantBad {
				t.Errorf("BadKnown = %d, want %d", report.BadKnown, tt.wantBad)
			}
		})
	}
}

func TestLoadSkipsMalformedRows(t *testing.T) {
	content := `original,normalized,ipa,approx_phonetic,translation,lang,known,category,date_added,date_known
,,x,x,x,ru,false,,,
cine,cine,t͡ʃine,чине,кто,,false,,,
joi,joi,joi,жой,четверг,ru,false,,03/01/2024,not-a-date
short,short
`
	s, report, err := Read(strings.NewReader(content), Defaults{})
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	if report.Rows != 4 {
		t.Errorf("Rows = %d, want 4", report.Rows)
	}
	if report.Skipped != 3 {
		t.Errorf("Skipped = %d, want 3", report.Skipped)
	}
	if report.BlankedDates != 2 {
		t.Errorf("BlankedDates = %d, want 2", report.BlankedDates)
	}
	if s.Len() != 1 {
		t.Fatalf("Expected 1 record, got %d", s.Len())
	}

	joi, _ := s.Get(record.Key{Normalized: "joi", TargetLang: "ru"})
	if !joi.DateAdded.IsZero() || !joi.DateKnown.IsZero() {
		t.Errorf("Bad dates not blanked: %+v", joi)
	}
}

func TestLoadDuplicateKeysLastWins(t *testing.T) {
	content := `original,normalized,translation,lang
Vinere,vineri,пятница,ru
vineri,vineri,в пятницу,ru
`
	s, report, err := Read(strings.NewReader(content), Defaults{})
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if s.Len() != 1 || report.Duplicates != 1 {
		t.Fatalf("Len=%d Duplicates=%d", s.Len(), report.Duplicates)
	}
	rec, _ := s.Get(record.Key{Normalized: "vineri", TargetLang: "ru"})
	if rec.Translation != "в пятницу" {
		t.Errorf("Expected last row to win, got %q", rec.Translation)
	}
}

func TestLoadRejectsUnknownLayout(t *testing.T) {
	if _, _, err := Read(strings.NewReader("foo,bar\n1,2\n"), Defaults{}); err == nil {
		t.Error("Expected error for file without text columns")
	}
}

func TestSaveReplacesFile(t *testing.T) {
	path := writeFile(t, wellFormed)

	s := record.NewStore()
	s.Put(record.Record{Original: "joi", Normalized: "joi", TargetLang: "ru", Translation: "четверг"})

	if err := Save(s, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, _, err := Load(path, Defaults{})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Len() != 1 {
		t.Errorf("Expected file to be replaced wholesale, got %d records", loaded.Len())
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("Expected no temp files, found %d entries", len(entries))
	}
}

func TestSaveCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions", "nested", "s.csv")
	if err := Save(record.NewStore(), path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(content)) != strings.Join(Header, ",") {
		t.Errorf("Unexpected content %q", content)
	}
}

func TestSaveIOError(t *testing.T) {
	// A regular file where a directory is expected
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0644); err != nil {
		t.Fatal(err)
	}

	if err := Save(record.NewStore(), filepath.Join(blocker, "cache.csv")); err == nil {
		t.Error("Expected error when directory cannot be created")
	}
}
