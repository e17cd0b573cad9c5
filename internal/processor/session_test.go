package processor

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/olegs18/transcriber/internal/batch"
	"github.com/olegs18/transcriber/internal/record"
	"github.com/olegs18/transcriber/internal/similar"
	"github.com/olegs18/transcriber/internal/testutil"
)

func (f *fixture) process(t *testing.T, phrases ...string) []record.Record {
	t.Helper()
	result, err := f.p.Process(context.Background(), batch.FromArgs(phrases))
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	return result.Records
}

func TestSaveSessionAppendScenario(t *testing.T) {
	f := newFixture(t)

	first, err := f.p.SaveSession(f.process(t, "unu", "doi", "trei"), "", false)
	if err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}
	if first != "session_20240310_120000" {
		t.Errorf("Unexpected session name %s", first)
	}

	second, err := f.p.SaveSession(f.process(t, "trei", "patru", "cinci"), "", false)
	if err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}
	if second != first {
		t.Errorf("Expected append to %s, wrote %s", first, second)
	}

	records, err := f.p.Records(first)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 5 {
		t.Errorf("Expected 5 records, got %d", len(records))
	}
}

func TestSaveSessionStartNew(t *testing.T) {
	f := newFixture(t)

	first, err := f.p.SaveSession(f.process(t, "unu"), "", true)
	if err != nil {
		t.Fatal(err)
	}
	second, err := f.p.SaveSession(f.process(t, "doi"), "", true)
	if err != nil {
		t.Fatal(err)
	}
	if first == second {
		t.Fatal("StartNew reused the session")
	}

	sessions, err := f.p.Sessions().List()
	if err != nil || len(sessions) != 2 {
		t.Errorf("Expected 2 sessions, got %d (%v)", len(sessions), err)
	}
}

func TestSaveSessionMissingName(t *testing.T) {
	f := newFixture(t)

	if _, err := f.p.SaveSession(f.process(t, "unu"), "session_19990101_000000", false); err == nil {
		t.Error("Expected error appending to a missing session")
	}
}

func TestSaveSessionEmpty(t *testing.T) {
	f := newFixture(t)

	name, err := f.p.SaveSession(nil, "", false)
	if err != nil || name != "" {
		t.Errorf("SaveSession(nil) = %q, %v", name, err)
	}
}

func TestMark(t *testing.T) {
	f := newFixture(t)
	name, err := f.p.SaveSession(f.process(t, "vineri", "joi"), "", false)
	if err != nil {
		t.Fatal(err)
	}

	// A new run, as the mark command is
	p := f.build(t)
	if err := p.Mark("Vinere", true, ""); err != nil {
		t.Fatalf("Mark failed: %v", err)
	}

	cached, _ := f.loadCache(t).Get(key("vineri"))
	if !cached.Known || cached.DateKnown.String() != "2024-03-10" {
		t.Errorf("Cache not updated: %+v", cached)
	}

	records, err := f.build(t).Records(name)
	if err != nil {
		t.Fatal(err)
	}
	for _, rec := range records {
		if rec.Normalized == "vineri" && !rec.Known {
			t.Error("Session not updated")
		}
		if rec.Normalized == "joi" && rec.Known {
			t.Error("Unrelated record marked")
		}
	}

	if err := p.Mark("vineri", false, name); err != nil {
		t.Fatal(err)
	}
	cached, _ = f.loadCache(t).Get(key("vineri"))
	if cached.Known || !cached.DateKnown.IsZero() {
		t.Errorf("Unknown must clear the status: %+v", cached)
	}
}

func TestMarkUnknownPhrase(t *testing.T) {
	f := newFixture(t)
	f.process(t, "vineri")

	if err := f.p.Mark("sâmbătă", true, ""); err == nil {
		t.Error("Expected error for a phrase that was never processed")
	}
}

func TestShow(t *testing.T) {
	f := newFixture(t)
	f.translator.Translations = map[string]string{"vineri": "пятница", "joi": "четверг"}
	f.process(t, "vineri", "joi")
	if err := f.p.Mark("joi", true, ""); err != nil {
		t.Fatal(err)
	}

	f.out.Reset()
	if err := f.p.Show(ShowOptions{}); err != nil {
		t.Fatalf("Show failed: %v", err)
	}
	out := f.out.String()
	if !strings.Contains(out, "Progress: 1/2 known (50%)") {
		t.Errorf("Missing progress line:\n%s", out)
	}
	if !strings.Contains(out, "винери") || !strings.Contains(out, "пятница") {
		t.Errorf("Missing record line:\n%s", out)
	}

	f.out.Reset()
	if err := f.p.Show(ShowOptions{Filter: "ПЯТ"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(f.out.String(), "cache: 1 of 2 records") {
		t.Errorf("Filter not applied:\n%s", f.out.String())
	}

	f.out.Reset()
	if err := f.p.Show(ShowOptions{UnknownOnly: true}); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(f.out.String(), "четверг") {
		t.Errorf("Known record shown with UnknownOnly:\n%s", f.out.String())
	}
}

func TestListSessions(t *testing.T) {
	f := newFixture(t)

	if err := f.p.ListSessions(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(f.out.String(), "No sessions in") {
		t.Errorf("Unexpected output %q", f.out.String())
	}

	if _, err := f.p.SaveSession(f.process(t, "unu", "doi"), "", false); err != nil {
		t.Fatal(err)
	}
	f.out.Reset()
	if err := f.p.ListSessions(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(f.out.String(), "session_20240310_120000") || !strings.Contains(f.out.String(), "2 records") {
		t.Errorf("Unexpected listing %q", f.out.String())
	}
}

func TestSimilar(t *testing.T) {
	f := newFixture(t)
	f.translator.Translations = map[string]string{"vineri": "пятница", "vinerea": "пятница"}
	f.process(t, "vineri", "vinerea")

	f.out.Reset()
	suggestions, err := f.p.Similar(similar.New())
	if err != nil {
		t.Fatal(err)
	}
	if len(suggestions) != 1 {
		t.Fatalf("Expected 1 suggestion, got %+v", suggestions)
	}
	if !strings.Contains(f.out.String(), "vinerea: vineri") {
		t.Errorf("Missing table hint:\n%s", f.out.String())
	}
}

func TestSimilarKnownTableEntry(t *testing.T) {
	f := newFixture(t)
	testutil.CreateRecordFile(t, f.options.CachePath,
		"vineri,vineri,vineri,винери,пятница,ru,false,,2024-01-01,",
		"vinere,vinere,vinere,винере,пятница,ru,false,,2023-12-01,")

	f.out.Reset()
	suggestions, err := f.p.Similar(similar.New())
	if err != nil {
		t.Fatal(err)
	}
	if len(suggestions) != 1 || suggestions[0].From != "vinere" {
		t.Fatalf("Unexpected suggestions %+v", suggestions)
	}

	out := f.out.String()
	if !strings.Contains(out, "Already in the normalization table") || !strings.Contains(out, "  vinere -> vineri\n") {
		t.Errorf("Existing table entry not reported:\n%s", out)
	}
	if strings.Contains(out, "  vinere: vineri") {
		t.Errorf("Existing table entry proposed again:\n%s", out)
	}
}

func TestRecordsMissingSession(t *testing.T) {
	f := newFixture(t)

	if _, err := f.p.Records(filepath.Base("session_19990101_000000")); err == nil {
		t.Error("Expected error for missing session")
	}
}
