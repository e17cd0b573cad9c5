package anki

import (
	"archive/zip"
	"database/sql"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewAPKGGenerator(t *testing.T) {
	gen := NewAPKGGenerator("Test Deck")

	if gen == nil {
		t.Fatal("NewAPKGGenerator returned nil")
	}

	if gen.deckName != "Test Deck" {
		t.Errorf("Expected deck name 'Test Deck', got '%s'", gen.deckName)
	}

	if len(gen.cards) != 0 {
		t.Errorf("Expected empty cards slice, got %d cards", len(gen.cards))
	}

	if gen.modelID == gen.deckID {
		t.Error("Model and deck IDs must differ")
	}
}

func TestNoteGUIDStable(t *testing.T) {
	a := noteGUID(Card{Phrase: "vineri", Translation: "пятница"})
	b := noteGUID(Card{Phrase: "vineri", Translation: "пятница", Known: true})
	c := noteGUID(Card{Phrase: "vineri", Translation: "friday"})

	if a != b {
		t.Error("GUID must not depend on progress")
	}
	if a == c {
		t.Error("GUID must depend on the translation")
	}
	if !strings.HasPrefix(a, "tx_") {
		t.Errorf("Unexpected GUID %q", a)
	}
}

func TestGenerateAPKG(t *testing.T) {
	tempDir := t.TempDir()

	audioFile := filepath.Join(tempDir, "audio", "vineri_ro.mp3")
	os.MkdirAll(filepath.Dir(audioFile), 0755)
	if err := os.WriteFile(audioFile, []byte("audio data"), 0644); err != nil {
		t.Fatal(err)
	}

	gen := NewGenerator(nil)
	gen.AddCard(Card{
		Phrase:      "vineri",
		Translation: "пятница",
		IPA:         "vineri",
		Phonetic:    "винери",
		AudioFile:   audioFile,
		Category:    "days",
		Known:       true,
	})
	gen.AddCard(Card{Phrase: "cine", Translation: "кто", AudioFile: filepath.Join(tempDir, "missing.mp3")})

	outputPath := filepath.Join(tempDir, "deck.apkg")
	if err := gen.GenerateAPKG(outputPath, "Romanian"); err != nil {
		t.Fatalf("GenerateAPKG failed: %v", err)
	}

	reader, err := zip.OpenReader(outputPath)
	if err != nil {
		t.Fatalf("Failed to open APKG: %v", err)
	}
	defer reader.Close()

	files := make(map[string]*zip.File)
	for _, f := range reader.File {
		files[f.Name] = f
	}
	for _, name := range []string{"collection.anki2", "media", "0"} {
		if files[name] == nil {
			t.Errorf("APKG is missing %s", name)
		}
	}
	if len(files) != 3 {
		t.Errorf("Expected 3 members (missing media skipped), got %d", len(files))
	}

	mediaData := readZipMember(t, files["media"])
	var mapping map[string]string
	if err := json.Unmarshal(mediaData, &mapping); err != nil {
		t.Fatalf("Invalid media mapping: %v", err)
	}
	if mapping["0"] != "vineri_ro.mp3" {
		t.Errorf("Unexpected media mapping: %v", mapping)
	}

	// Open the collection with sqlite and check the notes
	dbPath := filepath.Join(tempDir, "collection.anki2")
	if err := os.WriteFile(dbPath, readZipMember(t, files["collection.anki2"]), 0644); err != nil {
		t.Fatal(err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("Failed to open collection: %v", err)
	}
	defer db.Close()

	var notes, cards int
	if err := db.QueryRow("SELECT COUNT(*) FROM notes").Scan(&notes); err != nil {
		t.Fatal(err)
	}
	if err := db.QueryRow("SELECT COUNT(*) FROM cards").Scan(&cards); err != nil {
		t.Fatal(err)
	}
	if notes != 2 || cards != 4 {
		t.Errorf("Expected 2 notes and 4 cards, got %d and %d", notes, cards)
	}

	var flds, tags string
	if err := db.QueryRow("SELECT flds, tags FROM notes WHERE sfld = ?", "vineri").Scan(&flds, &tags); err != nil {
		t.Fatalf("Note for vineri not found: %v", err)
	}
	fields := strings.Split(flds, "\x1f")
	if len(fields) != len(noteFields) {
		t.Fatalf("Expected %d fields, got %d", len(noteFields), len(fields))
	}
	if fields[1] != "пятница" || fields[3] != "винери" || fields[4] != "[sound:vineri_ro.mp3]" {
		t.Errorf("Unexpected fields: %q", fields)
	}
	if tags != " days known " {
		t.Errorf("Unexpected tags %q", tags)
	}

	if err := db.QueryRow("SELECT flds FROM notes WHERE sfld = ?", "cine").Scan(&flds); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(flds, "[sound:") {
		t.Error("Missing audio must not be referenced")
	}

	var models string
	if err := db.QueryRow("SELECT models FROM col").Scan(&models); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(models, "Transcriber Phrase") {
		t.Error("Note type not stored in collection")
	}
}

func readZipMember(t *testing.T, f *zip.File) []byte {
	t.Helper()

	rc, err := f.Open()
	if err != nil {
		t.Fatalf("Failed to open %s: %v", f.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", f.Name, err)
	}
	return data
}
