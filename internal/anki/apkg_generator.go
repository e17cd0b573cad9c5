package anki

import (
	"archive/zip"
	"crypto/sha1"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Field order of the note type
var noteFields = []string{"Phrase", "Translation", "IPA", "Phonetic", "Audio", "Category"}

// APKGGenerator creates Anki package files (.apkg)
type APKGGenerator struct {
	deckName   string
	deckID     int64
	modelID    int64
	cards      []Card
	mediaFiles map[string]int // maps media filename to media number
	now        func() time.Time
}

// NewAPKGGenerator creates a new APKG generator
func NewAPKGGenerator(deckName string) *APKGGenerator {
	now := time.Now().UnixMilli()
	return &APKGGenerator{
		deckName:   deckName,
		deckID:     now,
		modelID:    now + 1,
		cards:      make([]Card, 0),
		mediaFiles: make(map[string]int),
		now:        time.Now,
	}
}

// AddCard adds a card to the generator
func (g *APKGGenerator) AddCard(card Card) {
	g.cards = append(g.cards, card)
}

// GenerateAPKG creates an .apkg file
func (g *APKGGenerator) GenerateAPKG(outputPath string) error {
	tempDir, err := os.MkdirTemp("", "anki_export_*")
	if err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tempDir)

	// Media first: the note fields only reference media that was copied
	if err := g.copyMediaFiles(tempDir); err != nil {
		return fmt.Errorf("failed to copy media files: %w", err)
	}

	if err := g.createMediaMapping(tempDir); err != nil {
		return fmt.Errorf("failed to create media mapping: %w", err)
	}

	dbPath := filepath.Join(tempDir, "collection.anki2")
	if err := g.createDatabase(dbPath); err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}

	if err := g.createZipPackage(tempDir, outputPath); err != nil {
		return fmt.Errorf("failed to create zip package: %w", err)
	}

	return nil
}

// createDatabase creates the Anki SQLite database
func (g *APKGGenerator) createDatabase(dbPath string) error {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := g.createTables(db); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	if err := g.insertCollection(db); err != nil {
		return fmt.Errorf("failed to insert collection: %w", err)
	}

	if err := g.insertNotesAndCards(db); err != nil {
		return fmt.Errorf("failed to insert notes and cards: %w", err)
	}

	return nil
}

// createTables creates the tables of the Anki 2.1 collection schema (ver 11)
func (g *APKGGenerator) createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE col (
			id integer PRIMARY KEY,
			crt integer NOT NULL,
			mod integer NOT NULL,
			scm integer NOT NULL,
			ver integer NOT NULL,
			dty integer NOT NULL,
			usn integer NOT NULL,
			ls integer NOT NULL,
			conf text NOT NULL,
			models text NOT NULL,
			decks text NOT NULL,
			dconf text NOT NULL,
			tags text NOT NULL
		)`,
		`CREATE TABLE notes (
			id integer PRIMARY KEY,
			guid text NOT NULL,
			mid integer NOT NULL,
			mod integer NOT NULL,
			usn integer NOT NULL,
			tags text NOT NULL,
			flds text NOT NULL,
			sfld text NOT NULL,
			csum integer NOT NULL,
			flags integer NOT NULL,
			data text NOT NULL
		)`,
		`CREATE TABLE cards (
			id integer PRIMARY KEY,
			nid integer NOT NULL,
			did integer NOT NULL,
			ord integer NOT NULL,
			mod integer NOT NULL,
			usn integer NOT NULL,
			type integer NOT NULL,
			queue integer NOT NULL,
			due integer NOT NULL,
			ivl integer NOT NULL,
			factor integer NOT NULL,
			reps integer NOT NULL,
			lapses integer NOT NULL,
			left integer NOT NULL,
			odue integer NOT NULL,
			odid integer NOT NULL,
			flags integer NOT NULL,
			data text NOT NULL
		)`,
		`CREATE TABLE revlog (
			id integer PRIMARY KEY,
			cid integer NOT NULL,
			usn integer NOT NULL,
			ease integer NOT NULL,
			ivl integer NOT NULL,
			lastIvl integer NOT NULL,
			factor integer NOT NULL,
			time integer NOT NULL,
			type integer NOT NULL
		)`,
		`CREATE TABLE graves (
			usn integer NOT NULL,
			oid integer NOT NULL,
			type integer NOT NULL
		)`,
		`CREATE INDEX ix_notes_csum ON notes (csum)`,
		`CREATE INDEX ix_notes_usn ON notes (usn)`,
		`CREATE INDEX ix_cards_usn ON cards (usn)`,
		`CREATE INDEX ix_cards_nid ON cards (nid)`,
		`CREATE INDEX ix_cards_sched ON cards (did, queue, due)`,
		`CREATE INDEX ix_revlog_usn ON revlog (usn)`,
		`CREATE INDEX ix_revlog_cid ON revlog (cid)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}

	return nil
}

func deckConfig(id int64, name, desc string, now int64) map[string]interface{} {
	return map[string]interface{}{
		"id":               id,
		"name":             name,
		"mod":              now,
		"desc":             desc,
		"collapsed":        false,
		"dyn":              0,
		"conf":             1,
		"usn":              0,
		"newToday":         []int{0, 0},
		"revToday":         []int{0, 0},
		"lrnToday":         []int{0, 0},
		"timeToday":        []int{0, 0},
		"browserCollapsed": false,
		"extendNew":        10,
		"extendRev":        50,
	}
}

// insertCollection inserts the collection metadata
func (g *APKGGenerator) insertCollection(db *sql.DB) error {
	now := g.now().Unix()

	decks := map[string]interface{}{
		"1":                             deckConfig(1, "Default", "", now),
		strconv.FormatInt(g.deckID, 10): deckConfig(g.deckID, g.deckName, "Phrases with transcriptions created by transcriber", now),
	}
	decksJSON, err := json.Marshal(decks)
	if err != nil {
		return err
	}

	models := map[string]interface{}{
		strconv.FormatInt(g.modelID, 10): g.createNoteTypeConfig(),
	}
	modelsJSON, err := json.Marshal(models)
	if err != nil {
		return err
	}

	conf := map[string]interface{}{
		"nextPos":       1,
		"estTimes":      true,
		"activeDecks":   []int64{1},
		"sortType":      "noteFld",
		"sortBackwards": false,
		"addToCur":      true,
		"curDeck":       1,
		"newSpread":     0,
		"dueCounts":     true,
		"collapseTime":  1200,
		"timeLim":       0,
		"schedVer":      1,
		"curModel":      strconv.FormatInt(g.modelID, 10),
		"dayLearnFirst": false,
	}
	confJSON, err := json.Marshal(conf)
	if err != nil {
		return err
	}

	dconf := map[string]interface{}{
		"1": map[string]interface{}{
			"id":   1,
			"name": "Default",
			"dyn":  0,
			"new": map[string]interface{}{
				"delays":        []int{1, 10},
				"ints":          []int{1, 4, 7},
				"initialFactor": 2500,
				"perDay":        20,
				"order":         1,
				"bury":          true,
				"separate":      true,
			},
			"lapse": map[string]interface{}{
				"delays":      []int{10},
				"mult":        0,
				"minInt":      1,
				"leechFails":  8,
				"leechAction": 0,
			},
			"rev": map[string]interface{}{
				"perDay":   100,
				"ease4":    1.3,
				"fuzz":     0.05,
				"maxIvl":   36500,
				"ivlFct":   1,
				"bury":     true,
				"minSpace": 1,
			},
			"timer":    0,
			"maxTaken": 60,
			"usn":      0,
			"mod":      now,
			"autoplay": true,
			"replayq":  true,
		},
	}
	dconfJSON, err := json.Marshal(dconf)
	if err != nil {
		return err
	}

	query := `INSERT INTO col VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = db.Exec(query,
		1,        // id
		now,      // crt
		now*1000, // mod
		now*1000, // scm
		11,       // ver
		0,        // dty
		0,        // usn
		0,        // ls
		string(confJSON),
		string(modelsJSON),
		string(decksJSON),
		string(dconfJSON),
		"{}", // tags
	)
	return err
}

// createNoteTypeConfig creates the note type configuration
func (g *APKGGenerator) createNoteTypeConfig() map[string]interface{} {
	flds := make([]map[string]interface{}, 0, len(noteFields))
	for i, name := range noteFields {
		size := 20
		if name == "IPA" || name == "Phonetic" || name == "Category" {
			size = 16
		}
		flds = append(flds, map[string]interface{}{
			"name":   name,
			"ord":    i,
			"sticky": false,
			"rtl":    false,
			"font":   "Arial",
			"size":   size,
			"media":  []string{},
		})
	}

	return map[string]interface{}{
		"id":    g.modelID,
		"name":  "Transcriber Phrase (Basic + Reverse)",
		"type":  0,
		"mod":   g.now().Unix(),
		"usn":   -1,
		"sortf": 0,
		"did":   g.deckID,
		"req":   [][]interface{}{{0, "all", []int{0}}, {1, "all", []int{1}}},
		"vers":  []int{},
		"tags":  []string{},
		"latexPre": `\documentclass[12pt]{article}
\special{papersize=3in,5in}
\usepackage[utf8]{inputenc}
\usepackage{amssymb,amsmath}
\pagestyle{empty}
\setlength{\parindent}{0in}
\begin{document}`,
		"latexPost": `\end{document}`,
		"flds":      flds,
		"tmpls": []map[string]interface{}{
			{
				"name":  "Listen and Read",
				"ord":   0,
				"qfmt":  frontTemplate,
				"afmt":  backTemplate,
				"did":   nil,
				"bqfmt": "",
				"bafmt": "",
			},
			{
				"name":  "Recall",
				"ord":   1,
				"qfmt":  reverseFrontTemplate,
				"afmt":  reverseBackTemplate,
				"did":   nil,
				"bqfmt": "",
				"bafmt": "",
			},
		},
		"css": cardCSS,
	}
}

const frontTemplate = `<div class="front">
<div class="phrase">{{Phrase}}</div>
{{#Audio}}<div class="audio">{{Audio}}</div>{{/Audio}}
</div>`

const backTemplate = `{{FrontSide}}

<hr id="answer">

<div class="back">
<div class="translation">{{Translation}}</div>
{{#IPA}}<div class="ipa">[{{IPA}}]</div>{{/IPA}}
{{#Phonetic}}<div class="phonetic">{{Phonetic}}</div>{{/Phonetic}}
{{#Category}}<div class="category">{{Category}}</div>{{/Category}}
</div>`

const reverseFrontTemplate = `<div class="front">
<div class="translation">{{Translation}}</div>
</div>`

const reverseBackTemplate = `{{FrontSide}}

<hr id="answer">

<div class="back">
<div class="phrase">{{Phrase}}</div>
{{#Phonetic}}<div class="phonetic">{{Phonetic}}</div>{{/Phonetic}}
{{#Audio}}<div class="audio">{{Audio}}</div>{{/Audio}}
</div>`

const cardCSS = `.card {
  font-family: Arial, sans-serif;
  font-size: 20px;
  text-align: center;
  color: #333;
  background-color: white;
}

.front, .back {
  padding: 20px;
}

.phrase {
  font-size: 32px;
  font-weight: bold;
  color: #1f4e79;
  margin: 20px 0;
}

.translation {
  font-size: 28px;
  font-weight: bold;
  color: #2c3e50;
  margin: 20px 0;
}

.ipa, .phonetic {
  font-size: 18px;
  color: #555;
  margin: 8px 0;
}

.category {
  font-size: 14px;
  color: #7f8c8d;
  margin-top: 20px;
  font-style: italic;
}

.audio {
  margin: 15px 0;
}

hr#answer {
  margin: 30px 0;
  border: 0;
  border-top: 1px solid #ecf0f1;
}`

// noteGUID is stable per phrase so that re-importing an export updates the
// existing notes instead of duplicating them
func noteGUID(card Card) string {
	sum := sha1.Sum([]byte(card.Phrase + "\x1f" + card.Translation))
	return "tx_" + hex.EncodeToString(sum[:8])
}

// fieldChecksum is the first 8 hex digits of the sha1 of the sort field
func fieldChecksum(s string) int64 {
	sum := sha1.Sum([]byte(s))
	v, _ := strconv.ParseInt(hex.EncodeToString(sum[:4]), 16, 64)
	return v
}

// insertNotesAndCards inserts all notes and cards into the database
func (g *APKGGenerator) insertNotesAndCards(db *sql.DB) error {
	now := g.now()

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	noteQuery := `INSERT INTO notes VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	cardQuery := `INSERT INTO cards VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	for i, card := range g.cards {
		// Leave space for 2 cards per note
		noteID := now.UnixMilli() + int64(i*3)

		translationText := card.Translation
		if translationText == "" {
			translationText = "Translation needed"
		}

		audioField := ""
		if card.AudioFile != "" {
			name := filepath.Base(card.AudioFile)
			if _, ok := g.mediaFiles[name]; ok {
				audioField = fmt.Sprintf("[sound:%s]", name)
			}
		}

		// Fields are separated by ASCII 31
		fields := strings.Join([]string{
			card.Phrase,
			translationText,
			card.IPA,
			card.Phonetic,
			audioField,
			card.Category,
		}, "\x1f")

		tags := ""
		if t := cardTags(card); len(t) > 0 {
			tags = " " + strings.Join(t, " ") + " "
		}

		_, err := tx.Exec(noteQuery,
			noteID,                     // id
			noteGUID(card),             // guid
			g.modelID,                  // mid
			now.Unix(),                 // mod
			-1,                         // usn
			tags,                       // tags
			fields,                     // flds
			card.Phrase,                // sfld
			fieldChecksum(card.Phrase), // csum
			0,                          // flags
			"",                         // data
		)
		if err != nil {
			return fmt.Errorf("failed to insert note: %w", err)
		}

		for ord := 0; ord < 2; ord++ {
			_, err = tx.Exec(cardQuery,
				noteID+1+int64(ord), // id
				noteID,              // nid
				g.deckID,            // did
				ord,                 // ord
				now.Unix(),          // mod
				-1,                  // usn
				0,                   // type (new)
				0,                   // queue (new)
				i*2+ord+1,           // due (position for new cards)
				0,                   // ivl
				0,                   // factor
				0,                   // reps
				0,                   // lapses
				0,                   // left
				0,                   // odue
				0,                   // odid
				0,                   // flags
				"",                  // data
			)
			if err != nil {
				return fmt.Errorf("failed to insert card %d: %w", ord, err)
			}
		}
	}

	return tx.Commit()
}

// copyMediaFiles copies media files under numeric names. Audio file names
// are already unique per phrase and language.
func (g *APKGGenerator) copyMediaFiles(tempDir string) error {
	for _, card := range g.cards {
		if card.AudioFile == "" || !fileExists(card.AudioFile) {
			continue
		}

		name := filepath.Base(card.AudioFile)
		if _, exists := g.mediaFiles[name]; exists {
			continue
		}

		num := len(g.mediaFiles)
		targetPath := filepath.Join(tempDir, strconv.Itoa(num))
		if err := copyFile(card.AudioFile, targetPath); err != nil {
			return fmt.Errorf("failed to copy audio file %s: %w", card.AudioFile, err)
		}
		g.mediaFiles[name] = num
	}

	return nil
}

// createMediaMapping creates the media mapping JSON file (number -> filename)
func (g *APKGGenerator) createMediaMapping(tempDir string) error {
	mapping := make(map[string]string, len(g.mediaFiles))
	for filename, num := range g.mediaFiles {
		mapping[strconv.Itoa(num)] = filename
	}

	data, err := json.Marshal(mapping)
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(tempDir, "media"), data, 0644)
}

// createZipPackage creates the final .apkg zip file
func (g *APKGGenerator) createZipPackage(tempDir, outputPath string) error {
	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	zipFile, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer zipFile.Close()

	archive := zip.NewWriter(zipFile)

	err = filepath.Walk(tempDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		relPath, err := filepath.Rel(tempDir, path)
		if err != nil {
			return err
		}

		return addFileToZip(archive, path, relPath)
	})
	if err != nil {
		archive.Close()
		return err
	}

	return archive.Close()
}

func addFileToZip(archive *zip.Writer, path, name string) error {
	writer, err := archive.Create(name)
	if err != nil {
		return err
	}

	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = io.Copy(writer, file)
	return err
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	dstFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer dstFile.Close()

	_, err = io.Copy(dstFile, srcFile)
	return err
}
