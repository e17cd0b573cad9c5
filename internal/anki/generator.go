package anki

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/olegs18/transcriber/internal/record"
)

// Card represents a single Anki flashcard
type Card struct {
	Phrase      string // The phrase in the study language
	Translation string
	IPA         string
	Phonetic    string // Approximate rendering in the target script
	AudioFile   string // Path to audio file
	Category    string
	Known       bool
}

// CardFromRecord builds a card for rec. audioFile may be empty.
func CardFromRecord(rec record.Record, audioFile string) Card {
	phrase := rec.Original
	if phrase == "" {
		phrase = rec.Normalized
	}
	return Card{
		Phrase:      phrase,
		Translation: rec.Translation,
		IPA:         rec.IPA,
		Phonetic:    rec.ApproxPhonetic,
		AudioFile:   audioFile,
		Category:    rec.Category,
		Known:       rec.Known,
	}
}

// GeneratorOptions configures the Anki export
type GeneratorOptions struct {
	OutputPath     string // Output CSV file path
	IncludeHeaders bool   // Include CSV headers
	SkipKnown      bool   // Leave out cards already marked known
}

// DefaultGeneratorOptions returns sensible defaults
func DefaultGeneratorOptions() *GeneratorOptions {
	return &GeneratorOptions{
		OutputPath:     "anki_import.csv",
		IncludeHeaders: true,
	}
}

// Generator creates Anki-compatible import files
type Generator struct {
	options *GeneratorOptions
	cards   []Card
}

// NewGenerator creates a new Anki generator
func NewGenerator(options *GeneratorOptions) *Generator {
	if options == nil {
		options = DefaultGeneratorOptions()
	}
	return &Generator{
		options: options,
		cards:   make([]Card, 0),
	}
}

// AddCard adds a card to the collection
func (g *Generator) AddCard(card Card) {
	if g.options.SkipKnown && card.Known {
		return
	}
	g.cards = append(g.cards, card)
}

// GetCards returns a slice of all cards for modification
func (g *Generator) GetCards() []Card {
	return g.cards
}

// GenerateCSV creates a CSV file for Anki import
func (g *Generator) GenerateCSV() error {
	if dir := filepath.Dir(g.options.OutputPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := os.Create(g.options.OutputPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	if g.options.IncludeHeaders {
		headers := []string{"Phrase", "Translation", "IPA", "Phonetic", "Audio", "Tags"}
		if err := writer.Write(headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for _, card := range g.cards {
		row := []string{
			card.Phrase,
			card.Translation,
			card.IPA,
			card.Phonetic,
			formatAudioField(card.AudioFile),
			strings.Join(cardTags(card), " "),
		}

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write card: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to write CSV file: %w", err)
	}
	return nil
}

// formatAudioField formats the audio file reference for Anki
func formatAudioField(audioFile string) string {
	if audioFile == "" {
		return ""
	}

	// Anki audio format: [sound:filename.mp3]
	return fmt.Sprintf("[sound:%s]", filepath.Base(audioFile))
}

// cardTags returns the Anki tags for card. Tags cannot contain spaces.
func cardTags(card Card) []string {
	var tags []string
	if card.Category != "" {
		tags = append(tags, strings.Join(strings.Fields(card.Category), "_"))
	}
	if card.Known {
		tags = append(tags, "known")
	}
	return tags
}

// GenerateAPKG creates a proper .apkg file for Anki import
func (g *Generator) GenerateAPKG(outputPath, deckName string) error {
	apkgGen := NewAPKGGenerator(deckName)

	for _, card := range g.cards {
		apkgGen.AddCard(card)
	}

	return apkgGen.GenerateAPKG(outputPath)
}

// Stats returns statistics about the card collection
func (g *Generator) Stats() (totalCards, withAudio, known int) {
	totalCards = len(g.cards)

	for _, card := range g.cards {
		if card.AudioFile != "" {
			withAudio++
		}
		if card.Known {
			known++
		}
	}

	return
}
