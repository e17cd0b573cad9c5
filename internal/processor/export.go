package processor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/olegs18/transcriber/internal"
	"github.com/olegs18/transcriber/internal/anki"
	"github.com/olegs18/transcriber/internal/audio"
	"github.com/olegs18/transcriber/internal/record"
	"github.com/olegs18/transcriber/internal/translation"
)

// ExportOptions selects the export formats. Empty paths are skipped.
type ExportOptions struct {
	Session         string // "" exports the global cache
	APKGPath        string
	CSVPath         string
	ZipPath         string
	DeckName        string
	WithTranslation bool // add combo clips to the zip
	SkipKnown       bool
}

// Export writes the records of a session (or the cache) as Anki decks and
// audio archives
func (p *Processor) Export(ctx context.Context, opts ExportOptions) error {
	if opts.APKGPath == "" && opts.CSVPath == "" && opts.ZipPath == "" {
		return fmt.Errorf("no export format selected")
	}

	records, err := p.Records(opts.Session)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("nothing to export")
	}

	gen := anki.NewGenerator(&anki.GeneratorOptions{
		OutputPath:     opts.CSVPath,
		IncludeHeaders: true,
		SkipKnown:      opts.SkipKnown,
	})
	bundle := anki.NewBundle(p.mixer, p.options.AudioDir, opts.WithTranslation)

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		if opts.SkipKnown && rec.Known {
			continue
		}

		clip := p.phraseClip(ctx, rec)
		gen.AddCard(anki.CardFromRecord(rec, clip))

		if opts.ZipPath == "" || clip == "" {
			continue
		}
		entry := anki.BundleEntry{PhraseClip: clip}
		if opts.WithTranslation {
			entry.TranslationClip = p.translationClip(ctx, rec)
		}
		bundle.Add(entry)
	}

	if opts.CSVPath != "" {
		if err := gen.GenerateCSV(); err != nil {
			return fmt.Errorf("failed to generate CSV: %w", err)
		}
		fmt.Fprintf(p.out, "Anki CSV written to %s\n", opts.CSVPath)
	}

	if opts.APKGPath != "" {
		deck := opts.DeckName
		if deck == "" {
			deck = "Transcriber " + translation.LanguageName(p.options.StudyLang)
		}
		if err := gen.GenerateAPKG(opts.APKGPath, deck); err != nil {
			return fmt.Errorf("failed to generate APKG: %w", err)
		}
		fmt.Fprintf(p.out, "Anki package written to %s\n", opts.APKGPath)
	}

	total, withAudio, known := gen.Stats()
	fmt.Fprintf(p.out, "  Exported %d cards (%d with audio, %d known)\n", total, withAudio, known)

	if opts.ZipPath != "" {
		if bundle.Len() == 0 {
			fmt.Fprintf(p.out, "  Warning: no audio clips available, %s not written\n", opts.ZipPath)
			return nil
		}
		n, err := bundle.Write(ctx, opts.ZipPath)
		if err != nil {
			return fmt.Errorf("failed to write audio archive: %w", err)
		}
		fmt.Fprintf(p.out, "Audio archive with %d files written to %s\n", n, opts.ZipPath)
	}

	return nil
}

// phraseClip returns the study language clip of rec, generating it when a
// speech backend is configured. Without one only existing clips are used.
func (p *Processor) phraseClip(ctx context.Context, rec record.Record) string {
	lang := rec.StudyLang
	if lang == "" {
		lang = p.options.StudyLang
	}
	return p.clip(ctx, rec.Normalized, lang, audio.FileName(rec.Normalized, lang, p.options.AudioFormat))
}

// translationClip returns the target language clip of the translation of
// rec. Error markers are never spoken.
func (p *Processor) translationClip(ctx context.Context, rec record.Record) string {
	if rec.Translation == "" || translation.IsSentinel(rec.Translation) {
		return ""
	}
	return p.clip(ctx, rec.Translation, rec.TargetLang, audio.FileName(rec.Normalized, rec.TargetLang, p.options.AudioFormat))
}

func (p *Processor) clip(ctx context.Context, text, lang, filename string) string {
	if p.audio != nil {
		path, err := p.audio.EnsureAudio(ctx, text, lang, filename)
		if err != nil {
			fmt.Fprintf(p.out, "  Warning: no audio for '%s': %v\n", text, err)
			return ""
		}
		return path
	}

	path := filepath.Join(p.options.AudioDir, filename)
	if _, err := os.Stat(path); err != nil {
		p.debugf("No audio at %s", path)
		return ""
	}
	return path
}

// DefaultExportPath returns a file name for an export of the named session
func DefaultExportPath(dir, session, ext string) string {
	base := "transcriber"
	if session != "" {
		base = internal.SanitizeFilename(session)
	}
	return filepath.Join(dir, base+"."+ext)
}
