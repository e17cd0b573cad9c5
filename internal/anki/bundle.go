package anki

import (
	"archive/zip"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/olegs18/transcriber/internal/audio"
)

// ComboGap is the silence between the phrase and its translation in a
// combo clip
const ComboGap = 500 * time.Millisecond

// BundleEntry is one phrase of an audio bundle. TranslationClip is only
// used when the bundle is built with translations.
type BundleEntry struct {
	PhraseClip      string
	TranslationClip string
}

// Bundle collects phrase clips into a zip archive. With translations, each
// entry also gets a combo clip: phrase, silence, translation.
type Bundle struct {
	mixer           audio.Mixer
	workDir         string
	withTranslation bool
	gap             time.Duration
	entries         []BundleEntry
}

// NewBundle creates a bundle. Combo clips are rendered into workDir.
func NewBundle(mixer audio.Mixer, workDir string, withTranslation bool) *Bundle {
	return &Bundle{
		mixer:           mixer,
		workDir:         workDir,
		withTranslation: withTranslation,
		gap:             ComboGap,
	}
}

// Add adds an entry to the bundle
func (b *Bundle) Add(entry BundleEntry) {
	b.entries = append(b.entries, entry)
}

// Len returns the number of entries
func (b *Bundle) Len() int {
	return len(b.entries)
}

// comboName turns vineri_ro.mp3 into vineri_combo.mp3
func comboName(phraseClip string) string {
	base := filepath.Base(phraseClip)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if i := strings.LastIndex(stem, "_"); i > 0 {
		stem = stem[:i]
	}
	return stem + "_combo" + ext
}

// Write renders the combo clips and writes the archive to outputPath. It
// returns the number of files in the archive.
func (b *Bundle) Write(ctx context.Context, outputPath string) (int, error) {
	type member struct{ path, name string }
	var members []member

	for _, e := range b.entries {
		members = append(members, member{e.PhraseClip, filepath.Base(e.PhraseClip)})

		if !b.withTranslation || e.TranslationClip == "" {
			continue
		}
		if b.mixer == nil {
			return 0, fmt.Errorf("no mixer configured for combo clips")
		}

		name := comboName(e.PhraseClip)
		combo := filepath.Join(b.workDir, name)
		if err := b.mixer.Concat(ctx, []string{e.PhraseClip, e.TranslationClip}, b.gap, combo); err != nil {
			return 0, fmt.Errorf("failed to mix %s: %w", name, err)
		}
		members = append(members, member{combo, name})
	}

	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return 0, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	zipFile, err := os.Create(outputPath)
	if err != nil {
		return 0, fmt.Errorf("failed to create zip file: %w", err)
	}
	defer zipFile.Close()

	archive := zip.NewWriter(zipFile)
	seen := make(map[string]bool, len(members))
	for _, m := range members {
		if seen[m.name] {
			continue
		}
		seen[m.name] = true
		if err := addFileToZip(archive, m.path, m.name); err != nil {
			archive.Close()
			return 0, fmt.Errorf("failed to add %s: %w", m.name, err)
		}
	}
	if err := archive.Close(); err != nil {
		return 0, fmt.Errorf("failed to finish zip file: %w", err)
	}

	return len(seen), nil
}
