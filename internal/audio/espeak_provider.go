package audio

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// ESpeakProvider implements Provider interface for espeak-ng
type ESpeakProvider struct {
	espeak *ESpeak
}

// NewESpeakProvider creates a new espeak-ng provider
func NewESpeakProvider(config *ESpeakConfig) (Provider, error) {
	espeak, err := New(config)
	if err != nil {
		return nil, err
	}

	return &ESpeakProvider{espeak: espeak}, nil
}

// GenerateAudio generates audio using espeak-ng
func (p *ESpeakProvider) GenerateAudio(ctx context.Context, text, lang, outputFile string) error {
	if err := ValidateText(text); err != nil {
		return err
	}

	// Determine format from output file extension
	switch strings.ToLower(filepath.Ext(outputFile)) {
	case ".mp3":
		return p.espeak.GenerateMP3(ctx, text, lang, outputFile)
	case ".wav":
		return p.espeak.GenerateWAV(ctx, text, lang, outputFile)
	default:
		return fmt.Errorf("unsupported audio format: %s", outputFile)
	}
}

// Name returns the provider name
func (p *ESpeakProvider) Name() string {
	return "espeak-ng"
}

// Identity includes the voice settings
func (p *ESpeakProvider) Identity() string {
	c := p.espeak.config
	return fmt.Sprintf("espeak-ng:%s:%d:%d:%d:%d", c.Voice, c.Speed, c.Pitch, c.Amplitude, c.WordGap)
}

// IsAvailable checks if espeak-ng is installed
func (p *ESpeakProvider) IsAvailable() error {
	return checkESpeakInstalled()
}
