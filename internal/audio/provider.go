package audio

import (
	"context"
	"fmt"
	"io"
	"os"
)

// Provider defines the interface for text-to-speech providers
type Provider interface {
	// GenerateAudio speaks text in lang and saves it to the specified file
	GenerateAudio(ctx context.Context, text, lang, outputFile string) error

	// Name returns the provider name
	Name() string

	// IsAvailable checks if the provider is properly configured and available
	IsAvailable() error
}

// identifier is implemented by providers whose output depends on more than
// their name (model, voice, speed)
type identifier interface {
	Identity() string
}

// providerIdentity returns the string that goes into audio cache keys
func providerIdentity(p Provider) string {
	if id, ok := p.(identifier); ok {
		return id.Identity()
	}
	return p.Name()
}

// Config holds common configuration for audio providers
type Config struct {
	Provider     string // Provider name: "openai" or "espeak"
	Fallback     string // Optional fallback provider name
	OutputDir    string // Directory for output files
	OutputFormat string // Output format: "mp3" or "wav"

	// OpenAI-specific settings
	OpenAIKey         string
	OpenAIModel       string  // "tts-1", "tts-1-hd", or "gpt-4o-mini-tts"
	OpenAIVoice       string  // "alloy", "ash", "ballad", "coral", "echo", "fable", "onyx", "nova", "sage", "shimmer", "verse"
	OpenAISpeed       float64 // 0.25 to 4.0
	OpenAIInstruction string  // Voice instructions for gpt-4o-mini-tts; {language} is replaced

	// espeak-ng settings
	ESpeak *ESpeakConfig
}

// DefaultProviderConfig returns default configuration
func DefaultProviderConfig() *Config {
	return &Config{
		Provider:          "openai",
		OutputDir:         "./",
		OutputFormat:      "mp3",
		OpenAIModel:       "gpt-4o-mini-tts", // New model with voice instructions support
		OpenAIVoice:       "alloy",
		OpenAISpeed:       1.0,
		OpenAIInstruction: "You are speaking {language}. Pronounce the text with authentic {language} phonetics. Speak slowly and clearly for language learners.",
		ESpeak:            DefaultConfig(),
	}
}

// NewProvider creates the appropriate audio provider based on configuration.
// When a fallback is configured and can be created, the result is wrapped
// with it.
func NewProvider(config *Config) (Provider, error) {
	if config == nil {
		config = DefaultProviderConfig()
	}

	primary, err := newNamedProvider(config.Provider, config)
	if err != nil {
		return nil, err
	}

	if config.Fallback == "" || config.Fallback == config.Provider {
		return primary, nil
	}

	fallback, err := newNamedProvider(config.Fallback, config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: fallback audio provider %s unavailable: %v\n", config.Fallback, err)
		return primary, nil
	}
	return NewProviderWithFallback(primary, fallback), nil
}

func newNamedProvider(name string, config *Config) (Provider, error) {
	switch name {
	case "openai":
		if config.OpenAIKey == "" {
			return nil, fmt.Errorf("OpenAI API key is required")
		}
		return NewOpenAIProvider(config)

	case "espeak":
		return NewESpeakProvider(config.ESpeak)

	default:
		return nil, fmt.Errorf("unknown audio provider: %s", name)
	}
}

// ProviderWithFallback wraps a primary provider with a fallback option
type ProviderWithFallback struct {
	primary  Provider
	fallback Provider
	out      io.Writer
}

// NewProviderWithFallback creates a provider that falls back to secondary if primary fails
func NewProviderWithFallback(primary, fallback Provider) Provider {
	return &ProviderWithFallback{
		primary:  primary,
		fallback: fallback,
		out:      os.Stdout,
	}
}

// GenerateAudio tries primary provider first, falls back to secondary on error
func (p *ProviderWithFallback) GenerateAudio(ctx context.Context, text, lang, outputFile string) error {
	err := p.primary.GenerateAudio(ctx, text, lang, outputFile)
	if err != nil {
		if ctx.Err() != nil {
			return err
		}

		// Log the primary error
		fmt.Fprintf(p.out, "Primary provider (%s) failed: %v. Falling back to %s\n",
			p.primary.Name(), err, p.fallback.Name())

		// Try fallback
		return p.fallback.GenerateAudio(ctx, text, lang, outputFile)
	}
	return nil
}

// Name returns the provider name
func (p *ProviderWithFallback) Name() string {
	return fmt.Sprintf("%s (fallback: %s)", p.primary.Name(), p.fallback.Name())
}

// Identity identifies the primary provider; fallback output is accepted
// under the same cache key
func (p *ProviderWithFallback) Identity() string {
	return providerIdentity(p.primary)
}

// IsAvailable checks if at least one provider is available
func (p *ProviderWithFallback) IsAvailable() error {
	primaryErr := p.primary.IsAvailable()
	if primaryErr == nil {
		return nil
	}

	fallbackErr := p.fallback.IsAvailable()
	if fallbackErr == nil {
		return nil
	}

	return fmt.Errorf("both providers unavailable: primary=%v, fallback=%v",
		primaryErr, fallbackErr)
}
