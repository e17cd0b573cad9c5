package audio

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/olegs18/transcriber/internal/translation"
)

// OpenAIProvider implements Provider interface for OpenAI TTS
type OpenAIProvider struct {
	client *openai.Client
	config *Config
}

// NewOpenAIProvider creates a new OpenAI TTS provider
func NewOpenAIProvider(config *Config) (Provider, error) {
	if config.OpenAIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	return &OpenAIProvider{
		client: openai.NewClient(config.OpenAIKey),
		config: config,
	}, nil
}

func (p *OpenAIProvider) supportsInstructions() bool {
	return p.config.OpenAIModel == "gpt-4o-mini-tts" || p.config.OpenAIModel == "gpt-4o-mini-audio-preview"
}

// instructionFor renders the configured voice instruction for lang
func (p *OpenAIProvider) instructionFor(lang string) string {
	return strings.ReplaceAll(p.config.OpenAIInstruction, "{language}", translation.LanguageName(lang))
}

// GenerateAudio generates audio using OpenAI TTS
func (p *OpenAIProvider) GenerateAudio(ctx context.Context, text, lang, outputFile string) error {
	if err := ValidateText(text); err != nil {
		return err
	}

	processedText := preprocessText(text)

	if os.Getenv("DEBUG_TRANSCRIBER") != "" {
		fmt.Printf("[DEBUG] OpenAI TTS: model '%s' voice '%s' speed %.2f input '%s'\n",
			p.config.OpenAIModel, p.config.OpenAIVoice, p.config.OpenAISpeed, processedText)
	}

	req := openai.CreateSpeechRequest{
		Model: openai.SpeechModel(p.config.OpenAIModel),
		Input: processedText,
		Voice: openai.SpeechVoice(p.config.OpenAIVoice),
		Speed: p.config.OpenAISpeed,
	}

	// Add instructions for gpt-4o-mini-tts model
	if p.config.OpenAIInstruction != "" && p.supportsInstructions() {
		req.Instructions = p.instructionFor(lang)
	}

	// Determine response format based on output file extension
	switch strings.ToLower(filepath.Ext(outputFile)) {
	case ".mp3":
		req.ResponseFormat = openai.SpeechResponseFormatMp3
	case ".wav":
		req.ResponseFormat = openai.SpeechResponseFormatWav
	case ".opus":
		req.ResponseFormat = openai.SpeechResponseFormatOpus
	case ".aac":
		req.ResponseFormat = openai.SpeechResponseFormatAac
	case ".flac":
		req.ResponseFormat = openai.SpeechResponseFormatFlac
	default:
		return fmt.Errorf("unsupported audio format: %s", outputFile)
	}

	response, err := p.client.CreateSpeech(ctx, req)
	if err != nil {
		// Check if it's a model access error
		if strings.Contains(err.Error(), "does not have access to model") && p.supportsInstructions() {
			return fmt.Errorf("OpenAI TTS API error: %w\nNote: The %s model requires access. Try tts-1-hd instead", err, p.config.OpenAIModel)
		}
		return fmt.Errorf("OpenAI TTS API error: %w", err)
	}
	defer response.Close()

	dir := filepath.Dir(outputFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	out, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer out.Close()

	written, err := io.Copy(out, response)
	if err != nil {
		return fmt.Errorf("failed to write audio file: %w", err)
	}

	if written == 0 {
		return fmt.Errorf("no audio data received from OpenAI")
	}

	return nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// Identity includes every setting that changes the produced audio
func (p *OpenAIProvider) Identity() string {
	id := fmt.Sprintf("openai:%s:%s:%.2f", p.config.OpenAIModel, p.config.OpenAIVoice, p.config.OpenAISpeed)
	if p.supportsInstructions() {
		id += ":" + p.config.OpenAIInstruction
	}
	return id
}

// IsAvailable checks if the OpenAI API is accessible
func (p *OpenAIProvider) IsAvailable() error {
	if p.config.OpenAIKey == "" {
		return fmt.Errorf("OpenAI API key not configured")
	}

	// A test call would use credits, so only the key is checked
	return nil
}

// preprocessText strips punctuation that shouldn't be spoken
func preprocessText(text string) string {
	cleanedText := strings.TrimSpace(text)

	punctuationToRemove := []string{"!", "?", ".", ",", ";", ":", "\"", "'", "(", ")", "[", "]", "{", "}", "-", "—", "–"}
	for _, punct := range punctuationToRemove {
		cleanedText = strings.ReplaceAll(cleanedText, punct, "")
	}

	return strings.TrimSpace(cleanedText)
}
