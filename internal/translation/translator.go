package translation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

// Translator is the external translation backend
type Translator interface {
	// Translate translates text from sourceLang into targetLang
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)

	// Name returns the backend name
	Name() string
}

// Config selects and configures a translation backend
type Config struct {
	Provider    string // "openai" or "gemini"
	OpenAIKey   string
	OpenAIModel string
	GeminiKey   string
	GeminiModel string
	Timeout     time.Duration
}

// DefaultConfig returns the default backend configuration
func DefaultConfig() *Config {
	return &Config{
		Provider:    "openai",
		OpenAIModel: openai.GPT4oMini,
		GeminiModel: "gemini-2.0-flash",
		Timeout:     30 * time.Second,
	}
}

// NewTranslator creates the backend named in config
func NewTranslator(ctx context.Context, config *Config) (Translator, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch config.Provider {
	case "openai":
		return NewOpenAITranslator(config), nil
	case "gemini":
		return NewGeminiTranslator(ctx, config)
	default:
		return nil, fmt.Errorf("unknown translation provider: %s", config.Provider)
	}
}

var languageNames = map[string]string{
	"ro": "Romanian",
	"ru": "Russian",
	"en": "English",
	"bg": "Bulgarian",
	"de": "German",
	"fr": "French",
	"it": "Italian",
	"es": "Spanish",
	"uk": "Ukrainian",
}

// LanguageName returns the English name of a language code, or the code
// itself when unknown
func LanguageName(code string) string {
	if name, ok := languageNames[code]; ok {
		return name
	}
	return code
}

func buildPrompt(text, sourceLang, targetLang string) string {
	return fmt.Sprintf("Translate the %s phrase '%s' to %s. Respond with only the %s translation, nothing else.",
		LanguageName(sourceLang), text, LanguageName(targetLang), LanguageName(targetLang))
}

// OpenAITranslator translates with an OpenAI chat model
type OpenAITranslator struct {
	apiKey  string
	model   string
	timeout time.Duration
	client  *openai.Client
}

// NewOpenAITranslator creates a new OpenAI backed translator
func NewOpenAITranslator(config *Config) *OpenAITranslator {
	model := config.OpenAIModel
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAITranslator{
		apiKey:  config.OpenAIKey,
		model:   model,
		timeout: config.Timeout,
		client:  openai.NewClient(config.OpenAIKey),
	}
}

// Translate translates text using the chat completion API
func (t *OpenAITranslator) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	if t.apiKey == "" {
		return "", fmt.Errorf("OpenAI API key not found")
	}

	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	req := openai.ChatCompletionRequest{
		Model: t.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildPrompt(text, sourceLang, targetLang),
			},
		},
		MaxTokens:   100,
		Temperature: 0.3,
	}

	resp, err := t.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no translation returned")
	}

	translation := strings.TrimSpace(resp.Choices[0].Message.Content)
	if translation == "" {
		return "", fmt.Errorf("empty translation returned")
	}
	return translation, nil
}

// Name returns the backend name
func (t *OpenAITranslator) Name() string {
	return "openai:" + t.model
}

// GeminiTranslator translates with a Google Gemini model
type GeminiTranslator struct {
	model   string
	timeout time.Duration
	client  *genai.Client
}

// NewGeminiTranslator creates a new Gemini backed translator
func NewGeminiTranslator(ctx context.Context, config *Config) (*GeminiTranslator, error) {
	if config.GeminiKey == "" {
		return nil, fmt.Errorf("Gemini API key not found")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.GeminiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := config.GeminiModel
	if model == "" {
		model = DefaultConfig().GeminiModel
	}

	return &GeminiTranslator{
		model:   model,
		timeout: config.Timeout,
		client:  client,
	}, nil
}

// Translate translates text using the generate content API
func (t *GeminiTranslator) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	resp, err := t.client.Models.GenerateContent(ctx, t.model,
		genai.Text(buildPrompt(text, sourceLang, targetLang)),
		&genai.GenerateContentConfig{
			Temperature:     genai.Ptr[float32](0.3),
			MaxOutputTokens: 100,
		})
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}

	translation := strings.TrimSpace(resp.Text())
	if translation == "" {
		return "", fmt.Errorf("no translation returned")
	}
	return translation, nil
}

// Name returns the backend name
func (t *GeminiTranslator) Name() string {
	return "gemini:" + t.model
}
