package testutil

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"
)

// MockTranslator mocks a translation backend
type MockTranslator struct {
	Translations map[string]string
	Errors       map[string]error
	Calls        []string
}

// Translate mocks translating text
func (m *MockTranslator) Translate(ctx context.Context, text, fromLang, toLang string) (string, error) {
	call := fmt.Sprintf("Translate: %s (%s->%s)", text, fromLang, toLang)
	m.Calls = append(m.Calls, call)

	if err, ok := m.Errors[text]; ok {
		return "", err
	}

	if translation, ok := m.Translations[text]; ok {
		return translation, nil
	}

	return fmt.Sprintf("mock translation of %s", text), nil
}

// Name returns the backend name
func (m *MockTranslator) Name() string {
	return "mock"
}

// MockSpeech mocks a speech synthesis backend. The generated file holds
// the text and language so tests can tell clips apart.
type MockSpeech struct {
	Errors       map[string]error
	Unavailable  error
	Calls        []string
	IdentityName string
}

// GenerateAudio writes a fake clip to outputFile
func (m *MockSpeech) GenerateAudio(ctx context.Context, text, lang, outputFile string) error {
	m.Calls = append(m.Calls, fmt.Sprintf("Speak: %s (%s)", text, lang))

	if err, ok := m.Errors[text]; ok {
		return err
	}

	return os.WriteFile(outputFile, []byte(lang+":"+text), 0644)
}

// Name returns the backend name
func (m *MockSpeech) Name() string {
	return "mock-speech"
}

// Identity distinguishes configurations of the mock
func (m *MockSpeech) Identity() string {
	if m.IdentityName != "" {
		return m.IdentityName
	}
	return m.Name()
}

// IsAvailable reports the configured availability error
func (m *MockSpeech) IsAvailable() error {
	return m.Unavailable
}

// MockMixer joins clip contents with a marker for the gap
type MockMixer struct {
	Err   error
	Calls []string
}

// Concat writes the clip contents separated by the gap duration
func (m *MockMixer) Concat(ctx context.Context, clips []string, gap time.Duration, outputFile string) error {
	m.Calls = append(m.Calls, fmt.Sprintf("Concat: %d clips, gap %s", len(clips), gap))

	if m.Err != nil {
		return m.Err
	}

	parts := make([]string, 0, len(clips))
	for _, clip := range clips {
		data, err := os.ReadFile(clip)
		if err != nil {
			return err
		}
		parts = append(parts, string(data))
	}

	return os.WriteFile(outputFile, []byte(strings.Join(parts, "|"+gap.String()+"|")), 0644)
}
