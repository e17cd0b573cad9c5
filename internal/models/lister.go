package models

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// modelClient is the part of the OpenAI client the lister needs
type modelClient interface {
	ListModels(ctx context.Context) (openai.ModelsList, error)
}

// Lister handles listing available OpenAI models
type Lister struct {
	apiKey string
	client modelClient
	out    io.Writer
}

// NewLister creates a new model lister printing to out
func NewLister(apiKey string, out io.Writer) *Lister {
	return &Lister{
		apiKey: apiKey,
		client: openai.NewClient(apiKey),
		out:    out,
	}
}

// Categories groups model IDs by what this program uses them for
type Categories struct {
	Speech      []string
	Translation []string
}

// Categorize sorts model IDs into speech and translation models. Other
// models are ignored.
func Categorize(ids []string) Categories {
	var c Categories
	for _, id := range ids {
		switch {
		case strings.Contains(id, "tts"):
			c.Speech = append(c.Speech, id)
		case strings.Contains(id, "audio") || strings.Contains(id, "realtime") || strings.Contains(id, "transcribe"):
			// audio chat models are not usable for text translation
		case strings.HasPrefix(id, "gpt-") || strings.HasPrefix(id, "o1") || strings.HasPrefix(id, "o3") || strings.HasPrefix(id, "o4"):
			c.Translation = append(c.Translation, id)
		}
	}
	sort.Strings(c.Speech)
	sort.Strings(c.Translation)
	return c
}

// ListAvailableModels prints the models usable for speech and translation
func (l *Lister) ListAvailableModels(ctx context.Context) error {
	if l.apiKey == "" {
		return fmt.Errorf("OpenAI API key not found. Set OPENAI_API_KEY environment variable or configure in .transcriber.yaml")
	}

	models, err := l.client.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("failed to list models: %w", err)
	}

	ids := make([]string, 0, len(models.Models))
	for _, m := range models.Models {
		ids = append(ids, m.ID)
	}
	c := Categorize(ids)

	fmt.Fprintln(l.out, "Available OpenAI Models:")
	printSection(l.out, "Text-to-Speech (audio.openai_model)", c.Speech)
	printSection(l.out, "Translation (translation.openai_model)", c.Translation)
	return nil
}

func printSection(w io.Writer, title string, ids []string) {
	fmt.Fprintf(w, "\n%s:\n", title)
	if len(ids) == 0 {
		fmt.Fprintln(w, "  none found")
		return
	}
	for _, id := range ids {
		fmt.Fprintf(w, "  %s\n", id)
	}
}
