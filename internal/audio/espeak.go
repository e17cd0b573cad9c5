package audio

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ESpeakConfig holds configuration for espeak-ng audio generation
type ESpeakConfig struct {
	Voice     string // Voice override (e.g. "ro+m1"); empty means the language code
	Speed     int    // Speech speed in words per minute (default: 150)
	Pitch     int    // Pitch adjustment, 0 to 99 (default: 50)
	Amplitude int    // Volume/amplitude, 0 to 200 (default: 100)
	WordGap   int    // Gap between words in 10ms units (default: 0)
}

// DefaultConfig returns the default espeak-ng configuration
func DefaultConfig() *ESpeakConfig {
	return &ESpeakConfig{
		Speed:     150,
		Pitch:     50,
		Amplitude: 100,
		WordGap:   0,
	}
}

// ESpeak provides an interface to the espeak-ng text-to-speech engine
type ESpeak struct {
	config *ESpeakConfig
}

// New creates a new ESpeak instance with the given configuration
func New(config *ESpeakConfig) (*ESpeak, error) {
	if err := checkESpeakInstalled(); err != nil {
		return nil, err
	}

	if config == nil {
		config = DefaultConfig()
	}

	return &ESpeak{config: config}, nil
}

// voiceFor returns the espeak-ng voice used for lang
func (e *ESpeak) voiceFor(lang string) string {
	if e.config.Voice != "" {
		return e.config.Voice
	}
	return lang
}

// args builds the espeak-ng command line
func (e *ESpeak) args(text, lang, outputFile string) []string {
	args := []string{
		"-v", e.voiceFor(lang),
		"-s", fmt.Sprintf("%d", clamp(e.config.Speed, 80, 450)),
		"-p", fmt.Sprintf("%d", clamp(e.config.Pitch, 0, 99)),
		"-a", fmt.Sprintf("%d", clamp(e.config.Amplitude, 0, 200)),
	}

	if e.config.WordGap > 0 {
		args = append(args, "-g", fmt.Sprintf("%d", e.config.WordGap))
	}

	return append(args, "-w", outputFile, text)
}

// GenerateWAV generates a WAV file for text spoken in lang
func (e *ESpeak) GenerateWAV(ctx context.Context, text, lang, outputFile string) error {
	if text == "" {
		return fmt.Errorf("text cannot be empty")
	}

	dir := filepath.Dir(outputFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	cmd := exec.CommandContext(ctx, "espeak-ng", e.args(text, lang, outputFile)...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("espeak-ng failed: %w\nOutput: %s", err, string(output))
	}

	return nil
}

// GenerateMP3 generates an MP3 file for text spoken in lang
func (e *ESpeak) GenerateMP3(ctx context.Context, text, lang, outputFile string) error {
	tempWAV := strings.TrimSuffix(outputFile, filepath.Ext(outputFile)) + "_temp.wav"

	if err := e.GenerateWAV(ctx, text, lang, tempWAV); err != nil {
		return err
	}
	defer os.Remove(tempWAV)

	return ConvertWAVToMP3(ctx, tempWAV, outputFile)
}

// checkESpeakInstalled verifies that espeak-ng is available on the system
func checkESpeakInstalled() error {
	if _, err := exec.LookPath("espeak-ng"); err != nil {
		return fmt.Errorf("espeak-ng is not installed or not in PATH: %w", err)
	}
	return nil
}

// ConvertWAVToMP3 converts a WAV file to MP3 using ffmpeg
func ConvertWAVToMP3(ctx context.Context, wavFile, mp3File string) error {
	if err := checkFFmpegInstalled(); err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, "ffmpeg", "-i", wavFile, "-acodec", "mp3", "-y", mp3File)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg conversion failed: %w\nOutput: %s", err, string(output))
	}

	return nil
}

func checkFFmpegInstalled() error {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return fmt.Errorf("ffmpeg is not installed or not in PATH: %w", err)
	}
	return nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
