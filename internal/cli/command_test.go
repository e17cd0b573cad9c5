package cli

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func findCommand(t *testing.T, root *cobra.Command, name string) *cobra.Command {
	t.Helper()
	for _, c := range root.Commands() {
		if c.Name() == name {
			return c
		}
	}
	t.Fatalf("command %s not found", name)
	return nil
}

func TestCreateRootCommand(t *testing.T) {
	resetViper(t)
	flags := NewFlags()
	cmd := CreateRootCommand(flags, Runners{})

	if cmd.Use != "transcriber" {
		t.Errorf("Expected Use to be 'transcriber', got %s", cmd.Use)
	}
	if !strings.Contains(cmd.Short, "transcription") {
		t.Errorf("Unexpected Short description: %s", cmd.Short)
	}

	persistent := []string{
		"config", "study-lang", "target-lang", "cache", "sessions-dir", "audio-dir", "profiles",
		"translation-provider", "openai-text-model", "gemini-model",
		"audio-provider", "audio-fallback", "format", "skip-audio", "strict-audio", "espeak-voice",
		"openai-model", "openai-voice", "openai-speed", "openai-instruction",
	}
	for _, name := range persistent {
		t.Run("flag_"+name, func(t *testing.T) {
			if cmd.PersistentFlags().Lookup(name) == nil {
				t.Errorf("Expected persistent flag %s to exist", name)
			}
		})
	}

	for _, name := range []string{"list-models", "archive", "keep"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("Expected root flag %s to exist", name)
		}
	}
}

func TestSubcommandFlags(t *testing.T) {
	resetViper(t)
	root := CreateRootCommand(NewFlags(), Runners{})

	tests := map[string][]string{
		"process":  {"batch", "session", "new-session", "retranslate-errors", "merge-strategy"},
		"mark":     {"known", "unknown", "session"},
		"show":     {"session", "filter", "unknown-only"},
		"sessions": nil,
		"similar":  {"phonetic-threshold", "fuzzy-threshold"},
		"export":   {"session", "anki", "anki-csv", "audio-zip", "with-translation", "skip-known", "deck-name", "output"},
	}

	for name, flagNames := range tests {
		t.Run(name, func(t *testing.T) {
			sub := findCommand(t, root, name)
			for _, f := range flagNames {
				if sub.Flags().Lookup(f) == nil {
					t.Errorf("Expected flag %s on %s", f, name)
				}
			}
		})
	}
}

func TestRunnersAreWired(t *testing.T) {
	resetViper(t)
	flags := NewFlags()

	var called []string
	record := func(name string) RunFunc {
		return func(cmd *cobra.Command, args []string) error {
			called = append(called, name+":"+strings.Join(args, ","))
			return nil
		}
	}

	root := CreateRootCommand(flags, Runners{
		Root:     record("root"),
		Process:  record("process"),
		Mark:     record("mark"),
		Show:     record("show"),
		Sessions: record("sessions"),
		Similar:  record("similar"),
		Export:   record("export"),
	})

	runs := [][]string{
		{"process", "--new-session", "vineri", "joi"},
		{"mark", "vineri", "--known"},
		{"show", "--unknown-only"},
		{"sessions"},
		{"similar"},
		{"export", "--anki"},
		{"--archive"},
	}
	for _, args := range runs {
		root.SetArgs(args)
		if err := root.Execute(); err != nil {
			t.Fatalf("Execute(%v) failed: %v", args, err)
		}
	}

	want := []string{"process:vineri,joi", "mark:vineri", "show:", "sessions:", "similar:", "export:", "root:"}
	if strings.Join(called, " ") != strings.Join(want, " ") {
		t.Errorf("called = %v, want %v", called, want)
	}
	if !flags.NewSession || !flags.Known || !flags.UnknownOnly || !flags.Anki || !flags.Archive {
		t.Errorf("Flags not populated: %+v", flags)
	}
}

func TestMarkRequiresStatus(t *testing.T) {
	resetViper(t)
	root := CreateRootCommand(NewFlags(), Runners{
		Mark: func(cmd *cobra.Command, args []string) error { return errors.New("should not run") },
	})
	root.SetOut(&strings.Builder{})
	root.SetErr(&strings.Builder{})

	root.SetArgs([]string{"mark", "vineri"})
	if err := root.Execute(); err == nil {
		t.Error("Expected error without --known or --unknown")
	}

	root.SetArgs([]string{"mark", "vineri", "--known", "--unknown"})
	if err := root.Execute(); err == nil {
		t.Error("Expected error with both --known and --unknown")
	}
}

func TestSetupFlags(t *testing.T) {
	resetViper(t)
	cmd := &cobra.Command{}
	flags := NewFlags()

	setupFlags(cmd, flags)

	home, _ := os.UserHomeDir()
	tests := map[string]string{
		"cache":        filepath.Join(home, ".local", "state", "transcriber", "dictionary.csv"),
		"sessions-dir": filepath.Join(home, ".local", "state", "transcriber", "sessions"),
		"audio-dir":    filepath.Join(home, ".local", "state", "transcriber", "audio"),
		"format":       "mp3",
		"study-lang":   "ro",
		"target-lang":  "ru",
	}
	for name, want := range tests {
		flag := cmd.PersistentFlags().Lookup(name)
		if flag == nil {
			t.Fatalf("%s flag not found", name)
		}
		if flag.DefValue != want {
			t.Errorf("Expected default %s to be %s, got %s", name, want, flag.DefValue)
		}
	}
}

func TestInitConfig(t *testing.T) {
	tests := []struct {
		name      string
		setupFunc func(t *testing.T) string
	}{
		{
			name: "with config file",
			setupFunc: func(t *testing.T) string {
				cfgPath := filepath.Join(t.TempDir(), "test-config.yaml")
				content := `study:
  lang: ro
translation:
  lang: en
  openai_key: test-key
audio:
  provider: espeak`
				if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
					t.Fatalf("Failed to create test config: %v", err)
				}
				return cfgPath
			},
		},
		{
			name:      "without config file",
			setupFunc: func(t *testing.T) string { return "" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper(t)

			cfgPath := tt.setupFunc(t)
			InitConfig(cfgPath)

			t.Setenv("TRANSCRIBER_TEST_VAR", "test-value")
			if viper.GetString("test_var") != "test-value" {
				t.Error("Environment variable not properly loaded")
			}

			t.Setenv("TRANSCRIBER_MERGE_STRATEGY", "overwrite")
			if viper.GetString("merge.strategy") != "overwrite" {
				t.Error("Nested key not resolved from environment")
			}

			if cfgPath != "" && viper.GetString("translation.lang") != "en" {
				t.Errorf("Config value not read, got %q", viper.GetString("translation.lang"))
			}
		})
	}
}

func TestApplyConfig(t *testing.T) {
	resetViper(t)

	viper.Set("translation.lang", "en")
	viper.Set("audio.provider", "espeak")
	viper.Set("audio.openai_speed", 1.25)

	flags := NewFlags()
	ApplyConfig(flags)

	if flags.TargetLang != "en" {
		t.Errorf("TargetLang = %s, want en", flags.TargetLang)
	}
	if flags.AudioProvider != "espeak" {
		t.Errorf("AudioProvider = %s, want espeak", flags.AudioProvider)
	}
	if flags.OpenAISpeed != 1.25 {
		t.Errorf("OpenAISpeed = %v, want 1.25", flags.OpenAISpeed)
	}
	if flags.StudyLang != "ro" {
		t.Errorf("Unset key changed StudyLang to %s", flags.StudyLang)
	}
}

func TestGetOpenAIKey(t *testing.T) {
	tests := []struct {
		name      string
		envKey    string
		configKey string
		keyPath   string
		expected  string
	}{
		{
			name:      "from environment",
			envKey:    "env-test-key",
			configKey: "config-test-key",
			keyPath:   "translation.openai_key",
			expected:  "env-test-key",
		},
		{
			name:      "from translation config when no env",
			configKey: "config-test-key",
			keyPath:   "translation.openai_key",
			expected:  "config-test-key",
		},
		{
			name:      "from audio config when no env",
			configKey: "audio-test-key",
			keyPath:   "audio.openai_key",
			expected:  "audio-test-key",
		},
		{
			name:     "empty when neither set",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper(t)
			t.Setenv("OPENAI_API_KEY", tt.envKey)

			if tt.configKey != "" {
				viper.Set(tt.keyPath, tt.configKey)
			}

			if got := GetOpenAIKey(); got != tt.expected {
				t.Errorf("GetOpenAIKey() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetGeminiKey(t *testing.T) {
	resetViper(t)
	t.Setenv("GEMINI_API_KEY", "")
	viper.Set("translation.gemini_key", "config-key")

	if got := GetGeminiKey(); got != "config-key" {
		t.Errorf("GetGeminiKey() = %v, want config-key", got)
	}

	t.Setenv("GEMINI_API_KEY", "env-key")
	if got := GetGeminiKey(); got != "env-key" {
		t.Errorf("GetGeminiKey() = %v, want env-key", got)
	}
}

func TestBindFlagsToViper(t *testing.T) {
	resetViper(t)

	cmd := &cobra.Command{}
	flags := NewFlags()
	setupFlags(cmd, flags)

	cmd.PersistentFlags().Set("format", "wav")
	cmd.PersistentFlags().Set("openai-model", "tts-1-hd")
	cmd.PersistentFlags().Set("target-lang", "en")

	if viper.GetString("audio.format") != "wav" {
		t.Errorf("Expected audio.format to be wav, got %s", viper.GetString("audio.format"))
	}
	if viper.GetString("audio.openai_model") != "tts-1-hd" {
		t.Errorf("Expected audio.openai_model to be tts-1-hd, got %s", viper.GetString("audio.openai_model"))
	}
	if viper.GetString("translation.lang") != "en" {
		t.Errorf("Expected translation.lang to be en, got %s", viper.GetString("translation.lang"))
	}
	if viper.GetString("study.lang") != "ro" {
		t.Errorf("Expected study.lang default ro, got %s", viper.GetString("study.lang"))
	}
}

func TestViperKeysMatchFlags(t *testing.T) {
	resetViper(t)
	cmd := CreateRootCommand(NewFlags(), Runners{})

	for name := range viperKeys {
		if cmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("viper key bound to unknown flag %s", name)
		}
	}
}
