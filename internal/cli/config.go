package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// StateDir returns the directory holding the cache, sessions and audio
func StateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".transcriber")
	}
	return filepath.Join(home, ".local", "state", "transcriber")
}

// DefaultCachePath returns the default global dictionary cache file
func DefaultCachePath() string {
	return filepath.Join(StateDir(), "dictionary.csv")
}

// DefaultSessionsDir returns the default sessions directory
func DefaultSessionsDir() string {
	return filepath.Join(StateDir(), "sessions")
}

// DefaultAudioDir returns the default audio directory
func DefaultAudioDir() string {
	return filepath.Join(StateDir(), "audio")
}

// DefaultExportDir returns the default export directory
func DefaultExportDir() string {
	return filepath.Join(StateDir(), "export")
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".transcriber" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".transcriber")
	}

	// Environment variables, e.g. TRANSCRIBER_AUDIO_PROVIDER
	viper.SetEnvPrefix("TRANSCRIBER")
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// ApplyConfig copies configured values into flags the user did not set on
// the command line. Bound flags already resolve through viper, so this
// reads every key back and lets viper decide between flag, environment,
// config file and default.
func ApplyConfig(flags *Flags) {
	stringKeys := map[string]*string{
		"study.lang":               &flags.StudyLang,
		"translation.lang":         &flags.TargetLang,
		"translation.provider":     &flags.TranslationProvider,
		"translation.openai_model": &flags.TranslationModel,
		"translation.gemini_model": &flags.GeminiModel,
		"audio.provider":           &flags.AudioProvider,
		"audio.fallback":           &flags.AudioFallback,
		"audio.format":             &flags.AudioFormat,
		"audio.espeak_voice":       &flags.ESpeakVoice,
		"audio.openai_model":       &flags.OpenAIModel,
		"audio.openai_voice":       &flags.OpenAIVoice,
		"audio.openai_instruction": &flags.OpenAIInstruction,
		"paths.cache":              &flags.CachePath,
		"paths.sessions":           &flags.SessionsDir,
		"paths.audio":              &flags.AudioDir,
		"phonetic.profiles":        &flags.Profiles,
		"merge.strategy":           &flags.MergeStrategy,
	}
	for key, dst := range stringKeys {
		if viper.IsSet(key) {
			*dst = viper.GetString(key)
		}
	}

	if viper.IsSet("audio.openai_speed") {
		flags.OpenAISpeed = viper.GetFloat64("audio.openai_speed")
	}
}

var envKeyReplacer = strings.NewReplacer(".", "_")

// GetOpenAIKey retrieves the OpenAI API key from environment or config
func GetOpenAIKey() string {
	// First check environment variable
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key
	}

	// Then check config file
	if key := viper.GetString("translation.openai_key"); key != "" {
		return key
	}
	return viper.GetString("audio.openai_key")
}

// GetGeminiKey retrieves the Gemini API key from environment or config
func GetGeminiKey() string {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key
	}
	return viper.GetString("translation.gemini_key")
}
