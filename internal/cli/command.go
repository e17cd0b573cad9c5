package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/olegs18/transcriber/internal"
)

// RunFunc executes a command
type RunFunc func(cmd *cobra.Command, args []string) error

// Runners holds the run functions of the command tree. A nil runner leaves
// the command without a RunE.
type Runners struct {
	Root     RunFunc
	Process  RunFunc
	Mark     RunFunc
	Show     RunFunc
	Sessions RunFunc
	Similar  RunFunc
	Export   RunFunc
}

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags, runners Runners) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "transcriber",
		Short: "Phrase transcription and vocabulary tool",
		Long: `transcriber turns foreign-language phrases into vocabulary records.

Each phrase is normalized, transcribed to IPA and to an approximate
phonetic spelling, translated and voiced. Records are kept in a global
dictionary cache and in session files, and can be exported to Anki.

Examples:
  transcriber process "bună ziua"           # Process a single phrase
  transcriber process --batch phrases.txt   # Process a batch file
  transcriber mark vineri --known           # Mark a phrase as known
  transcriber show --unknown-only           # Show what is left to learn
  transcriber export --anki                 # Build an Anki package`,
		Args:          cobra.NoArgs,
		Version:       internal.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runners.Root,
	}

	setupFlags(rootCmd, flags)

	rootCmd.AddCommand(
		newProcessCommand(flags, runners.Process),
		newMarkCommand(flags, runners.Mark),
		newShowCommand(flags, runners.Show),
		newSessionsCommand(runners.Sessions),
		newSimilarCommand(flags, runners.Similar),
		newExportCommand(flags, runners.Export),
	)

	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	pf := cmd.PersistentFlags()

	// Global flags
	pf.StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.transcriber.yaml)")
	pf.StringVar(&flags.StudyLang, "study-lang", flags.StudyLang, "Language being studied (selects the phonetic profile)")
	pf.StringVar(&flags.TargetLang, "target-lang", flags.TargetLang, "Language to translate into")
	pf.StringVar(&flags.CachePath, "cache", DefaultCachePath(), "Global dictionary cache file")
	pf.StringVar(&flags.SessionsDir, "sessions-dir", DefaultSessionsDir(), "Directory holding session files")
	pf.StringVar(&flags.AudioDir, "audio-dir", DefaultAudioDir(), "Directory holding generated audio")
	pf.StringVar(&flags.Profiles, "profiles", "", "YAML file with additional phonetic profiles")

	// Translation flags
	pf.StringVar(&flags.TranslationProvider, "translation-provider", flags.TranslationProvider, "Translation backend: openai or gemini")
	pf.StringVar(&flags.TranslationModel, "openai-text-model", flags.TranslationModel, "OpenAI chat model used for translation")
	pf.StringVar(&flags.GeminiModel, "gemini-model", flags.GeminiModel, "Gemini model used for translation")

	// Audio flags
	pf.StringVar(&flags.AudioProvider, "audio-provider", flags.AudioProvider, "Speech backend: openai or espeak")
	pf.StringVar(&flags.AudioFallback, "audio-fallback", flags.AudioFallback, "Speech backend used when the primary one fails (empty disables)")
	pf.StringVarP(&flags.AudioFormat, "format", "f", flags.AudioFormat, "Audio format (wav or mp3)")
	pf.BoolVar(&flags.SkipAudio, "skip-audio", false, "Skip audio generation")
	pf.BoolVar(&flags.StrictAudio, "strict-audio", false, "Abort the batch when audio cannot be generated")
	pf.StringVar(&flags.ESpeakVoice, "espeak-voice", "", "espeak-ng voice override (default: study language)")

	// OpenAI flags
	pf.StringVar(&flags.OpenAIModel, "openai-model", flags.OpenAIModel, "OpenAI TTS model: tts-1, tts-1-hd, gpt-4o-mini-tts")
	pf.StringVar(&flags.OpenAIVoice, "openai-voice", flags.OpenAIVoice, "OpenAI voice: alloy, ash, ballad, coral, echo, fable, onyx, nova, sage, shimmer, verse")
	pf.Float64Var(&flags.OpenAISpeed, "openai-speed", flags.OpenAISpeed, "OpenAI speech speed (0.25 to 4.0, may be ignored by gpt-4o-mini-tts)")
	pf.StringVar(&flags.OpenAIInstruction, "openai-instruction", "", "Voice instructions for gpt-4o-mini-tts ({language} is replaced)")

	// Root-only flags
	cmd.Flags().BoolVar(&flags.ListModels, "list-models", false, "List available OpenAI models for the current API key")
	cmd.Flags().BoolVar(&flags.Archive, "archive", false, "Move the sessions directory into the archive")
	cmd.Flags().IntVar(&flags.KeepArchive, "keep", 0, "With --archive, keep only the newest N archives (0 keeps all)")

	bindFlagsToViper(cmd)
}

func newProcessCommand(flags *Flags, run RunFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process [phrase...]",
		Short: "Normalize, transcribe, translate and voice phrases",
		Long: `Process phrases given as arguments or read from a batch file.

A batch line is one of:
  phrase                 translate phrase
  phrase = translation   use the given translation
  = translation          derive the phrase by reverse translation`,
		RunE: run,
	}

	cmd.Flags().StringVar(&flags.BatchFile, "batch", "", "Process phrases from file (one per line)")
	cmd.Flags().StringVar(&flags.Session, "session", "", "Session to append to (default: latest)")
	cmd.Flags().BoolVar(&flags.NewSession, "new-session", false, "Start a new session instead of appending")
	cmd.Flags().BoolVar(&flags.RetranslateErrors, "retranslate-errors", false, "Retry phrases whose translation previously failed")
	cmd.Flags().StringVar(&flags.MergeStrategy, "merge-strategy", flags.MergeStrategy, "How records merge into a session: overwrite or preserve-progress")

	bindFlagSet(cmd.Flags(), map[string]string{"merge-strategy": "merge.strategy"})
	return cmd
}

func newMarkCommand(flags *Flags, run RunFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mark <phrase>",
		Short: "Mark a phrase as known or unknown",
		Args:  cobra.ExactArgs(1),
		RunE:  run,
	}

	cmd.Flags().BoolVar(&flags.Known, "known", false, "Mark as known")
	cmd.Flags().BoolVar(&flags.Unknown, "unknown", false, "Mark as not known")
	cmd.Flags().StringVar(&flags.Session, "session", "", "Session to update (default: latest)")
	cmd.MarkFlagsMutuallyExclusive("known", "unknown")
	cmd.MarkFlagsOneRequired("known", "unknown")
	return cmd
}

func newShowCommand(flags *Flags, run RunFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the records of a session and learning progress",
		Args:  cobra.NoArgs,
		RunE:  run,
	}

	cmd.Flags().StringVar(&flags.Session, "session", "", "Session to show (default: global dictionary)")
	cmd.Flags().StringVar(&flags.Filter, "filter", "", "Only show records containing this text")
	cmd.Flags().BoolVar(&flags.UnknownOnly, "unknown-only", false, "Only show records not yet known")
	return cmd
}

func newSessionsCommand(run RunFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List session files, newest first",
		Args:  cobra.NoArgs,
		RunE:  run,
	}
}

func newSimilarCommand(flags *Flags, run RunFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "similar",
		Short: "Suggest spelling variants for the normalization table",
		Args:  cobra.NoArgs,
		RunE:  run,
	}

	cmd.Flags().Float64Var(&flags.PhoneticThreshold, "phonetic-threshold", flags.PhoneticThreshold, "Similarity needed when phonetic codes overlap")
	cmd.Flags().Float64Var(&flags.FuzzyThreshold, "fuzzy-threshold", flags.FuzzyThreshold, "Similarity needed without phonetic overlap")
	return cmd
}

func newExportCommand(flags *Flags, run RunFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a session to Anki or an audio bundle",
		Args:  cobra.NoArgs,
		RunE:  run,
	}

	cmd.Flags().StringVar(&flags.Session, "session", "", "Session to export (default: global dictionary)")
	cmd.Flags().BoolVar(&flags.Anki, "anki", false, "Generate an Anki package (APKG)")
	cmd.Flags().BoolVar(&flags.AnkiCSV, "anki-csv", false, "Generate an Anki CSV import file")
	cmd.Flags().BoolVar(&flags.AudioZip, "audio-zip", false, "Generate a zip of phrase audio clips")
	cmd.Flags().BoolVar(&flags.WithTranslation, "with-translation", false, "In the audio zip, add clips with the translation spoken after the phrase")
	cmd.Flags().BoolVar(&flags.SkipKnown, "skip-known", false, "Leave out records marked as known")
	cmd.Flags().StringVar(&flags.DeckName, "deck-name", "", "Deck name for APKG export (default: session name)")
	cmd.Flags().StringVarP(&flags.ExportDir, "output", "o", DefaultExportDir(), "Output directory")
	return cmd
}

// viperKeys maps persistent flag names to configuration keys
var viperKeys = map[string]string{
	"study-lang":           "study.lang",
	"target-lang":          "translation.lang",
	"translation-provider": "translation.provider",
	"openai-text-model":    "translation.openai_model",
	"gemini-model":         "translation.gemini_model",
	"audio-provider":       "audio.provider",
	"audio-fallback":       "audio.fallback",
	"format":               "audio.format",
	"espeak-voice":         "audio.espeak_voice",
	"openai-model":         "audio.openai_model",
	"openai-voice":         "audio.openai_voice",
	"openai-speed":         "audio.openai_speed",
	"openai-instruction":   "audio.openai_instruction",
	"cache":                "paths.cache",
	"sessions-dir":         "paths.sessions",
	"audio-dir":            "paths.audio",
	"profiles":             "phonetic.profiles",
}

func bindFlagsToViper(cmd *cobra.Command) {
	bindFlagSet(cmd.PersistentFlags(), viperKeys)
}

func bindFlagSet(fs *pflag.FlagSet, keys map[string]string) {
	fs.VisitAll(func(f *pflag.Flag) {
		if key, ok := keys[f.Name]; ok {
			viper.BindPFlag(key, f)
		}
	})
}
