package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/olegs18/transcriber/internal/archive"
	"github.com/olegs18/transcriber/internal/audio"
	"github.com/olegs18/transcriber/internal/batch"
	"github.com/olegs18/transcriber/internal/cli"
	"github.com/olegs18/transcriber/internal/models"
	"github.com/olegs18/transcriber/internal/phonetic"
	"github.com/olegs18/transcriber/internal/processor"
	"github.com/olegs18/transcriber/internal/session"
	"github.com/olegs18/transcriber/internal/similar"
	"github.com/olegs18/transcriber/internal/translation"
)

func main() {
	flags := cli.NewFlags()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &app{flags: flags}
	rootCmd := cli.CreateRootCommand(flags, cli.Runners{
		Root:     app.runRoot,
		Process:  app.runProcess,
		Mark:     app.runMark,
		Show:     app.runShow,
		Sessions: app.runSessions,
		Similar:  app.runSimilar,
		Export:   app.runExport,
	})

	cobra.OnInitialize(func() {
		cli.InitConfig(flags.CfgFile)
		cli.ApplyConfig(flags)
	})

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

type app struct {
	flags *cli.Flags
}

func (a *app) runRoot(cmd *cobra.Command, args []string) error {
	// Handle --archive flag
	if a.flags.Archive {
		dest, err := archive.ArchiveSessions(a.flags.SessionsDir, os.Stdout)
		if err != nil {
			return fmt.Errorf("failed to archive sessions: %w", err)
		}
		if dest == "" || a.flags.KeepArchive <= 0 {
			return nil
		}
		_, err = archive.Prune(archive.Dir(a.flags.SessionsDir), a.flags.KeepArchive, os.Stdout)
		return err
	}

	// Handle --list-models flag
	if a.flags.ListModels {
		lister := models.NewLister(cli.GetOpenAIKey(), os.Stdout)
		return lister.ListAvailableModels(cmd.Context())
	}

	return cmd.Help()
}

func (a *app) runProcess(cmd *cobra.Command, args []string) error {
	var entries []batch.Entry
	if a.flags.BatchFile != "" {
		fromFile, err := batch.ReadFile(a.flags.BatchFile)
		if err != nil {
			return fmt.Errorf("failed to read batch file: %w", err)
		}
		entries = append(entries, fromFile...)
	}
	entries = append(entries, batch.FromArgs(args)...)

	if len(entries) == 0 && !a.flags.RetranslateErrors {
		return fmt.Errorf("no phrases given: pass phrases as arguments or use --batch")
	}

	proc, err := a.newProcessor(cmd.Context(), true, !a.flags.SkipAudio)
	if err != nil {
		return err
	}

	if a.flags.RetranslateErrors {
		if _, err := proc.Retranslate(cmd.Context()); err != nil {
			return err
		}
	}
	if len(entries) == 0 {
		return nil
	}

	result, err := proc.Process(cmd.Context(), entries)
	if err != nil {
		return err
	}

	name, err := proc.SaveSession(result.Records, a.flags.Session, a.flags.NewSession)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	if name != "" {
		fmt.Printf("\nDone! Session saved to: %s\n", proc.Sessions().Path(name))
	}
	return nil
}

func (a *app) runMark(cmd *cobra.Command, args []string) error {
	proc, err := a.newProcessor(cmd.Context(), false, false)
	if err != nil {
		return err
	}
	return proc.Mark(args[0], a.flags.Known, a.flags.Session)
}

func (a *app) runShow(cmd *cobra.Command, args []string) error {
	proc, err := a.newProcessor(cmd.Context(), false, false)
	if err != nil {
		return err
	}
	return proc.Show(processor.ShowOptions{
		Session:     a.flags.Session,
		Filter:      a.flags.Filter,
		UnknownOnly: a.flags.UnknownOnly,
	})
}

func (a *app) runSessions(cmd *cobra.Command, args []string) error {
	proc, err := a.newProcessor(cmd.Context(), false, false)
	if err != nil {
		return err
	}
	return proc.ListSessions()
}

func (a *app) runSimilar(cmd *cobra.Command, args []string) error {
	proc, err := a.newProcessor(cmd.Context(), false, false)
	if err != nil {
		return err
	}
	_, err = proc.Similar(similar.New(
		similar.WithPhoneticThreshold(a.flags.PhoneticThreshold),
		similar.WithFuzzyThreshold(a.flags.FuzzyThreshold),
	))
	return err
}

func (a *app) runExport(cmd *cobra.Command, args []string) error {
	f := a.flags
	if !f.Anki && !f.AnkiCSV && !f.AudioZip {
		f.Anki = true
	}

	// Audio for missing clips is generated on demand
	proc, err := a.newProcessor(cmd.Context(), false, !f.SkipAudio)
	if err != nil {
		return err
	}

	opts := processor.ExportOptions{
		Session:         f.Session,
		DeckName:        f.DeckName,
		WithTranslation: f.WithTranslation,
		SkipKnown:       f.SkipKnown,
	}
	if f.Anki {
		opts.APKGPath = processor.DefaultExportPath(f.ExportDir, f.Session, "apkg")
	}
	if f.AnkiCSV {
		opts.CSVPath = processor.DefaultExportPath(f.ExportDir, f.Session, "csv")
	}
	if f.AudioZip {
		opts.ZipPath = processor.DefaultExportPath(f.ExportDir, f.Session, "zip")
	}

	if err := proc.Export(cmd.Context(), opts); err != nil {
		return err
	}
	fmt.Printf("\nDone! Export saved to: %s\n", f.ExportDir)
	return nil
}

// newProcessor wires the backends selected by flags and configuration.
// Backends that cannot be created are reported and left out.
func (a *app) newProcessor(ctx context.Context, withTranslation, withAudio bool) (*processor.Processor, error) {
	f := a.flags

	registry := phonetic.NewRegistry()
	if f.Profiles != "" {
		if err := registry.LoadProfiles(f.Profiles); err != nil {
			return nil, fmt.Errorf("failed to load phonetic profiles: %w", err)
		}
	}

	if !slices.Contains(registry.Languages(), f.StudyLang) {
		fmt.Fprintf(os.Stderr, "  Warning: no phonetic profile for %s, phrases are transcribed as written (profiles: %s)\n",
			f.StudyLang, strings.Join(registry.Languages(), ", "))
	}

	strategy, err := session.StrategyByName(f.MergeStrategy)
	if err != nil {
		return nil, err
	}

	deps := processor.Deps{
		Profile:  registry.Lookup(f.StudyLang),
		Gateway:  translation.DefaultGatewayConfig(),
		Mixer:    audio.NewFFmpegMixer(),
		Strategy: strategy,
	}

	if withTranslation {
		deps.Translator = a.newTranslator(ctx)
	}
	if withAudio {
		deps.Speech = a.newSpeech()
	}

	return processor.New(processor.Options{
		StudyLang:         f.StudyLang,
		TargetLang:        f.TargetLang,
		CachePath:         f.CachePath,
		SessionsDir:       f.SessionsDir,
		AudioDir:          f.AudioDir,
		AudioFormat:       f.AudioFormat,
		StrictAudio:       f.StrictAudio,
		RetranslateErrors: f.RetranslateErrors,
	}, deps)
}

func (a *app) newTranslator(ctx context.Context) translation.Translator {
	f := a.flags

	config := translation.DefaultConfig()
	config.Provider = f.TranslationProvider
	config.OpenAIKey = cli.GetOpenAIKey()
	config.GeminiKey = cli.GetGeminiKey()
	if f.TranslationModel != "" {
		config.OpenAIModel = f.TranslationModel
	}
	if f.GeminiModel != "" {
		config.GeminiModel = f.GeminiModel
	}

	tr, err := translation.NewTranslator(ctx, config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "  Warning: translation disabled: %v\n", err)
		return nil
	}
	return tr
}

func (a *app) newSpeech() audio.Provider {
	f := a.flags

	config := audio.DefaultProviderConfig()
	config.Provider = f.AudioProvider
	config.Fallback = f.AudioFallback
	config.OutputDir = f.AudioDir
	config.OutputFormat = f.AudioFormat
	config.OpenAIKey = cli.GetOpenAIKey()
	config.OpenAIModel = f.OpenAIModel
	config.OpenAIVoice = f.OpenAIVoice
	config.OpenAISpeed = f.OpenAISpeed
	if f.OpenAIInstruction != "" {
		config.OpenAIInstruction = f.OpenAIInstruction
	}
	if f.ESpeakVoice != "" {
		config.ESpeak.Voice = f.ESpeakVoice
	}

	provider, err := audio.NewProvider(config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "  Warning: audio disabled: %v\n", err)
		return nil
	}
	if err := provider.IsAvailable(); err != nil {
		fmt.Fprintf(os.Stderr, "  Warning: audio provider %s not available: %v\n", provider.Name(), err)
		return nil
	}
	return provider
}
