package processor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/olegs18/transcriber/internal/audio"
	"github.com/olegs18/transcriber/internal/batch"
	"github.com/olegs18/transcriber/internal/normalize"
	"github.com/olegs18/transcriber/internal/phonetic"
	"github.com/olegs18/transcriber/internal/progress"
	"github.com/olegs18/transcriber/internal/record"
	"github.com/olegs18/transcriber/internal/session"
	"github.com/olegs18/transcriber/internal/store"
	"github.com/olegs18/transcriber/internal/translation"
)

// Options holds the paths and policies of a run
type Options struct {
	StudyLang  string
	TargetLang string

	CachePath   string // global dictionary cache
	SessionsDir string
	AudioDir    string
	AudioFormat string

	StrictAudio       bool // abort the batch when audio generation fails
	RetranslateErrors bool // translate cached records holding an error marker again
}

// Deps are the collaborators of a Processor. Translator and Speech may be
// nil: phrases are then left untranslated (with an error marker) or
// without audio.
type Deps struct {
	Profile    *phonetic.Profile
	Translator translation.Translator
	Gateway    translation.GatewayConfig
	Speech     audio.Provider
	Mixer      audio.Mixer
	Strategy   session.Strategy
	Overlay    *progress.Overlay

	Out    io.Writer
	ErrOut io.Writer
	Now    func() time.Time
}

// Processor handles the main phrase processing logic
type Processor struct {
	options     Options
	normalizer  *normalize.Normalizer
	transcriber *phonetic.Transcriber
	gateway     *translation.Gateway
	audio       *audio.Cache
	mixer       audio.Mixer
	sessions    *session.Manager
	overlay     *progress.Overlay
	out         io.Writer
	errOut      io.Writer
	now         func() time.Time

	cache *record.Store
}

// Summary counts what happened to a batch
type Summary struct {
	Total               int
	Processed           int
	FromCache           int
	Errors              int
	TranslationErrors   int
	TranslationRequests int // backend calls, including short-circuited ones
	AudioGenerated      int
	AudioReused         int
	AudioAdopted        int // reused clips that predate content addressing
	AudioFailures       int
}

// Result is a processed batch
type Result struct {
	Records []record.Record // one per key, in first-seen order
	Summary Summary
}

// New creates a processor. The global cache is loaded on first use.
func New(options Options, deps Deps) (*Processor, error) {
	if deps.Profile == nil {
		return nil, fmt.Errorf("no phonetic profile for %s", options.StudyLang)
	}
	if options.TargetLang == "" {
		return nil, fmt.Errorf("no target language configured")
	}

	normalizer, err := normalize.New(deps.Profile.Normalization)
	if err != nil {
		return nil, fmt.Errorf("invalid normalization table for %s: %w", deps.Profile.Lang, err)
	}

	p := &Processor{
		options:     options,
		normalizer:  normalizer,
		transcriber: phonetic.NewTranscriber(deps.Profile),
		mixer:       deps.Mixer,
		overlay:     deps.Overlay,
		out:         deps.Out,
		errOut:      deps.ErrOut,
		now:         deps.Now,
	}
	if p.out == nil {
		p.out = os.Stdout
	}
	if p.errOut == nil {
		p.errOut = os.Stderr
	}
	if p.now == nil {
		p.now = time.Now
	}
	if p.overlay == nil {
		p.overlay = progress.NewOverlayWithClock(p.now)
	}
	if p.options.AudioFormat == "" {
		p.options.AudioFormat = "mp3"
	}

	if deps.Translator != nil {
		p.gateway = translation.NewGateway(deps.Translator, deps.Gateway, p.out)
	}
	if deps.Speech != nil {
		p.audio = audio.NewCache(options.AudioDir, p.options.AudioFormat, deps.Speech, deps.Profile.Version())
	}

	dir := session.NewDirectory(options.SessionsDir, p.defaults())
	p.sessions = session.NewManagerWithClock(dir, session.Engine{Strategy: deps.Strategy, Overlay: p.overlay}, p.now)

	return p, nil
}

func (p *Processor) defaults() store.Defaults {
	return store.Defaults{
		StudyLang:  p.options.StudyLang,
		TargetLang: p.options.TargetLang,
		Normalize:  p.normalizer.Normalize,
	}
}

func (p *Processor) debugf(format string, args ...interface{}) {
	if os.Getenv("DEBUG_TRANSCRIBER") != "" {
		fmt.Fprintf(p.out, "  [DEBUG] "+format+"\n", args...)
	}
}

// Overlay returns the progress overlay of the run
func (p *Processor) Overlay() *progress.Overlay {
	return p.overlay
}

// Sessions returns the session directory
func (p *Processor) Sessions() *session.Directory {
	return p.sessions.Dir
}

// Key returns the identity of phrase under the configured target language
func (p *Processor) Key(phrase string) record.Key {
	return record.Key{Normalized: p.normalizer.Normalize(phrase), TargetLang: p.options.TargetLang}
}

// loadCache reads the global dictionary cache once
func (p *Processor) loadCache() (*record.Store, error) {
	if p.cache != nil {
		return p.cache, nil
	}

	s, report, err := store.Load(p.options.CachePath, p.defaults())
	if err != nil {
		return nil, fmt.Errorf("failed to load cache: %w", err)
	}
	p.warnLoad(p.options.CachePath, report)
	p.debugf("Loaded %d cached records from %s", s.Len(), p.options.CachePath)

	p.cache = s
	return s, nil
}

func (p *Processor) saveCache() error {
	if err := store.Save(p.cache, p.options.CachePath); err != nil {
		return fmt.Errorf("failed to save cache: %w", err)
	}
	return nil
}

func (p *Processor) warnLoad(path string, report store.LoadReport) {
	if len(report.Legacy) > 0 {
		fmt.Fprintf(p.out, "Note: %s uses an older layout (%v), it will be upgraded on save\n", path, report.Legacy)
	}
	if !report.HasProblems() {
		return
	}
	fmt.Fprintf(p.out, "Warning: %s: skipped %d malformed rows, cleared %d invalid dates, %d unrecognized known values\n",
		path, report.Skipped, report.BlankedDates, report.BadKnown)
}

// Process runs a batch through the pipeline and updates the global cache.
// The batch is not written to a session; see SaveSession.
func (p *Processor) Process(ctx context.Context, entries []batch.Entry) (*Result, error) {
	cache, err := p.loadCache()
	if err != nil {
		return nil, err
	}

	entries = p.reverseTranslate(ctx, batch.Dedupe(entries))

	result := &Result{}
	sum := &result.Summary
	sum.Total = len(entries)

	index := make(map[record.Key]int)
	var runErr error

	callsBefore := 0
	if p.gateway != nil {
		callsBefore = p.gateway.Calls()
	}

	for i, entry := range entries {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		if entry.Phrase == "" {
			continue
		}

		fmt.Fprintf(p.out, "\nProcessing %d/%d: %s\n", i+1, len(entries), entry.Phrase)

		rec, cached, err := p.processEntry(ctx, cache, entry)
		if ctxErr := ctx.Err(); ctxErr != nil {
			runErr = ctxErr
			break
		}
		if err != nil {
			fmt.Fprintf(p.errOut, "Error processing '%s': %v\n", entry.Phrase, err)
			sum.Errors++
			continue
		}

		if cached {
			sum.FromCache++
		} else {
			sum.Processed++
		}
		if translation.IsSentinel(rec.Translation) {
			fmt.Fprintf(p.out, "  Warning: no translation: %s\n", rec.Translation)
			sum.TranslationErrors++
		}

		if err := p.ensureAudio(ctx, rec, sum); err != nil {
			runErr = err
			break
		}

		// Spellings that normalize alike collapse into one record
		if pos, ok := index[rec.Key()]; ok {
			result.Records[pos] = rec
		} else {
			index[rec.Key()] = len(result.Records)
			result.Records = append(result.Records, rec)
		}
	}

	if runErr == nil {
		runErr = ctx.Err()
	}
	if p.gateway != nil {
		sum.TranslationRequests = p.gateway.Calls() - callsBefore
	}

	// Keep whatever was completed, even when the batch was aborted
	if err := p.saveCache(); err != nil {
		return nil, err
	}

	p.printSummary(sum)

	if runErr != nil {
		return result, runErr
	}
	return result, nil
}

// reverseTranslate fills in the phrase of "= translation" entries
func (p *Processor) reverseTranslate(ctx context.Context, entries []batch.Entry) []batch.Entry {
	for i, entry := range entries {
		if !entry.NeedsReverse {
			continue
		}
		if p.gateway == nil {
			fmt.Fprintf(p.errOut, "Error translating '%s': no translation backend configured\n", entry.Translation)
			continue
		}

		phrase, err := p.gateway.Reverse(ctx, entry.Translation, p.options.TargetLang, p.options.StudyLang)
		if err != nil {
			fmt.Fprintf(p.errOut, "Error translating '%s' to %s: %v\n", entry.Translation, translation.LanguageName(p.options.StudyLang), err)
			continue
		}
		entries[i].Phrase = phrase
		entries[i].NeedsReverse = false
		fmt.Fprintf(p.out, "Translated '%s' to %s: %s\n", entry.Translation, translation.LanguageName(p.options.StudyLang), phrase)
	}
	return entries
}

// processEntry returns the record for entry and whether it came from the
// cache unchanged
func (p *Processor) processEntry(ctx context.Context, cache *record.Store, entry batch.Entry) (record.Record, bool, error) {
	if err := audio.ValidateText(entry.Phrase); err != nil {
		return record.Record{}, false, fmt.Errorf("invalid phrase: %w", err)
	}

	normalized := p.normalizer.Normalize(entry.Phrase)
	key := record.Key{Normalized: normalized, TargetLang: p.options.TargetLang}
	p.debugf("Key: %s", key)

	prior, hit := cache.Get(key)
	if hit && p.reusable(prior, entry) {
		fmt.Fprintf(p.out, "  ✓ Using cached record: %s\n", prior.Translation)
		return prior, true, nil
	}

	ipa, approx := p.transcriber.Transcribe(normalized)
	fmt.Fprintf(p.out, "  Transcription: [%s] %s\n", ipa, approx)

	translationText := entry.Translation
	if translationText != "" {
		fmt.Fprintf(p.out, "  Using provided translation: %s\n", translationText)
	} else {
		fmt.Fprintf(p.out, "  Translating to %s...\n", translation.LanguageName(p.options.TargetLang))
		translationText = p.translate(ctx, key, normalized)
		if !translation.IsSentinel(translationText) {
			fmt.Fprintf(p.out, "  Translation: %s\n", translationText)
		}
	}

	rec := record.Record{
		Original:       entry.Phrase,
		Normalized:     normalized,
		IPA:            ipa,
		ApproxPhonetic: approx,
		Translation:    translationText,
		TargetLang:     p.options.TargetLang,
		StudyLang:      p.options.StudyLang,
		DateAdded:      record.NewDate(p.now()),
	}
	if hit {
		// Replacing the derived fields must not lose progress
		rec.Category = prior.Category
		rec = rec.WithStatus(prior.Known, prior.DateKnown)
		if !prior.DateAdded.IsZero() {
			rec.DateAdded = prior.DateAdded
		}
	}

	// An interrupted lookup is not a backend failure and must not be stored
	if err := ctx.Err(); err != nil {
		return record.Record{}, false, err
	}

	cache.Put(rec)
	return rec, false, nil
}

// reusable reports whether a cached record can be served for entry
func (p *Processor) reusable(prior record.Record, entry batch.Entry) bool {
	if entry.Translation != "" && entry.Translation != prior.Translation {
		return false
	}
	if p.options.RetranslateErrors && translation.IsSentinel(prior.Translation) {
		return false
	}
	return true
}

func (p *Processor) translate(ctx context.Context, key record.Key, text string) string {
	if p.gateway == nil {
		return translation.ErrorSentinel(errors.New("no translation backend configured"))
	}
	return p.gateway.Translate(ctx, key, text, p.options.StudyLang)
}

// ensureAudio makes sure the phrase clip exists. Failures are counted and
// only returned under the strict policy or when the run was cancelled.
func (p *Processor) ensureAudio(ctx context.Context, rec record.Record, sum *Summary) error {
	if p.audio == nil {
		return nil
	}

	generated, hits, adopted := p.audio.Generated(), p.audio.Hits(), p.audio.Adopted()
	path, err := p.audio.EnsureAudio(ctx, rec.Normalized, p.options.StudyLang, p.audio.FileName(rec.Normalized, p.options.StudyLang))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if p.options.StrictAudio {
			return fmt.Errorf("audio generation failed for '%s': %w", rec.Original, err)
		}
		fmt.Fprintf(p.out, "  Warning: audio generation failed: %v\n", err)
		sum.AudioFailures++
		return nil
	}

	switch {
	case p.audio.Generated() > generated:
		fmt.Fprintf(p.out, "  Generated audio: %s\n", path)
		sum.AudioGenerated++
	case p.audio.Hits() > hits:
		p.debugf("Audio up to date: %s", path)
		sum.AudioReused++
		if p.audio.Adopted() > adopted {
			sum.AudioAdopted++
		}
	}
	return nil
}

func (p *Processor) printSummary(sum *Summary) {
	fmt.Fprintf(p.out, "\n=== Batch Processing Summary ===\n")
	fmt.Fprintf(p.out, "Total phrases: %d\n", sum.Total)
	fmt.Fprintf(p.out, "Processed: %d\n", sum.Processed)
	fmt.Fprintf(p.out, "From cache: %d\n", sum.FromCache)
	if p.gateway != nil {
		fmt.Fprintf(p.out, "Translation requests: %d\n", sum.TranslationRequests)
	}
	if sum.TranslationErrors > 0 {
		fmt.Fprintf(p.out, "Translation errors: %d\n", sum.TranslationErrors)
	}
	if p.audio != nil {
		fmt.Fprintf(p.out, "Audio generated: %d, reused: %d", sum.AudioGenerated, sum.AudioReused)
		if sum.AudioAdopted > 0 {
			fmt.Fprintf(p.out, " (%d without key, adopted)", sum.AudioAdopted)
		}
		fmt.Fprintf(p.out, "\n")
	}
	if sum.AudioFailures > 0 {
		fmt.Fprintf(p.out, "Audio failures: %d\n", sum.AudioFailures)
	}
	if sum.Errors > 0 {
		fmt.Fprintf(p.out, "Errors: %d\n", sum.Errors)
	}
	fmt.Fprintf(p.out, "================================\n")
}

// Retranslate translates every cached record that holds an error marker
// again and saves the cache. It returns the number of records fixed.
func (p *Processor) Retranslate(ctx context.Context) (int, error) {
	cache, err := p.loadCache()
	if err != nil {
		return 0, err
	}
	if p.gateway == nil {
		return 0, fmt.Errorf("no translation backend configured")
	}

	var pending []record.Record
	for _, rec := range cache.Records() {
		if translation.IsSentinel(rec.Translation) {
			pending = append(pending, rec)
		}
	}
	if len(pending) == 0 {
		fmt.Fprintf(p.out, "No failed translations in the cache\n")
		return 0, nil
	}

	fixed := 0
	for i, rec := range pending {
		if err := ctx.Err(); err != nil {
			break
		}
		fmt.Fprintf(p.out, "Retranslating %d/%d: %s\n", i+1, len(pending), rec.Original)

		text := p.gateway.Translate(ctx, rec.Key(), rec.Normalized, p.options.StudyLang)
		if translation.IsSentinel(text) {
			fmt.Fprintf(p.out, "  Warning: still failing: %s\n", text)
			continue
		}
		rec.Translation = text
		cache.Put(rec)
		fixed++
	}

	if err := p.saveCache(); err != nil {
		return fixed, err
	}
	fmt.Fprintf(p.out, "Fixed %d of %d failed translations\n", fixed, len(pending))
	return fixed, ctx.Err()
}
