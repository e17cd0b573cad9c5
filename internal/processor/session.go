package processor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/olegs18/transcriber/internal/progress"
	"github.com/olegs18/transcriber/internal/record"
	"github.com/olegs18/transcriber/internal/similar"
	"github.com/olegs18/transcriber/internal/store"
)

// SaveSession writes records into a session. With startNew a fresh session
// is created; otherwise records are appended to the named session, or to
// the newest one when name is empty. Without any session a new one is
// started. It returns the name of the session written.
func (p *Processor) SaveSession(records []record.Record, name string, startNew bool) (string, error) {
	if len(records) == 0 {
		fmt.Fprintf(p.out, "Nothing to save\n")
		return "", nil
	}

	if !startNew && name == "" {
		latest, err := p.sessions.Dir.Latest()
		switch {
		case errors.Is(err, store.ErrNoSession):
			startNew = true
		case err != nil:
			return "", err
		default:
			name = latest
		}
	}

	if startNew {
		created, s, err := p.sessions.StartNew(records)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(p.out, "Started session %s with %d records\n", created, s.Len())
		return created, nil
	}

	merged, err := p.sessions.Append(name, records)
	if err != nil {
		return "", fmt.Errorf("failed to append to session %s: %w", name, err)
	}
	fmt.Fprintf(p.out, "Appended %d records to session %s (%d total)\n", len(records), name, merged.Len())
	return name, nil
}

// resolveSession returns name, or the newest session when name is empty.
// An empty result means there are no sessions.
func (p *Processor) resolveSession(name string) (string, error) {
	if name != "" {
		return name, nil
	}
	latest, err := p.sessions.Dir.Latest()
	if errors.Is(err, store.ErrNoSession) {
		return "", nil
	}
	return latest, err
}

// Mark sets the known status of phrase and writes it back to the cache and
// to the session (the newest one when sessionName is empty) before saving.
func (p *Processor) Mark(phrase string, known bool, sessionName string) error {
	key := p.Key(phrase)
	if !key.Valid() {
		return fmt.Errorf("invalid phrase '%s'", phrase)
	}
	p.overlay.SetKnown(key, known)

	found := false

	cache, err := p.loadCache()
	if err != nil {
		return err
	}
	if cache.Has(key) {
		p.overlay.ReconcileStore(cache)
		if err := p.saveCache(); err != nil {
			return err
		}
		found = true
	}

	name, err := p.resolveSession(sessionName)
	if err != nil {
		return err
	}
	if name != "" {
		s, report, err := p.sessions.Dir.Load(name)
		if err != nil {
			return fmt.Errorf("failed to load session %s: %w", name, err)
		}
		p.warnLoad(name, report)

		if s.Has(key) {
			p.overlay.ReconcileStore(s)
			if err := store.Save(s, p.sessions.Dir.Path(name)); err != nil {
				return fmt.Errorf("failed to save session %s: %w", name, err)
			}
			found = true
		}
	}

	if !found {
		return fmt.Errorf("phrase '%s' (%s) not found", phrase, key)
	}

	state := "unknown"
	if known {
		state = "known"
	}
	fmt.Fprintf(p.out, "Marked '%s' as %s\n", key.Normalized, state)
	return nil
}

// ShowOptions selects what Show prints
type ShowOptions struct {
	Session     string // "" shows the global cache
	Filter      string
	UnknownOnly bool
}

// Records returns the reconciled records of a session, or of the global
// cache when name is empty
func (p *Processor) Records(name string) ([]record.Record, error) {
	var s *record.Store
	if name == "" {
		cache, err := p.loadCache()
		if err != nil {
			return nil, err
		}
		s = cache.Clone()
	} else {
		loaded, report, err := p.sessions.Dir.Load(name)
		if err != nil {
			return nil, fmt.Errorf("failed to load session %s: %w", name, err)
		}
		p.warnLoad(name, report)
		s = loaded
	}

	p.overlay.ReconcileStore(s)
	return s.Records(), nil
}

// Show prints records with their transcriptions and the progress summary
func (p *Processor) Show(opts ShowOptions) error {
	all, err := p.Records(opts.Session)
	if err != nil {
		return err
	}

	records := progress.Filter(all, opts.Filter)
	if opts.UnknownOnly {
		records = progress.Unknown(records)
	}

	source := opts.Session
	if source == "" {
		source = "cache"
	}
	fmt.Fprintf(p.out, "%s: %d of %d records\n\n", source, len(records), len(all))

	for _, rec := range records {
		mark := "·"
		if rec.Known {
			mark = "✓"
		}
		fmt.Fprintf(p.out, "%s %-24s %-24s %-24s %s\n", mark, rec.Original, "["+rec.IPA+"]", rec.ApproxPhonetic, rec.Translation)
	}

	st := progress.Summarize(all)
	fmt.Fprintf(p.out, "\nProgress: %d/%d known (%.0f%%)\n", st.Known, st.Total, st.Percent)

	if p.audio != nil {
		if cs, err := p.audio.Stats(); err == nil {
			fmt.Fprintf(p.out, "Audio cache: %d files, %.1f KB\n", cs.Files, float64(cs.Bytes)/1024)
		}
	}
	return nil
}

// ListSessions prints the sessions, newest first
func (p *Processor) ListSessions() error {
	sessions, err := p.sessions.Dir.List()
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Fprintf(p.out, "No sessions in %s\n", p.sessions.Dir.Root())
		return nil
	}

	for _, info := range sessions {
		s, _, err := p.sessions.Dir.Load(info.Name)
		if err != nil {
			fmt.Fprintf(p.out, "  Warning: %s: %v\n", info.Name, err)
			continue
		}
		st := progress.Summarize(s.Records())
		fmt.Fprintf(p.out, "%s  %s  %3d records, %3d known\n",
			info.Name, info.ModTime.Format("2006-01-02 15:04"), st.Total, st.Known)
	}
	return nil
}

// Similar prints normalization table suggestions for the cached phrases
func (p *Processor) Similar(finder *similar.Finder) ([]similar.Suggestion, error) {
	cache, err := p.loadCache()
	if err != nil {
		return nil, err
	}
	if finder == nil {
		finder = similar.New()
	}

	suggestions := finder.Suggest(cache.Records())
	if len(suggestions) == 0 {
		fmt.Fprintf(p.out, "No similar phrases found\n")
		return nil, nil
	}

	fmt.Fprintf(p.out, "Possible spelling variants (%d):\n", len(suggestions))
	for _, s := range suggestions {
		var hints []string
		if s.Phonetic {
			hints = append(hints, "sounds alike")
		}
		if s.SameTranslation {
			hints = append(hints, "same translation")
		}
		fmt.Fprintf(p.out, "  %s -> %s  (%.2f", s.From, s.To, s.Score)
		if len(hints) > 0 {
			fmt.Fprintf(p.out, ", %s", strings.Join(hints, ", "))
		}
		fmt.Fprintf(p.out, ")  e.g. %s\n", strings.Join(s.Examples, "; "))
	}

	// Records normalized before a table entry existed still show up
	table := p.normalizer.Exceptions()
	var fresh, known []similar.Suggestion
	for _, s := range suggestions {
		if table[s.From] == s.To {
			known = append(known, s)
		} else {
			fresh = append(fresh, s)
		}
	}

	if len(fresh) > 0 {
		fmt.Fprintf(p.out, "\nTo fold them together, add to the normalization table of the profile:\n")
		for _, s := range fresh {
			fmt.Fprintf(p.out, "  %s: %s\n", s.From, s.To)
		}
	}
	if len(known) > 0 {
		fmt.Fprintf(p.out, "\nAlready in the normalization table, reprocess the phrases to fold them:\n")
		for _, s := range known {
			fmt.Fprintf(p.out, "  %s -> %s\n", s.From, s.To)
		}
	}
	return suggestions, nil
}
