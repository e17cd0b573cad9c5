package session

import (
	"fmt"
	"time"

	"github.com/olegs18/transcriber/internal/progress"
	"github.com/olegs18/transcriber/internal/record"
	"github.com/olegs18/transcriber/internal/store"
)

// Engine merges processed batches into stores. The zero value overwrites
// prior records and applies no overlay.
type Engine struct {
	Strategy Strategy
	Overlay  *progress.Overlay
}

func (e Engine) strategy() Strategy {
	if e.Strategy == nil {
		return Overwrite{}
	}
	return e.Strategy
}

// Merge returns the union of prior and batch. Keys found only in prior are
// kept, batch records go through the strategy, and the overlay is applied
// to the result last. prior is not modified and may be nil.
func (e Engine) Merge(prior *record.Store, batch []record.Record) *record.Store {
	var merged *record.Store
	if prior == nil {
		merged = record.NewStore()
	} else {
		merged = prior.Clone()
	}

	strategy := e.strategy()
	for _, rec := range batch {
		if old, ok := merged.Get(rec.Key()); ok {
			rec = strategy.Merge(old, rec)
		}
		merged.Put(rec)
	}

	if e.Overlay != nil {
		e.Overlay.ReconcileStore(merged)
	}
	return merged
}

// Manager writes batches into session files
type Manager struct {
	Dir    *Directory
	Engine Engine
	now    func() time.Time
}

// NewManager creates a manager for the sessions in dir
func NewManager(dir *Directory, engine Engine) *Manager {
	return NewManagerWithClock(dir, engine, time.Now)
}

// NewManagerWithClock creates a manager that names new sessions with now
func NewManagerWithClock(dir *Directory, engine Engine, now func() time.Time) *Manager {
	return &Manager{Dir: dir, Engine: engine, now: now}
}

// Append merges batch into the named session and writes it back to the
// same file. The session must exist.
func (m *Manager) Append(name string, batch []record.Record) (*record.Store, error) {
	prior, _, err := m.Dir.Load(name)
	if err != nil {
		return nil, err
	}

	merged := m.Engine.Merge(prior, batch)
	if err := store.Save(merged, m.Dir.Path(name)); err != nil {
		return nil, fmt.Errorf("failed to save session %s: %w", name, err)
	}
	return merged, nil
}

// StartNew writes batch to a new session file and returns its name. Earlier
// sessions are left untouched.
func (m *Manager) StartNew(batch []record.Record) (string, *record.Store, error) {
	name, err := m.Dir.NewName(m.now())
	if err != nil {
		return "", nil, err
	}

	merged := m.Engine.Merge(nil, batch)
	if err := store.Save(merged, m.Dir.Path(name)); err != nil {
		return "", nil, fmt.Errorf("failed to save session %s: %w", name, err)
	}
	return name, merged, nil
}
