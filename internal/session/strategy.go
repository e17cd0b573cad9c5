package session

import (
	"fmt"

	"github.com/olegs18/transcriber/internal/record"
)

// Strategy combines a record already in a session with a freshly processed
// record for the same key
type Strategy interface {
	Merge(prior, incoming record.Record) record.Record
}

// Overwrite replaces the prior record with the incoming one, status included
type Overwrite struct{}

// Merge returns incoming
func (Overwrite) Merge(prior, incoming record.Record) record.Record {
	return incoming
}

// PreserveProgress takes derived fields from the incoming record but keeps
// study progress from whichever side has it
type PreserveProgress struct{}

// Merge returns incoming with status, category and date added carried over
// from prior where prior is more informative
func (PreserveProgress) Merge(prior, incoming record.Record) record.Record {
	out := incoming

	switch {
	case prior.Known && incoming.Known:
		if incoming.DateKnown.Before(prior.DateKnown) {
			out = out.WithStatus(true, prior.DateKnown)
		}
	case prior.Known:
		out = out.WithStatus(true, prior.DateKnown)
	}

	if out.Category == "" {
		out.Category = prior.Category
	}

	if out.DateAdded.IsZero() || (!prior.DateAdded.IsZero() && prior.DateAdded.Before(out.DateAdded)) {
		out.DateAdded = prior.DateAdded
	}

	return out
}

// StrategyByName returns the strategy for a configuration value
func StrategyByName(name string) (Strategy, error) {
	switch name {
	case "overwrite":
		return Overwrite{}, nil
	case "preserve-progress", "":
		return PreserveProgress{}, nil
	default:
		return nil, fmt.Errorf("unknown merge strategy: %s", name)
	}
}
