// Package normalize canonicalizes raw phrase text: lowercase, whitespace
// collapsed, and individual tokens replaced through an exception table.
package normalize

import (
	"errors"
	"fmt"
	"strings"
)

// ErrCycle is returned when the exception table maps a token back onto itself
var ErrCycle = errors.New("normalization map contains a cycle")

// Normalizer applies the exception table to phrases. It is read-only after
// construction.
type Normalizer struct {
	exceptions map[string]string
}

// New builds a Normalizer from an exception table. Keys and values are
// lowercased and chains are resolved to their final form so that
// normalization is idempotent.
func New(exceptions map[string]string) (*Normalizer, error) {
	table := make(map[string]string, len(exceptions))
	for from, to := range exceptions {
		from = strings.ToLower(strings.TrimSpace(from))
		to = strings.Join(strings.Fields(strings.ToLower(to)), " ")
		if from == "" || strings.ContainsAny(from, " \t\n") {
			return nil, fmt.Errorf("invalid normalization key %q: must be a single word", from)
		}
		if from == to {
			continue
		}
		table[from] = to
	}

	resolved := make(map[string]string, len(table))
	for from := range table {
		to, err := resolve(table, from)
		if err != nil {
			return nil, err
		}
		resolved[from] = to
	}

	// A replacement made of several words must not contain a word that is
	// itself replaced, or a second pass would change it again.
	for from, to := range resolved {
		for _, tok := range strings.Fields(to) {
			if _, ok := resolved[tok]; ok {
				return nil, fmt.Errorf("replacement %q for %q contains mapped word %q", to, from, tok)
			}
		}
	}

	return &Normalizer{exceptions: resolved}, nil
}

// MustNew is like New but panics on an invalid table. Intended for built-in
// tables.
func MustNew(exceptions map[string]string) *Normalizer {
	n, err := New(exceptions)
	if err != nil {
		panic(err)
	}
	return n
}

func resolve(table map[string]string, from string) (string, error) {
	seen := map[string]bool{from: true}
	to := table[from]
	for {
		next, ok := table[to]
		if !ok {
			return to, nil
		}
		if seen[to] {
			return "", fmt.Errorf("%w: %q", ErrCycle, from)
		}
		seen[to] = true
		to = next
	}
}

// Normalize returns the canonical form of text. It never fails.
func (n *Normalizer) Normalize(text string) string {
	words := strings.Fields(strings.ToLower(text))
	for i, w := range words {
		if repl, ok := n.exceptions[w]; ok {
			words[i] = repl
		}
	}
	return strings.Join(words, " ")
}

// Exceptions returns a copy of the resolved exception table
func (n *Normalizer) Exceptions() map[string]string {
	out := make(map[string]string, len(n.exceptions))
	for k, v := range n.exceptions {
		out[k] = v
	}
	return out
}
