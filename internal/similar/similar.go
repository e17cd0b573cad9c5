// Package similar finds phrases that are probably spelling variants of each
// other, so that they can be folded together by the normalization table.
//
// Two phrases are compared only when they have the same number of words and
// differ in exactly one of them. The differing words are scored with
// Jaro-Winkler similarity; words whose Double Metaphone codes overlap need a
// lower score than words that merely look alike. A shared translation is
// reported alongside, as it is the strongest hint that the two forms mean
// the same thing.
package similar

import (
	"sort"
	"strings"

	"github.com/antzucaro/matchr"

	"github.com/olegs18/transcriber/internal/record"
	"github.com/olegs18/transcriber/internal/translation"
)

const (
	defaultPhoneticThreshold = 0.80
	defaultFuzzyThreshold    = 0.90
)

// Option configures a Finder
type Option func(*Finder)

// WithPhoneticThreshold sets the score needed when phonetic codes overlap
func WithPhoneticThreshold(threshold float64) Option {
	return func(f *Finder) {
		f.phoneticThreshold = threshold
	}
}

// WithFuzzyThreshold sets the score needed without phonetic overlap
func WithFuzzyThreshold(threshold float64) Option {
	return func(f *Finder) {
		f.fuzzyThreshold = threshold
	}
}

// Suggestion proposes adding From -> To to the normalization table
type Suggestion struct {
	From            string
	To              string
	Score           float64
	Phonetic        bool
	SameTranslation bool
	Examples        []string // originals that contain From
}

// Finder detects near-duplicate phrases
type Finder struct {
	phoneticThreshold float64
	fuzzyThreshold    float64
}

// New returns a Finder with the default thresholds
func New(opts ...Option) *Finder {
	f := &Finder{
		phoneticThreshold: defaultPhoneticThreshold,
		fuzzyThreshold:    defaultFuzzyThreshold,
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

type pair struct{ from, to string }

// Suggest compares records pairwise within each target language. The later
// record's word is proposed as the variant of the earlier one.
func (f *Finder) Suggest(records []record.Record) []Suggestion {
	found := make(map[pair]*Suggestion)
	var order []pair

	for i := 0; i < len(records); i++ {
		a := records[i]
		aTokens := strings.Fields(a.Normalized)

		for j := i + 1; j < len(records); j++ {
			b := records[j]
			if a.TargetLang != b.TargetLang || a.Normalized == b.Normalized {
				continue
			}

			to, from, ok := diffToken(aTokens, strings.Fields(b.Normalized))
			if !ok {
				continue
			}

			score, phonetic, ok := f.score(from, to)
			if !ok {
				continue
			}

			p := pair{from: from, to: to}
			s, seen := found[p]
			if !seen {
				s = &Suggestion{From: from, To: to, Score: score, Phonetic: phonetic}
				found[p] = s
				order = append(order, p)
			}
			if sameTranslation(a, b) {
				s.SameTranslation = true
			}
			s.Examples = appendUnique(s.Examples, b.Original)
		}
	}

	out := make([]Suggestion, 0, len(order))
	for _, p := range order {
		out = append(out, *found[p])
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SameTranslation != out[j].SameTranslation {
			return out[i].SameTranslation
		}
		return out[i].Score > out[j].Score
	})
	return out
}

// score returns the similarity of two words and whether it passes
func (f *Finder) score(a, b string) (float64, bool, bool) {
	jw := matchr.JaroWinkler(a, b, false)
	phonetic := codesOverlap(a, b)

	if phonetic && jw >= f.phoneticThreshold {
		return jw, true, true
	}
	if jw >= f.fuzzyThreshold {
		return jw, phonetic, true
	}
	return jw, phonetic, false
}

// diffToken returns the words at the single position where a and b differ
func diffToken(a, b []string) (string, string, bool) {
	if len(a) != len(b) || len(a) == 0 {
		return "", "", false
	}

	pos := -1
	for i := range a {
		if a[i] != b[i] {
			if pos >= 0 {
				return "", "", false
			}
			pos = i
		}
	}
	if pos < 0 {
		return "", "", false
	}
	return a[pos], b[pos], true
}

func codesOverlap(a, b string) bool {
	ap, as := matchr.DoubleMetaphone(a)
	bp, bs := matchr.DoubleMetaphone(b)
	for _, x := range []string{ap, as} {
		if x == "" {
			continue
		}
		if x == bp || x == bs {
			return true
		}
	}
	return false
}

func sameTranslation(a, b record.Record) bool {
	if a.Translation == "" || translation.IsSentinel(a.Translation) {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(a.Translation), strings.TrimSpace(b.Translation))
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}
