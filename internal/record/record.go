package record

import (
	"fmt"
	"time"
)

// DateLayout is the calendar date format used in record files
const DateLayout = "2006-01-02"

// Key identifies a learning record. It is comparable and used directly as a
// map key.
type Key struct {
	Normalized string
	TargetLang string
}

// String returns a human readable form of the key for log output
func (k Key) String() string {
	return fmt.Sprintf("%s [%s]", k.Normalized, k.TargetLang)
}

// Valid reports whether both identity fields are present
func (k Key) Valid() bool {
	return k.Normalized != "" && k.TargetLang != ""
}

// Date is a calendar date without time of day. The zero value means "no date".
type Date struct {
	t time.Time
}

// NewDate truncates t to its calendar date
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string. An empty string yields the zero Date.
func ParseDate(s string) (Date, error) {
	if s == "" {
		return Date{}, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{t: t}, nil
}

// IsZero reports whether the date is unset
func (d Date) IsZero() bool {
	return d.t.IsZero()
}

// String formats the date as YYYY-MM-DD, or "" for the zero Date
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(DateLayout)
}

// Before reports whether d is strictly earlier than other
func (d Date) Before(other Date) bool {
	return d.t.Before(other.t)
}

// Record is a single learning record
type Record struct {
	Original       string // Raw input text as first encountered
	Normalized     string // Canonical lowercase text
	IPA            string // IPA-like rendering
	ApproxPhonetic string // Approximate rendering in the learner's script
	Translation    string // Translation or an embedded error sentinel
	TargetLang     string // Language translated into
	StudyLang      string // Language being learned
	Category       string // Optional free-text tag
	Known          bool
	DateAdded      Date
	DateKnown      Date
}

// Key returns the identity key of the record
func (r Record) Key() Key {
	return Key{Normalized: r.Normalized, TargetLang: r.TargetLang}
}

// WithStatus returns a copy of r with the study status replaced
func (r Record) WithStatus(known bool, dateKnown Date) Record {
	r.Known = known
	r.DateKnown = dateKnown
	return r
}
