package progress

import (
	"time"

	"github.com/olegs18/transcriber/internal/record"
)

// Status is the study status recorded for one key
type Status struct {
	Known     bool
	DateKnown record.Date
}

// Overlay holds status changes made during a run. It overrides the values
// loaded from any file until it is written back into records.
type Overlay struct {
	entries map[record.Key]Status
	now     func() time.Time
}

// NewOverlay creates an empty overlay using the system clock
func NewOverlay() *Overlay {
	return NewOverlayWithClock(time.Now)
}

// NewOverlayWithClock creates an empty overlay that dates changes with now
func NewOverlayWithClock(now func() time.Time) *Overlay {
	return &Overlay{
		entries: make(map[record.Key]Status),
		now:     now,
	}
}

// SetKnown records a status change for key. Marking a key known stamps
// today's date unless it is already known in the overlay; marking it
// unknown clears the date.
func (o *Overlay) SetKnown(key record.Key, known bool) {
	if !known {
		o.entries[key] = Status{}
		return
	}

	if prev, ok := o.entries[key]; ok && prev.Known {
		return
	}
	o.entries[key] = Status{Known: true, DateKnown: record.NewDate(o.now())}
}

// Get returns the overlay status for key
func (o *Overlay) Get(key record.Key) (Status, bool) {
	s, ok := o.entries[key]
	return s, ok
}

// Len returns the number of keys with a status change
func (o *Overlay) Len() int {
	return len(o.entries)
}

// Reconcile applies the overlay status to rec. A record that was already
// known keeps its original date.
func (o *Overlay) Reconcile(rec record.Record) record.Record {
	s, ok := o.entries[rec.Key()]
	if !ok {
		return rec
	}

	if s.Known && rec.Known && !rec.DateKnown.IsZero() {
		return rec
	}
	return rec.WithStatus(s.Known, s.DateKnown)
}

// ReconcileStore applies the overlay to every record in s
func (o *Overlay) ReconcileStore(s *record.Store) {
	s.Update(o.Reconcile)
}
