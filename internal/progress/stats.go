package progress

import (
	"strings"

	"github.com/olegs18/transcriber/internal/record"
)

// Stats summarizes study progress
type Stats struct {
	Total   int
	Known   int
	Percent float64
}

// Summarize counts known records
func Summarize(records []record.Record) Stats {
	st := Stats{Total: len(records)}
	for _, r := range records {
		if r.Known {
			st.Known++
		}
	}
	if st.Total > 0 {
		st.Percent = float64(st.Known) * 100 / float64(st.Total)
	}
	return st
}

// Filter returns the records whose original text or translation contains
// query, ignoring case. An empty query matches everything.
func Filter(records []record.Record, query string) []record.Record {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return records
	}

	var out []record.Record
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.Original), q) ||
			strings.Contains(strings.ToLower(r.Translation), q) {
			out = append(out, r)
		}
	}
	return out
}

// Unknown returns the records not yet known, in order
func Unknown(records []record.Record) []record.Record {
	var out []record.Record
	for _, r := range records {
		if !r.Known {
			out = append(out, r)
		}
	}
	return out
}
