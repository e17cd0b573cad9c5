// Package session manages session snapshots and merges processed batches
// into them.
//
// A session is a CSV file in the sessions directory, separate from the
// global dictionary cache. A batch is either appended to an existing
// session or written to a new one named session_YYYYMMDD_HHMMSS.csv.
package session
