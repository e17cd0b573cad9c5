// Package store reads and writes learning records as CSV files.
//
// The same format serves the global dictionary cache and every session
// snapshot. Files are located by header name, so files written by older
// versions (without category or dates, or with the ru_phonetic column) still
// load. Save always writes the current layout and replaces the target file
// through a rename.
package store
