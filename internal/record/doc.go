// Package record defines the learning record, its identity key and the
// in-memory keyed store that every other component reads and writes.
package record
