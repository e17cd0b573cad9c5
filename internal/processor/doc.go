// Package processor contains the core logic for turning raw phrases into
// learning records. It orchestrates normalization, transcription,
// translation and audio generation, keeps the global dictionary cache up to
// date and writes processed batches into sessions. It also implements the
// read side used by the command line: marking progress, listing and showing
// sessions, similarity suggestions and Anki export.
package processor
