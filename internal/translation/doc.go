// Package translation wraps external translation backends (OpenAI chat
// models, Google Gemini) behind a Gateway that never fails: backend errors are
// turned into sentinel strings, calls are memoized per identity key for the
// duration of a run, and a circuit breaker stops hammering a dead backend.
package translation
