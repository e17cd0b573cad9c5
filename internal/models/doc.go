// Package models lists the OpenAI models available to the configured key
// that can be used for speech synthesis or translation.
package models
