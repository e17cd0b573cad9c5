// Package phonetic derives deterministic phonetic renderings of normalized
// phrases. Each study language has a profile with two ordered rulesets: an
// IPA-like rendering and an approximate rendering in the learner's script.
// Profiles beyond the built-in ones can be loaded from YAML files.
package phonetic
