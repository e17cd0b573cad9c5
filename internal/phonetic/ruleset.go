package phonetic

import (
	"fmt"
	"strings"
)

// Rule replaces every occurrence of From with To
type Rule struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// Ruleset is an ordered list of literal replacements. Each rule is applied to
// the result of all earlier rules, so multi-character rules must come before
// the single characters they contain.
type Ruleset struct {
	Name    string `yaml:"name"`
	Version int    `yaml:"version"`
	Rules   []Rule `yaml:"rules"`
}

// Apply runs the rules in order over text. An empty ruleset returns text
// unchanged.
func (rs Ruleset) Apply(text string) string {
	for _, r := range rs.Rules {
		if r.From == "" {
			continue
		}
		text = strings.ReplaceAll(text, r.From, r.To)
	}
	return text
}

// Validate checks that no rule is shadowed by an earlier rule whose From is
// contained in it. A shadowed rule can never see its full input because the
// earlier rule has already rewritten part of it.
func (rs Ruleset) Validate() error {
	for i, r := range rs.Rules {
		if r.From == "" {
			return fmt.Errorf("%s: rule %d has an empty source", rs.Name, i+1)
		}
		for j := 0; j < i; j++ {
			earlier := rs.Rules[j].From
			if earlier != r.From && strings.Contains(r.From, earlier) {
				return fmt.Errorf("%s: rule %d (%q) is shadowed by rule %d (%q)",
					rs.Name, i+1, r.From, j+1, earlier)
			}
		}
	}
	return nil
}

// Fingerprint identifies the ruleset contents for cache keys
func (rs Ruleset) Fingerprint() string {
	return fmt.Sprintf("%s@v%d/%d", rs.Name, rs.Version, len(rs.Rules))
}
