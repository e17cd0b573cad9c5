package phonetic

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Profile bundles everything that depends on the study language
type Profile struct {
	Lang          string            `yaml:"lang"`
	Normalization map[string]string `yaml:"normalization"`
	IPA           Ruleset           `yaml:"ipa"`
	Approx        Ruleset           `yaml:"approx"`
}

// Version combines the ruleset versions. Audio artifacts and cached
// transcriptions made under another version are considered stale.
func (p *Profile) Version() string {
	return p.IPA.Fingerprint() + "+" + p.Approx.Fingerprint()
}

// Validate checks both rulesets
func (p *Profile) Validate() error {
	if p.Lang == "" {
		return fmt.Errorf("profile without lang")
	}
	if err := p.IPA.Validate(); err != nil {
		return fmt.Errorf("profile %s: %w", p.Lang, err)
	}
	if err := p.Approx.Validate(); err != nil {
		return fmt.Errorf("profile %s: %w", p.Lang, err)
	}
	return nil
}

// Transcriber renders normalized text with a profile
type Transcriber struct {
	profile *Profile
}

// NewTranscriber creates a transcriber for profile
func NewTranscriber(profile *Profile) *Transcriber {
	return &Transcriber{profile: profile}
}

// Transcribe returns the IPA-like and approximate renderings of normalized
func (t *Transcriber) Transcribe(normalized string) (ipa, approx string) {
	text := strings.ToLower(normalized)
	return t.profile.IPA.Apply(text), t.profile.Approx.Apply(text)
}

// Profile returns the profile in use
func (t *Transcriber) Profile() *Profile {
	return t.profile
}

// Registry holds the known profiles by study language
type Registry struct {
	profiles map[string]*Profile
}

// NewRegistry returns a registry with the built-in profiles
func NewRegistry() *Registry {
	r := &Registry{profiles: make(map[string]*Profile)}
	for _, p := range builtinProfiles() {
		r.profiles[p.Lang] = p
	}
	return r
}

// Register adds or replaces a profile after validating it
func (r *Registry) Register(p *Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	r.profiles[p.Lang] = p
	return nil
}

// Lookup returns the profile for lang. Languages without rules get an
// identity profile.
func (r *Registry) Lookup(lang string) *Profile {
	if p, ok := r.profiles[lang]; ok {
		return p
	}
	return &Profile{
		Lang:   lang,
		IPA:    Ruleset{Name: lang + "-ipa"},
		Approx: Ruleset{Name: lang + "-approx"},
	}
}

// Languages lists the registered study languages
func (r *Registry) Languages() []string {
	langs := make([]string, 0, len(r.profiles))
	for lang := range r.profiles {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// ProfileFile is the top-level structure of a profiles YAML file.
//
// Example:
//
//	profiles:
//	  - lang: it
//	    normalization:
//	      perche: perché
//	    ipa:
//	      name: it-ipa
//	      version: 1
//	      rules:
//	        - {from: "gli", to: "ʎi"}
//	        - {from: "gn", to: "ɲ"}
type ProfileFile struct {
	Profiles []*Profile `yaml:"profiles"`
}

// LoadProfiles reads profiles from a YAML file and registers them
func (r *Registry) LoadProfiles(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open profiles file: %w", err)
	}
	defer f.Close()

	if err := r.LoadProfilesFromReader(f); err != nil {
		return fmt.Errorf("failed to load profiles from %s: %w", path, err)
	}
	return nil
}

// LoadProfilesFromReader parses profile YAML from r and registers every
// profile it contains
func (r *Registry) LoadProfilesFromReader(rd io.Reader) error {
	var pf ProfileFile
	dec := yaml.NewDecoder(rd)
	dec.KnownFields(true)
	if err := dec.Decode(&pf); err != nil {
		if err == io.EOF {
			return nil
		}
		return err
	}

	for _, p := range pf.Profiles {
		if p.IPA.Name == "" {
			p.IPA.Name = p.Lang + "-ipa"
		}
		if p.Approx.Name == "" {
			p.Approx.Name = p.Lang + "-approx"
		}
		if err := r.Register(p); err != nil {
			return err
		}
	}
	return nil
}
