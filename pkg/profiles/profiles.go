package profiles

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Package profiles holds the static per-provider discovery configuration:
// where to look (page/feed URLs) and what model names look like there
// (keyword gate plus ordered extraction patterns). Profiles are loaded once
// at process start and never mutated.

// Profile is the immutable configuration for one provider.
type Profile struct {
	ID            string   `json:"id" yaml:"id"`
	Name          string   `json:"name" yaml:"name"`
	PageURL       string   `json:"page_url" yaml:"page_url"`
	FeedURL       string   `json:"feed_url" yaml:"feed_url"`
	Keywords      []string `json:"keywords" yaml:"keywords"`
	ModelPatterns []string `json:"model_patterns" yaml:"model_patterns"`

	compiled []*regexp.Regexp
}

// Patterns returns the compiled model-name patterns in authored order.
// Registry-loaded profiles are compiled (and validated) at load time;
// literal-constructed profiles compile on the fly, skipping anything
// invalid.
func (p Profile) Patterns() []*regexp.Regexp {
	if p.compiled != nil {
		return p.compiled
	}
	out := make([]*regexp.Regexp, 0, len(p.ModelPatterns))
	for _, pat := range p.ModelPatterns {
		if re, err := regexp.Compile(pat); err == nil {
			out = append(out, re)
		}
	}
	return out
}

type registryFile struct {
	Providers []Profile `json:"providers" yaml:"providers"`
}

// Registry materializes provider profiles loaded from a config file.
type Registry struct {
	profiles []Profile
	idx      map[string]Profile
}

// LoadRegistry loads provider profiles from a YAML/JSON file.
func LoadRegistry(path string) (*Registry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("profiles file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open profiles file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read profiles file: %w", err)
	}

	fileReg, err := parseRegistry(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if len(fileReg.Providers) == 0 {
		return nil, errors.New("profiles file contains no provider entries")
	}

	reg := &Registry{
		profiles: make([]Profile, len(fileReg.Providers)),
		idx:      make(map[string]Profile, len(fileReg.Providers)),
	}

	for i := range fileReg.Providers {
		p := sanitizeProfile(fileReg.Providers[i])
		if err := validateProfile(&p); err != nil {
			return nil, fmt.Errorf("provider[%d]: %w", i, err)
		}
		if _, exists := reg.idx[p.ID]; exists {
			return nil, fmt.Errorf("duplicate provider id %q", p.ID)
		}
		reg.profiles[i] = p
		reg.idx[p.ID] = p
	}

	return reg, nil
}

func parseRegistry(data []byte, ext string) (registryFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))

	decoders := []struct {
		name string
		ext  string
		fn   func([]byte, any) error
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var reg registryFile
		if err := d.fn(data, &reg); err == nil {
			return reg, nil
		}
	}

	return registryFile{}, errors.New("profiles file format not recognized (expected YAML or JSON)")
}

func sanitizeProfile(p Profile) Profile {
	p.ID = strings.ToLower(strings.TrimSpace(p.ID))
	p.Name = strings.TrimSpace(p.Name)
	p.PageURL = strings.TrimSpace(p.PageURL)
	p.FeedURL = strings.TrimSpace(p.FeedURL)

	keywords := make([]string, 0, len(p.Keywords))
	for _, k := range p.Keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			keywords = append(keywords, k)
		}
	}
	p.Keywords = keywords

	patterns := make([]string, 0, len(p.ModelPatterns))
	for _, pat := range p.ModelPatterns {
		pat = strings.TrimSpace(pat)
		if pat != "" {
			patterns = append(patterns, pat)
		}
	}
	p.ModelPatterns = patterns

	return p
}

// validateProfile checks required fields and compiles the model patterns.
func validateProfile(p *Profile) error {
	if p.ID == "" {
		return errors.New("id is required")
	}
	if p.Name == "" {
		return fmt.Errorf("name is required for provider %q", p.ID)
	}
	if p.PageURL == "" {
		return fmt.Errorf("page_url is required for provider %q", p.ID)
	}
	if len(p.Keywords) == 0 {
		return fmt.Errorf("at least one keyword is required for provider %q", p.ID)
	}
	if len(p.ModelPatterns) == 0 {
		return fmt.Errorf("at least one model_pattern is required for provider %q", p.ID)
	}

	p.compiled = make([]*regexp.Regexp, len(p.ModelPatterns))
	for i, pat := range p.ModelPatterns {
		re, err := regexp.Compile(pat)
		if err != nil {
			return fmt.Errorf("provider %q model_patterns[%d]: %w", p.ID, i, err)
		}
		p.compiled[i] = re
	}
	return nil
}

// All returns the loaded profiles in file order.
func (r *Registry) All() []Profile {
	if r == nil {
		return nil
	}
	out := make([]Profile, len(r.profiles))
	copy(out, r.profiles)
	return out
}

// ByID returns the profile for the given provider id, if loaded.
func (r *Registry) ByID(id string) (Profile, bool) {
	if r == nil {
		return Profile{}, false
	}
	id = strings.ToLower(strings.TrimSpace(id))
	if id == "" {
		return Profile{}, false
	}
	p, ok := r.idx[id]
	return p, ok
}
