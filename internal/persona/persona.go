// Package persona holds the characters the honeypot plays.
package persona

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wolfman30/vigilante/internal/intel"
)

//go:embed personas.yaml
var builtinPersonas []byte

// Persona is one character. Instructions are opaque to the engine and passed
// through to the text generator.
type Persona struct {
	ID           string           `yaml:"id" json:"id"`
	Name         string           `yaml:"name" json:"name"`
	Age          int              `yaml:"age" json:"age"`
	Style        string           `yaml:"style" json:"style"`
	Catchphrases []string         `yaml:"catchphrases" json:"catchphrases"`
	Targets      []intel.Category `yaml:"targets" json:"targets"`
	Instructions string           `yaml:"instructions" json:"-"`
}

type document struct {
	Default  string    `yaml:"default"`
	Personas []Persona `yaml:"personas"`
}

// Registry resolves persona ids. It is read-only after construction.
type Registry struct {
	defaultID string
	byID      map[string]Persona
}

// Builtin returns the embedded personas.
func Builtin() (*Registry, error) {
	return Parse(builtinPersonas)
}

// Parse builds a registry from a YAML document.
func Parse(data []byte) (*Registry, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("persona: parse: %w", err)
	}
	r := &Registry{byID: make(map[string]Persona, len(doc.Personas))}
	if err := r.merge(doc); err != nil {
		return nil, err
	}
	if len(r.byID) == 0 {
		return nil, errors.New("persona: no personas defined")
	}
	return r, nil
}

// Load returns the embedded personas overlaid with the optional operator file.
// Entries in the file replace built-ins with the same id.
func Load(path, defaultID string) (*Registry, error) {
	r, err := Builtin()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("persona: read %s: %w", path, err)
		}
		var doc document
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("persona: parse %s: %w", path, err)
		}
		if err := r.merge(doc); err != nil {
			return nil, err
		}
	}
	if id := normalizeID(defaultID); id != "" {
		if _, ok := r.byID[id]; !ok {
			return nil, fmt.Errorf("persona: default %q not defined", defaultID)
		}
		r.defaultID = id
	}
	return r, nil
}

func (r *Registry) merge(doc document) error {
	for _, p := range doc.Personas {
		id := normalizeID(p.ID)
		if id == "" {
			return errors.New("persona: entry without id")
		}
		p.ID = id
		if len(p.Targets) == 0 {
			p.Targets = []intel.Category{intel.BankAccounts, intel.UPIIDs, intel.PhishingLinks, intel.PhoneNumbers, intel.SuspiciousKeywords}
		}
		r.byID[id] = p
	}
	if id := normalizeID(doc.Default); id != "" {
		r.defaultID = id
	}
	if r.defaultID != "" {
		if _, ok := r.byID[r.defaultID]; !ok {
			return fmt.Errorf("persona: default %q not defined", r.defaultID)
		}
	}
	return nil
}

// Get returns the persona for id, falling back to the default for unknown or empty ids.
func (r *Registry) Get(id string) Persona {
	if p, ok := r.byID[normalizeID(id)]; ok {
		return p
	}
	return r.Default()
}

// Lookup reports whether id names a known persona.
func (r *Registry) Lookup(id string) (Persona, bool) {
	p, ok := r.byID[normalizeID(id)]
	return p, ok
}

// Default returns the fallback persona.
func (r *Registry) Default() Persona {
	if p, ok := r.byID[r.defaultID]; ok {
		return p
	}
	// Parse guarantees at least one entry.
	return r.byID[r.IDs()[0]]
}

// IDs lists persona ids in sorted order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func normalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
