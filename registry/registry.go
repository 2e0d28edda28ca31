// Package registry classifies marker types as persistent or transient.
package registry

import (
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"
)

// TypeDef declares a marker type
type TypeDef struct {
	Name string `yaml:"name"`
	// Persistent overrides the value inherited from the supertypes when set
	Persistent *bool    `yaml:"persistent,omitempty"`
	Supertypes []string `yaml:"supertypes,omitempty"`
}

// Config configures the Registry
type Config struct {
	Types []TypeDef `yaml:"types"`
	// PersistentPrefixes marks undeclared types as persistent if their name
	// starts with one of these prefixes.
	PersistentPrefixes []string `yaml:"persistent_prefixes"`
}

// Check validates a Config instance
func (c Config) Check() error {
	_, err := New(c)
	return err
}

// Registry answers IsPersistent for marker type names. It is immutable after
// New and safe for concurrent use.
type Registry struct {
	defs       map[string]TypeDef
	persistent map[string]bool
	supers     map[string][]string // all transitive supertypes
	prefixes   []string
}

// New builds a Registry, resolving inherited persistence
func New(c Config) (*Registry, error) {
	r := &Registry{
		defs:       make(map[string]TypeDef, len(c.Types)),
		persistent: make(map[string]bool, len(c.Types)),
		supers:     make(map[string][]string, len(c.Types)),
		prefixes:   lo.Uniq(c.PersistentPrefixes),
	}
	for i, def := range c.Types {
		if def.Name == "" {
			return nil, fmt.Errorf("registry.types[%d]: no name", i)
		}
		if _, exists := r.defs[def.Name]; exists {
			return nil, fmt.Errorf("registry.types: duplicate type %q", def.Name)
		}
		r.defs[def.Name] = def
	}
	for _, name := range r.Types() {
		if _, err := r.resolve(name, nil); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// resolve determines persistence and supertypes of a declared type
func (r *Registry) resolve(name string, visiting []string) (bool, error) {
	if p, done := r.persistent[name]; done {
		return p, nil
	}
	if lo.Contains(visiting, name) {
		return false, fmt.Errorf("registry.types: supertype cycle: %s -> %s",
			strings.Join(visiting, " -> "), name)
	}
	visiting = append(visiting, name)

	def := r.defs[name]
	var inherited bool
	var supers []string
	for _, s := range def.Supertypes {
		supers = append(supers, s)
		if _, declared := r.defs[s]; !declared {
			inherited = inherited || r.hasPersistentPrefix(s)
			continue
		}
		p, err := r.resolve(s, visiting)
		if err != nil {
			return false, err
		}
		inherited = inherited || p
		supers = append(supers, r.supers[s]...)
	}

	persistent := inherited
	if def.Persistent != nil {
		persistent = *def.Persistent
	}
	r.persistent[name] = persistent
	r.supers[name] = lo.Uniq(supers)
	return persistent, nil
}

func (r *Registry) hasPersistentPrefix(name string) bool {
	for _, p := range r.prefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

// IsPersistent reports whether markers of the given type are saved.
// Types that are neither declared nor match a persistent prefix are not.
func (r *Registry) IsPersistent(typeName string) bool {
	if p, declared := r.persistent[typeName]; declared {
		return p
	}
	return r.hasPersistentPrefix(typeName)
}

// IsSubtype reports whether typeName is superType or inherits from it
func (r *Registry) IsSubtype(typeName, superType string) bool {
	if typeName == superType {
		return true
	}
	return lo.Contains(r.supers[typeName], superType)
}

// Types returns all declared type names, sorted
func (r *Registry) Types() []string {
	names := lo.Keys(r.defs)
	sort.Strings(names)
	return names
}
