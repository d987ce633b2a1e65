// Package priorconfig resolves default prior specifications for model
// parameters. Specs are keyed by model-type name and attribute name and are
// written as compact "kind,param1,param2" records, e.g. "u,-1.0,1.0" for a
// uniform prior or "g,0.5,0.1" for a gaussian one.
package priorconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/XiaoConstantine/astrofit-go/pkg/errors"
)

const (
	// KindUniform tags a uniform prior spec; params are lower and upper limits.
	KindUniform = "u"
	// KindGaussian tags a gaussian prior spec; params are mean and sigma.
	KindGaussian = "g"
)

// PriorSpec describes the default distribution for one model parameter.
type PriorSpec struct {
	Kind string  `validate:"required,oneof=u g"`
	A    float64 // lower limit or mean
	B    float64 // upper limit or sigma
}

var validate = validator.New()

// ParseSpec parses a compact "kind,a,b" record into a PriorSpec.
func ParseSpec(record string) (PriorSpec, error) {
	parts := strings.Split(strings.ReplaceAll(record, " ", ""), ",")
	if len(parts) != 3 {
		return PriorSpec{}, errors.WithFields(
			errors.New(errors.ValidationFailed, "prior spec must have exactly three fields"),
			errors.Fields{"record": record})
	}

	a, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return PriorSpec{}, errors.Wrap(err, errors.ValidationFailed, "parsing prior spec first parameter")
	}
	b, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return PriorSpec{}, errors.Wrap(err, errors.ValidationFailed, "parsing prior spec second parameter")
	}

	spec := PriorSpec{Kind: parts[0], A: a, B: b}
	if err := validate.Struct(spec); err != nil {
		return PriorSpec{}, errors.Wrap(err, errors.ValidationFailed, "invalid prior spec")
	}
	return spec, nil
}

// Store holds default prior specs per model-type name. A Store may be backed
// by a directory of YAML files, one per type, loaded lazily and cached; specs
// set programmatically take precedence. Read-only once mapping construction
// begins.
type Store struct {
	mu     sync.RWMutex
	dir    string
	types  map[string]map[string]PriorSpec
	loaded map[string]bool // type names whose backing file has been read
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		types:  make(map[string]map[string]PriorSpec),
		loaded: make(map[string]bool),
	}
}

// NewDir creates a store backed by a directory containing one YAML file per
// model type ("<TypeName>.yaml" mapping attribute names to spec records).
func NewDir(dir string) *Store {
	s := New()
	s.dir = dir
	return s
}

// Parse builds a store from a single YAML document mapping type names to
// attribute/record pairs.
func Parse(data []byte) (*Store, error) {
	var raw map[string]map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, errors.ValidationFailed, "parsing prior config")
	}

	s := New()
	for typeName, attrs := range raw {
		for attr, record := range attrs {
			spec, err := ParseSpec(record)
			if err != nil {
				return nil, errors.WithFields(err, errors.Fields{"type": typeName, "attribute": attr})
			}
			s.Set(typeName, attr, spec)
		}
	}
	return s, nil
}

// LoadFile builds a store from one YAML file.
func LoadFile(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ResourceNotFound, "reading prior config file")
	}
	return Parse(data)
}

// Set records a spec for a type/attribute pair, overriding any file-backed value.
func (s *Store) Set(typeName, attr string, spec PriorSpec) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.types[typeName] == nil {
		s.types[typeName] = make(map[string]PriorSpec)
	}
	s.types[typeName][attr] = spec
	s.loaded[typeName] = true
}

// Get returns the spec for a type/attribute pair if one is configured.
func (s *Store) Get(typeName, attr string) (PriorSpec, bool) {
	s.mu.RLock()
	attrs, ok := s.types[typeName]
	var spec PriorSpec
	if ok {
		spec, ok = attrs[attr]
	}
	loaded := s.loaded[typeName]
	s.mu.RUnlock()

	if ok || loaded || s.dir == "" {
		return spec, ok
	}

	s.loadType(typeName)
	s.mu.RLock()
	defer s.mu.RUnlock()
	if attrs, found := s.types[typeName]; found {
		spec, ok = attrs[attr]
	}
	return spec, ok
}

// loadType reads the backing file for a type name, if one exists. Missing or
// malformed entries simply leave the type unconfigured; resolution errors are
// reported by GetForNearestAncestor with the full context.
func (s *Store) loadType(typeName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded[typeName] {
		return
	}
	s.loaded[typeName] = true

	data, err := os.ReadFile(filepath.Join(s.dir, typeName+".yaml"))
	if err != nil {
		return
	}

	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return
	}
	for attr, record := range raw {
		spec, err := ParseSpec(record)
		if err != nil {
			continue
		}
		if s.types[typeName] == nil {
			s.types[typeName] = make(map[string]PriorSpec)
		}
		if _, exists := s.types[typeName][attr]; !exists {
			s.types[typeName][attr] = spec
		}
	}
}

// GetForNearestAncestor resolves an attribute spec by walking an ordered
// fallback chain of type names, returning the first match. The chain is the
// model type's own name followed by the names it declares as ancestors.
func (s *Store) GetForNearestAncestor(keys []string, attr string) (PriorSpec, error) {
	for _, key := range keys {
		if spec, ok := s.Get(key, attr); ok {
			return spec, nil
		}
	}
	return PriorSpec{}, errors.WithFields(
		errors.New(errors.ConfigurationMissing, "no prior configured for attribute in type or its fallback chain"),
		errors.Fields{"chain": strings.Join(keys, "->"), "attribute": attr})
}

var (
	defaultStore *Store
	defaultOnce  sync.Once
	defaultMu    sync.Mutex
)

// Default returns the process-wide store, creating an empty one on first use.
func Default() *Store {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultOnce.Do(func() {
		defaultStore = New()
	})
	return defaultStore
}

// SetDefault replaces the process-wide store.
func SetDefault(s *Store) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultOnce.Do(func() {})
	defaultStore = s
}

// TupleAttr synthesizes the per-element attribute name used for tuple-valued
// parameters, e.g. centre -> centre_0, centre_1.
func TupleAttr(arg string, index int) string {
	return fmt.Sprintf("%s_%d", arg, index)
}
