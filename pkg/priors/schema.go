package priors

import (
	"sync"

	"github.com/XiaoConstantine/astrofit-go/pkg/errors"
)

// ParamKind distinguishes scalar parameters from tuple-valued ones.
type ParamKind int

const (
	Scalar ParamKind = iota
	Tuple
)

// ParamSpec declares one constructible parameter of a model type.
type ParamSpec struct {
	// Name is the constructor argument name, also the prior config key for
	// scalars. Tuple elements resolve through synthesized <name>_<i> keys.
	Name string
	Kind ParamKind
	// Arity is the tuple element count; ignored for scalars.
	Arity int
}

// Schema is the declarative parameter table for one model type. It replaces
// constructor introspection: the parameter list, tuple arities and the config
// fallback chain are all stated at registration time.
type Schema struct {
	// Name identifies the model type; the first key of the fallback chain.
	Name string
	// Ancestors is the ordered tail of the config fallback chain, nearest
	// first. Prior resolution tries Name, then each ancestor in turn.
	Ancestors []string
	Params    []ParamSpec
}

// ResolutionKeys returns the full ordered fallback chain for config lookups.
func (s Schema) ResolutionKeys() []string {
	keys := make([]string, 0, len(s.Ancestors)+1)
	keys = append(keys, s.Name)
	keys = append(keys, s.Ancestors...)
	return keys
}

// Builder constructs a model instance from resolved argument values. Scalar
// arguments arrive as float64, tuple arguments as []float64. Builders must be
// deterministic: reconstructing the same vector twice must yield
// value-identical instances.
type Builder func(args map[string]any) (any, error)

// Registration pairs a schema with its builder.
type Registration struct {
	Schema Schema
	Build  Builder
}

// SchemaRegistry holds the registered model types available to ModelMappers.
type SchemaRegistry struct {
	mu    sync.RWMutex
	types map[string]Registration
}

// NewSchemaRegistry creates an empty registry.
func NewSchemaRegistry() *SchemaRegistry {
	return &SchemaRegistry{types: make(map[string]Registration)}
}

// Register adds a model type. Re-registering a name overwrites.
func (r *SchemaRegistry) Register(reg Registration) error {
	if reg.Schema.Name == "" {
		return errors.New(errors.InvalidInput, "schema name must not be empty")
	}
	if reg.Build == nil {
		return errors.WithFields(
			errors.New(errors.InvalidInput, "schema registration requires a builder"),
			errors.Fields{"type": reg.Schema.Name})
	}
	for _, p := range reg.Schema.Params {
		if p.Kind == Tuple && p.Arity < 1 {
			return errors.WithFields(
				errors.New(errors.InvalidInput, "tuple parameter requires positive arity"),
				errors.Fields{"type": reg.Schema.Name, "parameter": p.Name})
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[reg.Schema.Name] = reg
	return nil
}

// Lookup returns the registration for a type name.
func (r *SchemaRegistry) Lookup(name string) (Registration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.types[name]
	if !ok {
		return Registration{}, errors.WithFields(
			errors.New(errors.UnknownModelType, "model type is not registered"),
			errors.Fields{"type": name})
	}
	return reg, nil
}

var (
	defaultRegistry     = NewSchemaRegistry()
	defaultRegistryOnce sync.Once
)

// DefaultRegistry returns the process-wide registry model packages register into.
func DefaultRegistry() *SchemaRegistry {
	defaultRegistryOnce.Do(func() {})
	return defaultRegistry
}

// MustRegister registers into the default registry, panicking on invalid
// registrations. Intended for package init of model-type packages.
func MustRegister(reg Registration) {
	if err := DefaultRegistry().Register(reg); err != nil {
		panic(err)
	}
}
