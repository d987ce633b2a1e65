package priors

import (
	"sort"

	"github.com/XiaoConstantine/astrofit-go/pkg/errors"
	"github.com/XiaoConstantine/astrofit-go/pkg/priorconfig"
)

// ModelMapper owns a named collection of PriorModels and the deduplicated,
// deterministically ordered list of their priors. The ordering is the contract
// with the external optimizer: vector position i always resolves Priors()[i].
// The prior set must not be mutated while an optimizer loop is in flight.
type ModelMapper struct {
	arena    *Arena
	store    *priorconfig.Store
	registry *SchemaRegistry
	names    []string
	models   map[string]*PriorModel
}

// MapperOption configures a ModelMapper.
type MapperOption func(*ModelMapper)

// WithConfig sets the prior config store used to auto-populate priors.
func WithConfig(store *priorconfig.Store) MapperOption {
	return func(m *ModelMapper) {
		m.store = store
	}
}

// WithRegistry sets the schema registry models are looked up in.
func WithRegistry(registry *SchemaRegistry) MapperOption {
	return func(m *ModelMapper) {
		m.registry = registry
	}
}

// NewModelMapper creates a mapper with a fresh prior arena. Without options it
// uses the default schema registry and the default prior config store.
func NewModelMapper(opts ...MapperOption) *ModelMapper {
	m := &ModelMapper{
		arena:    NewArena(),
		store:    priorconfig.Default(),
		registry: DefaultRegistry(),
		models:   make(map[string]*PriorModel),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Arena exposes the mapper's prior arena so callers can allocate replacement
// priors for overrides and ties.
func (m *ModelMapper) Arena() *Arena {
	return m.arena
}

// AddModel builds a PriorModel for a registered type and stores it under the
// given name. Priors are auto-populated from the config store. Re-adding an
// existing name overwrites the previous model.
func (m *ModelMapper) AddModel(name, typeName string) (*PriorModel, error) {
	reg, err := m.registry.Lookup(typeName)
	if err != nil {
		return nil, err
	}
	model, err := newPriorModel(reg, m.arena, m.store)
	if err != nil {
		return nil, errors.WithFields(err, errors.Fields{"model": name})
	}
	if _, exists := m.models[name]; !exists {
		m.names = append(m.names, name)
	}
	m.models[name] = model
	return model, nil
}

// Model returns the PriorModel stored under a name.
func (m *ModelMapper) Model(name string) (*PriorModel, bool) {
	model, ok := m.models[name]
	return model, ok
}

// Names returns model names in insertion order.
func (m *ModelMapper) Names() []string {
	out := make([]string, len(m.names))
	copy(out, m.names)
	return out
}

// Tie makes the argument of one model share the other model's prior, reducing
// the deduplicated prior count by one. Both reconstructed instances then
// always receive the identical resolved value for that argument.
func (m *ModelMapper) Tie(nameA, argA, nameB, argB string) error {
	modelA, ok := m.models[nameA]
	if !ok {
		return errors.WithFields(errors.New(errors.InvalidInput, "no model with this name"), errors.Fields{"model": nameA})
	}
	modelB, ok := m.models[nameB]
	if !ok {
		return errors.WithFields(errors.New(errors.InvalidInput, "no model with this name"), errors.Fields{"model": nameB})
	}

	if p, ok := modelB.Prior(argB); ok {
		return modelA.SetPrior(argA, p)
	}
	if t, ok := modelB.TuplePrior(argB); ok {
		return modelA.SetTuplePrior(argA, t)
	}
	return errors.WithFields(
		errors.New(errors.InvalidInput, "model has no argument with this name"),
		errors.Fields{"model": nameB, "argument": argB})
}

// PriorSet returns the unique priors across every owned model, deduplicated
// by arena id. Order is unspecified; use Priors for the optimizer contract.
func (m *ModelMapper) PriorSet() []*Prior {
	seen := make(map[int]*Prior)
	for _, name := range m.names {
		for _, p := range m.models[name].Priors() {
			seen[p.ID()] = p
		}
	}
	out := make([]*Prior, 0, len(seen))
	for _, p := range seen {
		out = append(out, p)
	}
	return out
}

// Priors returns the unique priors sorted ascending by arena id. This order
// is stable for an unmodified mapper and is what the optimizer's flat vector
// indexes into.
func (m *ModelMapper) Priors() []*Prior {
	out := m.PriorSet()
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// Reconstruction holds one constructed instance per model name, produced from
// a single vector. It is transient: callers extract what they need per fitness
// evaluation and drop it.
type Reconstruction struct {
	names     []string
	instances map[string]any
}

// Instance returns the constructed instance for a model name.
func (r *Reconstruction) Instance(name string) (any, bool) {
	inst, ok := r.instances[name]
	return inst, ok
}

// Names returns model names in the mapper's insertion order.
func (r *Reconstruction) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// ReconstructionForVector maps a unit hypercube vector through every prior's
// distribution and constructs all owned models. The vector length must equal
// the mapper's unique prior count; no partial reconstruction survives a
// failure.
func (m *ModelMapper) ReconstructionForVector(unit []float64) (*Reconstruction, error) {
	return m.reconstruct(unit, true)
}

// ReconstructionForPhysicalVector constructs all owned models from values
// that are already physical, pairing vector position i with Priors()[i]
// without applying the distributions.
func (m *ModelMapper) ReconstructionForPhysicalVector(physical []float64) (*Reconstruction, error) {
	return m.reconstruct(physical, false)
}

func (m *ModelMapper) reconstruct(vector []float64, mapUnits bool) (*Reconstruction, error) {
	ordered := m.Priors()
	if len(vector) != len(ordered) {
		return nil, errors.WithFields(
			errors.New(errors.VectorLengthMismatch, "vector length does not match the mapper's prior count"),
			errors.Fields{"vector_len": len(vector), "prior_count": len(ordered)})
	}

	args := make(map[*Prior]float64, len(ordered))
	for i, p := range ordered {
		if mapUnits {
			args[p] = p.ValueFor(vector[i])
		} else {
			args[p] = vector[i]
		}
	}

	rec := &Reconstruction{
		names:     m.Names(),
		instances: make(map[string]any, len(m.names)),
	}
	for _, name := range m.names {
		inst, err := m.models[name].InstanceForArguments(args)
		if err != nil {
			return nil, errors.WithFields(err, errors.Fields{"model": name})
		}
		rec.instances[name] = inst
	}
	return rec, nil
}

// PhysicalVectorForUnit converts a unit vector to the physical values the
// priors map it to, in prior order. Used by optimizers that hand physical
// values to the fitness function.
func (m *ModelMapper) PhysicalVectorForUnit(unit []float64) ([]float64, error) {
	ordered := m.Priors()
	if len(unit) != len(ordered) {
		return nil, errors.WithFields(
			errors.New(errors.VectorLengthMismatch, "vector length does not match the mapper's prior count"),
			errors.Fields{"vector_len": len(unit), "prior_count": len(ordered)})
	}
	out := make([]float64, len(unit))
	for i, p := range ordered {
		out[i] = p.ValueFor(unit[i])
	}
	return out, nil
}
