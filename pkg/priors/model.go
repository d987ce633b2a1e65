package priors

import (
	"github.com/XiaoConstantine/astrofit-go/pkg/errors"
	"github.com/XiaoConstantine/astrofit-go/pkg/priorconfig"
)

// PriorModel binds one registered model type to a prior (or tuple prior) per
// schema parameter. Attributes are auto-populated from the prior config store
// when the model is added to a mapper and can be overridden or tied afterwards.
type PriorModel struct {
	reg    Registration
	direct map[string]*Prior
	tuples map[string]*TuplePrior
}

func newPriorModel(reg Registration, arena *Arena, store *priorconfig.Store) (*PriorModel, error) {
	m := &PriorModel{
		reg:    reg,
		direct: make(map[string]*Prior),
		tuples: make(map[string]*TuplePrior),
	}
	keys := reg.Schema.ResolutionKeys()

	for _, param := range reg.Schema.Params {
		switch param.Kind {
		case Tuple:
			elements := make([]*Prior, param.Arity)
			for i := range elements {
				p, err := makePrior(arena, store, keys, priorconfig.TupleAttr(param.Name, i))
				if err != nil {
					return nil, err
				}
				elements[i] = p
			}
			m.tuples[param.Name] = NewTuplePrior(param.Name, elements)
		default:
			p, err := makePrior(arena, store, keys, param.Name)
			if err != nil {
				return nil, err
			}
			m.direct[param.Name] = p
		}
	}
	return m, nil
}

func makePrior(arena *Arena, store *priorconfig.Store, keys []string, attr string) (*Prior, error) {
	spec, err := store.GetForNearestAncestor(keys, attr)
	if err != nil {
		return nil, err
	}
	switch spec.Kind {
	case priorconfig.KindGaussian:
		return arena.NewGaussian(spec.A, spec.B), nil
	case priorconfig.KindUniform:
		return arena.NewUniform(spec.A, spec.B), nil
	default:
		return nil, errors.WithFields(
			errors.New(errors.ValidationFailed, "unknown prior kind"),
			errors.Fields{"kind": spec.Kind, "attribute": attr})
	}
}

// TypeName returns the registered model-type name.
func (m *PriorModel) TypeName() string {
	return m.reg.Schema.Name
}

// Prior returns the direct prior for a scalar argument.
func (m *PriorModel) Prior(arg string) (*Prior, bool) {
	p, ok := m.direct[arg]
	return p, ok
}

// TuplePrior returns the tuple prior for a tuple argument.
func (m *PriorModel) TuplePrior(arg string) (*TuplePrior, bool) {
	t, ok := m.tuples[arg]
	return t, ok
}

// SetPrior replaces the prior for a scalar argument. Assigning a prior that
// already belongs to another model's argument ties the two parameters.
func (m *PriorModel) SetPrior(arg string, p *Prior) error {
	if _, ok := m.direct[arg]; !ok {
		return errors.WithFields(
			errors.New(errors.InvalidInput, "model type has no scalar argument with this name"),
			errors.Fields{"type": m.TypeName(), "argument": arg})
	}
	m.direct[arg] = p
	return nil
}

// SetTuplePrior replaces the tuple prior for a tuple argument. Arity must match.
func (m *PriorModel) SetTuplePrior(arg string, t *TuplePrior) error {
	existing, ok := m.tuples[arg]
	if !ok {
		return errors.WithFields(
			errors.New(errors.InvalidInput, "model type has no tuple argument with this name"),
			errors.Fields{"type": m.TypeName(), "argument": arg})
	}
	if existing.Arity() != t.Arity() {
		return errors.WithFields(
			errors.New(errors.InvalidInput, "tuple prior arity does not match the argument"),
			errors.Fields{"type": m.TypeName(), "argument": arg, "want": existing.Arity(), "got": t.Arity()})
	}
	m.tuples[arg] = t
	return nil
}

// Priors returns every prior referenced by this model, direct priors first in
// schema parameter order, then tuple-contained priors. The list may contain
// priors shared with other models; deduplication happens in the mapper.
func (m *PriorModel) Priors() []*Prior {
	var out []*Prior
	for _, param := range m.reg.Schema.Params {
		switch param.Kind {
		case Tuple:
			out = append(out, m.tuples[param.Name].Priors()...)
		default:
			out = append(out, m.direct[param.Name])
		}
	}
	return out
}

// InstanceForArguments constructs an instance of the model type from a
// prior/value map. A missing map entry indicates an ordering or set mismatch
// between the optimizer vector and the mapper's prior list and is surfaced as
// a MissingPriorValue error.
func (m *PriorModel) InstanceForArguments(args map[*Prior]float64) (any, error) {
	buildArgs := make(map[string]any, len(m.reg.Schema.Params))

	for arg, p := range m.direct {
		v, ok := args[p]
		if !ok {
			return nil, errors.WithFields(
				errors.New(errors.MissingPriorValue, "prior absent from value map"),
				errors.Fields{"type": m.TypeName(), "argument": arg, "prior_id": p.ID()})
		}
		buildArgs[arg] = v
	}

	for arg, t := range m.tuples {
		values, err := t.ValueForArguments(args)
		if err != nil {
			return nil, errors.WithFields(err, errors.Fields{"type": m.TypeName()})
		}
		buildArgs[arg] = values
	}

	return m.reg.Build(buildArgs)
}
