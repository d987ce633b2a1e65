package priors

import (
	"github.com/XiaoConstantine/astrofit-go/pkg/errors"
)

// TuplePrior groups the priors that together produce one tuple-valued
// constructor argument, e.g. a profile centre (y, x). Elements are named
// <arg>_0, <arg>_1, ... and resolve in element-index order.
type TuplePrior struct {
	arg      string
	elements []*Prior
}

// NewTuplePrior creates a tuple prior for an argument with the given elements.
func NewTuplePrior(arg string, elements []*Prior) *TuplePrior {
	return &TuplePrior{arg: arg, elements: elements}
}

// Arg returns the constructor argument name this tuple fills.
func (t *TuplePrior) Arg() string {
	return t.arg
}

// Arity returns the number of tuple elements.
func (t *TuplePrior) Arity() int {
	return len(t.elements)
}

// Priors returns the contained priors in element-index order.
func (t *TuplePrior) Priors() []*Prior {
	out := make([]*Prior, len(t.elements))
	copy(out, t.elements)
	return out
}

// Element returns the prior for one tuple position.
func (t *TuplePrior) Element(i int) *Prior {
	return t.elements[i]
}

// SetElement replaces the prior at one tuple position, used for parameter ties.
func (t *TuplePrior) SetElement(i int, p *Prior) {
	t.elements[i] = p
}

// ValueForArguments resolves every element against the supplied prior/value
// map and returns the tuple values in element-index order. A missing entry is
// an internal-consistency error: the map should always have been built from
// the same mapper's ordered prior list.
func (t *TuplePrior) ValueForArguments(args map[*Prior]float64) ([]float64, error) {
	values := make([]float64, len(t.elements))
	for i, p := range t.elements {
		v, ok := args[p]
		if !ok {
			return nil, errors.WithFields(
				errors.New(errors.MissingPriorValue, "tuple element prior absent from value map"),
				errors.Fields{"argument": t.arg, "element": i, "prior_id": p.ID()})
		}
		values[i] = v
	}
	return values, nil
}
