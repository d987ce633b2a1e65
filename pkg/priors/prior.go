// Package priors implements the parameter-space mapping engine: distribution
// backed priors with arena identity, tuple-valued priors, per-type parameter
// schemas, and the ModelMapper that reconstructs model object graphs from the
// flat unit-hypercube vectors a non-linear optimizer explores.
package priors

import (
	"fmt"
	"math"
)

// unitEpsilon bounds unit values away from 0 and 1 before applying the
// inverse error function, which diverges at the interval edges. Optimizer
// supplied values inside [unitEpsilon, 1-unitEpsilon] pass through unchanged.
const unitEpsilon = 1e-8

// Distribution maps a unit hypercube value in [0,1] to a physical value.
type Distribution interface {
	ValueFor(unit float64) float64
}

// Uniform is a distribution between a lower and upper limit.
type Uniform struct {
	Lower float64
	Upper float64
}

func (u Uniform) ValueFor(unit float64) float64 {
	return u.Lower + unit*(u.Upper-u.Lower)
}

// Gaussian is a distribution described by a mean and standard deviation.
type Gaussian struct {
	Mean  float64
	Sigma float64
}

func (g Gaussian) ValueFor(unit float64) float64 {
	unit = math.Min(math.Max(unit, unitEpsilon), 1-unitEpsilon)
	return g.Mean + g.Sigma*math.Sqrt2*math.Erfinv(2*unit-1)
}

// Prior maps a unit value to a physical value for one scalar model parameter.
// Identity is the arena index: two priors are the same parameter iff their ids
// match, regardless of their distributions. Sharing one Prior between two
// attribute slots ties those parameters together.
type Prior struct {
	id   int
	dist Distribution
}

// ID returns the arena index, the canonical ordering key.
func (p *Prior) ID() int {
	return p.id
}

// ValueFor maps a unit hypercube value to a physical value.
func (p *Prior) ValueFor(unit float64) float64 {
	return p.dist.ValueFor(unit)
}

// Distribution exposes the underlying distribution, mainly for reporting.
func (p *Prior) Distribution() Distribution {
	return p.dist
}

func (p *Prior) String() string {
	return fmt.Sprintf("<Prior id=%d>", p.id)
}

// Arena owns Prior identity for one mapping session. It hands out stable,
// dense, monotonically increasing ids; ids are never reused within an arena.
// Priors from different arenas must not be mixed in one ModelMapper.
type Arena struct {
	next int
}

// NewArena creates an empty arena.
func NewArena() *Arena {
	return &Arena{}
}

// NewPrior allocates a prior with the given distribution.
func (a *Arena) NewPrior(dist Distribution) *Prior {
	p := &Prior{id: a.next, dist: dist}
	a.next++
	return p
}

// NewUniform allocates a uniform prior.
func (a *Arena) NewUniform(lower, upper float64) *Prior {
	return a.NewPrior(Uniform{Lower: lower, Upper: upper})
}

// NewGaussian allocates a gaussian prior.
func (a *Arena) NewGaussian(mean, sigma float64) *Prior {
	return a.NewPrior(Gaussian{Mean: mean, Sigma: sigma})
}

// Len returns the number of priors allocated so far.
func (a *Arena) Len() int {
	return a.next
}
