// Package optimizers defines the contract between the fitting core and the
// non-linear samplers that drive it, plus two bundled samplers: a seeded
// random search and a parallel grid search. Production runs typically swap in
// an external nested-sampling engine behind the same interface.
package optimizers

import (
	"context"

	"github.com/XiaoConstantine/astrofit-go/pkg/priors"
)

// Fitness scores one physical-value vector. The optimizer calls it an
// unbounded number of times; implementations must be deterministic for fixed
// inputs and free of side effects beyond their own last-state bookkeeping.
type Fitness func(ctx context.Context, physical []float64) (float64, error)

// Outcome records what an optimizer converged to.
type Outcome struct {
	BestPhysical []float64
	BestScore    float64
	Evaluations  int
}

// Optimizer drives a fitness function over the parameter space described by
// an ordered prior list. Vector position i always corresponds to priorList[i];
// the optimizer owns termination.
type Optimizer interface {
	Run(ctx context.Context, fitness Fitness, priorList []*priors.Prior) (*Outcome, error)
}
