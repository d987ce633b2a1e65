package optimizers

import (
	"context"
	"math"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/XiaoConstantine/astrofit-go/pkg/errors"
	"github.com/XiaoConstantine/astrofit-go/pkg/priors"
)

// GridSearch subdivides each unit interval into equal cells and evaluates the
// midpoint of every cell. Cells are independent, so evaluation can run in
// parallel; because a fitness function records last-state, each worker needs
// its own fitness instance, supplied through a factory.
type GridSearch struct {
	PointsPerDim  int
	MaxGoroutines int
}

// NewGridSearch creates a grid search evaluating points^dim cells.
func NewGridSearch(pointsPerDim int) *GridSearch {
	if pointsPerDim <= 0 {
		pointsPerDim = 10
	}
	return &GridSearch{PointsPerDim: pointsPerDim, MaxGoroutines: 1}
}

// Run evaluates the grid sequentially with a single fitness instance.
func (g *GridSearch) Run(ctx context.Context, fitness Fitness, priorList []*priors.Prior) (*Outcome, error) {
	return g.run(ctx, func() Fitness { return fitness }, priorList, 1)
}

// RunParallel evaluates the grid with up to MaxGoroutines workers. The
// factory is called once per worker so that no fitness state is shared
// between concurrent evaluations.
func (g *GridSearch) RunParallel(ctx context.Context, factory func() Fitness, priorList []*priors.Prior) (*Outcome, error) {
	workers := g.MaxGoroutines
	if workers < 1 {
		workers = 1
	}
	return g.run(ctx, factory, priorList, workers)
}

func (g *GridSearch) run(ctx context.Context, factory func() Fitness, priorList []*priors.Prior, workers int) (*Outcome, error) {
	dim := len(priorList)
	if dim == 0 {
		return nil, errors.New(errors.InvalidInput, "prior list must not be empty")
	}

	cells := 1
	for i := 0; i < dim; i++ {
		if cells > 1<<20/g.PointsPerDim {
			return nil, errors.WithFields(
				errors.New(errors.InvalidInput, "grid too large"),
				errors.Fields{"points_per_dim": g.PointsPerDim, "dim": dim})
		}
		cells *= g.PointsPerDim
	}

	var mu sync.Mutex
	outcome := &Outcome{BestScore: math.Inf(-1)}

	p := pool.New().WithMaxGoroutines(workers).WithErrors()
	fitnessPool := sync.Pool{New: func() any { return factory() }}

	for cell := 0; cell < cells; cell++ {
		cell := cell
		p.Go(func() error {
			if err := errors.CheckContext(ctx, "grid search"); err != nil {
				return err
			}

			fitness := fitnessPool.Get().(Fitness)
			defer fitnessPool.Put(fitness)

			physical := make([]float64, dim)
			idx := cell
			for j, pr := range priorList {
				unit := (float64(idx%g.PointsPerDim) + 0.5) / float64(g.PointsPerDim)
				idx /= g.PointsPerDim
				physical[j] = pr.ValueFor(unit)
			}

			score, err := fitness(ctx, physical)
			if err != nil {
				return errors.Wrap(err, errors.OptimizerFailed, "fitness evaluation failed")
			}

			mu.Lock()
			outcome.Evaluations++
			if score > outcome.BestScore {
				outcome.BestScore = score
				outcome.BestPhysical = physical
			}
			mu.Unlock()
			return nil
		})
	}

	if err := p.Wait(); err != nil {
		return nil, err
	}
	return outcome, nil
}
