package optimizers

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/XiaoConstantine/astrofit-go/pkg/errors"
	"github.com/XiaoConstantine/astrofit-go/pkg/logging"
	"github.com/XiaoConstantine/astrofit-go/pkg/priors"
)

// RandomSearch samples unit hypercube vectors uniformly at random, maps them
// to physical values through the priors and keeps the best score seen. It
// stands in for an external nested sampler in tests and small runs.
type RandomSearch struct {
	Samples int
	Seed    int64
}

// NewRandomSearch creates a random search with the given sample budget. A
// non-positive seed selects a time-based one.
func NewRandomSearch(samples int, seed int64) *RandomSearch {
	if samples <= 0 {
		samples = 100
	}
	if seed <= 0 {
		seed = time.Now().UnixNano()
	}
	return &RandomSearch{Samples: samples, Seed: seed}
}

func (r *RandomSearch) Run(ctx context.Context, fitness Fitness, priorList []*priors.Prior) (*Outcome, error) {
	if len(priorList) == 0 {
		return nil, errors.New(errors.InvalidInput, "prior list must not be empty")
	}

	logger := logging.GetLogger()
	rng := rand.New(rand.NewSource(r.Seed))

	outcome := &Outcome{BestScore: math.Inf(-1)}
	unit := make([]float64, len(priorList))
	physical := make([]float64, len(priorList))

	for i := 0; i < r.Samples; i++ {
		if err := errors.CheckContext(ctx, "random search"); err != nil {
			return nil, err
		}

		for j, p := range priorList {
			unit[j] = rng.Float64()
			physical[j] = p.ValueFor(unit[j])
		}

		score, err := fitness(ctx, physical)
		if err != nil {
			return nil, errors.Wrap(err, errors.OptimizerFailed, "fitness evaluation failed")
		}
		outcome.Evaluations++

		if score > outcome.BestScore {
			outcome.BestScore = score
			outcome.BestPhysical = append([]float64(nil), physical...)
			logger.Debug(ctx, "random search improved to %f after %d evaluations", score, outcome.Evaluations)
		}
	}

	return outcome, nil
}
