package optimizers

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XiaoConstantine/astrofit-go/pkg/priors"
)

// parabolaFitness peaks at physical value (1, 1, ..., 1).
func parabolaFitness(ctx context.Context, physical []float64) (float64, error) {
	score := 0.0
	for _, v := range physical {
		score -= (v - 1) * (v - 1)
	}
	return score, nil
}

func testPriors(n int) []*priors.Prior {
	arena := priors.NewArena()
	list := make([]*priors.Prior, n)
	for i := range list {
		list[i] = arena.NewUniform(0, 2)
	}
	return list
}

func TestRandomSearchFindsPeakRegion(t *testing.T) {
	rs := NewRandomSearch(2000, 1)
	outcome, err := rs.Run(context.Background(), parabolaFitness, testPriors(2))
	require.NoError(t, err)

	assert.Equal(t, 2000, outcome.Evaluations)
	require.Len(t, outcome.BestPhysical, 2)
	assert.InDelta(t, 1.0, outcome.BestPhysical[0], 0.2)
	assert.InDelta(t, 1.0, outcome.BestPhysical[1], 0.2)
	assert.Greater(t, outcome.BestScore, -0.1)
}

func TestRandomSearchDeterministicForSeed(t *testing.T) {
	a, err := NewRandomSearch(50, 7).Run(context.Background(), parabolaFitness, testPriors(3))
	require.NoError(t, err)
	b, err := NewRandomSearch(50, 7).Run(context.Background(), parabolaFitness, testPriors(3))
	require.NoError(t, err)
	assert.Equal(t, a.BestScore, b.BestScore)
	assert.Equal(t, a.BestPhysical, b.BestPhysical)
}

func TestRandomSearchEmptyPriors(t *testing.T) {
	_, err := NewRandomSearch(10, 1).Run(context.Background(), parabolaFitness, nil)
	assert.Error(t, err)
}

func TestRandomSearchContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewRandomSearch(10, 1).Run(ctx, parabolaFitness, testPriors(1))
	assert.Error(t, err)
}

func TestGridSearchEvaluatesEveryCell(t *testing.T) {
	gs := NewGridSearch(4)
	outcome, err := gs.Run(context.Background(), parabolaFitness, testPriors(2))
	require.NoError(t, err)

	assert.Equal(t, 16, outcome.Evaluations)
	// Cell midpoints for uniform(0,2) with 4 points: 0.25, 0.75, 1.25, 1.75.
	assert.InDelta(t, 0.75, outcome.BestPhysical[0], 1e-12)
	assert.InDelta(t, 0.75, outcome.BestPhysical[1], 1e-12)
}

func TestGridSearchParallelIndependentFitness(t *testing.T) {
	gs := NewGridSearch(8)
	gs.MaxGoroutines = 4

	var mu sync.Mutex
	total := 0
	factory := func() Fitness {
		// Each instance carries its own last-state, mirroring how an
		// analysis Run records its latest evaluation.
		var last float64
		return func(ctx context.Context, physical []float64) (float64, error) {
			score, _ := parabolaFitness(ctx, physical)
			last = score
			_ = last
			mu.Lock()
			total++
			mu.Unlock()
			return score, nil
		}
	}

	outcome, err := gs.RunParallel(context.Background(), factory, testPriors(2))
	require.NoError(t, err)
	assert.Equal(t, 64, outcome.Evaluations)
	assert.Equal(t, 64, total)
}

func TestGridSearchRejectsHugeGrids(t *testing.T) {
	gs := NewGridSearch(100)
	_, err := gs.Run(context.Background(), parabolaFitness, testPriors(8))
	assert.Error(t, err)
}
