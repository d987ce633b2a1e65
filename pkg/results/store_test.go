package results

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XiaoConstantine/astrofit-go/pkg/analysis"
	"github.com/XiaoConstantine/astrofit-go/pkg/errors"
	"github.com/XiaoConstantine/astrofit-go/pkg/profiles"
)

func testResult(runID string, score float64) *analysis.Result {
	return &analysis.Result{
		RunID:          runID,
		Score:          score,
		Evaluations:    100,
		LensGalaxies:   []any{&profiles.EllipticalIsothermal{EinsteinRadius: 1.5}},
		SourceGalaxies: []any{&profiles.EllipticalSersic{Intensity: 2}},
		Pixelization:   &profiles.RectangularPixelization{Shape: [2]float64{20, 20}},
	}
}

func TestRecordAndList(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Record(ctx, "lens_fit", "model_0", testResult("run-a", -3.5)))
	require.NoError(t, store.Record(ctx, "lens_fit", "hyper_0", testResult("run-b", -2.1)))
	require.NoError(t, store.Record(ctx, "other", "model_0", testResult("run-c", 0)))

	records, err := store.ListByPipeline(ctx, "lens_fit")
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "model_0", records[0].Stage)
	assert.Equal(t, "run-a", records[0].RunID)
	assert.Equal(t, -3.5, records[0].Score)
	assert.Equal(t, 100, records[0].Evaluations)
	assert.Contains(t, records[0].Entities, "lens_galaxies")
	assert.Equal(t, "hyper_0", records[1].Stage)
}

func TestBest(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Record(ctx, "lens_fit", "model_0", testResult("run-a", -3.5)))
	require.NoError(t, store.Record(ctx, "lens_fit", "model_1", testResult("run-b", -1.2)))

	best, err := store.Best(ctx, "lens_fit")
	require.NoError(t, err)
	assert.Equal(t, "run-b", best.RunID)
	assert.Equal(t, -1.2, best.Score)
}

func TestBestEmptyPipeline(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Best(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ResourceNotFound))
}
