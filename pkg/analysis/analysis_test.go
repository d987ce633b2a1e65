package analysis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XiaoConstantine/astrofit-go/pkg/errors"
	"github.com/XiaoConstantine/astrofit-go/pkg/imaging"
	"github.com/XiaoConstantine/astrofit-go/pkg/optimizers"
	"github.com/XiaoConstantine/astrofit-go/pkg/priors"
	"github.com/XiaoConstantine/astrofit-go/pkg/profiles"
)

func testImage() (imaging.Image, imaging.Mask) {
	image := imaging.Image{
		Pixels:     [][]float64{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}},
		PixelScale: 0.1,
	}
	mask := imaging.Mask{
		{true, true, true},
		{true, false, true},
		{true, true, true},
	}
	return image, mask
}

// sersicScorer rewards source galaxies whose intensity approaches 2.
type sersicScorer struct {
	calls int
}

func (s *sersicScorer) Score(ctx context.Context, image imaging.Image, tracer *imaging.Tracer, pixelization, instrumentation any) (float64, error) {
	s.calls++
	score := 0.0
	for _, g := range tracer.SourceGalaxies {
		if sersic, ok := g.(*profiles.EllipticalSersic); ok {
			score -= (sersic.Intensity - 2) * (sersic.Intensity - 2)
		}
	}
	return score, nil
}

func mapperOpts() []priors.MapperOption {
	return []priors.MapperOption{priors.WithConfig(profiles.DefaultPriorStore())}
}

func TestNewValidatesRoles(t *testing.T) {
	optimizer := optimizers.NewRandomSearch(5, 1)
	scorer := &sersicScorer{}

	tests := []struct {
		name string
		cfg  Config
		role string
	}{
		{
			name: "pixelization both",
			cfg: Config{
				Pixelization:    Binding{Instances: []any{struct{}{}}, TypeNames: []string{"RectangularPixelization"}},
				Instrumentation: Fixed(struct{}{}),
				LensGalaxies:    Fixed(struct{}{}),
				SourceGalaxies:  Fixed(struct{}{}),
			},
			role: "pixelization",
		},
		{
			name: "instrumentation neither",
			cfg: Config{
				Pixelization:   Fixed(struct{}{}),
				LensGalaxies:   Fixed(struct{}{}),
				SourceGalaxies: Fixed(struct{}{}),
			},
			role: "instrumentation",
		},
		{
			name: "lens neither",
			cfg: Config{
				Pixelization:    Fixed(struct{}{}),
				Instrumentation: Fixed(struct{}{}),
				SourceGalaxies:  Fixed(struct{}{}),
			},
			role: "lens_galaxies",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cfg.Optimizer = optimizer
			tt.cfg.Scorer = scorer
			tt.cfg.MapperOptions = mapperOpts()

			_, err := New(tt.cfg)
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.RoleAmbiguity))
			assert.Contains(t, err.Error(), tt.role)
			// Validation failed before any optimizer interaction.
			assert.Zero(t, scorer.calls)
		})
	}
}

func TestNewRejectsMultipleTypesForSingularRoles(t *testing.T) {
	optimizer := optimizers.NewRandomSearch(5, 1)
	scorer := &sersicScorer{}

	tests := []struct {
		name string
		cfg  Config
		role string
	}{
		{
			name: "pixelization two types",
			cfg: Config{
				Pixelization:    Variable("RectangularPixelization", "RectangularPixelization"),
				Instrumentation: Fixed(struct{}{}),
				LensGalaxies:    Fixed(struct{}{}),
				SourceGalaxies:  Fixed(struct{}{}),
			},
			role: "pixelization",
		},
		{
			name: "instrumentation two instances",
			cfg: Config{
				Pixelization:    Fixed(struct{}{}),
				Instrumentation: Fixed(struct{}{}, struct{}{}),
				LensGalaxies:    Fixed(struct{}{}),
				SourceGalaxies:  Fixed(struct{}{}),
			},
			role: "instrumentation",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cfg.Optimizer = optimizer
			tt.cfg.Scorer = scorer
			tt.cfg.MapperOptions = mapperOpts()

			_, err := New(tt.cfg)
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.InvalidInput))
			assert.Contains(t, err.Error(), tt.role)
		})
	}

	// Galaxy roles still accept lists.
	_, err := New(Config{
		Pixelization:    Fixed(struct{}{}),
		Instrumentation: Fixed(struct{}{}),
		LensGalaxies:    Variable("EllipticalIsothermal", "EllipticalIsothermal"),
		SourceGalaxies:  Fixed(struct{}{}),
		Optimizer:       optimizer,
		Scorer:          scorer,
		MapperOptions:   mapperOpts(),
	})
	assert.NoError(t, err)
}

func TestNewRequiresOptimizerAndScorer(t *testing.T) {
	cfg := Config{
		Pixelization:    Fixed(struct{}{}),
		Instrumentation: Fixed(struct{}{}),
		LensGalaxies:    Fixed(struct{}{}),
		SourceGalaxies:  Fixed(struct{}{}),
	}
	_, err := New(cfg)
	assert.Error(t, err)

	cfg.Optimizer = optimizers.NewRandomSearch(5, 1)
	_, err = New(cfg)
	assert.Error(t, err)
}

func TestModelAnalysisRun(t *testing.T) {
	scorer := &sersicScorer{}
	ma, err := NewModelAnalysis(
		[]string{"EllipticalIsothermal"},
		[]string{"EllipticalSersic"},
		optimizers.NewRandomSearch(200, 3),
		scorer,
		mapperOpts()...,
	)
	require.NoError(t, err)

	// 4 isothermal + 7 sersic parameters.
	assert.Len(t, ma.Mapper().Priors(), 11)

	image, mask := testImage()
	pix := &profiles.RectangularPixelization{Shape: [2]float64{20, 20}}
	instr := &profiles.Instrumentation{PSFSigma: 0.1}

	result, err := ma.Run(context.Background(), image, mask, pix, instr)
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, 200, result.Evaluations)
	require.Len(t, result.LensGalaxies, 1)
	require.Len(t, result.SourceGalaxies, 1)
	assert.IsType(t, &profiles.EllipticalIsothermal{}, result.LensGalaxies[0])
	assert.IsType(t, &profiles.EllipticalSersic{}, result.SourceGalaxies[0])

	// Fixed roles pass through untouched.
	assert.Same(t, pix, result.Pixelization)
	assert.Same(t, instr, result.Instrumentation)

	// The snapshot holds the best state: source intensity near the scorer's
	// optimum of 2 inside the uniform(0,5) prior.
	sersic := result.SourceGalaxies[0].(*profiles.EllipticalSersic)
	assert.InDelta(t, 2.0, sersic.Intensity, 0.5)
	assert.Greater(t, result.Score, -0.5)
}

func TestModelAnalysisReusesMapperAcrossRuns(t *testing.T) {
	scorer := &sersicScorer{}
	ma, err := NewModelAnalysis(
		[]string{"SphericalIsothermal"},
		[]string{"EllipticalSersic"},
		optimizers.NewRandomSearch(10, 1),
		scorer,
		mapperOpts()...,
	)
	require.NoError(t, err)

	before := ma.Mapper().Priors()

	image, mask := testImage()
	_, err = ma.Run(context.Background(), image, mask, struct{}{}, struct{}{})
	require.NoError(t, err)

	after := ma.Mapper().Priors()
	require.Equal(t, len(before), len(after))
	for i := range before {
		assert.Same(t, before[i], after[i])
	}
}

func TestHyperparameterAnalysisRun(t *testing.T) {
	scorer := &sersicScorer{}
	ha := NewHyperparameterAnalysis(
		"RectangularPixelization",
		"Instrumentation",
		optimizers.NewRandomSearch(50, 2),
		scorer,
		mapperOpts()...,
	)

	image, mask := testImage()
	lens := []any{&profiles.EllipticalIsothermal{EinsteinRadius: 1.2}}
	source := []any{&profiles.EllipticalSersic{Intensity: 2}}

	result, err := ha.Run(context.Background(), image, mask, lens, source)
	require.NoError(t, err)

	// Variable roles were reconstructed.
	assert.IsType(t, &profiles.RectangularPixelization{}, result.Pixelization)
	assert.IsType(t, &profiles.Instrumentation{}, result.Instrumentation)

	// Fixed galaxies pass through by identity.
	require.Len(t, result.LensGalaxies, 1)
	assert.Same(t, lens[0], result.LensGalaxies[0])
	assert.Same(t, source[0], result.SourceGalaxies[0])
}

func TestFitnessFunctionRejectsWrongLength(t *testing.T) {
	scorer := &sersicScorer{}
	a, err := New(Config{
		Pixelization:    Fixed(struct{}{}),
		Instrumentation: Fixed(struct{}{}),
		LensGalaxies:    Fixed(struct{}{}),
		SourceGalaxies:  Variable("EllipticalSersic"),
		Optimizer:       optimizers.NewRandomSearch(5, 1),
		Scorer:          scorer,
		MapperOptions:   mapperOpts(),
	})
	require.NoError(t, err)

	image, mask := testImage()
	grids, err := imaging.GridFromMask(mask, image.PixelScale)
	require.NoError(t, err)

	run := newRun(a, image, grids)
	_, err = run.FitnessFunction(context.Background(), []float64{0.5})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.VectorLengthMismatch))
	// No partial reconstruction was recorded.
	assert.False(t, run.evaluated)
	assert.Nil(t, run.lastSourceGalaxies)
	assert.Zero(t, scorer.calls)
}

func TestFitnessFunctionRejectsVectorWhenAllRolesFixed(t *testing.T) {
	scorer := &sersicScorer{}
	a, err := New(Config{
		Pixelization:    Fixed(struct{}{}),
		Instrumentation: Fixed(struct{}{}),
		LensGalaxies:    Fixed(&profiles.EllipticalIsothermal{}),
		SourceGalaxies:  Fixed(&profiles.EllipticalSersic{Intensity: 2}),
		Optimizer:       optimizers.NewRandomSearch(5, 1),
		Scorer:          scorer,
		MapperOptions:   mapperOpts(),
	})
	require.NoError(t, err)
	require.Empty(t, a.Mapper().Priors())

	image, mask := testImage()
	grids, err := imaging.GridFromMask(mask, image.PixelScale)
	require.NoError(t, err)

	// With zero free parameters any non-empty vector is a length mismatch.
	run := newRun(a, image, grids)
	_, err = run.FitnessFunction(context.Background(), []float64{0.5, 0.5, 0.5})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.VectorLengthMismatch))
	assert.Zero(t, scorer.calls)

	// The empty vector still evaluates the fixed configuration.
	score, err := run.FitnessFunction(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, score)
	assert.Equal(t, 1, scorer.calls)
}
