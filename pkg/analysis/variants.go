package analysis

import (
	"context"

	"github.com/XiaoConstantine/astrofit-go/pkg/imaging"
	"github.com/XiaoConstantine/astrofit-go/pkg/optimizers"
	"github.com/XiaoConstantine/astrofit-go/pkg/priors"
)

// ModelAnalysis varies the lens and source models while holding the
// pixelization and instrumentation supplied per stage fixed.
type ModelAnalysis struct {
	mapper    *priors.ModelMapper
	lens      []string
	source    []string
	optimizer optimizers.Optimizer
	scorer    Scorer
}

// NewModelAnalysis registers the lens and source model types into a fresh
// mapper. Prior overrides and ties go through Mapper before the first run.
func NewModelAnalysis(lensTypes, sourceTypes []string, optimizer optimizers.Optimizer, scorer Scorer, mapperOpts ...priors.MapperOption) (*ModelAnalysis, error) {
	m := &ModelAnalysis{
		mapper:    priors.NewModelMapper(mapperOpts...),
		lens:      lensTypes,
		source:    sourceTypes,
		optimizer: optimizer,
		scorer:    scorer,
	}

	// Building a throwaway analysis validates the bindings and registers the
	// variable roles once; per-stage runs reuse the same mapper.
	_, err := New(Config{
		Pixelization:    Fixed(struct{}{}),
		Instrumentation: Fixed(struct{}{}),
		LensGalaxies:    Variable(lensTypes...),
		SourceGalaxies:  Variable(sourceTypes...),
		Mapper:          m.mapper,
		Optimizer:       optimizer,
		Scorer:          scorer,
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Mapper exposes the underlying mapper for ties and prior overrides.
func (m *ModelAnalysis) Mapper() *priors.ModelMapper {
	return m.mapper
}

// Run fits the variable lens/source models against the stage's fixed
// pixelization and instrumentation.
func (m *ModelAnalysis) Run(ctx context.Context, image imaging.Image, mask imaging.Mask, pixelization, instrumentation any) (*Result, error) {
	a, err := New(Config{
		Pixelization:    Fixed(pixelization),
		Instrumentation: Fixed(instrumentation),
		LensGalaxies:    Variable(m.lens...),
		SourceGalaxies:  Variable(m.source...),
		Mapper:          m.mapper,
		Optimizer:       m.optimizer,
		Scorer:          m.scorer,
	})
	if err != nil {
		return nil, err
	}
	return a.Run(ctx, image, mask)
}

// HyperparameterAnalysis varies the pixelization and instrumentation models
// while holding the lens and source galaxies from a previous result fixed.
type HyperparameterAnalysis struct {
	pixelizationType    string
	instrumentationType string
	optimizer           optimizers.Optimizer
	scorer              Scorer
	mapperOpts          []priors.MapperOption
}

// NewHyperparameterAnalysis configures a hyperparameter stage.
func NewHyperparameterAnalysis(pixelizationType, instrumentationType string, optimizer optimizers.Optimizer, scorer Scorer, mapperOpts ...priors.MapperOption) *HyperparameterAnalysis {
	return &HyperparameterAnalysis{
		pixelizationType:    pixelizationType,
		instrumentationType: instrumentationType,
		optimizer:           optimizer,
		scorer:              scorer,
		mapperOpts:          mapperOpts,
	}
}

// Run fits pixelization and instrumentation against fixed galaxies. A fresh
// mapper is built per run because the galaxy context changes every stage.
func (h *HyperparameterAnalysis) Run(ctx context.Context, image imaging.Image, mask imaging.Mask, lensGalaxies, sourceGalaxies []any) (*Result, error) {
	a, err := New(Config{
		Pixelization:    Variable(h.pixelizationType),
		Instrumentation: Variable(h.instrumentationType),
		LensGalaxies:    Fixed(lensGalaxies...),
		SourceGalaxies:  Fixed(sourceGalaxies...),
		Optimizer:       h.optimizer,
		Scorer:          h.scorer,
		MapperOptions:   h.mapperOpts,
	})
	if err != nil {
		return nil, err
	}
	return a.Run(ctx, image, mask)
}
