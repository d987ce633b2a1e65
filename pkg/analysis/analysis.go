// Package analysis wraps one fitting stage: it binds the four model roles,
// derives the stage grids once, and exposes the fitness function an external
// optimizer drives until it converges.
package analysis

import (
	"context"
	"fmt"

	"github.com/XiaoConstantine/astrofit-go/pkg/errors"
	"github.com/XiaoConstantine/astrofit-go/pkg/imaging"
	"github.com/XiaoConstantine/astrofit-go/pkg/logging"
	"github.com/XiaoConstantine/astrofit-go/pkg/optimizers"
	"github.com/XiaoConstantine/astrofit-go/pkg/priors"
)

// Scorer is the external likelihood collaborator. It must be deterministic
// for fixed inputs; the core makes no other assumption about its internals.
type Scorer interface {
	Score(ctx context.Context, image imaging.Image, tracer *imaging.Tracer, pixelization, instrumentation any) (float64, error)
}

// ScorerFunc adapts a function to the Scorer interface.
type ScorerFunc func(ctx context.Context, image imaging.Image, tracer *imaging.Tracer, pixelization, instrumentation any) (float64, error)

func (f ScorerFunc) Score(ctx context.Context, image imaging.Image, tracer *imaging.Tracer, pixelization, instrumentation any) (float64, error) {
	return f(ctx, image, tracer, pixelization, instrumentation)
}

// Config assembles an Analysis.
type Config struct {
	Pixelization    Binding
	Instrumentation Binding
	LensGalaxies    Binding
	SourceGalaxies  Binding

	// Mapper is optional; a fresh one is created when nil. Variable roles are
	// registered into it at construction.
	Mapper    *priors.ModelMapper
	Optimizer optimizers.Optimizer
	Scorer    Scorer

	// MapperOptions configure the mapper created when Mapper is nil.
	MapperOptions []priors.MapperOption
}

// Analysis is one configured fitting stage. Every role is validated at
// construction, before any optimizer interaction.
type Analysis struct {
	pixelization    Binding
	instrumentation Binding
	lensGalaxies    Binding
	sourceGalaxies  Binding

	mapper    *priors.ModelMapper
	optimizer optimizers.Optimizer
	scorer    Scorer
}

// New validates the role bindings and registers every variable role's model
// types into the mapper. A RoleAmbiguity error names the offending role.
func New(cfg Config) (*Analysis, error) {
	for _, rb := range []struct {
		role    Role
		binding Binding
	}{
		{RolePixelization, cfg.Pixelization},
		{RoleInstrumentation, cfg.Instrumentation},
		{RoleLensGalaxies, cfg.LensGalaxies},
		{RoleSourceGalaxies, cfg.SourceGalaxies},
	} {
		if err := rb.binding.validate(rb.role); err != nil {
			return nil, err
		}
	}
	if cfg.Optimizer == nil {
		return nil, errors.New(errors.InvalidInput, "analysis requires an optimizer")
	}
	if cfg.Scorer == nil {
		return nil, errors.New(errors.InvalidInput, "analysis requires a scorer")
	}

	mapper := cfg.Mapper
	if mapper == nil {
		mapper = priors.NewModelMapper(cfg.MapperOptions...)
	}

	a := &Analysis{
		pixelization:    cfg.Pixelization,
		instrumentation: cfg.Instrumentation,
		lensGalaxies:    cfg.LensGalaxies,
		sourceGalaxies:  cfg.SourceGalaxies,
		mapper:          mapper,
		optimizer:       cfg.Optimizer,
		scorer:          cfg.Scorer,
	}

	if err := a.registerVariableRoles(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Analysis) registerVariableRoles() error {
	if a.pixelization.IsVariable() {
		if err := a.ensureModel(string(RolePixelization), a.pixelization.TypeNames[0]); err != nil {
			return err
		}
	}
	if a.instrumentation.IsVariable() {
		if err := a.ensureModel(string(RoleInstrumentation), a.instrumentation.TypeNames[0]); err != nil {
			return err
		}
	}
	for i, typeName := range a.lensGalaxies.TypeNames {
		if err := a.ensureModel(fmt.Sprintf("lens_%d", i), typeName); err != nil {
			return err
		}
	}
	for i, typeName := range a.sourceGalaxies.TypeNames {
		if err := a.ensureModel(fmt.Sprintf("source_%d", i), typeName); err != nil {
			return err
		}
	}
	return nil
}

// ensureModel registers a model under the name unless the mapper already
// holds one of the same type. Keeping the existing model preserves prior
// overrides and ties across repeated runs that share a mapper.
func (a *Analysis) ensureModel(name, typeName string) error {
	if existing, ok := a.mapper.Model(name); ok && existing.TypeName() == typeName {
		return nil
	}
	_, err := a.mapper.AddModel(name, typeName)
	return err
}

// Mapper exposes the analysis mapper for prior overrides and ties before the
// optimizer loop starts. It must not be mutated once Run is called.
func (a *Analysis) Mapper() *priors.ModelMapper {
	return a.mapper
}

// Run derives the stage grids from the mask once, then hands the fitness
// function and the mapper's ordered prior list to the optimizer. The returned
// Result snapshots the best state the optimizer reached.
func (a *Analysis) Run(ctx context.Context, image imaging.Image, mask imaging.Mask) (*Result, error) {
	grids, err := imaging.GridFromMask(mask, image.PixelScale)
	if err != nil {
		return nil, err
	}

	run := newRun(a, image, grids)
	ctx = logging.WithRunID(ctx, run.ID)
	logger := logging.GetLogger()
	logger.Info(ctx, "starting analysis run with %d free parameters", len(a.mapper.Priors()))

	outcome, err := a.optimizer.Run(ctx, run.FitnessFunction, a.mapper.Priors())
	if err != nil {
		return nil, errors.Wrap(err, errors.OptimizerFailed, "optimizer run failed")
	}

	// Re-evaluate the best vector so the run's recorded state reflects the
	// optimum rather than whichever point the optimizer tried last.
	if outcome.BestPhysical != nil {
		if _, err := run.FitnessFunction(ctx, outcome.BestPhysical); err != nil {
			return nil, err
		}
	}

	logger.Info(ctx, "analysis converged at score %f after %d evaluations", outcome.BestScore, outcome.Evaluations)
	return run.result(outcome), nil
}
