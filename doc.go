// Package astrofit is a Go toolkit for mapping non-linear optimizer
// parameter spaces onto astronomical model objects and for running
// multi-stage lens fitting pipelines.
//
// An optimizer explores a unit hypercube; astrofit owns the translation
// between that hypercube and fully constructed model instances, so that
// analysis code only ever sees galaxies, pixelizations and
// instrumentation objects.
//
// Key Components:
//
//   - Priors: the mapping layer. Prior instances carry a probability
//     distribution (uniform or gaussian) and a stable identity, the
//     ModelMapper collects them per model and reconstructs object graphs
//     from optimizer vectors. Parameters can be tied so two models share
//     a single dimension.
//
//   - Priorconfig: declarative default prior configuration, loaded from
//     YAML files or set programmatically, with ancestor fallback so
//     specialised profiles inherit the defaults of the family they
//     belong to.
//
//   - Profiles: the built-in light and mass profile types (Sersic,
//     isothermal variants), pixelization grids and instrumentation
//     descriptions, registered with schemas that drive prior creation.
//
//   - Optimizers: RandomSearch and GridSearch implementations of the
//     Optimizer interface. GridSearch supports parallel evaluation with
//     per-goroutine fitness instances.
//
//   - Analysis: a single fitting stage. Each model role (lens galaxies,
//     source galaxies, pixelization, instrumentation) is bound either to
//     fixed instances or to variable model types whose parameters the
//     optimizer explores. ModelAnalysis and HyperparameterAnalysis are
//     the two stage variants used by pipelines.
//
//   - Pipeline: chains analysis stages, feeding each stage's best-fit
//     results into the next, with optional result recording.
//
//   - Results: SQLite-backed storage for per-stage results.
//
// Example usage:
//
//	mapper := priors.NewModelMapper()
//	a, err := analysis.New(analysis.Config{
//	    LensGalaxies:    analysis.Variable("EllipticalIsothermal"),
//	    SourceGalaxies:  analysis.Variable("EllipticalSersic"),
//	    Pixelization:    analysis.Fixed(pix),
//	    Instrumentation: analysis.Fixed(instr),
//	    Mapper:          mapper,
//	    Optimizer:       &optimizers.RandomSearch{Samples: 500},
//	    Scorer:          scorer,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := a.Run(ctx, image, mask)
package astrofit
