// Command lensfit runs a multi-stage lens fitting pipeline described by a
// YAML config against a synthetic observed image. It demonstrates the wiring
// of mapper, analyses and pipeline; production use swaps the demo scorer and
// random-search sampler for real collaborators.
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/XiaoConstantine/astrofit-go/pkg/analysis"
	"github.com/XiaoConstantine/astrofit-go/pkg/imaging"
	"github.com/XiaoConstantine/astrofit-go/pkg/logging"
	"github.com/XiaoConstantine/astrofit-go/pkg/optimizers"
	"github.com/XiaoConstantine/astrofit-go/pkg/pipeline"
	"github.com/XiaoConstantine/astrofit-go/pkg/priors"
	"github.com/XiaoConstantine/astrofit-go/pkg/profiles"
	"github.com/XiaoConstantine/astrofit-go/pkg/results"
)

func main() {
	configPath := flag.String("config", "lensfit.yaml", "path to the pipeline config")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "lensfit: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return err
	}

	logging.SetLogger(logging.NewLogger(logging.Config{
		Severity: logging.ParseSeverity(cfg.LogLevel),
		Outputs:  []logging.Output{logging.NewConsoleOutput(true)},
	}))

	ctx := context.Background()
	logger := logging.GetLogger()

	image, mask := syntheticObservation(cfg.Data)
	scorer := demoScorer{}
	mapperOpts := []priors.MapperOption{priors.WithConfig(profiles.DefaultPriorStore())}

	models := make([]*analysis.ModelAnalysis, len(cfg.Pipeline.Stages))
	for i, stage := range cfg.Pipeline.Stages {
		sampler := optimizers.NewRandomSearch(cfg.Optimizer.Samples, cfg.Optimizer.Seed+int64(i))
		ma, err := analysis.NewModelAnalysis(stage.LensModels, stage.SourceModels, sampler, scorer, mapperOpts...)
		if err != nil {
			return err
		}
		models[i] = ma
	}

	hyper := analysis.NewHyperparameterAnalysis(
		"RectangularPixelization",
		"Instrumentation",
		optimizers.NewRandomSearch(cfg.Optimizer.Samples, cfg.Optimizer.Seed+997),
		scorer,
		mapperOpts...,
	)

	var opts []pipeline.Option
	if cfg.Results.Path != "" {
		store, err := results.Open(cfg.Results.Path)
		if err != nil {
			return err
		}
		defer store.Close()
		opts = append(opts, pipeline.WithRecorder(store))
	}

	p, err := pipeline.New(cfg.Pipeline.Name, hyper, models, opts...)
	if err != nil {
		return err
	}

	initialPix := &profiles.RectangularPixelization{Shape: [2]float64{20, 20}, RegularizationCoefficient: 1}
	initialInstr := &profiles.Instrumentation{PSFSigma: 0.1, BackgroundNoise: 1}

	modelResults, hyperResults, err := p.Run(ctx, image, mask, initialPix, initialInstr)
	if err != nil {
		return err
	}

	for i := range modelResults {
		logger.Info(ctx, "stage %d: model score %.4f (%d evaluations), hyper score %.4f",
			i, modelResults[i].Score, modelResults[i].Evaluations, hyperResults[i].Score)
	}
	return nil
}

// syntheticObservation builds a small image with a central circular mask and
// a blurred bright blob, enough for the demo likelihood to pull against.
func syntheticObservation(cfg DataConfig) (imaging.Image, imaging.Mask) {
	n := cfg.ImageSize
	centre := float64(n-1) / 2

	pixels := make([][]float64, n)
	mask := make(imaging.Mask, n)
	for r := 0; r < n; r++ {
		pixels[r] = make([]float64, n)
		mask[r] = make([]bool, n)
		for c := 0; c < n; c++ {
			y := (float64(r) - centre) * cfg.PixelScale
			x := (float64(c) - centre) * cfg.PixelScale
			radius := math.Hypot(y, x)
			pixels[r][c] = 2 * math.Exp(-radius/0.5)
			mask[r][c] = radius > cfg.MaskRadius
		}
	}
	return imaging.Image{Pixels: pixels, PixelScale: cfg.PixelScale}, mask
}

// demoScorer is a stand-in likelihood: the squared residual between observed
// pixels and a crude exponential brightness model summed over the unmasked
// grid. Real fits plug in the full ray-tracing likelihood here.
type demoScorer struct{}

func (demoScorer) Score(ctx context.Context, image imaging.Image, tracer *imaging.Tracer, pixelization, instrumentation any) (float64, error) {
	rows, cols := image.Shape()
	centreY := float64(rows-1) / 2
	centreX := float64(cols-1) / 2

	chi := 0.0
	for _, coord := range tracer.Grids.Coords {
		model := 0.0
		for _, g := range tracer.SourceGalaxies {
			if sersic, ok := g.(*profiles.EllipticalSersic); ok {
				dy := coord.Y - sersic.Centre[0]
				dx := coord.X - sersic.Centre[1]
				scale := math.Max(sersic.EffectiveRadius, 1e-3)
				model += sersic.Intensity * math.Exp(-math.Hypot(dy, dx)/scale)
			}
		}
		r := int(coord.Y/image.PixelScale + centreY)
		c := int(coord.X/image.PixelScale + centreX)
		residual := image.Pixels[r][c] - model
		chi += residual * residual
	}
	return -chi, nil
}
