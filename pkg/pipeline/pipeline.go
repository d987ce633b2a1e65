// Package pipeline sequences fitting stages: each model analysis is followed
// by a hyperparameter analysis whose output pixelization and instrumentation
// seed the next model stage. Stages run strictly one after another; later
// stages depend on earlier stages' results.
package pipeline

import (
	"context"
	"fmt"

	"github.com/XiaoConstantine/astrofit-go/pkg/analysis"
	"github.com/XiaoConstantine/astrofit-go/pkg/errors"
	"github.com/XiaoConstantine/astrofit-go/pkg/imaging"
	"github.com/XiaoConstantine/astrofit-go/pkg/logging"
)

// Recorder persists stage results. The zero behavior (nil Recorder) keeps
// everything in memory only.
type Recorder interface {
	Record(ctx context.Context, pipeline, stage string, result *analysis.Result) error
}

// Pipeline chains model analyses with an interleaved hyperparameter analysis.
type Pipeline struct {
	name          string
	modelAnalyses []*analysis.ModelAnalysis
	hyper         *analysis.HyperparameterAnalysis
	recorder      Recorder
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithRecorder persists every stage result through the recorder.
func WithRecorder(r Recorder) Option {
	return func(p *Pipeline) {
		p.recorder = r
	}
}

// New creates a pipeline. At least one model analysis and the hyperparameter
// analysis are required.
func New(name string, hyper *analysis.HyperparameterAnalysis, modelAnalyses []*analysis.ModelAnalysis, opts ...Option) (*Pipeline, error) {
	if len(modelAnalyses) == 0 {
		return nil, errors.New(errors.InvalidInput, "pipeline requires at least one model analysis")
	}
	if hyper == nil {
		return nil, errors.New(errors.InvalidInput, "pipeline requires a hyperparameter analysis")
	}
	p := &Pipeline{
		name:          name,
		modelAnalyses: modelAnalyses,
		hyper:         hyper,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Run executes every stage in order. The returned slices are 1:1 aligned by
// stage: modelResults[i] fed hyperResults[i], and hyperResults[i]'s
// pixelization/instrumentation fed modelResults[i+1]. Any stage failure
// aborts the whole run.
func (p *Pipeline) Run(ctx context.Context, image imaging.Image, mask imaging.Mask, pixelization, instrumentation any) ([]*analysis.Result, []*analysis.Result, error) {
	logger := logging.GetLogger()

	modelResults := make([]*analysis.Result, 0, len(p.modelAnalyses))
	hyperResults := make([]*analysis.Result, 0, len(p.modelAnalyses))

	for i, modelAnalysis := range p.modelAnalyses {
		if err := errors.CheckContext(ctx, "pipeline"); err != nil {
			return nil, nil, err
		}

		stage := fmt.Sprintf("model_%d", i)
		stageCtx := logging.WithStage(ctx, stage)
		logger.Info(stageCtx, "running model stage %d of %d", i+1, len(p.modelAnalyses))

		modelResult, err := modelAnalysis.Run(stageCtx, image, mask, pixelization, instrumentation)
		if err != nil {
			return nil, nil, errors.WithFields(
				errors.Wrap(err, errors.StageExecutionFailed, "model stage failed"),
				errors.Fields{"pipeline": p.name, "stage": stage})
		}
		if err := p.record(stageCtx, stage, modelResult); err != nil {
			return nil, nil, err
		}

		stage = fmt.Sprintf("hyper_%d", i)
		stageCtx = logging.WithStage(ctx, stage)
		hyperResult, err := p.hyper.Run(stageCtx, image, mask, modelResult.LensGalaxies, modelResult.SourceGalaxies)
		if err != nil {
			return nil, nil, errors.WithFields(
				errors.Wrap(err, errors.StageExecutionFailed, "hyperparameter stage failed"),
				errors.Fields{"pipeline": p.name, "stage": stage})
		}
		if err := p.record(stageCtx, stage, hyperResult); err != nil {
			return nil, nil, err
		}

		// The improved hyperparameters drive the next model stage.
		pixelization = hyperResult.Pixelization
		instrumentation = hyperResult.Instrumentation

		modelResults = append(modelResults, modelResult)
		hyperResults = append(hyperResults, hyperResult)
	}

	return modelResults, hyperResults, nil
}

func (p *Pipeline) record(ctx context.Context, stage string, result *analysis.Result) error {
	if p.recorder == nil {
		return nil
	}
	if err := p.recorder.Record(ctx, p.name, stage, result); err != nil {
		return errors.WithFields(
			errors.Wrap(err, errors.StageExecutionFailed, "recording stage result"),
			errors.Fields{"pipeline": p.name, "stage": stage})
	}
	return nil
}
