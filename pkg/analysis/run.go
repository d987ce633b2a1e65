package analysis

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/XiaoConstantine/astrofit-go/pkg/errors"
	"github.com/XiaoConstantine/astrofit-go/pkg/imaging"
	"github.com/XiaoConstantine/astrofit-go/pkg/optimizers"
	"github.com/XiaoConstantine/astrofit-go/pkg/priors"
)

// Run is the stage-scoped mutable state of one Analysis.Run invocation. It
// records the last reconstructed entities and score for post-hoc reporting,
// which is exactly why a Run must not be shared between concurrent fitness
// evaluations.
type Run struct {
	ID       string
	analysis *Analysis
	image    imaging.Image
	grids    *imaging.GridCollection

	lastLensGalaxies    []any
	lastSourceGalaxies  []any
	lastPixelization    any
	lastInstrumentation any
	lastScore           float64
	evaluated           bool
}

func newRun(a *Analysis, image imaging.Image, grids *imaging.GridCollection) *Run {
	return &Run{
		ID:       uuid.New().String(),
		analysis: a,
		image:    image,
		grids:    grids,
	}
}

// FitnessFunction reconstructs the variable roles from a physical-value
// vector, assembles a tracer and delegates to the scorer. Any reconstruction
// failure aborts the evaluation; there is no sentinel score.
func (r *Run) FitnessFunction(ctx context.Context, physical []float64) (float64, error) {
	a := r.analysis

	// Always reconstruct, even with zero free parameters: a non-empty vector
	// against an all-fixed stage must fail the length check.
	rec, err := a.mapper.ReconstructionForPhysicalVector(physical)
	if err != nil {
		return 0, err
	}

	lens, err := r.galaxiesFor(a.lensGalaxies, "lens_%d", rec)
	if err != nil {
		return 0, err
	}
	source, err := r.galaxiesFor(a.sourceGalaxies, "source_%d", rec)
	if err != nil {
		return 0, err
	}

	pixelization := a.pixelization.Instances
	var pix any
	if a.pixelization.IsVariable() {
		pix, _ = rec.Instance(string(RolePixelization))
	} else if len(pixelization) > 0 {
		pix = pixelization[0]
	}

	var instr any
	if a.instrumentation.IsVariable() {
		instr, _ = rec.Instance(string(RoleInstrumentation))
	} else if len(a.instrumentation.Instances) > 0 {
		instr = a.instrumentation.Instances[0]
	}

	tracer := imaging.NewTracer(lens, source, r.grids)
	score, err := a.scorer.Score(ctx, r.image, tracer, pix, instr)
	if err != nil {
		return 0, errors.Wrap(err, errors.StageExecutionFailed, "scoring reconstructed model")
	}

	r.lastLensGalaxies = lens
	r.lastSourceGalaxies = source
	r.lastPixelization = pix
	r.lastInstrumentation = instr
	r.lastScore = score
	r.evaluated = true
	return score, nil
}

func (r *Run) galaxiesFor(binding Binding, nameFormat string, rec *priors.Reconstruction) ([]any, error) {
	if !binding.IsVariable() {
		return binding.Instances, nil
	}
	out := make([]any, len(binding.TypeNames))
	for i := range binding.TypeNames {
		inst, ok := rec.Instance(fmt.Sprintf(nameFormat, i))
		if !ok {
			return nil, errors.WithFields(
				errors.New(errors.MissingPriorValue, "reconstruction lacks an expected model"),
				errors.Fields{"model": fmt.Sprintf(nameFormat, i)})
		}
		out[i] = inst
	}
	return out, nil
}

// Result is the immutable snapshot taken when a Run's optimizer loop ends.
type Result struct {
	RunID           string
	Score           float64
	Evaluations     int
	LensGalaxies    []any
	SourceGalaxies  []any
	Pixelization    any
	Instrumentation any
}

func (r *Run) result(outcome *optimizers.Outcome) *Result {
	return &Result{
		RunID:           r.ID,
		Score:           outcome.BestScore,
		Evaluations:     outcome.Evaluations,
		LensGalaxies:    r.lastLensGalaxies,
		SourceGalaxies:  r.lastSourceGalaxies,
		Pixelization:    r.lastPixelization,
		Instrumentation: r.lastInstrumentation,
	}
}
