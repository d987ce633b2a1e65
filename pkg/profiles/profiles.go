// Package profiles defines the concrete light, mass and hyperparameter model
// types used in lens fitting, registers their parameter schemas, and provides
// the default priors that auto-populate a ModelMapper.
package profiles

import (
	"github.com/XiaoConstantine/astrofit-go/pkg/priorconfig"
	"github.com/XiaoConstantine/astrofit-go/pkg/priors"
)

// EllipticalSersic is a Sersic light profile.
type EllipticalSersic struct {
	Centre          [2]float64
	AxisRatio       float64
	Phi             float64
	Intensity       float64
	EffectiveRadius float64
	SersicIndex     float64
}

// EllipticalIsothermal is a singular isothermal ellipsoid mass profile.
type EllipticalIsothermal struct {
	Centre         [2]float64
	AxisRatio      float64
	Phi            float64
	EinsteinRadius float64
}

// SphericalIsothermal is the circular limit of the isothermal profile. Its
// schema falls back to the elliptical profile's config entries for the
// parameters the two share.
type SphericalIsothermal struct {
	Centre         [2]float64
	EinsteinRadius float64
}

// RectangularPixelization grids the source plane into rectangular cells.
type RectangularPixelization struct {
	Shape                     [2]float64
	RegularizationCoefficient float64
}

// Instrumentation describes instrumental effects applied to model images.
type Instrumentation struct {
	PSFSigma        float64
	BackgroundNoise float64
}

func centre(args map[string]any) [2]float64 {
	v := args["centre"].([]float64)
	return [2]float64{v[0], v[1]}
}

func init() {
	priors.MustRegister(priors.Registration{
		Schema: priors.Schema{
			Name: "EllipticalSersic",
			Params: []priors.ParamSpec{
				{Name: "centre", Kind: priors.Tuple, Arity: 2},
				{Name: "axis_ratio", Kind: priors.Scalar},
				{Name: "phi", Kind: priors.Scalar},
				{Name: "intensity", Kind: priors.Scalar},
				{Name: "effective_radius", Kind: priors.Scalar},
				{Name: "sersic_index", Kind: priors.Scalar},
			},
		},
		Build: func(args map[string]any) (any, error) {
			return &EllipticalSersic{
				Centre:          centre(args),
				AxisRatio:       args["axis_ratio"].(float64),
				Phi:             args["phi"].(float64),
				Intensity:       args["intensity"].(float64),
				EffectiveRadius: args["effective_radius"].(float64),
				SersicIndex:     args["sersic_index"].(float64),
			}, nil
		},
	})

	priors.MustRegister(priors.Registration{
		Schema: priors.Schema{
			Name: "EllipticalIsothermal",
			Params: []priors.ParamSpec{
				{Name: "centre", Kind: priors.Tuple, Arity: 2},
				{Name: "axis_ratio", Kind: priors.Scalar},
				{Name: "phi", Kind: priors.Scalar},
				{Name: "einstein_radius", Kind: priors.Scalar},
			},
		},
		Build: func(args map[string]any) (any, error) {
			return &EllipticalIsothermal{
				Centre:         centre(args),
				AxisRatio:      args["axis_ratio"].(float64),
				Phi:            args["phi"].(float64),
				EinsteinRadius: args["einstein_radius"].(float64),
			}, nil
		},
	})

	priors.MustRegister(priors.Registration{
		Schema: priors.Schema{
			Name:      "SphericalIsothermal",
			Ancestors: []string{"EllipticalIsothermal"},
			Params: []priors.ParamSpec{
				{Name: "centre", Kind: priors.Tuple, Arity: 2},
				{Name: "einstein_radius", Kind: priors.Scalar},
			},
		},
		Build: func(args map[string]any) (any, error) {
			return &SphericalIsothermal{
				Centre:         centre(args),
				EinsteinRadius: args["einstein_radius"].(float64),
			}, nil
		},
	})

	priors.MustRegister(priors.Registration{
		Schema: priors.Schema{
			Name: "RectangularPixelization",
			Params: []priors.ParamSpec{
				{Name: "shape", Kind: priors.Tuple, Arity: 2},
				{Name: "regularization_coefficient", Kind: priors.Scalar},
			},
		},
		Build: func(args map[string]any) (any, error) {
			v := args["shape"].([]float64)
			return &RectangularPixelization{
				Shape:                     [2]float64{v[0], v[1]},
				RegularizationCoefficient: args["regularization_coefficient"].(float64),
			}, nil
		},
	})

	priors.MustRegister(priors.Registration{
		Schema: priors.Schema{
			Name: "Instrumentation",
			Params: []priors.ParamSpec{
				{Name: "psf_sigma", Kind: priors.Scalar},
				{Name: "background_noise", Kind: priors.Scalar},
			},
		},
		Build: func(args map[string]any) (any, error) {
			return &Instrumentation{
				PSFSigma:        args["psf_sigma"].(float64),
				BackgroundNoise: args["background_noise"].(float64),
			}, nil
		},
	})
}

// DefaultPriorStore returns a store populated with the default priors for
// every profile this package registers.
func DefaultPriorStore() *priorconfig.Store {
	store := priorconfig.New()

	u := func(a, b float64) priorconfig.PriorSpec {
		return priorconfig.PriorSpec{Kind: priorconfig.KindUniform, A: a, B: b}
	}
	g := func(a, b float64) priorconfig.PriorSpec {
		return priorconfig.PriorSpec{Kind: priorconfig.KindGaussian, A: a, B: b}
	}

	store.Set("EllipticalSersic", "centre_0", u(-1, 1))
	store.Set("EllipticalSersic", "centre_1", u(-1, 1))
	store.Set("EllipticalSersic", "axis_ratio", u(0.2, 1))
	store.Set("EllipticalSersic", "phi", u(0, 180))
	store.Set("EllipticalSersic", "intensity", u(0, 5))
	store.Set("EllipticalSersic", "effective_radius", u(0, 4))
	store.Set("EllipticalSersic", "sersic_index", u(0.8, 8))

	store.Set("EllipticalIsothermal", "centre_0", u(-1, 1))
	store.Set("EllipticalIsothermal", "centre_1", u(-1, 1))
	store.Set("EllipticalIsothermal", "axis_ratio", u(0.2, 1))
	store.Set("EllipticalIsothermal", "phi", u(0, 180))
	store.Set("EllipticalIsothermal", "einstein_radius", u(0, 4))

	store.Set("RectangularPixelization", "shape_0", u(10, 50))
	store.Set("RectangularPixelization", "shape_1", u(10, 50))
	store.Set("RectangularPixelization", "regularization_coefficient", u(0, 10))

	store.Set("Instrumentation", "psf_sigma", g(0.1, 0.05))
	store.Set("Instrumentation", "background_noise", g(1, 0.5))

	return store
}
