package profiles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XiaoConstantine/astrofit-go/pkg/priors"
)

func newMapper() *priors.ModelMapper {
	return priors.NewModelMapper(priors.WithConfig(DefaultPriorStore()))
}

func TestEllipticalSersicReconstruction(t *testing.T) {
	mapper := newMapper()
	_, err := mapper.AddModel("lens_light", "EllipticalSersic")
	require.NoError(t, err)

	require.Len(t, mapper.Priors(), 7)

	vector := []float64{0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5}
	rec, err := mapper.ReconstructionForVector(vector)
	require.NoError(t, err)

	inst, ok := rec.Instance("lens_light")
	require.True(t, ok)
	sersic := inst.(*EllipticalSersic)
	assert.Equal(t, [2]float64{0, 0}, sersic.Centre)
	assert.InDelta(t, 0.6, sersic.AxisRatio, 1e-12)
	assert.InDelta(t, 90.0, sersic.Phi, 1e-12)
	assert.InDelta(t, 2.5, sersic.Intensity, 1e-12)
}

func TestSphericalIsothermalFallsBackToElliptical(t *testing.T) {
	mapper := newMapper()
	_, err := mapper.AddModel("subhalo", "SphericalIsothermal")
	require.NoError(t, err)

	// centre(2) + einstein_radius, all resolved via EllipticalIsothermal.
	require.Len(t, mapper.Priors(), 3)

	rec, err := mapper.ReconstructionForVector([]float64{0.5, 0.5, 1.0})
	require.NoError(t, err)
	inst, _ := rec.Instance("subhalo")
	iso := inst.(*SphericalIsothermal)
	assert.Equal(t, [2]float64{0, 0}, iso.Centre)
	assert.Equal(t, 4.0, iso.EinsteinRadius)
}

func TestHyperparameterProfiles(t *testing.T) {
	mapper := newMapper()
	_, err := mapper.AddModel("pixelization", "RectangularPixelization")
	require.NoError(t, err)
	_, err = mapper.AddModel("instrumentation", "Instrumentation")
	require.NoError(t, err)

	require.Len(t, mapper.Priors(), 5)

	rec, err := mapper.ReconstructionForVector([]float64{0.5, 0.5, 0.5, 0.5, 0.5})
	require.NoError(t, err)

	inst, _ := rec.Instance("pixelization")
	pix := inst.(*RectangularPixelization)
	assert.Equal(t, [2]float64{30, 30}, pix.Shape)

	inst, _ = rec.Instance("instrumentation")
	instr := inst.(*Instrumentation)
	assert.InDelta(t, 0.1, instr.PSFSigma, 1e-12)
	assert.InDelta(t, 1.0, instr.BackgroundNoise, 1e-12)
}

func TestTwoGalaxyModelWithSharedCentre(t *testing.T) {
	mapper := newMapper()
	_, err := mapper.AddModel("lens_mass", "EllipticalIsothermal")
	require.NoError(t, err)
	_, err = mapper.AddModel("lens_light", "EllipticalSersic")
	require.NoError(t, err)

	total := len(mapper.Priors())
	require.NoError(t, mapper.Tie("lens_light", "centre", "lens_mass", "centre"))
	assert.Equal(t, total-2, len(mapper.Priors()))

	n := len(mapper.Priors())
	vector := make([]float64, n)
	for i := range vector {
		vector[i] = 0.25
	}
	rec, err := mapper.ReconstructionForVector(vector)
	require.NoError(t, err)

	massInst, _ := rec.Instance("lens_mass")
	lightInst, _ := rec.Instance("lens_light")
	assert.Equal(t, massInst.(*EllipticalIsothermal).Centre, lightInst.(*EllipticalSersic).Centre)
}
