package imaging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGridFromMask(t *testing.T) {
	mask := Mask{
		{true, true, true},
		{true, false, true},
		{true, true, true},
	}

	grid, err := GridFromMask(mask, 0.1)
	require.NoError(t, err)
	require.Len(t, grid.Coords, 1)
	assert.Equal(t, Coord{Y: 0, X: 0}, grid.Coords[0])
}

func TestGridFromMaskRowMajorOrder(t *testing.T) {
	mask := Mask{
		{false, true},
		{true, false},
	}

	grid, err := GridFromMask(mask, 1.0)
	require.NoError(t, err)
	require.Len(t, grid.Coords, 2)
	// (0,0) comes before (1,1) in row-major order.
	assert.Equal(t, Coord{Y: -0.5, X: -0.5}, grid.Coords[0])
	assert.Equal(t, Coord{Y: 0.5, X: 0.5}, grid.Coords[1])
}

func TestGridFromMaskDeterminism(t *testing.T) {
	mask := Mask{
		{false, false, true},
		{false, true, false},
	}
	a, err := GridFromMask(mask, 0.2)
	require.NoError(t, err)
	b, err := GridFromMask(mask, 0.2)
	require.NoError(t, err)
	assert.Equal(t, a.Coords, b.Coords)
}

func TestGridFromMaskErrors(t *testing.T) {
	_, err := GridFromMask(Mask{}, 0.1)
	assert.Error(t, err)

	_, err = GridFromMask(Mask{{false}}, 0)
	assert.Error(t, err)

	_, err = GridFromMask(Mask{{true, true}}, 0.1)
	assert.Error(t, err)

	_, err = GridFromMask(Mask{{false, false}, {false}}, 0.1)
	assert.Error(t, err)
}

func TestImageShape(t *testing.T) {
	im := Image{Pixels: [][]float64{{1, 2, 3}, {4, 5, 6}}, PixelScale: 0.1}
	rows, cols := im.Shape()
	assert.Equal(t, 2, rows)
	assert.Equal(t, 3, cols)

	rows, cols = Image{}.Shape()
	assert.Zero(t, rows)
	assert.Zero(t, cols)
}
