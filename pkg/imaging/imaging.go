// Package imaging holds the minimal observed-data structures the analysis
// layer consumes: an image with a pixel scale, a mask, and the coordinate
// grids derived from the mask once per fitting stage.
package imaging

import (
	"github.com/XiaoConstantine/astrofit-go/pkg/errors"
)

// Image is observed pixel data on a regular grid.
type Image struct {
	Pixels     [][]float64
	PixelScale float64 // arcseconds per pixel
}

// Shape returns rows, columns.
func (im Image) Shape() (int, int) {
	if len(im.Pixels) == 0 {
		return 0, 0
	}
	return len(im.Pixels), len(im.Pixels[0])
}

// Mask marks pixels excluded from the fit. true means masked out.
type Mask [][]bool

// Shape returns rows, columns.
func (m Mask) Shape() (int, int) {
	if len(m) == 0 {
		return 0, 0
	}
	return len(m), len(m[0])
}

// Coord is an image-plane coordinate in arcseconds, centred on the grid.
type Coord struct {
	Y float64
	X float64
}

// GridCollection holds the coordinates of every unmasked pixel in
// deterministic row-major order. Deriving it is the expensive per-stage setup;
// it is computed once and reused by every fitness evaluation in the stage.
type GridCollection struct {
	Coords     []Coord
	PixelScale float64
}

// GridFromMask derives the unmasked coordinate grid for an image of the given
// pixel scale.
func GridFromMask(mask Mask, pixelScale float64) (*GridCollection, error) {
	rows, cols := mask.Shape()
	if rows == 0 || cols == 0 {
		return nil, errors.New(errors.InvalidInput, "mask must not be empty")
	}
	if pixelScale <= 0 {
		return nil, errors.New(errors.InvalidInput, "pixel scale must be positive")
	}

	centreY := float64(rows-1) / 2
	centreX := float64(cols-1) / 2

	grid := &GridCollection{PixelScale: pixelScale}
	for r := 0; r < rows; r++ {
		if len(mask[r]) != cols {
			return nil, errors.New(errors.InvalidInput, "mask rows must have equal length")
		}
		for c := 0; c < cols; c++ {
			if mask[r][c] {
				continue
			}
			grid.Coords = append(grid.Coords, Coord{
				Y: (float64(r) - centreY) * pixelScale,
				X: (float64(c) - centreX) * pixelScale,
			})
		}
	}
	if len(grid.Coords) == 0 {
		return nil, errors.New(errors.InvalidInput, "mask excludes every pixel")
	}
	return grid, nil
}

// Tracer bundles the reconstructed lens and source entities with the stage
// grids for the likelihood collaborator. The ray-tracing physics itself lives
// outside this module.
type Tracer struct {
	LensGalaxies   []any
	SourceGalaxies []any
	Grids          *GridCollection
}

// NewTracer assembles a tracer.
func NewTracer(lensGalaxies, sourceGalaxies []any, grids *GridCollection) *Tracer {
	return &Tracer{
		LensGalaxies:   lensGalaxies,
		SourceGalaxies: sourceGalaxies,
		Grids:          grids,
	}
}
