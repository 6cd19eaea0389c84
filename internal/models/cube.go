package models

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Cube represents a hyperspectral image cube with axes (row, column, band).
// A cube is never modified after construction; every consumer borrows it read-only.
type Cube struct {
	// Data holds the samples in row-major order with the band axis fastest:
	// index = (row*Cols + col)*Bands + band
	Data []float64

	// Rows is the image height in pixels
	Rows int

	// Cols is the image width in pixels
	Cols int

	// Bands is the number of spectral bands per pixel
	Bands int
}

// Point is an integer pixel coordinate
type Point struct {
	Row int
	Col int
}

// BandRange is a half-open range of band indices [Lo, Hi)
type BandRange struct {
	Lo int
	Hi int
}

// Len returns the number of bands covered by the range
func (r BandRange) Len() int {
	if r.Hi < r.Lo {
		return 0
	}
	return r.Hi - r.Lo
}

// NewCube wraps data as a cube. data may be nil, in which case a zero cube is allocated.
func NewCube(rows, cols, bands int, data []float64) (*Cube, error) {
	if rows <= 0 || cols <= 0 || bands <= 0 {
		return nil, errors.Errorf("cube dimensions must be positive, got %dx%dx%d", rows, cols, bands)
	}
	if data == nil {
		data = make([]float64, rows*cols*bands)
	}
	if len(data) != rows*cols*bands {
		return nil, errors.Errorf("cube data length %d does not match %dx%dx%d", len(data), rows, cols, bands)
	}
	return &Cube{Data: data, Rows: rows, Cols: cols, Bands: bands}, nil
}

// Offset returns the index of the first band of pixel (row, col) in Data
func (c *Cube) Offset(row, col int) int {
	return (row*c.Cols + col) * c.Bands
}

// At returns a single sample
func (c *Cube) At(row, col, band int) float64 {
	return c.Data[c.Offset(row, col)+band]
}

// Contains reports whether (row, col) lies inside the image extent
func (c *Cube) Contains(p Point) bool {
	return p.Row >= 0 && p.Row < c.Rows && p.Col >= 0 && p.Col < c.Cols
}

// Spectrum returns a copy of the full spectrum at pixel (row, col)
func (c *Cube) Spectrum(row, col int) []float64 {
	off := c.Offset(row, col)
	out := make([]float64, c.Bands)
	copy(out, c.Data[off:off+c.Bands])
	return out
}

// Band extracts the image plane of one band as a rows x cols matrix.
func (c *Cube) Band(band int) (*mat.Dense, error) {
	if band < 0 || band >= c.Bands {
		return nil, errors.Wrapf(ErrInvalidBandIndex, "band %d outside [0, %d)", band, c.Bands)
	}
	plane := mat.NewDense(c.Rows, c.Cols, nil)
	for row := 0; row < c.Rows; row++ {
		dst := plane.RawRowView(row)
		for col := 0; col < c.Cols; col++ {
			dst[col] = c.Data[c.Offset(row, col)+band]
		}
	}
	return plane, nil
}

// SameExtent reports whether two cubes share row and column counts
func (c *Cube) SameExtent(o *Cube) bool {
	return c.Rows == o.Rows && c.Cols == o.Cols
}
