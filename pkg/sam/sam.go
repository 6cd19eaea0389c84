// Package sam computes spectral angle maps: the similarity of every pixel spectrum in a
// window against a reference spectrum taken from one column of that window.
package sam

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"cubeinspector/internal/models"
)

// Params holds every input of a spectral angle computation except the cube.
// Params is comparable so it can key a result cache.
type Params struct {
	// Start and End are opposite window corners; End is exclusive on both axes
	Start models.Point
	End   models.Point

	// ReferenceColumn selects the column whose window-mean spectrum is the reference
	ReferenceColumn int

	// UseRadians returns arccos of the similarity instead of the raw cosine
	UseRadians bool

	// Filter restricts the bands taking part in the comparison
	Filter models.BandRange

	// UseCentered subtracts each spectrum's own mean before comparing
	UseCentered bool
}

// Result is the outcome of one computation
type Result struct {
	// Image has the cube's extent, zero outside the window
	Image *mat.Dense

	// Window holds only the window values; nil for a zero-area window
	Window *mat.Dense

	// Start, End and ReferenceColumn as actually used after normalisation and clipping
	Start           models.Point
	End             models.Point
	ReferenceColumn int

	// Reference is the filtered reference spectrum before centring
	Reference []float64

	// Degenerate is set when the reference had zero norm and every value was forced to 0 similarity
	Degenerate bool

	// ZeroNormPixels counts window pixels whose own spectrum had zero norm
	ZeroNormPixels int
}

// NormalizeWindow orders two corners so that start <= end on each axis independently
func NormalizeWindow(a, b models.Point) (start, end models.Point) {
	start, end = a, b
	if end.Row < start.Row {
		start.Row, end.Row = end.Row, start.Row
	}
	if end.Col < start.Col {
		start.Col, end.Col = end.Col, start.Col
	}
	return start, end
}

// ClipReference clamps a column into the half-open column range of a normalised window.
// For a window with no columns it returns start.Col.
func ClipReference(col int, start, end models.Point) int {
	hi := end.Col - 1
	if hi < start.Col {
		hi = start.Col
	}
	if col < start.Col {
		return start.Col
	}
	if col > hi {
		return hi
	}
	return col
}

func validate(cube *models.Cube, start, end models.Point, filter models.BandRange) error {
	if start.Row < 0 || start.Col < 0 || end.Row > cube.Rows || end.Col > cube.Cols {
		return errors.Wrapf(models.ErrInvalidWindow, "window (%d,%d)-(%d,%d) outside %dx%d image",
			start.Row, start.Col, end.Row, end.Col, cube.Rows, cube.Cols)
	}
	if filter.Lo < 0 || filter.Hi > cube.Bands || filter.Lo > filter.Hi {
		return errors.Wrapf(models.ErrInvalidBandIndex, "spectral filter [%d, %d) outside [0, %d]",
			filter.Lo, filter.Hi, cube.Bands)
	}
	return nil
}

// ReferenceSpectrum returns the mean spectrum over the window rows at the (clipped)
// reference column, restricted to filter. The window is normalised first.
func ReferenceSpectrum(cube *models.Cube, a, b models.Point, col int, filter models.BandRange) ([]float64, error) {
	start, end := NormalizeWindow(a, b)
	if err := validate(cube, start, end, filter); err != nil {
		return nil, err
	}
	if end.Row == start.Row || end.Col == start.Col {
		return nil, nil
	}
	return reference(cube, start, end, ClipReference(col, start, end), filter), nil
}

func reference(cube *models.Cube, start, end models.Point, col int, filter models.BandRange) []float64 {
	nb := filter.Len()
	ref := make([]float64, nb)
	column := make([]float64, end.Row-start.Row)
	for b := 0; b < nb; b++ {
		for i := range column {
			column[i] = cube.At(start.Row+i, col, filter.Lo+b)
		}
		ref[b] = stat.Mean(column, nil)
	}
	return ref
}

// Compute builds the spectral angle map of cube for p.
func Compute(cube *models.Cube, p Params) (*Result, error) {
	start, end := NormalizeWindow(p.Start, p.End)
	if err := validate(cube, start, end, p.Filter); err != nil {
		return nil, err
	}

	res := &Result{
		Image:           mat.NewDense(cube.Rows, cube.Cols, nil),
		Start:           start,
		End:             end,
		ReferenceColumn: ClipReference(p.ReferenceColumn, start, end),
	}

	h, w := end.Row-start.Row, end.Col-start.Col
	if h == 0 || w == 0 {
		return res, nil
	}

	res.Window = mat.NewDense(h, w, nil)
	nb := p.Filter.Len()
	if nb == 0 {
		// Nothing to compare: every pixel is at zero similarity
		res.Degenerate = true
		res.Reference = []float64{}
		fill(res, similarityValue(0, p.UseRadians))
		return res, nil
	}

	res.Reference = reference(cube, start, end, res.ReferenceColumn, p.Filter)

	ref := make([]float64, nb)
	copy(ref, res.Reference)
	if p.UseCentered {
		floats.AddConst(-stat.Mean(ref, nil), ref)
	}

	// One row per window pixel, one column per filtered band
	subset := mat.NewDense(h*w, nb, nil)
	for r := 0; r < h; r++ {
		for c := 0; c < w; c++ {
			off := cube.Offset(start.Row+r, start.Col+c)
			row := subset.RawRowView(r*w + c)
			copy(row, cube.Data[off+p.Filter.Lo:off+p.Filter.Hi])
			if p.UseCentered {
				floats.AddConst(-stat.Mean(row, nil), row)
			}
		}
	}

	refNorm := floats.Norm(ref, 2)
	if refNorm == 0 {
		res.Degenerate = true
		fill(res, similarityValue(0, p.UseRadians))
		return res, nil
	}

	dots := mat.NewVecDense(h*w, nil)
	dots.MulVec(subset, mat.NewVecDense(nb, ref))

	for i := 0; i < h*w; i++ {
		var sim float64
		if pixNorm := floats.Norm(subset.RawRowView(i), 2); pixNorm == 0 {
			res.ZeroNormPixels++
		} else {
			sim = dots.AtVec(i) / (refNorm * pixNorm)
		}
		v := similarityValue(sim, p.UseRadians)
		r, c := i/w, i%w
		res.Window.Set(r, c, v)
		res.Image.Set(start.Row+r, start.Col+c, v)
	}
	return res, nil
}

// similarityValue clips a cosine into [-1, 1] and optionally converts it to an angle
func similarityValue(cos float64, radians bool) float64 {
	cos = math.Max(-1, math.Min(1, cos))
	if radians {
		return math.Acos(cos)
	}
	return cos
}

func fill(res *Result, v float64) {
	h, w := res.Window.Dims()
	for r := 0; r < h; r++ {
		for c := 0; c < w; c++ {
			res.Window.Set(r, c, v)
			res.Image.Set(res.Start.Row+r, res.Start.Col+c, v)
		}
	}
}
