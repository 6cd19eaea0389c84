// Package falsecolor builds RGB composites from three bands of a hyperspectral cube.
package falsecolor

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"cubeinspector/internal/models"
)

// Image is a three channel float image in red, green, blue order with values in [0, 1]
type Image struct {
	// Pix holds (row, col, channel) samples, channel fastest
	Pix []float64

	Rows int
	Cols int
}

// At returns the red, green and blue values of one pixel
func (im *Image) At(row, col int) (r, g, b float64) {
	i := (row*im.Cols + col) * 3
	return im.Pix[i], im.Pix[i+1], im.Pix[i+2]
}

// Bands is the band triple a composite is built from
type Bands struct {
	Blue  int
	Green int
	Red   int
}

// Compose builds one false color image per cube from the given bands.
// Each image is divided by its own maximum over all three channels and clipped to [0, 1].
func Compose(cubes []*models.Cube, blue, green, red int) ([]*Image, error) {
	for i, cube := range cubes {
		for _, band := range []int{blue, green, red} {
			if band < 0 || band >= cube.Bands {
				return nil, errors.Wrapf(models.ErrInvalidBandIndex,
					"false color band %d outside [0, %d) for cube %d", band, cube.Bands, i)
			}
		}
	}

	images := make([]*Image, 0, len(cubes))
	for _, cube := range cubes {
		images = append(images, compose(cube, blue, green, red))
	}
	return images, nil
}

func compose(cube *models.Cube, blue, green, red int) *Image {
	im := &Image{
		Pix:  make([]float64, cube.Rows*cube.Cols*3),
		Rows: cube.Rows,
		Cols: cube.Cols,
	}

	for row := 0; row < cube.Rows; row++ {
		for col := 0; col < cube.Cols; col++ {
			src := cube.Offset(row, col)
			dst := (row*cube.Cols + col) * 3
			im.Pix[dst] = cube.Data[src+red]
			im.Pix[dst+1] = cube.Data[src+green]
			im.Pix[dst+2] = cube.Data[src+blue]
		}
	}

	// A non-positive maximum would flip or blow up the values, leave them to clipping
	if max := floats.Max(im.Pix); max > 0 {
		floats.Scale(1/max, im.Pix)
	}
	for i, v := range im.Pix {
		if v < 0 {
			im.Pix[i] = 0
		} else if v > 1 {
			im.Pix[i] = 1
		}
	}
	return im
}
