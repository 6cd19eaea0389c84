package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/floats"

	"cubeinspector/internal/models"
)

// Viewer cuts 2D slices out of a hyperspectral cube along any of its three axes
type Viewer struct {
	cube *models.Cube

	// lo and hi are the cube-wide limits every slice is normalized to
	lo, hi float64
}

// NewViewer creates a slice viewer for cube
func NewViewer(cube *models.Cube) *Viewer {
	return &Viewer{
		cube: cube,
		lo:   floats.Min(cube.Data),
		hi:   floats.Max(cube.Data),
	}
}

func (v *Viewer) gray(value float64) color.Gray16 {
	span := v.hi - v.lo
	if span <= 0 {
		return color.Gray16{}
	}
	t := (value - v.lo) / span
	return color.Gray16{Y: uint16(math.Max(0, math.Min(65535, t*65535)))}
}

// ExtractSlice extracts a 2D slice from the cube:
//
//	band: the spatial image of one band (cols x rows)
//	row:  every band of one image row (bands x cols)
//	col:  every band of one image column (bands x rows)
func (v *Viewer) ExtractSlice(axis string, position int) (image.Image, error) {
	if position < 0 {
		return nil, fmt.Errorf("position must be non-negative")
	}
	c := v.cube

	switch axis {
	case "band":
		if position >= c.Bands {
			return nil, fmt.Errorf("position %d exceeds bands %d", position, c.Bands)
		}
		img := image.NewGray16(image.Rect(0, 0, c.Cols, c.Rows))
		for y := 0; y < c.Rows; y++ {
			for x := 0; x < c.Cols; x++ {
				img.SetGray16(x, y, v.gray(c.At(y, x, position)))
			}
		}
		return img, nil

	case "row":
		if position >= c.Rows {
			return nil, fmt.Errorf("position %d exceeds rows %d", position, c.Rows)
		}
		img := image.NewGray16(image.Rect(0, 0, c.Bands, c.Cols))
		for y := 0; y < c.Cols; y++ {
			for x := 0; x < c.Bands; x++ {
				img.SetGray16(x, y, v.gray(c.At(position, y, x)))
			}
		}
		return img, nil

	case "col":
		if position >= c.Cols {
			return nil, fmt.Errorf("position %d exceeds cols %d", position, c.Cols)
		}
		img := image.NewGray16(image.Rect(0, 0, c.Bands, c.Rows))
		for y := 0; y < c.Rows; y++ {
			for x := 0; x < c.Bands; x++ {
				img.SetGray16(x, y, v.gray(c.At(y, position, x)))
			}
		}
		return img, nil
	}

	return nil, fmt.Errorf("invalid axis: %s (must be band, row, or col)", axis)
}

// SaveSlice saves an extracted slice as a JPEG image
func (v *Viewer) SaveSlice(img image.Image, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return jpeg.Encode(file, img, &jpeg.Options{Quality: 90})
}

// SaveSliceSequence extracts and saves every slice along the specified axis
func (v *Viewer) SaveSliceSequence(axis string, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	var maxPos int
	switch axis {
	case "band":
		maxPos = v.cube.Bands
	case "row":
		maxPos = v.cube.Rows
	case "col":
		maxPos = v.cube.Cols
	default:
		return fmt.Errorf("invalid axis: %s (must be band, row, or col)", axis)
	}

	for pos := 0; pos < maxPos; pos++ {
		img, err := v.ExtractSlice(axis, pos)
		if err != nil {
			return err
		}

		filename := filepath.Join(outputDir, fmt.Sprintf("slice_%s_%03d.jpg", axis, pos))
		if err := v.SaveSlice(img, filename); err != nil {
			return err
		}
	}

	return nil
}
