// Package cubeio loads hyperspectral cubes from directories of band images and
// generates synthetic cubes for demonstrations and tests.
package cubeio

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	_ "golang.org/x/image/tiff"

	"cubeinspector/internal/models"
)

var bandExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".tif":  true,
	".tiff": true,
}

// LoadBandStack reads every band image in dir, ordered by the number embedded in the
// file name, into a cube. Each image becomes one band; samples are scaled to [0, 1].
func LoadBandStack(dir string) (*models.Cube, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "reading band directory %s", dir)
	}

	var bandFiles []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if bandExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			bandFiles = append(bandFiles, entry.Name())
		}
	}
	if len(bandFiles) == 0 {
		return nil, errors.Errorf("no band images found in %s", dir)
	}

	// Band order follows the number in the file name, not lexical order
	sort.SliceStable(bandFiles, func(i, j int) bool {
		return extractNumber(bandFiles[i]) < extractNumber(bandFiles[j])
	})

	var cube *models.Cube
	for band, name := range bandFiles {
		img, err := loadImage(filepath.Join(dir, name))
		if err != nil {
			return nil, errors.Wrapf(err, "loading band image %s", name)
		}

		bounds := img.Bounds()
		if cube == nil {
			cube, err = models.NewCube(bounds.Dy(), bounds.Dx(), len(bandFiles), nil)
			if err != nil {
				return nil, err
			}
		} else if bounds.Dx() != cube.Cols || bounds.Dy() != cube.Rows {
			return nil, errors.Errorf("band image %s is %dx%d, expected %dx%d",
				name, bounds.Dx(), bounds.Dy(), cube.Cols, cube.Rows)
		}

		plane := imageToFloat(img)
		for i, v := range plane {
			cube.Data[i*cube.Bands+band] = v
		}
	}

	return cube, nil
}

// SaveBandStack writes one 16-bit grayscale PNG per band. Samples are expected in [0, 1]
// and clamped otherwise.
func SaveBandStack(cube *models.Cube, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, "creating band directory %s", dir)
	}

	for band := 0; band < cube.Bands; band++ {
		plane, err := cube.Band(band)
		if err != nil {
			return err
		}
		img := floatToImage(plane.RawMatrix().Data, cube.Cols, cube.Rows)

		path := filepath.Join(dir, fmt.Sprintf("band_%03d.png", band))
		if err := savePNG(img, path); err != nil {
			return errors.Wrapf(err, "writing band %d", band)
		}
	}
	return nil
}

// extractNumber extracts the numeric part from a filename
func extractNumber(filename string) int {
	base := filepath.Base(filename)
	numStr := ""
	for _, c := range base {
		if c >= '0' && c <= '9' {
			numStr += string(c)
		}
	}

	if numStr != "" {
		num, err := strconv.Atoi(numStr)
		if err == nil {
			return num
		}
	}
	return 0
}

func loadImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	return img, err
}

func savePNG(img image.Image, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(file, img); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// imageToFloat converts an image to row-major gray values in [0, 1]
func imageToFloat(img image.Image) []float64 {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	result := make([]float64, width*height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			g := color.Gray16Model.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.Gray16)
			result[y*width+x] = float64(g.Y) / 65535.0
		}
	}

	return result
}

// floatToImage converts row-major values in [0, 1] to a 16-bit grayscale image
func floatToImage(data []float64, width, height int) *image.Gray16 {
	img := image.NewGray16(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := data[y*width+x]
			if v < 0 {
				v = 0
			} else if v > 1 {
				v = 1
			}
			img.SetGray16(x, y, color.Gray16{Y: uint16(v*65535.0 + 0.5)})
		}
	}

	return img
}
