package cubeio

import (
	"math"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"cubeinspector/internal/models"
)

// SyntheticParams describes a generated cube
type SyntheticParams struct {
	Rows  int
	Cols  int
	Bands int

	// Smile shifts the spectral peaks by up to this many bands towards the image edges,
	// quadratic in the distance from the centre column
	Smile float64

	// Noise is the standard deviation of additive Gaussian noise
	Noise float64

	Seed uint64
}

// Synthetic builds a cube of three overlapping materials arranged in vertical stripes.
// Each material is a Gaussian absorption peak on a sloped baseline.
func Synthetic(p SyntheticParams) (*models.Cube, error) {
	cube, err := models.NewCube(p.Rows, p.Cols, p.Bands, nil)
	if err != nil {
		return nil, errors.Wrap(err, "synthetic cube")
	}

	noise := distuv.Normal{Mu: 0, Sigma: p.Noise, Src: rand.NewSource(p.Seed)}
	bands := float64(p.Bands)
	centres := []float64{0.25 * bands, 0.5 * bands, 0.75 * bands}
	width := math.Max(1, bands/12)
	half := math.Max(1, float64(p.Cols-1)/2)

	for row := 0; row < p.Rows; row++ {
		brightness := 0.6 + 0.3*float64(row)/math.Max(1, float64(p.Rows-1))
		for col := 0; col < p.Cols; col++ {
			d := (float64(col) - half) / half
			shift := p.Smile * d * d

			// abundances vary smoothly across the stripes and sum to one
			stripe := 3 * float64(col) / float64(p.Cols)
			abundance := make([]float64, len(centres))
			total := 0.0
			for m := range abundance {
				diff := stripe - (float64(m) + 0.5)
				abundance[m] = math.Exp(-diff * diff)
				total += abundance[m]
			}

			off := cube.Offset(row, col)
			for b := 0; b < p.Bands; b++ {
				x := float64(b) + shift
				v := 0.2 + 0.3*x/bands
				for m, c := range centres {
					z := (x - c) / width
					v += 0.5 * abundance[m] / total * math.Exp(-0.5*z*z)
				}
				if p.Noise > 0 {
					v += noise.Rand()
				}
				cube.Data[off+b] = brightness * v
			}
		}
	}
	return cube, nil
}

// SyntheticStack builds an original cube with smile distortion and two corrected variants
// without it, each with independent noise
func SyntheticStack(p SyntheticParams) ([]*models.Cube, error) {
	org, err := Synthetic(p)
	if err != nil {
		return nil, err
	}

	corrected := p
	corrected.Smile = 0
	corrected.Seed = p.Seed + 1
	lut, err := Synthetic(corrected)
	if err != nil {
		return nil, err
	}

	corrected.Seed = p.Seed + 2
	intr, err := Synthetic(corrected)
	if err != nil {
		return nil, err
	}
	return []*models.Cube{org, lut, intr}, nil
}
