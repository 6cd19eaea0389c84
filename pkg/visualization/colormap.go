package visualization

import (
	"image/color"
)

// Colormap maps normalized values [0, 1] to colors.
type Colormap interface {
	At(t float64) color.RGBA
}

// LinearColormap interpolates linearly between evenly spaced color stops.
type LinearColormap struct {
	colors []color.RGBA
}

// NewLinearColormap builds a colormap from at least one stop
func NewLinearColormap(stops ...color.RGBA) LinearColormap {
	return LinearColormap{colors: stops}
}

// At returns the color at position t (0-1).
func (c LinearColormap) At(t float64) color.RGBA {
	if t <= 0 || t != t {
		return c.colors[0]
	}
	if t >= 1 {
		return c.colors[len(c.colors)-1]
	}

	idx := t * float64(len(c.colors)-1)
	lower := int(idx)
	upper := lower + 1
	if upper >= len(c.colors) {
		upper = len(c.colors) - 1
	}

	frac := idx - float64(lower)
	return interpolate(c.colors[lower], c.colors[upper], frac)
}

func interpolate(c1, c2 color.RGBA, t float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c1.R) + t*(float64(c2.R)-float64(c1.R))),
		G: uint8(float64(c1.G) + t*(float64(c2.G)-float64(c1.G))),
		B: uint8(float64(c1.B) + t*(float64(c2.B)-float64(c1.B))),
		A: 255,
	}
}

// Gray runs from black to white
var Gray = NewLinearColormap(color.RGBA{0, 0, 0, 255}, color.RGBA{255, 255, 255, 255})

// Viridis colormap (matplotlib viridis)
var Viridis = NewLinearColormap(
	color.RGBA{68, 1, 84, 255},
	color.RGBA{72, 35, 116, 255},
	color.RGBA{64, 67, 135, 255},
	color.RGBA{52, 94, 141, 255},
	color.RGBA{41, 120, 142, 255},
	color.RGBA{32, 144, 140, 255},
	color.RGBA{34, 167, 132, 255},
	color.RGBA{68, 190, 112, 255},
	color.RGBA{121, 209, 81, 255},
	color.RGBA{189, 222, 38, 255},
	color.RGBA{253, 231, 37, 255},
)
