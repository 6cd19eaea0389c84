// Package visualization renders inspector panels to image files and replays
// scripted input against an inspector.
package visualization

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"cubeinspector/pkg/falsecolor"
	"cubeinspector/pkg/inspector"
)

var (
	background = color.RGBA{255, 255, 255, 255}
	foreground = color.RGBA{0, 0, 0, 255}
)

// titleHeight is the band above every panel holding its title
const titleHeight = 18

func colormapFor(c inspector.Colormap) Colormap {
	if c == inspector.ColormapViridis {
		return Viridis
	}
	return Gray
}

// ScalarToImage maps a scalar plane through its colormap, one image pixel per sample.
// Values are normalized to [Lo, Hi]; a flat range renders as the colormap's low end.
func ScalarToImage(img inspector.ScalarImage) *image.RGBA {
	rows, cols := img.Plane.Dims()
	out := image.NewRGBA(image.Rect(0, 0, cols, rows))
	cm := colormapFor(img.Colormap)

	span := img.Hi - img.Lo
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			t := 0.0
			if span > 0 {
				t = (img.Plane.At(y, x) - img.Lo) / span
			}
			out.SetRGBA(x, y, cm.At(t))
		}
	}
	return out
}

// RGBToImage quantizes a composite in [0, 1] to 8 bits per channel
func RGBToImage(img *falsecolor.Image) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, img.Cols, img.Rows))
	for y := 0; y < img.Rows; y++ {
		for x := 0; x < img.Cols; x++ {
			r, g, b := img.At(y, x)
			out.SetRGBA(x, y, color.RGBA{R: quantize(r), G: quantize(g), B: quantize(b), A: 255})
		}
	}
	return out
}

func quantize(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
}

// drawText writes s with its baseline at (x, y)
func drawText(dst *image.RGBA, x, y int, s string, c color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

func textWidth(s string) int {
	return font.MeasureString(basicfont.Face7x13, s).Round()
}

// strokePolyline draws an anti-aliased line of the given width through pts
func strokePolyline(dst *image.RGBA, pts []image.Point, width float64, c color.Color) {
	if len(pts) < 2 {
		return
	}
	b := dst.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	half := float32(width / 2)

	for i := 1; i < len(pts); i++ {
		x0, y0 := float32(pts[i-1].X-b.Min.X), float32(pts[i-1].Y-b.Min.Y)
		x1, y1 := float32(pts[i].X-b.Min.X), float32(pts[i].Y-b.Min.Y)
		dx, dy := x1-x0, y1-y0
		length := float32(math.Hypot(float64(dx), float64(dy)))
		if length == 0 {
			continue
		}
		// segment as a thin quad along its normal
		nx, ny := -dy/length*half, dx/length*half
		z.MoveTo(x0+nx, y0+ny)
		z.LineTo(x1+nx, y1+ny)
		z.LineTo(x1-nx, y1-ny)
		z.LineTo(x0-nx, y0-ny)
		z.ClosePath()
	}
	z.Draw(dst, b, image.NewUniform(c), image.Point{})
}

func hline(dst *image.RGBA, x0, x1, y int, c color.RGBA) {
	for x := x0; x <= x1; x++ {
		dst.SetRGBA(x, y, c)
	}
}

func vline(dst *image.RGBA, x, y0, y1 int, c color.RGBA) {
	for y := y0; y <= y1; y++ {
		dst.SetRGBA(x, y, c)
	}
}

func fill(dst *image.RGBA, c color.RGBA) {
	draw.Draw(dst, dst.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}
