package visualization

import (
	"fmt"
	"image"
	"math"

	"cubeinspector/pkg/inspector"
)

const (
	marginLeft   = 64
	marginRight  = 16
	marginTop    = titleHeight + 8
	marginBottom = 40
	legendRow    = 14
)

// plotFrame maps data coordinates of a rendered plot to pixels
type plotFrame struct {
	area       image.Rectangle
	xMax       float64
	yMin, yMax float64
}

func (f plotFrame) x(v float64) int {
	return f.area.Min.X + int(math.Round(v/f.xMax*float64(f.area.Dx()-1)))
}

func (f plotFrame) y(v float64) int {
	t := (v - f.yMin) / (f.yMax - f.yMin)
	return f.area.Max.Y - 1 - int(math.Round(t*float64(f.area.Dy()-1)))
}

// newPlotFrame fits the series into a width x height image. The x axis spans the
// longest series; the y axis spans every finite value, widened when flat.
func newPlotFrame(plot inspector.Plot, width, height int) plotFrame {
	f := plotFrame{
		area: image.Rect(marginLeft, marginTop, width-marginRight, height-marginBottom),
		xMax: 1,
		yMin: math.Inf(1),
		yMax: math.Inf(-1),
	}
	for _, s := range plot.Series {
		if n := float64(len(s.Values) - 1); n > f.xMax {
			f.xMax = n
		}
		for _, v := range s.Values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			f.yMin = math.Min(f.yMin, v)
			f.yMax = math.Max(f.yMax, v)
		}
	}
	if math.IsInf(f.yMin, 1) {
		f.yMin, f.yMax = 0, 1
	}
	if f.yMax-f.yMin < 1e-12 {
		f.yMin -= 0.5
		f.yMax += 0.5
	}
	return f
}

// RenderPlot rasterizes a line plot with axes, tick labels and a legend
func RenderPlot(plot inspector.Plot, width, height int) *image.RGBA {
	img, _ := renderPlot(plot, width, height)
	return img
}

func renderPlot(plot inspector.Plot, width, height int) (*image.RGBA, plotFrame) {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	fill(img, background)
	f := newPlotFrame(plot, width, height)

	// axes
	hline(img, f.area.Min.X, f.area.Max.X-1, f.area.Max.Y-1, foreground)
	vline(img, f.area.Min.X, f.area.Min.Y, f.area.Max.Y-1, foreground)

	// ticks at the ends and midpoint of each axis
	for _, t := range []float64{0, 0.5, 1} {
		xv := t * f.xMax
		px := f.x(xv)
		vline(img, px, f.area.Max.Y, f.area.Max.Y+3, foreground)
		label := fmt.Sprintf("%.0f", xv)
		drawText(img, px-textWidth(label)/2, f.area.Max.Y+15, label, foreground)

		yv := f.yMin + t*(f.yMax-f.yMin)
		py := f.y(yv)
		hline(img, f.area.Min.X-3, f.area.Min.X, py, foreground)
		label = fmt.Sprintf("%.3g", yv)
		drawText(img, f.area.Min.X-6-textWidth(label), py+4, label, foreground)
	}

	drawText(img, (width-textWidth(plot.Title))/2, 14, plot.Title, foreground)
	drawText(img, (width-textWidth(plot.XLabel))/2, height-6, plot.XLabel, foreground)
	drawText(img, 4, marginTop-4, plot.YLabel, foreground)

	for i, s := range plot.Series {
		var pts []image.Point
		for x, v := range s.Values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				strokePolyline(img, pts, 1.5, s.Color)
				pts = pts[:0]
				continue
			}
			pts = append(pts, image.Pt(f.x(float64(x)), f.y(v)))
		}
		strokePolyline(img, pts, 1.5, s.Color)

		// legend in the top right corner of the plot area
		ly := f.area.Min.Y + 12 + i*legendRow
		lx := f.area.Max.X - 8 - textWidth(s.Label)
		hline(img, lx-18, lx-4, ly-4, s.Color)
		hline(img, lx-18, lx-4, ly-3, s.Color)
		drawText(img, lx, ly, s.Label, foreground)
	}

	return img, f
}
