package inspector

import (
	"image/color"
	"strings"

	"gonum.org/v1/gonum/mat"

	"cubeinspector/internal/models"
	"cubeinspector/pkg/falsecolor"
)

// Panel names one drawing area of the surface
type Panel int

const (
	PanelSpectrogram Panel = iota
	PanelOriginal
	PanelLUT
	PanelInterpolated
)

// MaxCubes is how many cubes one inspector can show
const MaxCubes = 3

var panelNames = map[Panel]string{
	PanelSpectrogram:  "spectrogram",
	PanelOriginal:     "org",
	PanelLUT:          "lut",
	PanelInterpolated: "intr",
}

func (p Panel) String() string {
	if name, ok := panelNames[p]; ok {
		return name
	}
	return "unknown"
}

// CubePanel returns the panel showing cube i
func CubePanel(i int) Panel {
	return PanelOriginal + Panel(i)
}

// CubeIndex returns the cube shown in p, if any
func (p Panel) CubeIndex() (int, bool) {
	if p < PanelOriginal || p > PanelInterpolated {
		return 0, false
	}
	return int(p - PanelOriginal), true
}

// ParsePanel accepts the names produced by Panel.String
func ParsePanel(s string) (Panel, bool) {
	s = strings.ToLower(s)
	for p, name := range panelNames {
		if name == s {
			return p, true
		}
	}
	return 0, false
}

// Colormap selects how a scalar image is mapped to colour
type Colormap int

const (
	ColormapGray Colormap = iota
	ColormapViridis
)

// ScalarImage is a single channel image with its display limits
type ScalarImage struct {
	Plane    *mat.Dense
	Lo, Hi   float64
	Colormap Colormap
	Title    string
}

// Series is one line of a plot, sampled at x = 0, 1, 2, ...
type Series struct {
	Label  string
	Values []float64
	Color  color.RGBA
}

// Plot is a 1-D line plot with axis labels
type Plot struct {
	Title  string
	XLabel string
	YLabel string
	Series []Series
}

// OverlayKind selects the shape of a decoration
type OverlayKind int

const (
	// OverlayPoint marks Start
	OverlayPoint OverlayKind = iota
	// OverlayRect outlines [Start, End)
	OverlayRect
	// OverlayVLine draws column Start.Col from Start.Row to End.Row; on a plot it spans the full height at x = Start.Col
	OverlayVLine
)

// Overlay is a decoration drawn on top of a panel, in data coordinates
type Overlay struct {
	Kind  OverlayKind
	Start models.Point
	End   models.Point
	Color color.RGBA
}

// Surface is the display the inspector draws into. Implementations own the
// window or files; the inspector only issues draw calls.
type Surface interface {
	DrawScalar(panel Panel, img ScalarImage) error
	DrawRGB(panel Panel, img *falsecolor.Image, title string) error
	DrawPlot(panel Panel, plot Plot) error

	// SetOverlays replaces every decoration of panel
	SetOverlays(panel Panel, overlays []Overlay) error

	Status(msg string)
}

// SettingsSource supplies the reloadable settings
type SettingsSource interface {
	Settings() (models.Settings, error)
}
