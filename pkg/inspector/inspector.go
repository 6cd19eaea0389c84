// Package inspector implements the interactive cube inspection state machine. It tracks
// the view state, turns input into events, recomputes false color composites and
// spectral angle maps when their inputs change and drives a Surface.
package inspector

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"cubeinspector/internal/models"
	"cubeinspector/pkg/falsecolor"
	"cubeinspector/pkg/logger"
	"cubeinspector/pkg/sam"
)

// Redraw says how much of the surface an event repaints
type Redraw int

const (
	RedrawNone Redraw = iota
	// RedrawSpectrogram repaints the line plot and decorations
	RedrawSpectrogram
	// RedrawImages repaints the cube panels and decorations
	RedrawImages
	// RedrawFull repaints everything
	RedrawFull
)

func (r Redraw) String() string {
	switch r {
	case RedrawNone:
		return "none"
	case RedrawSpectrogram:
		return "spectrogram"
	case RedrawImages:
		return "images"
	case RedrawFull:
		return "full"
	default:
		return "unknown"
	}
}

var (
	cubeNames   = []string{"ORG", "LUT", "INTR"}
	cubeColors  = []color.RGBA{{0, 0, 0, 255}, {240, 128, 128, 255}, {128, 0, 128, 255}}
	colorSelect = color.RGBA{238, 130, 238, 255}
	colorWindow = color.RGBA{255, 64, 64, 255}
	colorRef    = color.RGBA{255, 215, 0, 255}
)

// Params configures a new Inspector
type Params struct {
	// Surface receives every draw call; required
	Surface Surface

	// Settings is consulted at construction and on reset; optional
	Settings SettingsSource

	// Logger defaults to an info level stderr logger
	Logger logger.ILogger

	// Initial toggles for spectral angle output
	UseRadians  bool
	UseCentered bool
}

// State is the view state of an inspector
type State struct {
	Mode models.Mode

	// Selected is the pixel whose spectra are plotted
	Selected models.Point

	// Band is rendered in reflectance mode
	Band int

	// WindowStart and WindowEnd bound the spectral angle window, End exclusive
	WindowStart models.Point
	WindowEnd   models.Point

	// CornerPending is set between the two clicks drawing a window
	CornerPending bool
	PendingCorner models.Point

	ReferenceColumn int
	Filter          models.BandRange
	UseRadians      bool
	UseCentered     bool
}

// Inspector owns the view state and derived images for a stack of cubes.
// It is not safe for concurrent use.
type Inspector struct {
	cubes   []*models.Cube
	surface Surface
	source  SettingsSource
	log     logger.ILogger

	state    State
	settings models.Settings
	bands    falsecolor.Bands

	// filterStep is how far ShiftFilter moves; bandLimit is the smallest band count
	filterStep int
	bandLimit  int

	falseColor cached[falsecolor.Bands, []*falsecolor.Image]
	angles     cached[sam.Params, []*sam.Result]
}

// New creates an inspector over cubes (original, LUT corrected, interpolation corrected).
// nil cubes are skipped; at least one cube is required and all must share rows and columns.
func New(cubes []*models.Cube, params *Params) (*Inspector, error) {
	var stack []*models.Cube
	for _, c := range cubes {
		if c != nil {
			stack = append(stack, c)
		}
	}
	if len(stack) == 0 {
		return nil, models.ErrNoCubeProvided
	}
	if len(stack) > MaxCubes {
		return nil, errors.Errorf("at most %d cubes can be inspected, got %d", MaxCubes, len(stack))
	}
	if params == nil || params.Surface == nil {
		return nil, errors.New("inspector needs a surface")
	}

	first := stack[0]
	bandLimit := first.Bands
	for i, c := range stack[1:] {
		if !first.SameExtent(c) {
			return nil, errors.Wrapf(models.ErrExtentMismatch, "cube %d is %dx%d, expected %dx%d",
				i+1, c.Rows, c.Cols, first.Rows, first.Cols)
		}
		if c.Bands < bandLimit {
			bandLimit = c.Bands
		}
	}

	log := params.Logger
	if log == nil {
		log = logger.NewStdErrLogger(logger.LogInfo)
	}

	in := &Inspector{
		cubes:     stack,
		surface:   params.Surface,
		source:    params.Settings,
		log:       log,
		bandLimit: bandLimit,
		state: State{
			Mode:            models.Reflectance,
			Selected:        models.Point{Row: first.Rows / 2, Col: first.Cols / 2},
			Band:            bandLimit / 2,
			WindowEnd:       models.Point{Row: first.Rows, Col: first.Cols},
			ReferenceColumn: first.Cols / 2,
			UseRadians:      params.UseRadians,
			UseCentered:     params.UseCentered,
		},
		settings: DefaultSettings(bandLimit),
	}
	in.reload()
	in.applySettings()

	return in, nil
}

// DefaultSettings spreads the false color bands over the band axis and uses the whole
// axis as spectral filter
func DefaultSettings(bands int) models.Settings {
	step := bands / 20
	if step < 1 {
		step = 1
	}
	return models.Settings{
		BlueBand:   bands / 4,
		GreenBand:  bands / 2,
		RedBand:    3 * bands / 4,
		FilterStep: step,
	}
}

// State returns a copy of the current view state
func (in *Inspector) State() State {
	return in.state
}

// Cubes returns the inspected cubes in panel order
func (in *Inspector) Cubes() []*models.Cube {
	return in.cubes
}

// Show paints the whole surface for the current state
func (in *Inspector) Show() {
	in.redraw(RedrawFull)
}

// Dispatch interprets and handles one raw input
func (in *Inspector) Dispatch(raw Input) Redraw {
	return in.Handle(in.Interpret(raw))
}

// Handle applies ev to the state, recomputes what changed and repaints.
// Errors are logged here and never returned: the previous images stay on screen.
func (in *Inspector) Handle(ev Event) Redraw {
	r := in.transition(ev)
	in.log.Debugf("event %T%+v -> redraw %s", ev, ev, r)
	in.redraw(r)
	return r
}

func (in *Inspector) transition(ev Event) Redraw {
	st := &in.state
	angleMode := st.Mode == models.SpectralAngle

	switch e := ev.(type) {
	case ModeSelect:
		if e.Mode < models.Reflectance || e.Mode > models.SpectralAngle {
			in.log.Errorf("mode select: unknown mode %d", e.Mode)
			return RedrawNone
		}
		st.Mode = e.Mode
		return RedrawFull

	case BandClick:
		if st.Mode != models.Reflectance {
			return RedrawNone
		}
		if e.Band < 0 || e.Band >= in.bandLimit {
			in.log.Errorf("band select: %v", errors.Wrapf(models.ErrInvalidBandIndex,
				"band %d outside [0, %d)", e.Band, in.bandLimit))
			return RedrawNone
		}
		st.Band = e.Band
		return RedrawImages

	case PixelClick:
		p := models.Point{Row: e.Row, Col: e.Col}
		if !in.cubes[0].Contains(p) {
			return RedrawNone
		}
		st.CornerPending = false
		st.Selected = p
		return RedrawSpectrogram

	case ReferenceClick:
		st.CornerPending = false
		st.ReferenceColumn = e.Col
		if !angleMode {
			return RedrawNone
		}
		return RedrawFull

	case WindowCorner:
		p := models.Point{Row: e.Row, Col: e.Col}
		if !st.CornerPending {
			st.CornerPending = true
			st.PendingCorner = p
			return RedrawNone
		}
		st.WindowStart, st.WindowEnd = sam.NormalizeWindow(st.PendingCorner, p)
		st.CornerPending = false
		if !angleMode {
			return RedrawNone
		}
		return RedrawFull

	case ToggleRadians:
		st.UseRadians = !st.UseRadians
		if !angleMode {
			return RedrawNone
		}
		return RedrawImages

	case ToggleCentered:
		st.UseCentered = !st.UseCentered
		if !angleMode {
			return RedrawNone
		}
		return RedrawImages

	case ShiftFilter:
		if !angleMode || e.Direction == 0 {
			return RedrawNone
		}
		d := in.filterStep
		if e.Direction < 0 {
			d = -d
		}
		st.Filter = models.BandRange{
			Lo: clamp(st.Filter.Lo+d, 0, in.bandLimit),
			Hi: clamp(st.Filter.Hi+d, 0, in.bandLimit),
		}
		return RedrawImages

	case Reset:
		if !angleMode {
			return RedrawNone
		}
		in.reload()
		in.applySettings()
		return RedrawFull

	case Ignore:
		return RedrawNone
	}
	return RedrawNone
}

// reload fetches settings from the source, keeping the last good ones on failure
func (in *Inspector) reload() {
	if in.source == nil {
		return
	}
	s, err := in.source.Settings()
	if err != nil {
		in.log.Errorf("settings reload failed, keeping previous settings: %v", err)
		return
	}
	in.settings = s
}

func (in *Inspector) applySettings() {
	s := in.settings
	in.bands = falsecolor.Bands{Blue: s.BlueBand, Green: s.GreenBand, Red: s.RedBand}

	in.filterStep = s.FilterStep
	if in.filterStep <= 0 {
		in.filterStep = 1
	}

	lo := clamp(s.FilterMin, 0, in.bandLimit)
	hi := in.bandLimit
	if s.FilterMax > 0 {
		hi = clamp(s.FilterMax, 0, in.bandLimit)
	}
	if hi < lo {
		hi = lo
	}
	in.state.Filter = models.BandRange{Lo: lo, Hi: hi}
}

func (in *Inspector) redraw(r Redraw) {
	if r == RedrawNone {
		return
	}
	if r == RedrawImages || r == RedrawFull {
		in.drawImages()
	}
	if r == RedrawSpectrogram || r == RedrawFull {
		in.drawSpectrogram()
	}
	in.drawOverlays()

	status := in.status()
	if r == RedrawSpectrogram && in.state.Mode != models.SpectralAngle {
		status += " | " + in.spectrumSummary()
	}
	in.surface.Status(status)
}

func (in *Inspector) drawImages() {
	switch in.state.Mode {
	case models.Reflectance:
		for i, cube := range in.cubes {
			plane, err := cube.Band(in.state.Band)
			if err != nil {
				in.log.Errorf("grayscale image for %s: %v", cubeNames[i], err)
				continue
			}
			data := plane.RawMatrix().Data
			in.check(in.surface.DrawScalar(CubePanel(i), ScalarImage{
				Plane:    plane,
				Lo:       floats.Min(data),
				Hi:       floats.Max(data),
				Colormap: ColormapGray,
				Title:    fmt.Sprintf("%s Grayscale, band=%d", cubeNames[i], in.state.Band),
			}))
		}

	case models.FalseColor:
		images, ok := in.falseColorImages()
		if !ok {
			return
		}
		for i, im := range images {
			in.check(in.surface.DrawRGB(CubePanel(i), im,
				fmt.Sprintf("%s False Color, bands=%d/%d/%d", cubeNames[i], in.bands.Red, in.bands.Green, in.bands.Blue)))
		}

	case models.SpectralAngle:
		results, ok := in.angleMaps()
		if !ok {
			return
		}
		unit := "cosine"
		if in.state.UseRadians {
			unit = "radians"
		}
		hi := sharedWindowMax(results)
		for i, res := range results {
			in.check(in.surface.DrawScalar(CubePanel(i), ScalarImage{
				Plane:    res.Image,
				Lo:       floats.Min(res.Image.RawMatrix().Data),
				Hi:       hi,
				Colormap: ColormapViridis,
				Title:    fmt.Sprintf("%s Spectral Angle (%s)", cubeNames[i], unit),
			}))
		}
	}
}

// sharedWindowMax is the display maximum common to all maps so that cubes compare visually
func sharedWindowMax(results []*sam.Result) float64 {
	hi := math.Inf(-1)
	for _, res := range results {
		if res.Window != nil {
			hi = math.Max(hi, floats.Max(res.Window.RawMatrix().Data))
		}
	}
	if math.IsInf(hi, -1) {
		return 0
	}
	return hi
}

func (in *Inspector) falseColorImages() ([]*falsecolor.Image, bool) {
	if images, ok := in.falseColor.lookup(in.bands); ok {
		return images, true
	}
	images, err := falsecolor.Compose(in.cubes, in.bands.Blue, in.bands.Green, in.bands.Red)
	if err != nil {
		in.log.Errorf("false color composite (blue=%d green=%d red=%d): %v",
			in.bands.Blue, in.bands.Green, in.bands.Red, err)
		return in.falseColor.last()
	}
	in.falseColor.store(in.bands, images)
	return images, true
}

func (in *Inspector) angleParams() sam.Params {
	return sam.Params{
		Start:           in.state.WindowStart,
		End:             in.state.WindowEnd,
		ReferenceColumn: in.state.ReferenceColumn,
		UseRadians:      in.state.UseRadians,
		Filter:          in.state.Filter,
		UseCentered:     in.state.UseCentered,
	}
}

func (in *Inspector) angleMaps() ([]*sam.Result, bool) {
	p := in.angleParams()
	if results, ok := in.angles.lookup(p); ok {
		return results, true
	}

	results := make([]*sam.Result, 0, len(in.cubes))
	for i, cube := range in.cubes {
		res, err := sam.Compute(cube, p)
		if err != nil {
			in.log.Errorf("spectral angle map for %s (window (%d,%d)-(%d,%d), reference %d, filter [%d,%d)): %v",
				cubeNames[i], p.Start.Row, p.Start.Col, p.End.Row, p.End.Col, p.ReferenceColumn,
				p.Filter.Lo, p.Filter.Hi, err)
			return in.angles.last()
		}
		if res.Degenerate {
			in.log.Errorf("spectral angle map for %s: %v", cubeNames[i], errors.Wrapf(models.ErrDegenerateReference,
				"reference column %d over filter [%d,%d) has zero norm, similarity set to 0",
				res.ReferenceColumn, p.Filter.Lo, p.Filter.Hi))
		}
		if res.ZeroNormPixels > 0 {
			in.log.Debugf("spectral angle map for %s: %d zero-norm pixels set to 0 similarity", cubeNames[i], res.ZeroNormPixels)
		}
		results = append(results, res)
	}
	in.angles.store(p, results)
	return results, true
}

func (in *Inspector) drawSpectrogram() {
	st := in.state
	plot := Plot{XLabel: "Spectral Band", YLabel: "Intensity"}

	if st.Mode == models.SpectralAngle {
		plot.Title = "Reference Spectra"
		for i, cube := range in.cubes {
			ref, err := sam.ReferenceSpectrum(cube, st.WindowStart, st.WindowEnd, st.ReferenceColumn,
				models.BandRange{Lo: 0, Hi: cube.Bands})
			if err != nil {
				in.log.Errorf("reference spectrum for %s: %v", cubeNames[i], err)
				continue
			}
			if ref == nil {
				continue
			}
			plot.Series = append(plot.Series, Series{Label: cubeNames[i], Values: ref, Color: cubeColors[i]})
		}
	} else {
		plot.Title = "Spectrograms"
		for i, cube := range in.cubes {
			plot.Series = append(plot.Series, Series{
				Label:  cubeNames[i],
				Values: cube.Spectrum(st.Selected.Row, st.Selected.Col),
				Color:  cubeColors[i],
			})
		}
	}
	in.check(in.surface.DrawPlot(PanelSpectrogram, plot))
}

func (in *Inspector) drawOverlays() {
	st := in.state

	var images, plot []Overlay
	switch st.Mode {
	case models.Reflectance, models.FalseColor:
		images = append(images, Overlay{Kind: OverlayPoint, Start: st.Selected, Color: colorSelect})
		if st.Mode == models.Reflectance {
			plot = append(plot, Overlay{Kind: OverlayVLine, Start: models.Point{Col: st.Band}, Color: colorSelect})
		}
	case models.SpectralAngle:
		ref := sam.ClipReference(st.ReferenceColumn, st.WindowStart, st.WindowEnd)
		images = append(images,
			Overlay{Kind: OverlayRect, Start: st.WindowStart, End: st.WindowEnd, Color: colorWindow},
			Overlay{Kind: OverlayVLine,
				Start: models.Point{Row: st.WindowStart.Row, Col: ref},
				End:   models.Point{Row: st.WindowEnd.Row, Col: ref},
				Color: colorRef})
		plot = append(plot,
			Overlay{Kind: OverlayVLine, Start: models.Point{Col: st.Filter.Lo}, Color: colorWindow},
			Overlay{Kind: OverlayVLine, Start: models.Point{Col: st.Filter.Hi}, Color: colorWindow})
	}

	for i := range in.cubes {
		in.check(in.surface.SetOverlays(CubePanel(i), images))
	}
	in.check(in.surface.SetOverlays(PanelSpectrogram, plot))
}

func (in *Inspector) status() string {
	st := in.state
	return fmt.Sprintf("mode=%s band=%d pixel=(%d,%d) window=(%d,%d)-(%d,%d) reference=%d filter=[%d,%d) radians=%t centered=%t",
		st.Mode, st.Band, st.Selected.Row, st.Selected.Col,
		st.WindowStart.Row, st.WindowStart.Col, st.WindowEnd.Row, st.WindowEnd.Col,
		st.ReferenceColumn, st.Filter.Lo, st.Filter.Hi, st.UseRadians, st.UseCentered)
}

// spectrumSummary reports mean and standard deviation of each cube's spectrum at the
// selected pixel, and for corrected cubes the RMSE against the original
func (in *Inspector) spectrumSummary() string {
	p := in.state.Selected
	original := in.cubes[0].Spectrum(p.Row, p.Col)

	parts := make([]string, 0, len(in.cubes))
	for i, cube := range in.cubes {
		spectrum := cube.Spectrum(p.Row, p.Col)
		mean, std := stat.MeanStdDev(spectrum, nil)
		part := fmt.Sprintf("%s mean=%.4g std=%.4g", cubeNames[i], mean, std)
		if i > 0 {
			part += fmt.Sprintf(" rmse=%.4g", rmse(original, spectrum))
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, "; ")
}

// rmse compares two spectra over their common bands
func rmse(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n == 0 {
		return 0
	}
	return floats.Distance(a[:n], b[:n], 2) / math.Sqrt(float64(n))
}

func (in *Inspector) check(err error) {
	if err != nil {
		in.log.Errorf("surface: %v", err)
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
