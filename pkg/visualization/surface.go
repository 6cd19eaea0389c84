package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"golang.org/x/image/draw"

	"cubeinspector/pkg/falsecolor"
	"cubeinspector/pkg/inspector"
)

// SurfaceOptions configures a FileSurface
type SurfaceOptions struct {
	// Dir receives one image per panel, rewritten on every change
	Dir string

	// Format is "png" or "jpeg"
	Format  string
	Quality int

	// Scale enlarges cube panels by an integer factor
	Scale int

	PlotWidth  int
	PlotHeight int

	// Status lines are written here; nil discards them
	Out io.Writer
}

type panelState struct {
	base     *image.RGBA
	title    string
	frame    *plotFrame
	overlays []inspector.Overlay
}

// FileSurface is an inspector surface that renders each panel to an image file.
// A panel's file is rewritten whenever its content or overlays change.
type FileSurface struct {
	opts   SurfaceOptions
	panels map[inspector.Panel]*panelState
	status string
}

// NewFileSurface creates the output directory and validates the options
func NewFileSurface(opts SurfaceOptions) (*FileSurface, error) {
	if opts.Format == "" {
		opts.Format = "png"
	}
	if opts.Format == "jpg" {
		opts.Format = "jpeg"
	}
	if opts.Format != "png" && opts.Format != "jpeg" {
		return nil, errors.Errorf("unsupported panel format: %s (must be png or jpeg)", opts.Format)
	}
	if opts.Quality <= 0 || opts.Quality > 100 {
		opts.Quality = 90
	}
	if opts.Scale < 1 {
		opts.Scale = 1
	}
	if opts.PlotWidth < marginLeft+marginRight+16 {
		opts.PlotWidth = 640
	}
	if opts.PlotHeight < marginTop+marginBottom+16 {
		opts.PlotHeight = 400
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return nil, errors.Wrapf(err, "creating panel directory %s", opts.Dir)
	}

	return &FileSurface{opts: opts, panels: map[inspector.Panel]*panelState{}}, nil
}

// Path is the file a panel is rendered to
func (s *FileSurface) Path(panel inspector.Panel) string {
	ext := ".png"
	if s.opts.Format == "jpeg" {
		ext = ".jpg"
	}
	return filepath.Join(s.opts.Dir, panel.String()+ext)
}

// LastStatus returns the most recent status message
func (s *FileSurface) LastStatus() string {
	return s.status
}

func (s *FileSurface) panel(p inspector.Panel) *panelState {
	st, ok := s.panels[p]
	if !ok {
		st = &panelState{}
		s.panels[p] = st
	}
	return st
}

func (s *FileSurface) DrawScalar(panel inspector.Panel, img inspector.ScalarImage) error {
	if img.Plane == nil {
		return errors.Errorf("%s: no image to draw", panel)
	}
	st := s.panel(panel)
	st.base = ScalarToImage(img)
	st.title = img.Title
	st.frame = nil
	return s.write(panel)
}

func (s *FileSurface) DrawRGB(panel inspector.Panel, img *falsecolor.Image, title string) error {
	if img == nil {
		return errors.Errorf("%s: no image to draw", panel)
	}
	st := s.panel(panel)
	st.base = RGBToImage(img)
	st.title = title
	st.frame = nil
	return s.write(panel)
}

func (s *FileSurface) DrawPlot(panel inspector.Panel, plot inspector.Plot) error {
	st := s.panel(panel)
	img, frame := renderPlot(plot, s.opts.PlotWidth, s.opts.PlotHeight)
	st.base = img
	st.title = plot.Title
	st.frame = &frame
	return s.write(panel)
}

func (s *FileSurface) SetOverlays(panel inspector.Panel, overlays []inspector.Overlay) error {
	st := s.panel(panel)
	st.overlays = append(st.overlays[:0], overlays...)
	if st.base == nil {
		return nil
	}
	return s.write(panel)
}

func (s *FileSurface) Status(msg string) {
	s.status = msg
	fmt.Fprintln(s.opts.Out, msg)
}

// Compose renders a panel with its title and overlays
func (s *FileSurface) Compose(panel inspector.Panel) (image.Image, error) {
	st, ok := s.panels[panel]
	if !ok || st.base == nil {
		return nil, errors.Errorf("%s: nothing drawn", panel)
	}
	if st.frame != nil {
		return s.composePlot(st), nil
	}
	return s.composeImage(st), nil
}

func (s *FileSurface) composePlot(st *panelState) *image.RGBA {
	out := image.NewRGBA(st.base.Bounds())
	draw.Draw(out, out.Bounds(), st.base, image.Point{}, draw.Src)

	f := st.frame
	for _, o := range st.overlays {
		if o.Kind != inspector.OverlayVLine {
			continue
		}
		x := clampInt(f.x(float64(o.Start.Col)), f.area.Min.X, f.area.Max.X-1)
		vline(out, x, f.area.Min.Y, f.area.Max.Y-2, o.Color)
	}
	return out
}

func (s *FileSurface) composeImage(st *panelState) *image.RGBA {
	k := s.opts.Scale
	b := st.base.Bounds()
	width := b.Dx() * k
	if tw := textWidth(st.title) + 8; tw > width {
		width = tw
	}
	out := image.NewRGBA(image.Rect(0, 0, width, b.Dy()*k+titleHeight))
	fill(out, background)
	drawText(out, 4, titleHeight-5, st.title, foreground)

	area := image.Rect(0, titleHeight, b.Dx()*k, titleHeight+b.Dy()*k)
	draw.NearestNeighbor.Scale(out, area, st.base, b, draw.Src, nil)

	for _, o := range st.overlays {
		drawOverlay(out, area.Min, k, o)
	}
	return out
}

// drawOverlay draws o in data coordinates onto an image scaled by k whose data
// origin is at origin
func drawOverlay(dst *image.RGBA, origin image.Point, k int, o inspector.Overlay) {
	px := func(col int) int { return origin.X + col*k }
	py := func(row int) int { return origin.Y + row*k }

	switch o.Kind {
	case inspector.OverlayPoint:
		cx, cy := px(o.Start.Col)+k/2, py(o.Start.Row)+k/2
		arm := k + 2
		hline(dst, cx-arm, cx+arm, cy, o.Color)
		vline(dst, cx, cy-arm, cy+arm, o.Color)

	case inspector.OverlayRect:
		if o.End.Row <= o.Start.Row || o.End.Col <= o.Start.Col {
			return
		}
		x0, y0 := px(o.Start.Col), py(o.Start.Row)
		x1, y1 := px(o.End.Col)-1, py(o.End.Row)-1
		hline(dst, x0, x1, y0, o.Color)
		hline(dst, x0, x1, y1, o.Color)
		vline(dst, x0, y0, y1, o.Color)
		vline(dst, x1, y0, y1, o.Color)

	case inspector.OverlayVLine:
		if o.End.Row <= o.Start.Row {
			return
		}
		x := px(o.Start.Col) + k/2
		vline(dst, x, py(o.Start.Row), py(o.End.Row)-1, o.Color)
	}
}

func (s *FileSurface) write(panel inspector.Panel) error {
	img, err := s.Compose(panel)
	if err != nil {
		return err
	}

	path := s.Path(panel)
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "writing panel %s", panel)
	}

	if s.opts.Format == "jpeg" {
		err = jpeg.Encode(file, img, &jpeg.Options{Quality: s.opts.Quality})
	} else {
		err = png.Encode(file, img)
	}
	if err != nil {
		file.Close()
		return errors.Wrapf(err, "encoding panel %s", panel)
	}
	return file.Close()
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// PixelColor is the color of data pixel (row, col) in a composed cube panel
func (s *FileSurface) PixelColor(panel inspector.Panel, row, col int) (color.RGBA, error) {
	img, err := s.Compose(panel)
	if err != nil {
		return color.RGBA{}, err
	}
	k := s.opts.Scale
	return img.(*image.RGBA).RGBAAt(col*k+k/2, titleHeight+row*k+k/2), nil
}
