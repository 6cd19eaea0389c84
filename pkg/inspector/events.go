package inspector

import (
	"math"

	"cubeinspector/internal/models"
)

// InputKind distinguishes pointer clicks from key presses
type InputKind int

const (
	InputClick InputKind = iota
	InputKey
)

// Modifier is the key held during a click
type Modifier int

const (
	ModNone Modifier = iota
	// ModShift marks a window corner click
	ModShift
	// ModAlt passes the click through to the surface (zoom, pan) and is ignored here
	ModAlt
)

// Input is a raw gesture as delivered by the surface. For clicks X is the horizontal
// data coordinate (column, or band on the spectrogram) and Y the vertical one (row).
type Input struct {
	Kind     InputKind
	Panel    Panel
	X, Y     float64
	Modifier Modifier
	Key      string
}

// Event is the closed set of inspector events; only this package implements it.
type Event interface {
	isEvent()
}

// ModeSelect switches what the image panels show
type ModeSelect struct{ Mode models.Mode }

// BandClick selects the band rendered in reflectance mode
type BandClick struct{ Band int }

// PixelClick selects the pixel whose spectra are plotted
type PixelClick struct{ Row, Col int }

// ReferenceClick selects the spectral angle reference column
type ReferenceClick struct{ Col int }

// WindowCorner is one of the two clicks drawing the spectral angle window
type WindowCorner struct{ Row, Col int }

// ToggleRadians flips between cosine and angle output
type ToggleRadians struct{}

// ToggleCentered flips mean-centred similarity
type ToggleCentered struct{}

// ShiftFilter slides the spectral filter; Direction is -1 or +1
type ShiftFilter struct{ Direction int }

// Reset reloads settings and reinitialises filter and false color bands
type Reset struct{}

// Ignore carries no state change
type Ignore struct{}

func (ModeSelect) isEvent()     {}
func (BandClick) isEvent()      {}
func (PixelClick) isEvent()     {}
func (ReferenceClick) isEvent() {}
func (WindowCorner) isEvent()   {}
func (ToggleRadians) isEvent()  {}
func (ToggleCentered) isEvent() {}
func (ShiftFilter) isEvent()    {}
func (Reset) isEvent()          {}
func (Ignore) isEvent()         {}

// Interpret turns a raw gesture into an event for the current mode.
// Every mode-dependent reading of input lives here.
func (in *Inspector) Interpret(raw Input) Event {
	switch raw.Kind {
	case InputKey:
		return in.interpretKey(raw.Key)
	case InputClick:
		return in.interpretClick(raw)
	}
	return Ignore{}
}

func (in *Inspector) interpretKey(key string) Event {
	switch key {
	case "1":
		return ModeSelect{Mode: models.Reflectance}
	case "2":
		return ModeSelect{Mode: models.FalseColor}
	case "3":
		return ModeSelect{Mode: models.SpectralAngle}
	case "r":
		return ToggleRadians{}
	case "c":
		return ToggleCentered{}
	}

	if in.state.Mode != models.SpectralAngle {
		return Ignore{}
	}
	switch key {
	case "a":
		return ShiftFilter{Direction: -1}
	case "d":
		return ShiftFilter{Direction: 1}
	case "u":
		return Reset{}
	}
	return Ignore{}
}

func (in *Inspector) interpretClick(raw Input) Event {
	if raw.Modifier == ModAlt || math.IsNaN(raw.X) || math.IsNaN(raw.Y) {
		return Ignore{}
	}
	x := int(math.Floor(raw.X))

	if raw.Panel == PanelSpectrogram {
		if in.state.Mode != models.Reflectance || x < 0 || x >= in.bandLimit {
			return Ignore{}
		}
		return BandClick{Band: x}
	}

	idx, ok := raw.Panel.CubeIndex()
	if !ok || idx >= len(in.cubes) {
		return Ignore{}
	}
	p := models.Point{Row: int(math.Floor(raw.Y)), Col: x}
	if !in.cubes[idx].Contains(p) {
		return Ignore{}
	}

	switch {
	case raw.Modifier == ModShift:
		return WindowCorner{Row: p.Row, Col: p.Col}
	case in.state.Mode == models.SpectralAngle:
		return ReferenceClick{Col: p.Col}
	default:
		return PixelClick{Row: p.Row, Col: p.Col}
	}
}
