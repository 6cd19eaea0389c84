package models

import "github.com/pkg/errors"

var (
	// ErrInvalidBandIndex is returned when a band index falls outside a cube's band axis
	ErrInvalidBandIndex = errors.New("invalid band index")

	// ErrInvalidWindow is returned when a window corner lies outside the image extent
	ErrInvalidWindow = errors.New("invalid window")

	// ErrDegenerateReference marks a reference spectrum with zero norm
	ErrDegenerateReference = errors.New("degenerate reference spectrum")

	// ErrNoCubeProvided is returned when an inspector is built without cubes
	ErrNoCubeProvided = errors.New("no cube provided")

	// ErrExtentMismatch is returned when cubes in one session differ in rows or columns
	ErrExtentMismatch = errors.New("cube extents differ")
)

// Mode selects what the image panels show
type Mode int

const (
	Reflectance Mode = iota + 1
	FalseColor
	SpectralAngle
)

func (m Mode) String() string {
	switch m {
	case Reflectance:
		return "reflectance"
	case FalseColor:
		return "false-color"
	case SpectralAngle:
		return "spectral-angle"
	default:
		return "unknown"
	}
}

// Settings is the reloadable part of the inspector configuration
type Settings struct {
	BlueBand  int
	GreenBand int
	RedBand   int

	// FilterMin and FilterMax bound the initial spectral filter [FilterMin, FilterMax).
	// A non-positive FilterMax means "up to the last band".
	FilterMin int
	FilterMax int

	// FilterStep is how far one shift moves the filter
	FilterStep int
}
