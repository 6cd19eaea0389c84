package models

import (
	"testing"

	"github.com/pkg/errors"
)

func TestNewCube(t *testing.T) {
	cube, err := NewCube(4, 3, 2, nil)
	if err != nil {
		t.Fatalf("NewCube failed: %v", err)
	}
	if len(cube.Data) != 24 {
		t.Errorf("Expected 24 samples, got %d", len(cube.Data))
	}

	if _, err := NewCube(0, 3, 2, nil); err == nil {
		t.Error("Expected error for zero rows")
	}
	if _, err := NewCube(2, 2, 2, make([]float64, 7)); err == nil {
		t.Error("Expected error for mismatched data length")
	}
}

func TestCubeIndexing(t *testing.T) {
	rows, cols, bands := 3, 4, 5
	cube, _ := NewCube(rows, cols, bands, nil)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			for b := 0; b < bands; b++ {
				cube.Data[cube.Offset(r, c)+b] = float64(r*100 + c*10 + b)
			}
		}
	}

	if got := cube.At(2, 3, 4); got != 234 {
		t.Errorf("Expected 234, got %f", got)
	}

	spectrum := cube.Spectrum(1, 2)
	if len(spectrum) != bands {
		t.Fatalf("Expected spectrum length %d, got %d", bands, len(spectrum))
	}
	for b, v := range spectrum {
		if v != float64(120+b) {
			t.Errorf("Spectrum band %d: expected %d, got %f", b, 120+b, v)
		}
	}

	// Spectrum must be a copy
	spectrum[0] = -1
	if cube.At(1, 2, 0) == -1 {
		t.Error("Spectrum returned a view into cube data")
	}

	plane, err := cube.Band(3)
	if err != nil {
		t.Fatalf("Band failed: %v", err)
	}
	r, c := plane.Dims()
	if r != rows || c != cols {
		t.Errorf("Expected plane %dx%d, got %dx%d", rows, cols, r, c)
	}
	if plane.At(2, 1) != 213 {
		t.Errorf("Expected plane value 213, got %f", plane.At(2, 1))
	}

	if _, err := cube.Band(bands); !errors.Is(err, ErrInvalidBandIndex) {
		t.Errorf("Expected ErrInvalidBandIndex, got %v", err)
	}
}

func TestBandRangeLen(t *testing.T) {
	tests := []struct {
		r    BandRange
		want int
	}{
		{BandRange{0, 5}, 5},
		{BandRange{3, 3}, 0},
		{BandRange{4, 2}, 0},
	}
	for _, tt := range tests {
		if got := tt.r.Len(); got != tt.want {
			t.Errorf("%+v.Len() = %d, want %d", tt.r, got, tt.want)
		}
	}
}
