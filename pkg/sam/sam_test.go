package sam

import (
	"math"
	"testing"

	"github.com/pkg/errors"

	"cubeinspector/internal/models"
)

func createTestCube(t *testing.T, rows, cols, bands int, value func(r, c, b int) float64) *models.Cube {
	t.Helper()
	cube, err := models.NewCube(rows, cols, bands, nil)
	if err != nil {
		t.Fatalf("Failed to create cube: %v", err)
	}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			for b := 0; b < bands; b++ {
				cube.Data[cube.Offset(r, c)+b] = value(r, c, b)
			}
		}
	}
	return cube
}

// varied spectra: column 4 is the same for every row so it equals its window mean
func scenarioCube(t *testing.T) *models.Cube {
	return createTestCube(t, 10, 10, 5, func(r, c, b int) float64 {
		if c == 4 {
			return float64(b + 1)
		}
		return 1 + float64((r*7+c*3+b*5)%11)
	})
}

func fullParams(start, end models.Point, ref, bands int) Params {
	return Params{
		Start:           start,
		End:             end,
		ReferenceColumn: ref,
		Filter:          models.BandRange{Lo: 0, Hi: bands},
	}
}

func TestComputeScenario(t *testing.T) {
	cube := scenarioCube(t)
	res, err := Compute(cube, fullParams(models.Point{Row: 2, Col: 2}, models.Point{Row: 6, Col: 6}, 4, 5))
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	rows, cols := res.Image.Dims()
	if rows != 10 || cols != 10 {
		t.Fatalf("Expected 10x10 image, got %dx%d", rows, cols)
	}

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			v := res.Image.At(r, c)
			inside := r >= 2 && r < 6 && c >= 2 && c < 6
			if !inside && v != 0 {
				t.Errorf("Expected 0 outside window at (%d,%d), got %f", r, c, v)
			}
			if inside && (v < -1 || v > 1) {
				t.Errorf("Cosine at (%d,%d) outside [-1,1]: %f", r, c, v)
			}
		}
	}

	for r := 2; r < 6; r++ {
		if v := res.Image.At(r, 4); math.Abs(v-1) > 1e-12 {
			t.Errorf("Expected self-similarity 1.0 at (%d,4), got %f", r, v)
		}
	}

	wr, wc := res.Window.Dims()
	if wr != 4 || wc != 4 {
		t.Errorf("Expected 4x4 window values, got %dx%d", wr, wc)
	}
	if res.ReferenceColumn != 4 {
		t.Errorf("Expected reference column 4, got %d", res.ReferenceColumn)
	}
}

func TestComputeRadiansRange(t *testing.T) {
	cube := createTestCube(t, 8, 8, 6, func(r, c, b int) float64 {
		return math.Sin(float64(r+1)*float64(b+1)) + float64(c%3)*0.5
	})
	p := fullParams(models.Point{Row: 1, Col: 1}, models.Point{Row: 7, Col: 6}, 3, 6)
	p.UseRadians = true

	res, err := Compute(cube, p)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	for r := 1; r < 7; r++ {
		for c := 1; c < 6; c++ {
			v := res.Image.At(r, c)
			if v < 0 || v > math.Pi {
				t.Errorf("Angle at (%d,%d) outside [0,pi]: %f", r, c, v)
			}
		}
	}
}

func TestRadiansIsArccosOfCosine(t *testing.T) {
	cube := createTestCube(t, 6, 6, 4, func(r, c, b int) float64 {
		return float64((r+2)*(b+1)) - float64(c)
	})
	p := fullParams(models.Point{Row: 0, Col: 0}, models.Point{Row: 6, Col: 6}, 2, 4)

	cosRes, err := Compute(cube, p)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	p.UseRadians = true
	angRes, err := Compute(cube, p)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	for r := 0; r < 6; r++ {
		for c := 0; c < 6; c++ {
			want := math.Acos(math.Max(-1, math.Min(1, cosRes.Image.At(r, c))))
			if got := angRes.Image.At(r, c); math.Abs(got-want) > 1e-12 {
				t.Errorf("(%d,%d): expected %f, got %f", r, c, want, got)
			}
		}
	}
}

func TestComputeIdempotent(t *testing.T) {
	cube := scenarioCube(t)
	p := fullParams(models.Point{Row: 1, Col: 0}, models.Point{Row: 9, Col: 7}, 5, 5)
	p.UseCentered = true

	a, err := Compute(cube, p)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	b, err := Compute(cube, p)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	ra, rb := a.Image.RawMatrix().Data, b.Image.RawMatrix().Data
	for i := range ra {
		if math.Float64bits(ra[i]) != math.Float64bits(rb[i]) {
			t.Fatalf("Outputs differ at %d: %v vs %v", i, ra[i], rb[i])
		}
	}
}

func TestSelfSimilarityScaledSpectrum(t *testing.T) {
	// Every pixel is a positive multiple of the same base spectrum
	base := []float64{0.2, 0.5, 0.9, 0.4, 0.1, 0.7}
	cube := createTestCube(t, 5, 5, len(base), func(r, c, b int) float64 {
		return float64(1+r+2*c) * base[b]
	})
	p := fullParams(models.Point{Row: 0, Col: 0}, models.Point{Row: 5, Col: 5}, 2, len(base))
	p.Filter = models.BandRange{Lo: 1, Hi: 5}

	res, err := Compute(cube, p)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	for r := 0; r < 5; r++ {
		for c := 0; c < 5; c++ {
			if v := res.Image.At(r, c); math.Abs(v-1) > 1e-12 {
				t.Errorf("Expected 1.0 at (%d,%d), got %f", r, c, v)
			}
		}
	}
}

func TestWindowOrderNormalisation(t *testing.T) {
	cube := scenarioCube(t)
	canonical := fullParams(models.Point{Row: 2, Col: 3}, models.Point{Row: 7, Col: 8}, 5, 5)

	want, err := Compute(cube, canonical)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	variants := []struct {
		name       string
		start, end models.Point
	}{
		{"both swapped", models.Point{Row: 7, Col: 8}, models.Point{Row: 2, Col: 3}},
		{"rows swapped", models.Point{Row: 7, Col: 3}, models.Point{Row: 2, Col: 8}},
		{"cols swapped", models.Point{Row: 2, Col: 8}, models.Point{Row: 7, Col: 3}},
	}
	for _, v := range variants {
		t.Run(v.name, func(t *testing.T) {
			p := canonical
			p.Start, p.End = v.start, v.end
			got, err := Compute(cube, p)
			if err != nil {
				t.Fatalf("Compute failed: %v", err)
			}
			gd, wd := got.Image.RawMatrix().Data, want.Image.RawMatrix().Data
			for i := range wd {
				if gd[i] != wd[i] {
					t.Fatalf("Output differs at %d: %f vs %f", i, gd[i], wd[i])
				}
			}
		})
	}
}

func TestReferenceColumnClipped(t *testing.T) {
	cube := scenarioCube(t)
	tests := []struct {
		ref, want int
	}{
		{-3, 2},
		{0, 2},
		{4, 4},
		{6, 5},
		{9, 5},
	}
	for _, tt := range tests {
		res, err := Compute(cube, fullParams(models.Point{Row: 2, Col: 2}, models.Point{Row: 6, Col: 6}, tt.ref, 5))
		if err != nil {
			t.Fatalf("Compute failed: %v", err)
		}
		if res.ReferenceColumn != tt.want {
			t.Errorf("Reference %d: expected clipped column %d, got %d", tt.ref, tt.want, res.ReferenceColumn)
		}
	}
}

func TestWindowReachingImageEdge(t *testing.T) {
	cube := scenarioCube(t)
	res, err := Compute(cube, fullParams(models.Point{Row: 5, Col: 5}, models.Point{Row: 10, Col: 10}, 10, 5))
	if err != nil {
		t.Fatalf("Window ending at the image extent should be valid: %v", err)
	}
	if res.ReferenceColumn != 9 {
		t.Errorf("Expected reference column 9, got %d", res.ReferenceColumn)
	}
	if res.Image.At(9, 9) == 0 {
		t.Error("Expected last pixel to be inside the window")
	}
}

func TestDegenerateWindow(t *testing.T) {
	cube := scenarioCube(t)
	tests := []struct {
		name       string
		start, end models.Point
	}{
		{"zero rows", models.Point{Row: 3, Col: 2}, models.Point{Row: 3, Col: 6}},
		{"zero cols", models.Point{Row: 2, Col: 5}, models.Point{Row: 6, Col: 5}},
		{"single point", models.Point{Row: 4, Col: 4}, models.Point{Row: 4, Col: 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Compute(cube, fullParams(tt.start, tt.end, 4, 5))
			if err != nil {
				t.Fatalf("Degenerate window should not fail: %v", err)
			}
			if res.Window != nil {
				t.Error("Expected no window values")
			}
			for _, v := range res.Image.RawMatrix().Data {
				if v != 0 {
					t.Fatalf("Expected zero image, got %f", v)
				}
			}
		})
	}
}

func TestInvalidWindow(t *testing.T) {
	cube := scenarioCube(t)
	tests := []struct {
		name       string
		start, end models.Point
	}{
		{"negative row", models.Point{Row: -1, Col: 0}, models.Point{Row: 4, Col: 4}},
		{"negative col", models.Point{Row: 0, Col: -2}, models.Point{Row: 4, Col: 4}},
		{"rows past extent", models.Point{Row: 0, Col: 0}, models.Point{Row: 11, Col: 4}},
		{"cols past extent", models.Point{Row: 0, Col: 0}, models.Point{Row: 4, Col: 12}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compute(cube, fullParams(tt.start, tt.end, 1, 5))
			if !errors.Is(err, models.ErrInvalidWindow) {
				t.Errorf("Expected ErrInvalidWindow, got %v", err)
			}
		})
	}
}

func TestInvalidFilter(t *testing.T) {
	cube := scenarioCube(t)
	for _, f := range []models.BandRange{{Lo: -1, Hi: 3}, {Lo: 0, Hi: 6}, {Lo: 4, Hi: 2}} {
		p := fullParams(models.Point{Row: 0, Col: 0}, models.Point{Row: 5, Col: 5}, 1, 5)
		p.Filter = f
		if _, err := Compute(cube, p); !errors.Is(err, models.ErrInvalidBandIndex) {
			t.Errorf("Filter %+v: expected ErrInvalidBandIndex, got %v", f, err)
		}
	}
}

func TestZeroNormReference(t *testing.T) {
	// reference column is all zeros, everything else is not
	cube := createTestCube(t, 6, 6, 4, func(r, c, b int) float64 {
		if c == 2 {
			return 0
		}
		return float64(b + 1)
	})
	p := fullParams(models.Point{Row: 0, Col: 0}, models.Point{Row: 6, Col: 6}, 2, 4)

	res, err := Compute(cube, p)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if !res.Degenerate {
		t.Error("Expected degenerate flag")
	}
	for _, v := range res.Image.RawMatrix().Data {
		if v != 0 || math.IsNaN(v) {
			t.Fatalf("Expected 0 similarity, got %f", v)
		}
	}

	p.UseRadians = true
	res, err = Compute(cube, p)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if v := res.Image.At(3, 3); math.Abs(v-math.Pi/2) > 1e-12 {
		t.Errorf("Expected pi/2 for zero similarity in radians, got %f", v)
	}
}

func TestEmptyFilter(t *testing.T) {
	cube := scenarioCube(t)
	p := fullParams(models.Point{Row: 0, Col: 0}, models.Point{Row: 4, Col: 4}, 1, 5)
	p.Filter = models.BandRange{Lo: 5, Hi: 5}

	res, err := Compute(cube, p)
	if err != nil {
		t.Fatalf("Empty filter should not fail: %v", err)
	}
	if !res.Degenerate {
		t.Error("Expected degenerate flag for empty filter")
	}
}

func TestCenteredSimilarity(t *testing.T) {
	// pixel = a*ref + constant offset: centred similarity is 1, plain cosine is not
	ref := []float64{1, 3, 2, 5}
	cube := createTestCube(t, 3, 3, len(ref), func(r, c, b int) float64 {
		if c == 0 {
			return ref[b]
		}
		return 2*ref[b] + 10
	})
	p := fullParams(models.Point{Row: 0, Col: 0}, models.Point{Row: 3, Col: 3}, 0, len(ref))

	plain, err := Compute(cube, p)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	p.UseCentered = true
	centred, err := Compute(cube, p)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	if v := centred.Image.At(1, 2); math.Abs(v-1) > 1e-12 {
		t.Errorf("Expected centred similarity 1.0, got %f", v)
	}
	if v := plain.Image.At(1, 2); v >= 1-1e-6 {
		t.Errorf("Expected plain cosine below 1, got %f", v)
	}
}

func TestReferenceSpectrum(t *testing.T) {
	cube := createTestCube(t, 4, 4, 3, func(r, c, b int) float64 { return float64(r*10 + b) })
	ref, err := ReferenceSpectrum(cube, models.Point{Row: 3, Col: 3}, models.Point{Row: 1, Col: 0}, 1, models.BandRange{Lo: 1, Hi: 3})
	if err != nil {
		t.Fatalf("ReferenceSpectrum failed: %v", err)
	}
	// rows 1 and 2: mean of r*10 is 15
	want := []float64{16, 17}
	if len(ref) != len(want) {
		t.Fatalf("Expected %d bands, got %d", len(want), len(ref))
	}
	for i := range want {
		if ref[i] != want[i] {
			t.Errorf("Band %d: expected %f, got %f", i, want[i], ref[i])
		}
	}
}
