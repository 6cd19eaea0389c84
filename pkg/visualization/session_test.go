package visualization

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"cubeinspector/internal/models"
	"cubeinspector/pkg/cubeio"
	"cubeinspector/pkg/inspector"
	"cubeinspector/pkg/logger"
)

type staticSettings struct{ s models.Settings }

func (f staticSettings) Settings() (models.Settings, error) { return f.s, nil }

// TestScriptedSession drives an inspector over synthetic cubes through every mode
func TestScriptedSession(t *testing.T) {
	cubes, err := cubeio.SyntheticStack(cubeio.SyntheticParams{Rows: 12, Cols: 16, Bands: 24, Smile: 2, Noise: 0.005, Seed: 4})
	if err != nil {
		t.Fatalf("SyntheticStack failed: %v", err)
	}

	var out bytes.Buffer
	surface := newTestSurface(t, &out)
	insp, err := inspector.New(cubes, &inspector.Params{
		Surface: surface,
		Settings: staticSettings{models.Settings{
			BlueBand: 4, GreenBand: 10, RedBand: 18, FilterMin: 2, FilterMax: 20, FilterStep: 2,
		}},
		Logger: &logger.NullLogger{},
	})
	if err != nil {
		t.Fatalf("inspector.New failed: %v", err)
	}
	insp.Show()

	for _, p := range []inspector.Panel{inspector.PanelSpectrogram, inspector.PanelOriginal, inspector.PanelLUT, inspector.PanelInterpolated} {
		if _, err := os.Stat(surface.Path(p)); err != nil {
			t.Errorf("Expected %s panel after Show: %v", p, err)
		}
	}

	script := strings.Join([]string{
		"click spectrogram 7",
		"click org 3 5",
		"key 2",
		"key 3",
		"click lut 2 1 shift",
		"click lut 10 9 shift",
		"click intr 6 4",
		"key d",
		"key r",
	}, "\n")
	n, err := RunScript(strings.NewReader(script), insp.Dispatch, &logger.NullLogger{})
	if err != nil {
		t.Fatalf("RunScript failed: %v", err)
	}
	if n != 9 {
		t.Errorf("Expected 9 inputs, got %d", n)
	}

	st := insp.State()
	if st.Mode != models.SpectralAngle {
		t.Errorf("Expected spectral angle mode, got %s", st.Mode)
	}
	if st.Band != 7 || st.Selected != (models.Point{Row: 5, Col: 3}) {
		t.Errorf("Unexpected band %d or pixel %+v", st.Band, st.Selected)
	}
	if st.WindowStart != (models.Point{Row: 1, Col: 2}) || st.WindowEnd != (models.Point{Row: 9, Col: 10}) {
		t.Errorf("Unexpected window %+v-%+v", st.WindowStart, st.WindowEnd)
	}
	if st.ReferenceColumn != 6 {
		t.Errorf("Expected reference column 6, got %d", st.ReferenceColumn)
	}
	if !st.UseRadians {
		t.Error("Expected radians output")
	}
	if !strings.Contains(surface.LastStatus(), "mode=spectral-angle") {
		t.Errorf("Unexpected status %q", surface.LastStatus())
	}
}
