package visualization

import (
	"strings"
	"testing"

	"cubeinspector/pkg/inspector"
	"cubeinspector/pkg/logger"
)

func TestParseInput(t *testing.T) {
	tests := []struct {
		line string
		want inspector.Input
		ok   bool
		err  bool
	}{
		{"", inspector.Input{}, false, false},
		{"   # comment", inspector.Input{}, false, false},
		{"key 3", inspector.Input{Kind: inspector.InputKey, Key: "3"}, true, false},
		{"key", inspector.Input{}, false, true},
		{"click org 4.5 2", inspector.Input{Kind: inspector.InputClick, Panel: inspector.PanelOriginal, X: 4.5, Y: 2}, true, false},
		{"click spectrogram 17", inspector.Input{Kind: inspector.InputClick, Panel: inspector.PanelSpectrogram, X: 17}, true, false},
		{"click LUT 1 2 shift", inspector.Input{Kind: inspector.InputClick, Panel: inspector.PanelLUT, X: 1, Y: 2, Modifier: inspector.ModShift}, true, false},
		{"click intr 1 2 alt", inspector.Input{Kind: inspector.InputClick, Panel: inspector.PanelInterpolated, X: 1, Y: 2, Modifier: inspector.ModAlt}, true, false},
		{"click intr 1 2 ctrl", inspector.Input{}, false, true},
		{"click nowhere 1 2", inspector.Input{}, false, true},
		{"click org", inspector.Input{}, false, true},
		{"click org shift", inspector.Input{}, false, true},
		{"scroll 3", inspector.Input{}, false, true},
	}

	for _, test := range tests {
		got, ok, err := ParseInput(test.line)
		if (err != nil) != test.err {
			t.Errorf("ParseInput(%q) error = %v, expected error %t", test.line, err, test.err)
			continue
		}
		if ok != test.ok {
			t.Errorf("ParseInput(%q) ok = %t, expected %t", test.line, ok, test.ok)
		}
		if ok && got != test.want {
			t.Errorf("ParseInput(%q) = %+v, expected %+v", test.line, got, test.want)
		}
	}
}

func TestRunScriptSkipsBadLines(t *testing.T) {
	script := strings.Join([]string{
		"# select false color",
		"key 2",
		"bogus line",
		"click org 3 4",
		"",
	}, "\n")

	var got []inspector.Input
	n, err := RunScript(strings.NewReader(script), func(in inspector.Input) inspector.Redraw {
		got = append(got, in)
		return inspector.RedrawNone
	}, &logger.NullLogger{})
	if err != nil {
		t.Fatalf("RunScript failed: %v", err)
	}
	if n != 2 || len(got) != 2 {
		t.Fatalf("Expected 2 dispatched inputs, got %d", n)
	}
	if got[0].Key != "2" || got[1].Panel != inspector.PanelOriginal {
		t.Errorf("Unexpected inputs %+v", got)
	}
}
