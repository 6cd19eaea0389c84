package visualization

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"cubeinspector/pkg/inspector"
	"cubeinspector/pkg/logger"
)

// ParseInput parses one line of an input script:
//
//	key <k>
//	click <panel> <x> [<y>] [shift|alt]
//
// Panels are named as by inspector.Panel.String. Blank lines and lines starting
// with # report ok == false.
func ParseInput(line string) (in inspector.Input, ok bool, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return in, false, nil
	}

	switch strings.ToLower(fields[0]) {
	case "key":
		if len(fields) != 2 {
			return in, false, errors.Errorf("key takes exactly one argument: %q", line)
		}
		return inspector.Input{Kind: inspector.InputKey, Key: fields[1]}, true, nil

	case "click":
		return parseClick(fields[1:], line)
	}
	return in, false, errors.Errorf("unknown command %q", fields[0])
}

func parseClick(args []string, line string) (inspector.Input, bool, error) {
	in := inspector.Input{Kind: inspector.InputClick}
	if len(args) < 2 {
		return in, false, errors.Errorf("click needs a panel and a coordinate: %q", line)
	}

	panel, ok := inspector.ParsePanel(args[0])
	if !ok {
		return in, false, errors.Errorf("unknown panel %q", args[0])
	}
	in.Panel = panel
	args = args[1:]

	var coords []float64
	for len(args) > 0 && len(coords) < 2 {
		v, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			break
		}
		coords = append(coords, v)
		args = args[1:]
	}
	if len(coords) == 0 {
		return in, false, errors.Errorf("click needs a coordinate: %q", line)
	}
	in.X = coords[0]
	if len(coords) == 2 {
		in.Y = coords[1]
	}

	for _, mod := range args {
		switch strings.ToLower(mod) {
		case "shift":
			in.Modifier = inspector.ModShift
		case "alt":
			in.Modifier = inspector.ModAlt
		default:
			return in, false, errors.Errorf("unknown modifier %q", mod)
		}
	}
	return in, true, nil
}

// RunScript dispatches every input read from r. Malformed lines are logged and
// skipped so an interactive session survives typos.
func RunScript(r io.Reader, dispatch func(inspector.Input) inspector.Redraw, log logger.ILogger) (int, error) {
	scanner := bufio.NewScanner(r)
	dispatched := 0
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		in, ok, err := ParseInput(scanner.Text())
		if err != nil {
			log.Errorf("line %d: %v", lineNo, err)
			continue
		}
		if !ok {
			continue
		}
		redraw := dispatch(in)
		dispatched++
		log.Debugf("line %d: redraw %s", lineNo, redraw)
	}

	if err := scanner.Err(); err != nil {
		return dispatched, errors.Wrap(err, "reading input script")
	}
	return dispatched, nil
}
