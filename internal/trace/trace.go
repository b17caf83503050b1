// Package trace reads recorded field walks: the sequence of push, pop and clear operations made
// while tracing a parcel boundary.
package trace

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fieldmeasure/fieldpatch/internal/geo"
)

var ErrEmptyTrace = errors.New("trace contains no operations")

type OpKind int

const (
	OpPush OpKind = iota
	OpPop
	OpClear
)

func (k OpKind) String() string {
	switch k {
	case OpPush:
		return "push"
	case OpPop:
		return "pop"
	case OpClear:
		return "clear"
	default:
		return fmt.Sprintf("OpKind(%d)", int(k))
	}
}

// Op is one recorded operation. Point is only set for OpPush. Line is 1-based, or 0 for JSON input.
type Op struct {
	Kind  OpKind
	Point geo.GeoPoint
	Line  int
}

// Target receives replayed operations. Both area.Engine and session.Tracker satisfy it.
type Target interface {
	Push(p geo.GeoPoint)
	Pop() (geo.Vertex, bool)
	Clear()
}

// Parse reads a trace. Input starting with '[' is a JSON polyline ([[lon,lat],...]) and becomes a
// series of pushes; anything else is read line by line:
//
//	# comment
//	25.4575,65.0533
//	pop
//	clear
func Parse(r io.Reader) ([]Op, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read trace: %w", err)
	}

	var ops []Op
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		ops, err = parsePolyline(string(trimmed))
	} else {
		ops, err = parseLines(data)
	}
	if err != nil {
		return nil, err
	}
	if len(ops) == 0 {
		return nil, ErrEmptyTrace
	}
	return ops, nil
}

// ParseFile opens path and parses it.
func ParseFile(path string) ([]Op, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace: %w", err)
	}
	defer f.Close()

	ops, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ops, nil
}

func parsePolyline(input string) ([]Op, error) {
	points, err := geo.ParsePolyline(input)
	if err != nil {
		return nil, err
	}
	ops := make([]Op, len(points))
	for i, p := range points {
		ops[i] = Op{Kind: OpPush, Point: p}
	}
	return ops, nil
}

func parseLines(data []byte) ([]Op, error) {
	var ops []Op
	scanner := bufio.NewScanner(bytes.NewReader(data))
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		switch strings.ToLower(text) {
		case "pop":
			ops = append(ops, Op{Kind: OpPop, Line: line})
		case "clear":
			ops = append(ops, Op{Kind: OpClear, Line: line})
		default:
			p, err := geo.PointFromString(text)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			ops = append(ops, Op{Kind: OpPush, Point: p, Line: line})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan trace: %w", err)
	}
	return ops, nil
}

// Replay applies ops to t in order. A pop on an empty target is ignored, like the undo button on
// an empty trace.
func Replay(ops []Op, t Target) {
	for _, op := range ops {
		switch op.Kind {
		case OpPush:
			t.Push(op.Point)
		case OpPop:
			t.Pop()
		case OpClear:
			t.Clear()
		}
	}
}

// Points returns the points left after replaying ops, without running any area computation.
func Points(ops []Op) []geo.GeoPoint {
	var points []geo.GeoPoint
	for _, op := range ops {
		switch op.Kind {
		case OpPush:
			points = append(points, op.Point)
		case OpPop:
			if len(points) > 0 {
				points = points[:len(points)-1]
			}
		case OpClear:
			points = nil
		}
	}
	return points
}
