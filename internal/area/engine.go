// Package area implements the field patch area engine: an ordered stack of traced points whose
// enclosed area is recomputed after every change.
package area

import (
	"errors"

	"github.com/fieldmeasure/fieldpatch/internal/geo"
)

// ErrNotContiguous is reported when the newest edge of the trace crosses an existing edge.
var ErrNotContiguous = errors.New("area is not contiguous")

// SqmPerHectare is the number of square meters in a hectare.
const SqmPerHectare = 10000

// Result is the area derived from the current points.
type Result struct {
	Ha          float64 `json:"ha"`
	Sqm         float64 `json:"sqm"`
	NumVertices int     `json:"numVertices"`
}

// Listener is called after every recomputation with the new result and validation error.
type Listener func(Result, error)

// Options controls the contiguity checks run before the area is computed.
type Options struct {
	// CheckClosingEdge also tests the implicit edge from the last point to the first.
	CheckClosingEdge bool
	// FullContiguityCheck replaces the incremental newest-edge test with an all-pairs test.
	FullContiguityCheck bool
}

// DefaultOptions checks the newest and the closing edge incrementally.
func DefaultOptions() Options {
	return Options{CheckClosingEdge: true}
}

// Engine owns one traced polygon. It is not safe for concurrent use; callers serialize their own
// Push/Pop calls.
type Engine struct {
	opts      Options
	points    []geo.GeoPoint
	result    Result
	err       error
	listeners map[int]Listener
	nextID    int

	// brokenAt is the trace length at which the incremental check first failed, 0 when the trace
	// was contiguous at every length up to now.
	brokenAt int
}

// NewEngine creates an empty engine.
func NewEngine(opts Options) *Engine {
	return &Engine{
		opts:      opts,
		listeners: make(map[int]Listener),
	}
}

// Push appends a point to the trace.
func (e *Engine) Push(p geo.GeoPoint) {
	e.points = append(e.points, p)
	e.recompute()
}

// Pop removes the most recently pushed point and returns it labelled with the trace length before
// removal. ok is false when the trace is empty.
func (e *Engine) Pop() (v geo.Vertex, ok bool) {
	n := len(e.points)
	if n == 0 {
		return geo.Vertex{}, false
	}
	v = geo.Vertex{GeoPoint: e.points[n-1], Ordinal: n}
	e.points = e.points[:n-1]
	e.recompute()
	return v, true
}

// Clear removes every point.
func (e *Engine) Clear() {
	e.points = nil
	e.recompute()
}

// Area returns the result of the last recomputation.
func (e *Engine) Area() Result {
	return e.result
}

// Err returns ErrNotContiguous while the trace self-intersects, nil otherwise.
func (e *Engine) Err() error {
	return e.err
}

// Len returns the number of points in the trace.
func (e *Engine) Len() int {
	return len(e.points)
}

// Points returns a copy of the trace.
func (e *Engine) Points() []geo.GeoPoint {
	out := make([]geo.GeoPoint, len(e.points))
	copy(out, e.points)
	return out
}

// Subscribe registers fn to be called synchronously after every change. The returned function
// removes the subscription.
func (e *Engine) Subscribe(fn Listener) (cancel func()) {
	id := e.nextID
	e.nextID++
	e.listeners[id] = fn
	return func() {
		delete(e.listeners, id)
	}
}

func (e *Engine) contiguous() bool {
	if e.opts.FullContiguityCheck {
		return IsSimplePolygon(e.points)
	}

	n := len(e.points)
	if e.brokenAt > n {
		e.brokenAt = 0
	}
	// A crossing below the newest edge is invisible to the incremental check.
	if e.brokenAt > 0 {
		if !IsSimpleChain(e.points, e.opts.CheckClosingEdge) {
			return false
		}
		e.brokenAt = 0
		return true
	}

	if AreaIsContiguous(e.points, e.opts.CheckClosingEdge) {
		return true
	}
	e.brokenAt = n
	return false
}

func (e *Engine) recompute() {
	e.result = Result{NumVertices: len(e.points)}
	e.err = nil

	if !e.contiguous() {
		e.err = ErrNotContiguous
	} else if sqm := CalculateArea(e.points); sqm > 0 {
		e.result.Sqm = sqm
		e.result.Ha = sqm / SqmPerHectare
	}

	for _, fn := range e.listeners {
		fn(e.result, e.err)
	}
}
