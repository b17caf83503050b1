// Package session wraps an area engine for a single traced parcel: it logs every change, records
// metrics, and saves the finished parcel to the archive and the measurement sink.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/fieldmeasure/fieldpatch/internal/area"
	"github.com/fieldmeasure/fieldpatch/internal/geo"
	"github.com/fieldmeasure/fieldpatch/internal/logging"
	"github.com/fieldmeasure/fieldpatch/internal/storage"
	"github.com/fieldmeasure/fieldpatch/pkg/core"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	// ErrTooFewPoints is returned by Save when the trace cannot enclose an area.
	ErrTooFewPoints = errors.New("a parcel needs at least 3 points")
	// ErrNoStore is returned by Save when the tracker has no storage backend.
	ErrNoStore = errors.New("no storage backend configured")
)

// Sink receives saved parcels, e.g. the InfluxDB manager.
type Sink interface {
	WriteParcel(ctx context.Context, p core.Parcel) error
}

// Options configures a Tracker. Store and Sink are optional; Logger defaults to slog.Default and
// Meter to the global OTel meter.
type Options struct {
	Engine area.Options
	Store  storage.Backend
	Sink   Sink
	Logger *slog.Logger
	Meter  metric.Meter
}

// Tracker is safe for concurrent use. Subscribers run while the tracker lock is held and must not
// call back into the tracker.
type Tracker struct {
	mu     sync.Mutex
	engine *area.Engine
	store  storage.Backend
	sink   Sink
	log    *slog.Logger

	pushed       metric.Int64Counter
	popped       metric.Int64Counter
	notContig    metric.Int64Counter
	savedParcels metric.Int64Counter
	savedArea    metric.Float64Histogram
}

// New creates a tracker with an empty trace.
func New(opts Options) (*Tracker, error) {
	t := &Tracker{
		engine: area.NewEngine(opts.Engine),
		store:  opts.Store,
		sink:   opts.Sink,
	}

	base := opts.Logger
	if base == nil {
		base = slog.Default()
	}
	t.log = logging.WithContext(base.With("component", "session"), func() []slog.Attr {
		return []slog.Attr{slog.Int("vertices", t.engine.Len())}
	})

	m := opts.Meter
	if m == nil {
		m = meter()
	}
	if err := t.initMetrics(m); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Tracker) initMetrics(m metric.Meter) error {
	var err error

	t.pushed, err = m.Int64Counter(
		"session.points.pushed",
		metric.WithDescription("Total points added to traces"),
	)
	if err != nil {
		return fmt.Errorf("creating pushed counter: %w", err)
	}

	t.popped, err = m.Int64Counter(
		"session.points.popped",
		metric.WithDescription("Total points removed from traces"),
	)
	if err != nil {
		return fmt.Errorf("creating popped counter: %w", err)
	}

	t.notContig, err = m.Int64Counter(
		"session.area.not_contiguous",
		metric.WithDescription("Changes that left the trace self-intersecting"),
	)
	if err != nil {
		return fmt.Errorf("creating not-contiguous counter: %w", err)
	}

	t.savedParcels, err = m.Int64Counter(
		"session.parcels.saved",
		metric.WithDescription("Parcels saved to the archive"),
	)
	if err != nil {
		return fmt.Errorf("creating saved counter: %w", err)
	}

	t.savedArea, err = m.Float64Histogram(
		"session.parcels.area",
		metric.WithDescription("Area of saved parcels"),
		metric.WithUnit("m2"),
	)
	if err != nil {
		return fmt.Errorf("creating area histogram: %w", err)
	}
	return nil
}

// after logs and counts the outcome of a mutation. Callers hold t.mu.
func (t *Tracker) after(op string) {
	ctx := context.Background()
	res, err := t.engine.Area(), t.engine.Err()
	if err != nil {
		t.notContig.Add(ctx, 1, metric.WithAttributes(attribute.String("op", op)))
		t.log.Warn("Trace is not contiguous", "op", op, "error", err)
		return
	}
	t.log.Debug("Area updated", "op", op, "sqm", res.Sqm, "ha", res.Ha)
}

// Push appends a point.
func (t *Tracker) Push(p geo.GeoPoint) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.engine.Push(p)
	t.pushed.Add(context.Background(), 1)
	t.after("push")
}

// Pop removes the newest point. ok is false on an empty trace.
func (t *Tracker) Pop() (geo.Vertex, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	v, ok := t.engine.Pop()
	if !ok {
		t.log.Debug("Pop on empty trace ignored")
		return v, false
	}
	t.popped.Add(context.Background(), 1)
	t.after("pop")
	return v, true
}

// Clear removes every point.
func (t *Tracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := t.engine.Len()
	t.engine.Clear()
	t.popped.Add(context.Background(), int64(n))
	t.log.Info("Trace cleared", "removed", n)
	t.after("clear")
}

func (t *Tracker) Area() area.Result {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.engine.Area()
}

func (t *Tracker) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.engine.Err()
}

func (t *Tracker) Points() []geo.GeoPoint {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.engine.Points()
}

// Subscribe forwards to the engine.
func (t *Tracker) Subscribe(fn area.Listener) (cancel func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	unsubscribe := t.engine.Subscribe(fn)
	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		unsubscribe()
	}
}

// Parcel snapshots the current trace as an unsaved parcel.
func (t *Tracker) Parcel(name string) core.Parcel {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.parcel(name)
}

func (t *Tracker) parcel(name string) core.Parcel {
	points := t.engine.Points()
	res := t.engine.Area()
	return core.Parcel{
		Name:        name,
		Points:      points,
		Sqm:         res.Sqm,
		Ha:          res.Ha,
		NumVertices: res.NumVertices,
		Perimeter:   geo.Perimeter(points, true),
	}
}

// Save archives the current trace under name. The trace must be contiguous and have at least 3
// points. A failing sink is logged but does not fail the save.
func (t *Tracker) Save(ctx context.Context, name string) (*core.Parcel, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.store == nil {
		return nil, ErrNoStore
	}
	if err := t.engine.Err(); err != nil {
		return nil, fmt.Errorf("cannot save %q: %w", name, err)
	}
	if t.engine.Len() < 3 {
		return nil, fmt.Errorf("cannot save %q: %w", name, ErrTooFewPoints)
	}

	p := t.parcel(name)
	if err := t.store.SaveParcel(ctx, &p); err != nil {
		return nil, fmt.Errorf("failed to save parcel %q: %w", name, err)
	}
	t.savedParcels.Add(ctx, 1)
	t.savedArea.Record(ctx, p.Sqm)
	t.log.Info("Parcel saved", "id", p.ID, "name", p.Name, "sqm", p.Sqm, "ha", p.Ha)

	if t.sink != nil {
		if err := t.sink.WriteParcel(ctx, p); err != nil {
			t.log.Error("Failed to write parcel to sink", "id", p.ID, "error", err)
		}
	}
	return &p, nil
}
