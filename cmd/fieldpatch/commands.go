package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/fieldmeasure/fieldpatch/internal/dispatcher"
	"github.com/fieldmeasure/fieldpatch/internal/geo"
	"github.com/fieldmeasure/fieldpatch/internal/session"
	"github.com/fieldmeasure/fieldpatch/internal/storage"
	"github.com/fieldmeasure/fieldpatch/internal/storage/memory"
	"github.com/fieldmeasure/fieldpatch/internal/trace"
	"github.com/fieldmeasure/fieldpatch/pkg/core"
	"github.com/samber/lo"
	"github.com/sanity-io/litter"
)

type commandOptions struct {
	dump *bool
	name *string
}

// newDispatcher registers every command on a dispatcher bound to a.
func (a *app) newDispatcher(opts commandOptions) (*dispatcher.Dispatcher, error) {
	d, err := dispatcher.New(a.log)
	if err != nil {
		return nil, err
	}

	d.Register("area", func(_ context.Context, c dispatcher.Command) error {
		return a.area(c.Args[0])
	}, dispatcher.Args(1, "area <trace>"), dispatcher.Logged())

	d.Register("save", func(ctx context.Context, c dispatcher.Command) error {
		return a.save(ctx, c.Args[0], c.Args[1])
	}, dispatcher.Args(2, "save <name> <trace>"), dispatcher.Logged())

	d.Register("list", func(ctx context.Context, _ dispatcher.Command) error {
		return a.list(ctx)
	}, dispatcher.Args(0, "list"), dispatcher.Logged())

	d.Register("show", func(ctx context.Context, c dispatcher.Command) error {
		return a.show(ctx, c.Args[0], *opts.dump)
	}, dispatcher.Args(1, "show <id>"), dispatcher.Logged())

	d.Register("export", func(_ context.Context, c dispatcher.Command) error {
		return a.export(c.Args[0], *opts.name)
	}, dispatcher.Args(1, "export <trace>"), dispatcher.Logged())

	d.Register("snapshot", func(_ context.Context, c dispatcher.Command) error {
		return a.snapshot(c.Args[0])
	}, dispatcher.Args(1, "snapshot <path>"), dispatcher.Logged())

	return d, nil
}

// replay runs the trace file through a new tracker.
func (a *app) replay(path string, store storage.Backend, sink session.Sink) (*session.Tracker, error) {
	ops, err := trace.ParseFile(path)
	if err != nil {
		return nil, err
	}

	tr, err := session.New(session.Options{
		Engine: a.engine,
		Store:  store,
		Sink:   sink,
		Logger: a.log.With("trace", path),
	})
	if err != nil {
		return nil, err
	}

	start := time.Now()
	trace.Replay(ops, tr)
	a.log.Debug("Trace replayed", "ops", len(ops), "duration", time.Since(start))
	return tr, nil
}

func (a *app) area(path string) error {
	tr, err := a.replay(path, nil, nil)
	if err != nil {
		return err
	}

	points := tr.Points()
	res := tr.Area()
	fmt.Fprintf(a.out, "vertices:  %d\n", res.NumVertices)
	fmt.Fprintf(a.out, "area:      %.2f m² (%.4f ha)\n", res.Sqm, res.Ha)
	fmt.Fprintf(a.out, "perimeter: %.2f m\n", geo.Perimeter(points, true))
	fmt.Fprintf(a.out, "reference: %.2f m²\n", geo.ReferenceArea(points))

	if len(points) >= 2 {
		fmt.Fprintln(a.out, "edges:")
		w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
		for i := range points {
			j := (i + 1) % len(points)
			if j == 0 && len(points) < 3 {
				break
			}
			fmt.Fprintf(w, "  %d -> %d\t%.2f m\t%.1f°\n",
				i+1, j+1, geo.DistanceBetween(points[i], points[j]), geo.Bearing(points[i], points[j]))
		}
		_ = w.Flush()
	}

	return tr.Err()
}

func (a *app) save(ctx context.Context, name, path string) error {
	store, err := a.openStore()
	if err != nil {
		return err
	}

	tr, err := a.replay(path, store, a.openSink(ctx))
	if err != nil {
		return err
	}

	p, err := tr.Save(ctx, name)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "saved parcel %d %q: %.2f m² (%.4f ha)\n", p.ID, p.Name, p.Sqm, p.Ha)
	if exp, ok := store.(storage.Exporter); ok && exp.LastExportPath() != "" {
		fmt.Fprintf(a.out, "exported to %s\n", exp.LastExportPath())
	}
	return nil
}

func (a *app) list(ctx context.Context) error {
	store, err := a.openStore()
	if err != nil {
		return err
	}
	parcels, err := store.ListParcels(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tHA\tSQM\tVERTICES\tCREATED")
	for _, p := range parcels {
		fmt.Fprintf(w, "%d\t%s\t%.4f\t%.2f\t%d\t%s\n",
			p.ID, p.Name, p.Ha, p.Sqm, p.NumVertices, p.CreatedAt.UTC().Format(time.RFC3339))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	total := lo.SumBy(parcels, func(p core.Parcel) float64 { return p.Ha })
	fmt.Fprintf(a.out, "%d parcels, %.4f ha total\n", len(parcels), total)
	return nil
}

func (a *app) show(ctx context.Context, rawID string, dump bool) error {
	id, err := strconv.ParseUint(rawID, 10, 0)
	if err != nil {
		return fmt.Errorf("%w: invalid parcel id %q", dispatcher.ErrUsage, rawID)
	}

	store, err := a.openStore()
	if err != nil {
		return err
	}
	p, err := store.GetParcel(ctx, uint(id))
	if err != nil {
		return err
	}

	if dump {
		fmt.Fprintln(a.out, litter.Sdump(p))
		return nil
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode parcel %d: %w", p.ID, err)
	}
	fmt.Fprintln(a.out, string(data))
	return nil
}

func (a *app) export(path, name string) error {
	tr, err := a.replay(path, nil, nil)
	if err != nil {
		return err
	}
	if err := tr.Err(); err != nil {
		return fmt.Errorf("cannot export %s: %w", path, err)
	}

	data, err := memory.Feature(tr.Parcel(name)).MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to encode feature: %w", err)
	}
	fmt.Fprintln(a.out, string(data))
	return nil
}

func (a *app) snapshot(path string) error {
	store, err := a.openStore()
	if err != nil {
		return err
	}
	s, ok := store.(storage.Snapshotter)
	if !ok {
		return fmt.Errorf("%T does not support snapshots", store)
	}
	if err := s.Snapshot(path); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "snapshot written to %s\n", path)
	return nil
}
