// Package memory keeps the parcel archive in process memory and mirrors every saved parcel to a
// GeoJSON file, so that a later process can load the archive back from the output directory.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/fieldmeasure/fieldpatch/internal/config"
	"github.com/fieldmeasure/fieldpatch/internal/geo"
	"github.com/fieldmeasure/fieldpatch/pkg/core"
)

// Backend stores parcels in memory and exports each one to GeoJSON
type Backend struct {
	cfg     config.MemoryConfig
	parcels map[uint]core.Parcel

	idCounter      uint
	lastExportPath string
	mu             sync.RWMutex
}

// New creates a new memory backend. An empty OutputDir disables the file export.
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{
		cfg:     cfg,
		parcels: make(map[uint]core.Parcel),
	}
}

// Init loads parcels previously exported to the output directory.
func (b *Backend) Init() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.cfg.OutputDir == "" {
		return nil
	}
	loaded, err := loadExports(b.cfg.OutputDir)
	if err != nil {
		return err
	}
	for _, p := range loaded {
		b.parcels[p.ID] = p
		if p.ID > b.idCounter {
			b.idCounter = p.ID
		}
	}
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// SaveParcel stores a copy of p, assigning ID and CreatedAt, and exports it. A failed export
// leaves the archive and p unchanged.
func (b *Backend) SaveParcel(_ context.Context, p *core.Parcel) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	stored := *p
	stored.ID = b.idCounter + 1
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	stored.Points = append([]geo.GeoPoint(nil), p.Points...)

	if b.cfg.OutputDir != "" {
		path, err := b.export(stored)
		if err != nil {
			return fmt.Errorf("failed to export parcel %d: %w", stored.ID, err)
		}
		b.lastExportPath = path
	}

	b.idCounter = stored.ID
	b.parcels[stored.ID] = stored
	p.ID, p.CreatedAt = stored.ID, stored.CreatedAt
	return nil
}

func (b *Backend) GetParcel(_ context.Context, id uint) (*core.Parcel, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	p, ok := b.parcels[id]
	if !ok {
		return nil, fmt.Errorf("parcel %d: %w", id, core.ErrNotFound)
	}
	p.Points = append([]geo.GeoPoint(nil), p.Points...)
	return &p, nil
}

func (b *Backend) ListParcels(_ context.Context) ([]core.Parcel, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]core.Parcel, 0, len(b.parcels))
	for _, p := range b.parcels {
		p.Points = append([]geo.GeoPoint(nil), p.Points...)
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// LastExportPath returns the file written by the most recent SaveParcel.
func (b *Backend) LastExportPath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}
