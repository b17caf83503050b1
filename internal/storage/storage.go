package storage

import (
	"context"

	"github.com/fieldmeasure/fieldpatch/pkg/core"
)

// ErrNotFound is returned by GetParcel for unknown IDs.
var ErrNotFound = core.ErrNotFound

// Backend is the interface all parcel archives must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// SaveParcel stores p and assigns its ID and CreatedAt.
	SaveParcel(ctx context.Context, p *core.Parcel) error
	GetParcel(ctx context.Context, id uint) (*core.Parcel, error)
	// ListParcels returns all parcels ordered by ID.
	ListParcels(ctx context.Context) ([]core.Parcel, error)
}

// Exporter is an optional interface for backends that write each saved parcel to a file.
type Exporter interface {
	LastExportPath() string
}

// Snapshotter is an optional interface for backends that can copy their database to a file.
type Snapshotter interface {
	Snapshot(path string) error
}
