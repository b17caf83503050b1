// Package gormstorage implements the storage.Backend interface on top of GORM. The same code
// serves SQLite (glebarez/sqlite) and Postgres; the caller picks the dialector when opening the DB.
package gormstorage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fieldmeasure/fieldpatch/internal/database"
	"github.com/fieldmeasure/fieldpatch/internal/model"
	"github.com/fieldmeasure/fieldpatch/internal/model/convert"
	"github.com/fieldmeasure/fieldpatch/pkg/core"
	"gorm.io/gorm"
)

// Backend archives parcels in a relational database.
type Backend struct {
	db *gorm.DB
	mu sync.RWMutex
}

// New wraps an open connection. Call Init before use.
func New(db *gorm.DB) *Backend {
	return &Backend{db: db}
}

// Init migrates the schema.
func (b *Backend) Init() error {
	if err := b.db.AutoMigrate(model.DatabaseModels...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// Close closes the underlying connection pool.
func (b *Backend) Close() error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return fmt.Errorf("failed to access sql interface: %w", err)
	}
	return sqlDB.Close()
}

// SaveParcel inserts p. ID and CreatedAt are written back to p.
func (b *Backend) SaveParcel(ctx context.Context, p *core.Parcel) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	row, err := convert.ParcelToGorm(*p)
	if err != nil {
		return err
	}
	if err := b.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to insert parcel %q: %w", p.Name, err)
	}

	p.ID = row.ID
	return nil
}

func (b *Backend) GetParcel(ctx context.Context, id uint) (*core.Parcel, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var row model.Parcel
	err := b.db.WithContext(ctx).First(&row, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("parcel %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load parcel %d: %w", id, err)
	}

	p, err := convert.ParcelToCore(row)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (b *Backend) ListParcels(ctx context.Context) ([]core.Parcel, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var rows []model.Parcel
	if err := b.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list parcels: %w", err)
	}

	parcels := make([]core.Parcel, 0, len(rows))
	for _, row := range rows {
		p, err := convert.ParcelToCore(row)
		if err != nil {
			return nil, err
		}
		parcels = append(parcels, p)
	}
	return parcels, nil
}

// Snapshot copies a SQLite archive to path. Postgres archives return an error.
func (b *Backend) Snapshot(path string) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return database.DumpToDisk(b.db, path)
}
