package storage

import (
	"fmt"

	"github.com/fieldmeasure/fieldpatch/internal/config"
	"github.com/fieldmeasure/fieldpatch/internal/database"
	badgerstorage "github.com/fieldmeasure/fieldpatch/internal/storage/badger"
	gormstorage "github.com/fieldmeasure/fieldpatch/internal/storage/gorm"
	"github.com/fieldmeasure/fieldpatch/internal/storage/memory"
)

// NewBackend creates a storage backend based on configuration. The backend is not initialized.
func NewBackend(cfg config.StorageConfig) (Backend, error) {
	switch cfg.Type {
	case "postgres":
		db, err := database.OpenPostgres(cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		return gormstorage.New(db), nil
	case "sqlite":
		db, err := database.OpenSQLite(cfg.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		return gormstorage.New(db), nil
	case "badger":
		return badgerstorage.New(cfg.Badger), nil
	case "memory", "":
		return memory.New(cfg.Memory), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
