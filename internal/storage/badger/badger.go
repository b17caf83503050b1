// Package badgerstorage stores parcels as JSON values in an embedded Badger key-value store.
package badgerstorage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/fieldmeasure/fieldpatch/internal/config"
	"github.com/fieldmeasure/fieldpatch/pkg/core"
)

const (
	parcelPrefix = "parcel/"
	sequenceKey  = "seq/parcel"
	leaseSize    = 16
)

// Backend keeps parcels under parcel/<zero padded id> so key order is id order.
type Backend struct {
	cfg config.BadgerConfig
	db  *badger.DB
	seq *badger.Sequence
	mu  sync.Mutex
}

func New(cfg config.BadgerConfig) *Backend {
	return &Backend{cfg: cfg}
}

func parcelKey(id uint) []byte {
	return fmt.Appendf(nil, "%s%020d", parcelPrefix, id)
}

// Init opens the store. An empty path keeps everything in memory.
func (b *Backend) Init() error {
	opts := badger.DefaultOptions(b.cfg.Path)
	if b.cfg.Path == "" {
		opts = opts.WithInMemory(true)
	}
	opts.ZSTDCompressionLevel = 2
	opts.NumVersionsToKeep = 1
	opts.CompactL0OnClose = true
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return fmt.Errorf("failed to open badger store %q: %w", b.cfg.Path, err)
	}

	seq, err := db.GetSequence([]byte(sequenceKey), leaseSize)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to lease parcel ids: %w", err)
	}

	b.db = db
	b.seq = seq
	return nil
}

func (b *Backend) Close() error {
	if b.db == nil {
		return nil
	}
	var errs []error
	if b.seq != nil {
		errs = append(errs, b.seq.Release())
	}
	errs = append(errs, b.db.Close())
	b.db, b.seq = nil, nil
	return errors.Join(errs...)
}

// SaveParcel assigns the next id and CreatedAt and writes p.
func (b *Backend) SaveParcel(_ context.Context, p *core.Parcel) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Sequences start at 0; ids start at 1 like the other backends.
	next, err := b.seq.Next()
	if err != nil {
		return fmt.Errorf("failed to allocate parcel id: %w", err)
	}
	p.ID = uint(next) + 1
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode parcel %d: %w", p.ID, err)
	}

	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(parcelKey(p.ID), data)
	})
}

func (b *Backend) GetParcel(_ context.Context, id uint) (*core.Parcel, error) {
	out := new(core.Parcel)
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(parcelKey(id))
		if err != nil {
			return err
		}
		val, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		return json.Unmarshal(val, out)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("parcel %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read parcel %d: %w", id, err)
	}
	return out, nil
}

func (b *Backend) ListParcels(_ context.Context) ([]core.Parcel, error) {
	var out []core.Parcel
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(parcelPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var p core.Parcel
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &p)
			})
			if err != nil {
				return fmt.Errorf("key %s: %w", it.Item().Key(), err)
			}
			out = append(out, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list parcels: %w", err)
	}
	return out, nil
}
