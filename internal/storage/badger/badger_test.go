package badgerstorage

import (
	"context"
	"testing"
	"time"

	"github.com/fieldmeasure/fieldpatch/internal/config"
	"github.com/fieldmeasure/fieldpatch/internal/geo"
	"github.com/fieldmeasure/fieldpatch/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testParcel(name string) *core.Parcel {
	return &core.Parcel{
		Name: name,
		Points: []geo.GeoPoint{
			{Latitude: 65.000, Longitude: 25.000},
			{Latitude: 65.001, Longitude: 25.000},
			{Latitude: 65.001, Longitude: 25.002},
		},
		Sqm:         4700.5,
		Ha:          0.47005,
		NumVertices: 3,
		Perimeter:   320.25,
	}
}

func newBackend(t *testing.T, path string) *Backend {
	t.Helper()
	b := New(config.BadgerConfig{Path: path})
	require.NoError(t, b.Init())
	return b
}

func TestParcelKeyOrdersById(t *testing.T) {
	assert.Equal(t, "parcel/00000000000000000007", string(parcelKey(7)))
	assert.Less(t, string(parcelKey(9)), string(parcelKey(10)))
}

func TestSaveAndGet(t *testing.T) {
	b := newBackend(t, "")
	defer b.Close()
	ctx := context.Background()

	p := testParcel("north field")
	require.NoError(t, b.SaveParcel(ctx, p))
	assert.Equal(t, uint(1), p.ID)
	assert.False(t, p.CreatedAt.IsZero())

	got, err := b.GetParcel(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Name, got.Name)
	assert.Equal(t, p.Points, got.Points)
	assert.Equal(t, p.Sqm, got.Sqm)
	assert.Equal(t, p.NumVertices, got.NumVertices)
	assert.True(t, p.CreatedAt.Equal(got.CreatedAt))
}

func TestGetMissing(t *testing.T) {
	b := newBackend(t, "")
	defer b.Close()

	_, err := b.GetParcel(context.Background(), 42)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestListParcels(t *testing.T) {
	b := newBackend(t, "")
	defer b.Close()
	ctx := context.Background()

	all, err := b.ListParcels(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, b.SaveParcel(ctx, testParcel(name)))
	}

	all, err = b.ListParcels(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	for i, p := range all {
		assert.Equal(t, uint(i+1), p.ID)
	}
	assert.Equal(t, "c", all[2].Name)
}

func TestKeepsCreatedAt(t *testing.T) {
	b := newBackend(t, "")
	defer b.Close()

	created := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	p := testParcel("dated")
	p.CreatedAt = created
	require.NoError(t, b.SaveParcel(context.Background(), p))
	assert.Equal(t, created, p.CreatedAt)
}

func TestPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	b := newBackend(t, dir)
	first := testParcel("first")
	require.NoError(t, b.SaveParcel(ctx, first))
	require.NoError(t, b.Close())

	b = newBackend(t, dir)
	defer b.Close()

	got, err := b.GetParcel(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "first", got.Name)

	second := testParcel("second")
	require.NoError(t, b.SaveParcel(ctx, second))
	assert.Greater(t, second.ID, first.ID)
}

func TestCloseTwice(t *testing.T) {
	b := newBackend(t, "")
	require.NoError(t, b.Close())
	assert.NoError(t, b.Close())
}
