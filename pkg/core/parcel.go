// Package core holds the storage-agnostic domain types shared by the archive backends.
package core

import (
	"errors"
	"time"

	"github.com/fieldmeasure/fieldpatch/internal/geo"
)

// ErrNotFound is returned when a parcel ID is not in the archive.
var ErrNotFound = errors.New("parcel not found")

// Parcel is a traced field patch as archived. ID and CreatedAt are assigned by the backend when
// they are zero.
type Parcel struct {
	ID          uint           `json:"id"`
	Name        string         `json:"name"`
	Points      []geo.GeoPoint `json:"points"`
	Sqm         float64        `json:"sqm"`
	Ha          float64        `json:"ha"`
	NumVertices int            `json:"numVertices"`
	Perimeter   float64        `json:"perimeter"`
	CreatedAt   time.Time      `json:"createdAt"`
}
