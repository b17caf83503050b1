// Package convert maps parcels between the GORM model and the core domain type.
package convert

import (
	"encoding/json"
	"fmt"

	"github.com/fieldmeasure/fieldpatch/internal/geo"
	"github.com/fieldmeasure/fieldpatch/internal/model"
	"github.com/fieldmeasure/fieldpatch/pkg/core"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ParcelToGorm converts a core.Parcel to its database row, deriving the boundary geometries.
func ParcelToGorm(p core.Parcel) (model.Parcel, error) {
	vertices := datatypes.JSON("[]")
	if len(p.Points) > 0 {
		data, err := json.Marshal(p.Points)
		if err != nil {
			return model.Parcel{}, fmt.Errorf("failed to encode vertices: %w", err)
		}
		vertices = datatypes.JSON(data)
	}

	boundary, err := geo.RingWKB(p.Points)
	if err != nil {
		return model.Parcel{}, fmt.Errorf("failed to encode boundary: %w", err)
	}
	wkt, err := geo.RingWKT(p.Points)
	if err != nil {
		return model.Parcel{}, fmt.Errorf("failed to encode boundary: %w", err)
	}

	row := model.Parcel{
		Model:       gorm.Model{ID: p.ID, CreatedAt: p.CreatedAt},
		Name:        p.Name,
		Vertices:    vertices,
		Sqm:         p.Sqm,
		Ha:          p.Ha,
		NumVertices: p.NumVertices,
		Perimeter:   p.Perimeter,
		Boundary:    boundary,
		BoundaryWKT: wkt,
	}
	if len(p.Points) >= 3 {
		mercator, err := geo.ToMercatorLineString(p.Points)
		if err != nil {
			return model.Parcel{}, err
		}
		row.MercatorBoundary = mercator.AsBinary()
	}
	return row, nil
}

// ParcelToCore converts a database row back to a core.Parcel. Rows without vertex JSON fall back
// to the WKB boundary.
func ParcelToCore(row model.Parcel) (core.Parcel, error) {
	var points []geo.GeoPoint
	if len(row.Vertices) > 0 {
		if err := json.Unmarshal(row.Vertices, &points); err != nil {
			return core.Parcel{}, fmt.Errorf("failed to decode vertices of parcel %d: %w", row.ID, err)
		}
	}
	if len(points) == 0 && len(row.Boundary) > 0 {
		var err error
		points, err = geo.PointsFromWKB(row.Boundary)
		if err != nil {
			return core.Parcel{}, fmt.Errorf("parcel %d: %w", row.ID, err)
		}
	}

	return core.Parcel{
		ID:          row.ID,
		Name:        row.Name,
		Points:      points,
		Sqm:         row.Sqm,
		Ha:          row.Ha,
		NumVertices: row.NumVertices,
		Perimeter:   row.Perimeter,
		CreatedAt:   row.CreatedAt,
	}, nil
}
