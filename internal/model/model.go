package model

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DatabaseModels lists every table of the parcel archive for AutoMigrate.
var DatabaseModels = []any{
	&Parcel{},
}

// Parcel is one archived field patch.
type Parcel struct {
	gorm.Model
	Name        string         `json:"name" gorm:"size:128;index:idx_parcel_name"`
	Vertices    datatypes.JSON `json:"vertices"` // [{"latitude":..,"longitude":..}] in trace order
	Sqm         float64        `json:"sqm"`
	Ha          float64        `json:"ha"`
	NumVertices int            `json:"numVertices"`
	Perimeter   float64        `json:"perimeter"`
	// Closed ring as WKB LineString, EPSG:4326
	Boundary []byte `json:"-"`
	// Same ring in EPSG:3857 meters
	MercatorBoundary []byte `json:"-"`
	BoundaryWKT      string `json:"boundaryWkt" gorm:"type:text"`
}

func (*Parcel) TableName() string {
	return "parcels"
}
