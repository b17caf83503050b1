package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTableNames(t *testing.T) {
	assert.Equal(t, "parcels", (&Parcel{}).TableName())
}

func TestDatabaseModels(t *testing.T) {
	assert.Len(t, DatabaseModels, 1)
	assert.IsType(t, &Parcel{}, DatabaseModels[0])
}
