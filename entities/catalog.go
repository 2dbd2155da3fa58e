// File: entities/catalog.go
package entities

import (
	"github.com/google/uuid"
)

// Tag and Ingredient are administrator-maintained catalog entries shared by
// many recipes and owned by none of them.

type Tag struct {
	ID    uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name  string    `gorm:"uniqueIndex;not null" json:"name"`
	Color string    `gorm:"size:7;not null" json:"color"`
	Slug  string    `gorm:"uniqueIndex;not null" json:"slug"`
}

type Ingredient struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name            string    `gorm:"index;not null" json:"name"`
	MeasurementUnit string    `gorm:"not null" json:"measurement_unit"`
}
