package models

import (
	"time"

	"gorm.io/datatypes"
)

// Document is a single identity-keyed record of a collection. Writes replace
// the whole row, there is at most one row per (collection, id).
type Document struct {
	Collection string         `gorm:"primaryKey;type:text;column:collection"`
	ID         string         `gorm:"primaryKey;type:text;column:id"`
	Source     datatypes.JSON `gorm:"not null;column:source"`

	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (Document) TableName() string { return "index_documents" }
