package models

import (
	"time"

	"kindred/internal/uuid"

	"gorm.io/gorm"
)

// Base contains common columns for all tables. Family-room rows are
// hard-deleted (removal, leave, cascade delete), so there is no
// soft-delete column.
type Base struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate hook generates a UUIDv7 for new records
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New()
	}
	return nil
}
