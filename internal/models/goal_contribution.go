package models

import (
	"time"

	"kindred/internal/uuid"

	"gorm.io/gorm"
)

// GoalContribution is one append-only ledger entry toward a family
// goal. Entries are individually attributed but collectively owned by
// the goal; they are never updated, only inserted or cascade-deleted
// with the family.
type GoalContribution struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	GoalID    string    `gorm:"type:uuid;not null;index" json:"goal_id"`
	UserID    string    `gorm:"type:uuid;not null;index" json:"user_id"`
	Amount    int64     `gorm:"not null" json:"amount"`
	CreatedAt time.Time `json:"created_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// BeforeCreate hook generates a UUIDv7 for new records
func (c *GoalContribution) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New()
	}
	return nil
}
