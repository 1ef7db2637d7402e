package models

// ActivityLog records a family-room action for the activity feed.
// Best-effort: writing an entry never fails the triggering operation.
type ActivityLog struct {
	Base
	FamilyID   string `gorm:"type:uuid;index" json:"family_id"`
	UserID     string `gorm:"type:uuid;not null" json:"user_id"`
	Action     string `gorm:"not null" json:"action"`
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`
	Details    string `gorm:"type:text" json:"details"`
}
