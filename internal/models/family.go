package models

// Family represents a shared family room. The creator is fixed at
// creation time; the only way to dissolve a family is a cascading
// delete by its creator.
type Family struct {
	Base
	Name      string `gorm:"not null" json:"name"`
	RoomCode  string `gorm:"uniqueIndex;size:6;not null" json:"room_code"`
	CreatorID string `gorm:"type:uuid;not null" json:"creator_id"`

	// Relationships
	Creator *User          `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	Members []FamilyMember `gorm:"foreignKey:FamilyID" json:"members,omitempty"`
}
