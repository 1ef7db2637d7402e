package models

// FamilyRole represents a member's role within a family
type FamilyRole string

const (
	FamilyRoleCreator FamilyRole = "creator"
	FamilyRoleMember  FamilyRole = "member"
)

// FamilyPermission is the closed two-tier permission level
type FamilyPermission string

const (
	PermissionViewOnly FamilyPermission = "view_only"
	PermissionViewEdit FamilyPermission = "view_edit"
)

// MemberStatus represents the lifecycle state of a membership row.
// Pending rows transition exactly once, to accepted or rejected, and
// are never reused; a re-request after rejection inserts a fresh row.
type MemberStatus string

const (
	StatusPending  MemberStatus = "pending"
	StatusAccepted MemberStatus = "accepted"
	StatusRejected MemberStatus = "rejected"
)

// FamilyMember is the per-user join record for one family.
// RequestedPermission carries what the user asked for when joining;
// Permission is what the creator actually granted.
type FamilyMember struct {
	Base
	FamilyID              string           `gorm:"type:uuid;not null;index" json:"family_id"`
	UserID                string           `gorm:"type:uuid;not null;index" json:"user_id"`
	Role                  FamilyRole       `gorm:"not null" json:"role"`
	Permission            FamilyPermission `gorm:"not null" json:"permission"`
	RequestedPermission   FamilyPermission `gorm:"not null" json:"requested_permission"`
	Status                MemberStatus     `gorm:"not null;index" json:"status"`
	IsSharingTransactions bool             `gorm:"default:false" json:"is_sharing_transactions"`

	// Relationships
	User   *User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Family *Family `gorm:"foreignKey:FamilyID" json:"family,omitempty"`
}

// CanEdit reports whether the member may mutate shared budgets and goals.
func (m *FamilyMember) CanEdit() bool {
	return m.Status == StatusAccepted && m.Permission == PermissionViewEdit
}

// IsCreator reports whether this membership carries the creator role.
func (m *FamilyMember) IsCreator() bool {
	return m.Role == FamilyRoleCreator
}
