package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "kindred/internal/errors"
	"kindred/internal/models"
)

// The permission guard. Every mutating family operation calls one of
// these inside its transaction, so preconditions are re-checked against
// committed state rather than a possibly stale pre-transaction read.
// Guard failures happen before any write, leaving nothing to roll back
// and no event to suppress.

// acceptedMember loads the actor's ACCEPTED membership in the family.
func acceptedMember(tx *gorm.DB, familyID, userID string) (*models.FamilyMember, error) {
	var member models.FamilyMember
	err := tx.Where("family_id = ? AND user_id = ? AND status = ?",
		familyID, userID, models.StatusAccepted).First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFamilyMember
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &member, nil
}

// editorMember additionally requires view_edit permission.
func editorMember(tx *gorm.DB, familyID, userID string) (*models.FamilyMember, error) {
	member, err := acceptedMember(tx, familyID, userID)
	if err != nil {
		return nil, err
	}
	if member.Permission != models.PermissionViewEdit {
		return nil, apperrors.ErrViewOnly
	}
	return member, nil
}

// creatorMember additionally requires the creator role.
func creatorMember(tx *gorm.DB, familyID, userID string) (*models.FamilyMember, error) {
	member, err := acceptedMember(tx, familyID, userID)
	if err != nil {
		return nil, err
	}
	if member.Role != models.FamilyRoleCreator {
		return nil, apperrors.ErrCreatorOnly
	}
	return member, nil
}
