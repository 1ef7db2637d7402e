package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "kindred/internal/errors"
	"kindred/internal/logger"
	"kindred/internal/models"
	"kindred/internal/realtime"
	"kindred/internal/roomcode"
)

// familyService implements the membership store and its state machine.
// Every mutation runs as a single transaction with guard preconditions
// re-checked inside it, and notifies the broadcaster strictly after
// commit.
type familyService struct {
	db       *gorm.DB
	notifier Notifier
	activity ActivityServicer
}

// NewFamilyService creates a new FamilyServicer.
func NewFamilyService(db *gorm.DB, notifier Notifier, activity ActivityServicer) FamilyServicer {
	return &familyService{db: db, notifier: notifier, activity: activity}
}

// CreateFamily creates a family and its creator membership atomically.
// The creator is always ACCEPTED with the creator role and view_edit
// permission.
func (s *familyService) CreateFamily(userID, name string) (*models.Family, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "family name is required")
	}

	var family *models.Family
	err := s.db.Transaction(func(tx *gorm.DB) error {
		code, err := roomcode.Generate(tx)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		family = &models.Family{
			Name:      name,
			RoomCode:  code,
			CreatorID: userID,
		}
		if err := tx.Create(family).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		member := &models.FamilyMember{
			FamilyID:            family.ID,
			UserID:              userID,
			Role:                models.FamilyRoleCreator,
			Permission:          models.PermissionViewEdit,
			RequestedPermission: models.PermissionViewEdit,
			Status:              models.StatusAccepted,
		}
		if err := tx.Create(member).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		family.Members = []models.FamilyMember{*member}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.activity.Log(family.ID, userID, "family.created", "family", family.ID,
		map[string]any{"name": name})
	logger.Get().Infow("family created", "family_id", family.ID, "creator_id", userID)
	return family, nil
}

// JoinFamily records a PENDING join request for the family behind the
// room code. Two users joining the same room code concurrently both
// succeed; they never share a mutable row. A rejected request is
// terminal and never reused, so a re-request inserts a fresh row.
func (s *familyService) JoinFamily(userID, code string, desired models.FamilyPermission) (*models.FamilyMember, error) {
	code = roomcode.Normalize(code)
	if code == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "room code is required")
	}

	var member *models.FamilyMember
	var family models.Family
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("room_code = ?", code).First(&family).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrRoomCodeNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		// At most one non-terminal membership per (family, user).
		var existing models.FamilyMember
		err := tx.Where("family_id = ? AND user_id = ? AND status IN ?",
			family.ID, userID, []models.MemberStatus{models.StatusPending, models.StatusAccepted}).
			First(&existing).Error
		switch {
		case err == nil:
			if existing.Status == models.StatusAccepted {
				return apperrors.ErrAlreadyMember
			}
			return apperrors.ErrRequestPending
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		member = &models.FamilyMember{
			FamilyID:            family.ID,
			UserID:              userID,
			Role:                models.FamilyRoleMember,
			Permission:          desired, // placeholder until the creator grants one
			RequestedPermission: desired,
			Status:              models.StatusPending,
		}
		if err := tx.Create(member).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.NotifyUser(family.CreatorID, realtime.Event{
		Type:     realtime.EventJoinRequest,
		FamilyID: family.ID,
		Payload:  map[string]any{"member_id": member.ID, "user_id": userID},
	})
	s.activity.Log(family.ID, userID, "family.join_requested", "member", member.ID, nil)
	return member, nil
}

// AcceptRequest resolves a PENDING request to ACCEPTED with the
// permission the creator grants, which overrides whatever the requester
// asked for. Resolution is a compare-and-swap on status: of two racing
// accept/reject calls, only the first to observe PENDING wins.
func (s *familyService) AcceptRequest(actorID, memberID string, granted models.FamilyPermission) (*models.FamilyMember, error) {
	var member models.FamilyMember
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := loadMember(tx, memberID, &member); err != nil {
			return err
		}
		if _, err := creatorMember(tx, member.FamilyID, actorID); err != nil {
			return err
		}

		res := tx.Model(&models.FamilyMember{}).
			Where("id = ? AND status = ?", memberID, models.StatusPending).
			Updates(map[string]any{
				"status":                  models.StatusAccepted,
				"permission":              granted,
				"is_sharing_transactions": false,
			})
		if res.Error != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrRequestResolved
		}
		return loadMember(tx, memberID, &member)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.NotifyUser(member.UserID, realtime.Event{
		Type:     realtime.EventRequestAccepted,
		FamilyID: member.FamilyID,
		Payload:  map[string]any{"member_id": member.ID, "permission": member.Permission},
	})
	s.notifier.BroadcastToFamily(member.FamilyID, realtime.Event{
		Type:    realtime.EventMemberJoined,
		Payload: map[string]any{"member_id": member.ID, "user_id": member.UserID},
	})
	s.activity.Log(member.FamilyID, actorID, "family.request_accepted", "member", member.ID,
		map[string]any{"permission": member.Permission})
	return &member, nil
}

// RejectRequest resolves a PENDING request to REJECTED. Only the
// requester is notified; the room never learns about rejected requests.
func (s *familyService) RejectRequest(actorID, memberID string) (*models.FamilyMember, error) {
	var member models.FamilyMember
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := loadMember(tx, memberID, &member); err != nil {
			return err
		}
		if _, err := creatorMember(tx, member.FamilyID, actorID); err != nil {
			return err
		}

		res := tx.Model(&models.FamilyMember{}).
			Where("id = ? AND status = ?", memberID, models.StatusPending).
			Update("status", models.StatusRejected)
		if res.Error != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrRequestResolved
		}
		return loadMember(tx, memberID, &member)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.NotifyUser(member.UserID, realtime.Event{
		Type:     realtime.EventRequestRejected,
		FamilyID: member.FamilyID,
		Payload:  map[string]any{"member_id": member.ID},
	})
	return &member, nil
}

// UpdateMemberPermissions changes an accepted member's permission
// level. Creator only; the creator's own membership is immutable.
func (s *familyService) UpdateMemberPermissions(actorID, memberID string, permission models.FamilyPermission) (*models.FamilyMember, error) {
	var member models.FamilyMember
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := loadMember(tx, memberID, &member); err != nil {
			return err
		}
		if _, err := creatorMember(tx, member.FamilyID, actorID); err != nil {
			return err
		}
		if member.IsCreator() {
			return apperrors.ErrCreatorImmutable
		}
		if member.Status != models.StatusAccepted {
			return apperrors.WithMessage(apperrors.ErrForbidden, "member has not been accepted")
		}

		if err := tx.Model(&member).Update("permission", permission).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.NotifyUser(member.UserID, realtime.Event{
		Type:     realtime.EventPermissionChanged,
		FamilyID: member.FamilyID,
		Payload:  map[string]any{"permission": permission},
	})
	s.notifier.BroadcastToFamily(member.FamilyID, realtime.Event{
		Type:    realtime.EventMemberUpdated,
		Payload: map[string]any{"member_id": member.ID},
	})
	return &member, nil
}

// RemoveMember hard-deletes a membership. Creator only; the creator
// cannot be removed. The ex-member keeps their connections but loses
// room channel access immediately.
func (s *familyService) RemoveMember(actorID, memberID string) error {
	var member models.FamilyMember
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := loadMember(tx, memberID, &member); err != nil {
			return err
		}
		if _, err := creatorMember(tx, member.FamilyID, actorID); err != nil {
			return err
		}
		if member.IsCreator() {
			return apperrors.ErrCreatorImmutable
		}

		if err := tx.Delete(&models.FamilyMember{}, "id = ?", memberID).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.notifier.NotifyUser(member.UserID, realtime.Event{
		Type:     realtime.EventRemoved,
		FamilyID: member.FamilyID,
		Payload:  map[string]any{"member_id": member.ID},
	})
	s.notifier.BroadcastToFamily(member.FamilyID, realtime.Event{
		Type:    realtime.EventMemberLeft,
		Payload: map[string]any{"user_id": member.UserID},
	})
	s.notifier.EvictUserFromFamily(member.UserID, member.FamilyID)
	s.activity.Log(member.FamilyID, actorID, "family.member_removed", "member", member.ID, nil)
	return nil
}

// LeaveFamily hard-deletes the actor's own membership. The creator
// cannot leave; dissolving the family requires DeleteFamily. Enforced
// server-side rather than relying on the client hiding the action.
func (s *familyService) LeaveFamily(actorID, familyID string) error {
	var member *models.FamilyMember
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		member, err = acceptedMember(tx, familyID, actorID)
		if err != nil {
			return err
		}
		if member.IsCreator() {
			return apperrors.ErrCreatorLeave
		}

		if err := tx.Delete(&models.FamilyMember{}, "id = ?", member.ID).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.notifier.BroadcastToFamily(familyID, realtime.Event{
		Type:    realtime.EventMemberLeft,
		Payload: map[string]any{"user_id": actorID},
	})
	s.notifier.EvictUserFromFamily(actorID, familyID)
	s.activity.Log(familyID, actorID, "family.member_left", "member", member.ID, nil)
	return nil
}

// DeleteFamily cascades through contributions, goals, budgets, and
// memberships before removing the family itself, all-or-nothing. The
// terminal deleted event is broadcast before the channel is torn down.
func (s *familyService) DeleteFamily(actorID, familyID string) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := creatorMember(tx, familyID, actorID); err != nil {
			return err
		}

		goalIDs := tx.Model(&models.FamilyGoal{}).Select("id").Where("family_id = ?", familyID)
		if err := tx.Where("goal_id IN (?)", goalIDs).Delete(&models.GoalContribution{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Where("family_id = ?", familyID).Delete(&models.FamilyGoal{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Where("family_id = ?", familyID).Delete(&models.FamilyBudget{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Where("family_id = ?", familyID).Delete(&models.FamilyMember{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Where("family_id = ?", familyID).Delete(&models.ActivityLog{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		res := tx.Delete(&models.Family{}, "id = ?", familyID)
		if res.Error != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrFamilyNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.notifier.BroadcastToFamily(familyID, realtime.Event{
		Type:    realtime.EventDeleted,
		Payload: map[string]any{"family_id": familyID},
	})
	s.notifier.CloseFamily(familyID)
	logger.Get().Infow("family deleted", "family_id", familyID, "actor_id", actorID)
	return nil
}

// SetTransactionSharing toggles the actor's own sharing flag. Any
// accepted member may do this for themself regardless of permission
// level.
func (s *familyService) SetTransactionSharing(actorID, familyID string, sharing bool) (*models.FamilyMember, error) {
	var member *models.FamilyMember
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		member, err = acceptedMember(tx, familyID, actorID)
		if err != nil {
			return err
		}
		if err := tx.Model(member).Update("is_sharing_transactions", sharing).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.BroadcastToFamily(familyID, realtime.Event{
		Type:    realtime.EventMemberUpdated,
		Payload: map[string]any{"member_id": member.ID},
	})
	return member, nil
}

// GetMyFamilies returns every family the user is an accepted member of,
// with accepted members preloaded.
func (s *familyService) GetMyFamilies(userID string) ([]models.Family, error) {
	var memberships []models.FamilyMember
	err := s.db.Where("user_id = ? AND status = ?", userID, models.StatusAccepted).
		Order("created_at DESC").
		Find(&memberships).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	familyIDs := make([]string, 0, len(memberships))
	for _, m := range memberships {
		familyIDs = append(familyIDs, m.FamilyID)
	}
	if len(familyIDs) == 0 {
		return []models.Family{}, nil
	}

	var families []models.Family
	err = s.db.Where("id IN ?", familyIDs).
		Preload("Creator").
		Preload("Members", "status = ?", models.StatusAccepted).
		Preload("Members.User").
		Find(&families).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return families, nil
}

// GetPendingRequests returns pending join requests across every family
// the user created.
func (s *familyService) GetPendingRequests(userID string) ([]models.FamilyMember, error) {
	var requests []models.FamilyMember
	err := s.db.
		Joins("JOIN families ON families.id = family_members.family_id").
		Where("families.creator_id = ? AND family_members.status = ?", userID, models.StatusPending).
		Preload("User").
		Preload("Family").
		Find(&requests).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return requests, nil
}

// GetMyJoinRequests returns the user's own join requests in every
// state, so the client can show pending and rejected attempts.
func (s *familyService) GetMyJoinRequests(userID string) ([]models.FamilyMember, error) {
	var requests []models.FamilyMember
	err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Preload("Family").
		Find(&requests).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return requests, nil
}

// IsAcceptedMember reports whether the user holds an accepted
// membership in the family. Used by the realtime hub to authorize
// channel joins.
func (s *familyService) IsAcceptedMember(userID, familyID string) bool {
	var count int64
	err := s.db.Model(&models.FamilyMember{}).
		Where("family_id = ? AND user_id = ? AND status = ?", familyID, userID, models.StatusAccepted).
		Count(&count).Error
	if err != nil {
		logger.Get().Errorw("membership check failed", "error", err, "family_id", familyID, "user_id", userID)
		return false
	}
	return count > 0
}

// loadMember fetches a membership row by id.
func loadMember(tx *gorm.DB, memberID string, out *models.FamilyMember) error {
	if err := tx.Where("id = ?", memberID).First(out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrMemberNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
