package services

import (
	"encoding/json"

	"gorm.io/gorm"

	apperrors "kindred/internal/errors"
	"kindred/internal/logger"
	"kindred/internal/models"
)

// activityService records the family activity feed.
type activityService struct {
	db *gorm.DB
}

// NewActivityService creates a new ActivityServicer.
func NewActivityService(db *gorm.DB) ActivityServicer {
	return &activityService{db: db}
}

// Log records an activity entry. Errors are logged but never propagate
// to avoid disrupting the main operation.
func (s *activityService) Log(familyID, userID, action, entityType, entityID string, details map[string]any) {
	var detailsJSON string
	if details != nil {
		data, err := json.Marshal(details)
		if err != nil {
			logger.Get().Errorw("failed to marshal activity details", "error", err, "action", action)
			detailsJSON = "{}"
		} else {
			detailsJSON = string(data)
		}
	}

	entry := &models.ActivityLog{
		FamilyID:   familyID,
		UserID:     userID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    detailsJSON,
	}

	if err := s.db.Create(entry).Error; err != nil {
		logger.Get().Errorw("failed to create activity log entry",
			"error", err,
			"family_id", familyID,
			"user_id", userID,
			"action", action,
		)
	}
}

// GetFamilyActivity returns the most recent activity entries for a
// family. Any accepted member may read the feed.
func (s *activityService) GetFamilyActivity(actorID, familyID string, limit int) ([]models.ActivityLog, error) {
	if _, err := acceptedMember(s.db, familyID, actorID); err != nil {
		return nil, err
	}

	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var entries []models.ActivityLog
	err := s.db.Where("family_id = ?", familyID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return entries, nil
}
