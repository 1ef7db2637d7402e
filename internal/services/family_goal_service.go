package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "kindred/internal/errors"
	"kindred/internal/models"
	"kindred/internal/realtime"
)

// familyGoalService handles shared goals and their append-only
// contribution ledger. The goal's current amount is never incremented
// in place: every contribution appends a ledger row and recomputes the
// total as a SQL sum in the same transaction, so concurrent
// contributions can never lose an update.
type familyGoalService struct {
	db       *gorm.DB
	notifier Notifier
	activity ActivityServicer
}

// NewFamilyGoalService creates a new FamilyGoalServicer.
func NewFamilyGoalService(db *gorm.DB, notifier Notifier, activity ActivityServicer) FamilyGoalServicer {
	return &familyGoalService{db: db, notifier: notifier, activity: activity}
}

// CreateGoal creates a shared savings goal.
func (s *familyGoalService) CreateGoal(actorID, familyID, title string, targetAmount int64, deadline time.Time, category string) (*models.FamilyGoal, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "title is required")
	}
	if targetAmount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "target amount must be positive")
	}

	var goal *models.FamilyGoal
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := editorMember(tx, familyID, actorID); err != nil {
			return err
		}

		goal = &models.FamilyGoal{
			FamilyID:     familyID,
			CreatedByID:  actorID,
			Title:        title,
			TargetAmount: targetAmount,
			Deadline:     deadline,
			Category:     category,
		}
		if err := tx.Create(goal).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.BroadcastToFamily(familyID, realtime.Event{
		Type:    realtime.EventGoalCreated,
		Payload: map[string]any{"goal_id": goal.ID},
	})
	s.activity.Log(familyID, actorID, "goal.created", "goal", goal.ID,
		map[string]any{"title": title})
	return goal, nil
}

// GetGoals returns all goals for the family with their contributions,
// newest goal first.
func (s *familyGoalService) GetGoals(actorID, familyID string) ([]models.FamilyGoal, error) {
	if _, err := acceptedMember(s.db, familyID, actorID); err != nil {
		return nil, err
	}

	var goals []models.FamilyGoal
	err := s.db.Where("family_id = ?", familyID).
		Preload("Contributions", func(db *gorm.DB) *gorm.DB {
			return db.Order("goal_contributions.created_at DESC")
		}).
		Preload("Contributions.User").
		Order("created_at DESC").
		Find(&goals).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return goals, nil
}

// UpdateGoal applies a partial update to a goal's descriptive fields.
// The current amount is derived from the ledger and cannot be set here.
func (s *familyGoalService) UpdateGoal(actorID, familyID, goalID string, title string, targetAmount *int64, deadline *time.Time, category string) (*models.FamilyGoal, error) {
	if targetAmount != nil && *targetAmount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "target amount must be positive")
	}

	var goal models.FamilyGoal
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := editorMember(tx, familyID, actorID); err != nil {
			return err
		}
		if err := loadGoal(tx, familyID, goalID, &goal); err != nil {
			return err
		}

		updates := make(map[string]interface{})
		if title != "" {
			updates["title"] = strings.TrimSpace(title)
		}
		if targetAmount != nil {
			updates["target_amount"] = *targetAmount
		}
		if deadline != nil {
			updates["deadline"] = *deadline
		}
		if category != "" {
			updates["category"] = category
		}

		if len(updates) > 0 {
			if err := tx.Model(&goal).Updates(updates).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.BroadcastToFamily(familyID, realtime.Event{
		Type:    realtime.EventGoalUpdated,
		Payload: map[string]any{"goal_id": goal.ID},
	})
	return &goal, nil
}

// DeleteGoal hard-deletes a goal and its contribution ledger.
func (s *familyGoalService) DeleteGoal(actorID, familyID, goalID string) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := editorMember(tx, familyID, actorID); err != nil {
			return err
		}

		var goal models.FamilyGoal
		if err := loadGoal(tx, familyID, goalID, &goal); err != nil {
			return err
		}

		if err := tx.Where("goal_id = ?", goalID).Delete(&models.GoalContribution{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(&models.FamilyGoal{}, "id = ?", goalID).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.notifier.BroadcastToFamily(familyID, realtime.Event{
		Type:    realtime.EventGoalDeleted,
		Payload: map[string]any{"goal_id": goalID},
	})
	s.activity.Log(familyID, actorID, "goal.deleted", "goal", goalID, nil)
	return nil
}

// Contribute appends a ledger entry and recomputes the goal's current
// amount from the ledger, atomically. Any accepted member with
// view_edit permission may contribute; contributions cannot be edited
// or deleted afterwards.
func (s *familyGoalService) Contribute(actorID, familyID, goalID string, amount int64) (*models.FamilyGoal, *models.GoalContribution, error) {
	if amount <= 0 {
		return nil, nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "contribution amount must be positive")
	}

	var goal models.FamilyGoal
	var contribution *models.GoalContribution
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := editorMember(tx, familyID, actorID); err != nil {
			return err
		}
		if err := loadGoal(tx, familyID, goalID, &goal); err != nil {
			return err
		}

		contribution = &models.GoalContribution{
			GoalID: goalID,
			UserID: actorID,
			Amount: amount,
		}
		if err := tx.Create(contribution).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		// Recompute rather than increment, so N concurrent
		// contributions always land on the exact ledger sum.
		err := tx.Model(&models.FamilyGoal{}).
			Where("id = ?", goalID).
			Update("current_amount", gorm.Expr(
				"(SELECT COALESCE(SUM(amount), 0) FROM goal_contributions WHERE goal_id = ?)", goalID)).
			Error
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return loadGoal(tx, familyID, goalID, &goal)
	})
	if err != nil {
		return nil, nil, err
	}

	s.notifier.BroadcastToFamily(familyID, realtime.Event{
		Type: realtime.EventGoalContribution,
		Payload: map[string]any{
			"goal_id":         goal.ID,
			"contribution_id": contribution.ID,
			"user_id":         actorID,
			"amount":          amount,
			"current_amount":  goal.CurrentAmount,
		},
	})
	s.activity.Log(familyID, actorID, "goal.contributed", "goal", goal.ID,
		map[string]any{"amount": amount})
	return &goal, contribution, nil
}

// loadGoal fetches a goal scoped to its family.
func loadGoal(tx *gorm.DB, familyID, goalID string, out *models.FamilyGoal) error {
	err := tx.Where("id = ? AND family_id = ?", goalID, familyID).First(out).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrGoalNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
