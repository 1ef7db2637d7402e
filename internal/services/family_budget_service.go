package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "kindred/internal/errors"
	"kindred/internal/models"
	"kindred/internal/realtime"
)

// familyBudgetService handles shared family budgets. Writes require
// view_edit permission; reads only require accepted membership. All
// guards run inside the transaction and events go out after commit.
type familyBudgetService struct {
	db       *gorm.DB
	notifier Notifier
	activity ActivityServicer
}

// NewFamilyBudgetService creates a new FamilyBudgetServicer.
func NewFamilyBudgetService(db *gorm.DB, notifier Notifier, activity ActivityServicer) FamilyBudgetServicer {
	return &familyBudgetService{db: db, notifier: notifier, activity: activity}
}

// CreateBudget creates a shared budget envelope for a category.
func (s *familyBudgetService) CreateBudget(actorID, familyID, category string, limitAmount int64, period models.BudgetPeriod) (*models.FamilyBudget, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category is required")
	}
	if limitAmount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "limit amount must be positive")
	}

	var budget *models.FamilyBudget
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := editorMember(tx, familyID, actorID); err != nil {
			return err
		}

		budget = &models.FamilyBudget{
			FamilyID:    familyID,
			CreatedByID: actorID,
			Category:    category,
			LimitAmount: limitAmount,
			Period:      period,
		}
		if err := tx.Create(budget).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.BroadcastToFamily(familyID, realtime.Event{
		Type:    realtime.EventBudgetCreated,
		Payload: map[string]any{"budget_id": budget.ID},
	})
	s.activity.Log(familyID, actorID, "budget.created", "budget", budget.ID,
		map[string]any{"category": category})
	return budget, nil
}

// GetBudgets returns all budgets for the family, newest first.
func (s *familyBudgetService) GetBudgets(actorID, familyID string) ([]models.FamilyBudget, error) {
	if _, err := acceptedMember(s.db, familyID, actorID); err != nil {
		return nil, err
	}

	var budgets []models.FamilyBudget
	err := s.db.Where("family_id = ?", familyID).
		Order("created_at DESC").
		Find(&budgets).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return budgets, nil
}

// UpdateBudget applies a partial update to a budget.
func (s *familyBudgetService) UpdateBudget(actorID, familyID, budgetID string, category string, limitAmount *int64, period *models.BudgetPeriod, spentAmount *int64) (*models.FamilyBudget, error) {
	if limitAmount != nil && *limitAmount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "limit amount must be positive")
	}
	if spentAmount != nil && *spentAmount < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "spent amount cannot be negative")
	}

	var budget models.FamilyBudget
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := editorMember(tx, familyID, actorID); err != nil {
			return err
		}
		if err := loadBudget(tx, familyID, budgetID, &budget); err != nil {
			return err
		}

		updates := make(map[string]interface{})
		if category != "" {
			updates["category"] = strings.TrimSpace(category)
		}
		if limitAmount != nil {
			updates["limit_amount"] = *limitAmount
		}
		if period != nil {
			updates["period"] = *period
		}
		if spentAmount != nil {
			updates["spent_amount"] = *spentAmount
		}

		if len(updates) > 0 {
			if err := tx.Model(&budget).Updates(updates).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.BroadcastToFamily(familyID, realtime.Event{
		Type:    realtime.EventBudgetUpdated,
		Payload: map[string]any{"budget_id": budget.ID},
	})
	return &budget, nil
}

// DeleteBudget hard-deletes a budget.
func (s *familyBudgetService) DeleteBudget(actorID, familyID, budgetID string) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := editorMember(tx, familyID, actorID); err != nil {
			return err
		}

		res := tx.Where("id = ? AND family_id = ?", budgetID, familyID).Delete(&models.FamilyBudget{})
		if res.Error != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrBudgetNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.notifier.BroadcastToFamily(familyID, realtime.Event{
		Type:    realtime.EventBudgetDeleted,
		Payload: map[string]any{"budget_id": budgetID},
	})
	s.activity.Log(familyID, actorID, "budget.deleted", "budget", budgetID, nil)
	return nil
}

// loadBudget fetches a budget scoped to its family.
func loadBudget(tx *gorm.DB, familyID, budgetID string, out *models.FamilyBudget) error {
	err := tx.Where("id = ? AND family_id = ?", budgetID, familyID).First(out).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrBudgetNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
