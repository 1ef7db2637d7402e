package services

import (
	"sort"

	"gorm.io/gorm"

	apperrors "kindred/internal/errors"
	"kindred/internal/models"
)

// transactionPreviewLimit caps how many transactions one member
// exposes in the family view.
const transactionPreviewLimit = 50

// familyDataService is the read-only aggregation engine. It composes
// members' personal transactions into family views, filtered by each
// member's transaction-sharing flag at read time. Nothing is copied or
// cached: flipping the flag off makes past and future transactions
// invisible on the very next read.
type familyDataService struct {
	db *gorm.DB
}

// NewFamilyDataService creates a new FamilyDataServicer.
func NewFamilyDataService(db *gorm.DB) FamilyDataServicer {
	return &familyDataService{db: db}
}

// GetFamilyTransactions returns the per-member transaction view. Every
// accepted member appears with identity and sharing state; transaction
// lists are populated only for members who share, plus the requester's
// own slot regardless of their flag.
func (s *familyDataService) GetFamilyTransactions(requesterID, familyID string) (*FamilyTransactions, error) {
	members, err := s.acceptedMembers(requesterID, familyID)
	if err != nil {
		return nil, err
	}

	result := &FamilyTransactions{
		Members:      make([]MemberTransactions, 0, len(members)),
		TotalMembers: len(members),
	}

	for _, m := range members {
		slot := MemberTransactions{
			Member: MemberInfo{
				ID:    m.UserID,
				Name:  m.User.Name,
				Email: m.User.Email,
			},
			Permission:            m.Permission,
			IsSharingTransactions: m.IsSharingTransactions,
			Transactions:          []models.Transaction{},
		}

		if m.IsSharingTransactions || m.UserID == requesterID {
			var txns []models.Transaction
			err := s.db.Where("user_id = ?", m.UserID).
				Order("date DESC").
				Limit(transactionPreviewLimit).
				Find(&txns).Error
			if err != nil {
				return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			slot.Transactions = txns
		}
		slot.Count = len(slot.Transactions)

		result.Members = append(result.Members, slot)
	}

	return result, nil
}

// GetFamilySummary computes the shared dashboard: income/expense
// totals and the category breakdown from sharing members (plus the
// requester), budget totals, and the per-goal contribution split.
// Contributions are an explicit voluntary act, so the goal split
// includes every member regardless of the sharing flag.
func (s *familyDataService) GetFamilySummary(requesterID, familyID string) (*FamilySummary, error) {
	members, err := s.acceptedMembers(requesterID, familyID)
	if err != nil {
		return nil, err
	}

	names := make(map[string]string, len(members))
	visibleIDs := make([]string, 0, len(members))
	for _, m := range members {
		names[m.UserID] = m.User.Name
		if m.IsSharingTransactions || m.UserID == requesterID {
			visibleIDs = append(visibleIDs, m.UserID)
		}
	}

	summary := &FamilySummary{
		CategoryBreakdown: []CategorySpending{},
		GoalContributions: []GoalBreakdown{},
	}

	if len(visibleIDs) > 0 {
		var rows []struct {
			UserID   string
			Type     models.TransactionType
			Category string
			Total    int64
		}
		err := s.db.Model(&models.Transaction{}).
			Select("user_id, type, category, SUM(amount) AS total").
			Where("user_id IN ?", visibleIDs).
			Group("user_id, type, category").
			Scan(&rows).Error
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		byCategory := make(map[string]*CategorySpending)
		for _, r := range rows {
			switch r.Type {
			case models.TransactionTypeIncome:
				summary.Totals.TotalIncome += r.Total
			case models.TransactionTypeExpense:
				summary.Totals.TotalExpenses += r.Total

				cs, ok := byCategory[r.Category]
				if !ok {
					cs = &CategorySpending{Category: r.Category}
					byCategory[r.Category] = cs
				}
				cs.Amount += r.Total
				cs.MemberBreakdown = append(cs.MemberBreakdown, MemberAmount{
					MemberID:   r.UserID,
					MemberName: names[r.UserID],
					Amount:     r.Total,
				})
			}
		}

		for _, cs := range byCategory {
			summary.CategoryBreakdown = append(summary.CategoryBreakdown, *cs)
		}
		sort.Slice(summary.CategoryBreakdown, func(i, j int) bool {
			return summary.CategoryBreakdown[i].Amount > summary.CategoryBreakdown[j].Amount
		})
	}

	summary.Totals.NetIncome = summary.Totals.TotalIncome - summary.Totals.TotalExpenses
	if summary.Totals.TotalIncome > 0 {
		summary.Totals.SavingsRate = float64(summary.Totals.NetIncome) / float64(summary.Totals.TotalIncome) * 100
	}

	var budgets []models.FamilyBudget
	if err := s.db.Where("family_id = ?", familyID).Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for _, b := range budgets {
		summary.Totals.TotalBudget += b.LimitAmount
		summary.Totals.TotalSpent += b.SpentAmount
	}
	summary.Totals.BudgetRemaining = summary.Totals.TotalBudget - summary.Totals.TotalSpent

	var goals []models.FamilyGoal
	err = s.db.Where("family_id = ?", familyID).
		Preload("Contributions").
		Order("created_at DESC").
		Find(&goals).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	for _, g := range goals {
		if !g.Completed() {
			summary.Totals.ActiveGoals++
		}

		breakdown := GoalBreakdown{
			GoalID:        g.ID,
			Title:         g.Title,
			TargetAmount:  g.TargetAmount,
			CurrentAmount: g.CurrentAmount,
			Contributions: []MemberAmount{},
		}
		perMember := make(map[string]int64)
		order := make([]string, 0)
		for _, c := range g.Contributions {
			if _, seen := perMember[c.UserID]; !seen {
				order = append(order, c.UserID)
			}
			perMember[c.UserID] += c.Amount
		}
		for _, userID := range order {
			breakdown.Contributions = append(breakdown.Contributions, MemberAmount{
				MemberID:   userID,
				MemberName: names[userID],
				Amount:     perMember[userID],
			})
		}
		summary.GoalContributions = append(summary.GoalContributions, breakdown)
	}

	return summary, nil
}

// acceptedMembers checks the requester's membership and returns every
// accepted member of the family with users preloaded.
func (s *familyDataService) acceptedMembers(requesterID, familyID string) ([]models.FamilyMember, error) {
	if _, err := acceptedMember(s.db, familyID, requesterID); err != nil {
		return nil, err
	}

	var members []models.FamilyMember
	err := s.db.Where("family_id = ? AND status = ?", familyID, models.StatusAccepted).
		Preload("User").
		Order("created_at ASC").
		Find(&members).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return members, nil
}
