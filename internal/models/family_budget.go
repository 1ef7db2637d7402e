package models

// BudgetPeriod represents the period type for a family budget
type BudgetPeriod string

const (
	BudgetPeriodWeekly  BudgetPeriod = "weekly"
	BudgetPeriodMonthly BudgetPeriod = "monthly"
	BudgetPeriodYearly  BudgetPeriod = "yearly"
)

// BudgetStatus is the display status derived from spent vs limit.
type BudgetStatus string

const (
	BudgetStatusOK        BudgetStatus = "ok"
	BudgetStatusNearLimit BudgetStatus = "near-limit"
	BudgetStatusOver      BudgetStatus = "over"
)

// FamilyBudget is a budget owned by the family, not by an individual
// member. Unlike personal budgets there is no category-uniqueness
// constraint. Amounts are in cents.
type FamilyBudget struct {
	Base
	FamilyID    string       `gorm:"type:uuid;not null;index" json:"family_id"`
	CreatedByID string       `gorm:"type:uuid;not null" json:"created_by_id"`
	Category    string       `gorm:"not null" json:"category"`
	LimitAmount int64        `gorm:"not null" json:"limit_amount"`
	SpentAmount int64        `gorm:"not null;default:0" json:"spent_amount"`
	Period      BudgetPeriod `gorm:"not null" json:"period"`

	CreatedBy *User `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
}

// Status derives the display status from spent/limit. There is no
// stored status column.
func (b *FamilyBudget) Status() BudgetStatus {
	if b.LimitAmount <= 0 {
		return BudgetStatusOver
	}
	ratio := float64(b.SpentAmount) / float64(b.LimitAmount)
	switch {
	case ratio > 1.0:
		return BudgetStatusOver
	case ratio >= 0.8:
		return BudgetStatusNearLimit
	default:
		return BudgetStatusOK
	}
}
