package models

import (
	"math"
	"time"
)

// FamilyGoal is a savings goal owned by the family. CurrentAmount is
// always the sum of the goal's contributions, recomputed transactionally
// on every insert; it is never an independently mutated counter.
type FamilyGoal struct {
	Base
	FamilyID      string    `gorm:"type:uuid;not null;index" json:"family_id"`
	CreatedByID   string    `gorm:"type:uuid;not null" json:"created_by_id"`
	Title         string    `gorm:"not null" json:"title"`
	TargetAmount  int64     `gorm:"not null" json:"target_amount"`
	CurrentAmount int64     `gorm:"not null;default:0" json:"current_amount"`
	Deadline      time.Time `gorm:"not null" json:"deadline"`
	Category      string    `json:"category"`

	CreatedBy     *User              `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
	Contributions []GoalContribution `gorm:"foreignKey:GoalID" json:"contributions,omitempty"`
}

// Completed reports whether the goal has reached its target. Derived,
// never stored; contributions remain acceptable after completion.
func (g *FamilyGoal) Completed() bool {
	return g.CurrentAmount >= g.TargetAmount
}

// Progress returns completion as a percentage.
func (g *FamilyGoal) Progress() float64 {
	if g.TargetAmount <= 0 {
		return 0
	}
	return float64(g.CurrentAmount) / float64(g.TargetAmount) * 100
}

// DaysRemaining returns the number of days until the deadline, rounded
// up. Negative values mean the goal is overdue; the deadline is
// informational only and triggers no side effects.
func (g *FamilyGoal) DaysRemaining(now time.Time) int {
	return int(math.Ceil(g.Deadline.Sub(now).Hours() / 24))
}
