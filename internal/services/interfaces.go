package services

import (
	"time"

	"kindred/internal/models"
	"kindred/internal/pagination"
	"kindred/internal/realtime"
)

// Notifier is the post-commit event sink. Services call it strictly
// after their transaction commits, so a rolled-back write is never
// observed by other clients. The realtime hub implements it.
type Notifier interface {
	BroadcastToFamily(familyID string, event realtime.Event)
	NotifyUser(userID string, event realtime.Event)
	EvictUserFromFamily(userID, familyID string)
	CloseFamily(familyID string)
}

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, name string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	AttemptLogin(email, password string) (*models.User, error)
}

// FamilyServicer defines the contract for the family membership
// lifecycle: create, join, accept/reject, permission change, removal,
// leave, deletion, and the transaction-sharing toggle.
type FamilyServicer interface {
	CreateFamily(userID, name string) (*models.Family, error)
	JoinFamily(userID, roomCode string, desired models.FamilyPermission) (*models.FamilyMember, error)
	AcceptRequest(actorID, memberID string, granted models.FamilyPermission) (*models.FamilyMember, error)
	RejectRequest(actorID, memberID string) (*models.FamilyMember, error)
	UpdateMemberPermissions(actorID, memberID string, permission models.FamilyPermission) (*models.FamilyMember, error)
	RemoveMember(actorID, memberID string) error
	LeaveFamily(actorID, familyID string) error
	DeleteFamily(actorID, familyID string) error
	SetTransactionSharing(actorID, familyID string, sharing bool) (*models.FamilyMember, error)
	GetMyFamilies(userID string) ([]models.Family, error)
	GetPendingRequests(userID string) ([]models.FamilyMember, error)
	GetMyJoinRequests(userID string) ([]models.FamilyMember, error)
	IsAcceptedMember(userID, familyID string) bool
}

// FamilyBudgetServicer defines the contract for shared family budgets.
type FamilyBudgetServicer interface {
	CreateBudget(actorID, familyID, category string, limitAmount int64, period models.BudgetPeriod) (*models.FamilyBudget, error)
	GetBudgets(actorID, familyID string) ([]models.FamilyBudget, error)
	UpdateBudget(actorID, familyID, budgetID string, category string, limitAmount *int64, period *models.BudgetPeriod, spentAmount *int64) (*models.FamilyBudget, error)
	DeleteBudget(actorID, familyID, budgetID string) error
}

// FamilyGoalServicer defines the contract for shared goals and the
// append-only contribution ledger.
type FamilyGoalServicer interface {
	CreateGoal(actorID, familyID, title string, targetAmount int64, deadline time.Time, category string) (*models.FamilyGoal, error)
	GetGoals(actorID, familyID string) ([]models.FamilyGoal, error)
	UpdateGoal(actorID, familyID, goalID string, title string, targetAmount *int64, deadline *time.Time, category string) (*models.FamilyGoal, error)
	DeleteGoal(actorID, familyID, goalID string) error
	Contribute(actorID, familyID, goalID string, amount int64) (*models.FamilyGoal, *models.GoalContribution, error)
}

// MemberInfo is the public identity slice of a user exposed to other
// family members.
type MemberInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// MemberTransactions is one member's slot in the family transaction
// view. A non-sharing member still appears, with identity and sharing
// state but an empty transaction list, so the UI can show "not sharing"
// instead of silently omitting them.
type MemberTransactions struct {
	Member                MemberInfo              `json:"member"`
	Permission            models.FamilyPermission `json:"permission"`
	IsSharingTransactions bool                    `json:"is_sharing_transactions"`
	Transactions          []models.Transaction    `json:"transactions"`
	Count                 int                     `json:"count"`
}

// FamilyTransactions is the cross-member transaction view.
type FamilyTransactions struct {
	Members      []MemberTransactions `json:"member_transactions"`
	TotalMembers int                  `json:"total_members"`
}

// MemberAmount attributes an amount to one member.
type MemberAmount struct {
	MemberID   string `json:"member_id"`
	MemberName string `json:"member_name"`
	Amount     int64  `json:"amount"`
}

// CategorySpending is one row of the per-category expense breakdown,
// with a per-member sub-split.
type CategorySpending struct {
	Category        string         `json:"category"`
	Amount          int64          `json:"amount"`
	MemberBreakdown []MemberAmount `json:"member_breakdown"`
}

// GoalBreakdown is the per-goal contribution split by member.
// Contributions are an explicit voluntary act, so they are reported
// for every member regardless of the transaction-sharing flag.
type GoalBreakdown struct {
	GoalID        string         `json:"goal_id"`
	Title         string         `json:"title"`
	TargetAmount  int64          `json:"target_amount"`
	CurrentAmount int64          `json:"current_amount"`
	Contributions []MemberAmount `json:"contributions"`
}

// SummaryTotals aggregates the shared financial picture. Only sharing
// members (plus the requester) contribute transaction-derived figures.
type SummaryTotals struct {
	TotalIncome     int64   `json:"total_income"`
	TotalExpenses   int64   `json:"total_expenses"`
	NetIncome       int64   `json:"net_income"`
	SavingsRate     float64 `json:"savings_rate"`
	TotalBudget     int64   `json:"total_budget"`
	TotalSpent      int64   `json:"total_spent"`
	BudgetRemaining int64   `json:"budget_remaining"`
	ActiveGoals     int     `json:"active_goals"`
}

// FamilySummary is the privacy-filtered family dashboard payload.
type FamilySummary struct {
	Totals            SummaryTotals      `json:"summary"`
	CategoryBreakdown []CategorySpending `json:"category_breakdown"`
	GoalContributions []GoalBreakdown    `json:"goal_contributions"`
}

// FamilyDataServicer defines the read-only sharing and aggregation
// engine.
type FamilyDataServicer interface {
	GetFamilyTransactions(requesterID, familyID string) (*FamilyTransactions, error)
	GetFamilySummary(requesterID, familyID string) (*FamilySummary, error)
}

// TransactionServicer defines the contract for personal transactions,
// the externally-owned data the aggregation engine composes.
type TransactionServicer interface {
	CreateTransaction(userID string, txType models.TransactionType, amount int64, category, description string, date time.Time) (*models.Transaction, error)
	GetUserTransactions(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error)
}

// ActivityServicer defines the contract for the family activity feed.
type ActivityServicer interface {
	Log(familyID, userID, action, entityType, entityID string, details map[string]any)
	GetFamilyActivity(actorID, familyID string, limit int) ([]models.ActivityLog, error)
}
