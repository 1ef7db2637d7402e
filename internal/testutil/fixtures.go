package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"kindred/internal/models"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		Name:     fmt.Sprintf("Test User %d", nextID()),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestFamily creates a family with an accepted creator membership.
func CreateTestFamily(t *testing.T, db *gorm.DB, creatorID string) *models.Family {
	t.Helper()

	family := &models.Family{
		Name:      fmt.Sprintf("Test Family %d", nextID()),
		RoomCode:  fmt.Sprintf("TST%03d", nextID()%1000),
		CreatorID: creatorID,
	}
	if err := db.Create(family).Error; err != nil {
		t.Fatalf("failed to create test family: %v", err)
	}

	member := &models.FamilyMember{
		FamilyID:            family.ID,
		UserID:              creatorID,
		Role:                models.FamilyRoleCreator,
		Permission:          models.PermissionViewEdit,
		RequestedPermission: models.PermissionViewEdit,
		Status:              models.StatusAccepted,
	}
	if err := db.Create(member).Error; err != nil {
		t.Fatalf("failed to create creator membership: %v", err)
	}
	return family
}

// CreateTestMember creates an accepted membership with the given permission.
func CreateTestMember(t *testing.T, db *gorm.DB, familyID, userID string, permission models.FamilyPermission) *models.FamilyMember {
	t.Helper()

	member := &models.FamilyMember{
		FamilyID:            familyID,
		UserID:              userID,
		Role:                models.FamilyRoleMember,
		Permission:          permission,
		RequestedPermission: permission,
		Status:              models.StatusAccepted,
	}
	if err := db.Create(member).Error; err != nil {
		t.Fatalf("failed to create test member: %v", err)
	}
	return member
}

// CreateTestPendingMember creates a pending join request.
func CreateTestPendingMember(t *testing.T, db *gorm.DB, familyID, userID string) *models.FamilyMember {
	t.Helper()

	member := &models.FamilyMember{
		FamilyID:            familyID,
		UserID:              userID,
		Role:                models.FamilyRoleMember,
		Permission:          models.PermissionViewOnly,
		RequestedPermission: models.PermissionViewOnly,
		Status:              models.StatusPending,
	}
	if err := db.Create(member).Error; err != nil {
		t.Fatalf("failed to create pending member: %v", err)
	}
	return member
}

// CreateTestFamilyBudget creates a monthly budget for the family.
func CreateTestFamilyBudget(t *testing.T, db *gorm.DB, familyID, createdByID string) *models.FamilyBudget {
	t.Helper()

	budget := &models.FamilyBudget{
		FamilyID:    familyID,
		CreatedByID: createdByID,
		Category:    fmt.Sprintf("Category %d", nextID()),
		LimitAmount: 50000, // $500.00
		Period:      models.BudgetPeriodMonthly,
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test family budget: %v", err)
	}
	return budget
}

// CreateTestFamilyGoal creates a goal with the given target (in cents).
func CreateTestFamilyGoal(t *testing.T, db *gorm.DB, familyID, createdByID string, target int64) *models.FamilyGoal {
	t.Helper()

	goal := &models.FamilyGoal{
		FamilyID:     familyID,
		CreatedByID:  createdByID,
		Title:        fmt.Sprintf("Test Goal %d", nextID()),
		TargetAmount: target,
		Deadline:     time.Now().AddDate(0, 6, 0),
	}
	if err := db.Create(goal).Error; err != nil {
		t.Fatalf("failed to create test family goal: %v", err)
	}
	return goal
}

// CreateTestTransaction creates a transaction of the given type and amount (in cents).
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID string, txType models.TransactionType, amount int64, category string) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		UserID:   userID,
		Type:     txType,
		Amount:   amount,
		Category: category,
		Date:     time.Now(),
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}
