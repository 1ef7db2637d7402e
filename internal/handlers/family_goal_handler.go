package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "kindred/internal/errors"
	"kindred/internal/services"
)

// FamilyGoalHandler handles shared goal and contribution requests.
type FamilyGoalHandler struct {
	goalService services.FamilyGoalServicer
}

// NewFamilyGoalHandler creates a new FamilyGoalHandler.
func NewFamilyGoalHandler(goalService services.FamilyGoalServicer) *FamilyGoalHandler {
	return &FamilyGoalHandler{goalService: goalService}
}

// CreateGoalRequest represents the payload for creating a goal.
type CreateGoalRequest struct {
	Title        string    `json:"title" binding:"required,min=1,max=200"`
	TargetAmount int64     `json:"target_amount" binding:"required,gt=0"`
	Deadline     time.Time `json:"deadline" binding:"required"`
	Category     string    `json:"category" binding:"max=100"`
}

// UpdateGoalRequest represents the payload for updating a goal.
type UpdateGoalRequest struct {
	Title        string     `json:"title" binding:"omitempty,min=1,max=200"`
	TargetAmount *int64     `json:"target_amount" binding:"omitempty,gt=0"`
	Deadline     *time.Time `json:"deadline"`
	Category     string     `json:"category" binding:"omitempty,max=100"`
}

// ContributeRequest represents the payload for contributing to a goal.
type ContributeRequest struct {
	Amount int64 `json:"amount" binding:"required,gt=0"`
}

// CreateGoal handles creating a shared goal.
// @Summary     Create a family goal
// @Description Create a shared savings goal
// @Tags        family-goals
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string            true "Family ID"
// @Param       request body CreateGoalRequest true "Goal details"
// @Success     201 {object} models.FamilyGoal "Goal created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "View-only member"
// @Failure     404 {object} ErrorResponse "Not a member"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /families/{id}/goals [post]
func (h *FamilyGoalHandler) CreateGoal(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	familyID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	goal, err := h.goalService.CreateGoal(userID, familyID, req.Title, req.TargetAmount, req.Deadline, req.Category)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"goal": goal})
}

// GetGoals handles listing a family's goals.
// @Summary     Get family goals
// @Description List all shared goals with their contributions
// @Tags        family-goals
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Family ID"
// @Success     200 {object} map[string][]models.FamilyGoal "Goals"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Not a member"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /families/{id}/goals [get]
func (h *FamilyGoalHandler) GetGoals(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	familyID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	goals, err := h.goalService.GetGoals(userID, familyID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"goals": goals})
}

// UpdateGoal handles updating a shared goal.
// @Summary     Update a family goal
// @Description Apply a partial update to a goal's descriptive fields
// @Tags        family-goals
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string            true "Family ID"
// @Param       goalId  path string            true "Goal ID"
// @Param       request body UpdateGoalRequest true "Updated fields"
// @Success     200 {object} models.FamilyGoal "Updated goal"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "View-only member"
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /families/{id}/goals/{goalId} [put]
func (h *FamilyGoalHandler) UpdateGoal(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	familyID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	goalID, err := parsePathID(c, "goalId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	goal, err := h.goalService.UpdateGoal(userID, familyID, goalID,
		req.Title, req.TargetAmount, req.Deadline, req.Category)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"goal": goal})
}

// DeleteGoal handles deleting a shared goal.
// @Summary     Delete a family goal
// @Description Delete a goal and its contribution history
// @Tags        family-goals
// @Produce     json
// @Security    BearerAuth
// @Param       id     path string true "Family ID"
// @Param       goalId path string true "Goal ID"
// @Success     200 {object} MessageResponse "Goal deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "View-only member"
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /families/{id}/goals/{goalId} [delete]
func (h *FamilyGoalHandler) DeleteGoal(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	familyID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	goalID, err := parsePathID(c, "goalId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.goalService.DeleteGoal(userID, familyID, goalID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Goal deleted successfully"})
}

// Contribute handles contributing to a shared goal.
// @Summary     Contribute to a goal
// @Description Record a contribution and update the goal total
// @Tags        family-goals
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string            true "Family ID"
// @Param       goalId  path string            true "Goal ID"
// @Param       request body ContributeRequest true "Contribution amount"
// @Success     201 {object} models.FamilyGoal "Goal with updated total"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "View-only member"
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /families/{id}/goals/{goalId}/contribute [post]
func (h *FamilyGoalHandler) Contribute(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	familyID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	goalID, err := parsePathID(c, "goalId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ContributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	goal, contribution, err := h.goalService.Contribute(userID, familyID, goalID, req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"goal": goal, "contribution": contribution})
}
