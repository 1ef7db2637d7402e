package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "kindred/internal/errors"
	"kindred/internal/models"
	"kindred/internal/services"
)

// FamilyBudgetHandler handles shared family budget requests.
type FamilyBudgetHandler struct {
	budgetService services.FamilyBudgetServicer
}

// NewFamilyBudgetHandler creates a new FamilyBudgetHandler.
func NewFamilyBudgetHandler(budgetService services.FamilyBudgetServicer) *FamilyBudgetHandler {
	return &FamilyBudgetHandler{budgetService: budgetService}
}

// CreateFamilyBudgetRequest represents the payload for creating a family budget.
type CreateFamilyBudgetRequest struct {
	Category    string              `json:"category" binding:"required,min=1,max=100"`
	LimitAmount int64               `json:"limit_amount" binding:"required,gt=0"`
	Period      models.BudgetPeriod `json:"period" binding:"required,budget_period"`
}

// UpdateFamilyBudgetRequest represents the payload for updating a family budget.
type UpdateFamilyBudgetRequest struct {
	Category    string               `json:"category" binding:"omitempty,min=1,max=100"`
	LimitAmount *int64               `json:"limit_amount" binding:"omitempty,gt=0"`
	Period      *models.BudgetPeriod `json:"period" binding:"omitempty,budget_period"`
	SpentAmount *int64               `json:"spent_amount" binding:"omitempty,gte=0"`
}

// CreateBudget handles creating a shared budget.
// @Summary     Create a family budget
// @Description Create a shared budget envelope for a category
// @Tags        family-budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                    true "Family ID"
// @Param       request body CreateFamilyBudgetRequest true "Budget details"
// @Success     201 {object} models.FamilyBudget "Budget created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "View-only member"
// @Failure     404 {object} ErrorResponse "Not a member"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /families/{id}/budgets [post]
func (h *FamilyBudgetHandler) CreateBudget(c *gin.Context) {
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

	var req CreateFamilyBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	budget, err := h.budgetService.CreateBudget(userID, familyID, req.Category, req.LimitAmount, req.Period)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"budget": budget})
}

// GetBudgets handles listing a family's budgets.
// @Summary     Get family budgets
// @Description List all shared budgets for a family
// @Tags        family-budgets
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Family ID"
// @Success     200 {object} map[string][]models.FamilyBudget "Budgets"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Not a member"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /families/{id}/budgets [get]
func (h *FamilyBudgetHandler) GetBudgets(c *gin.Context) {
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

	budgets, err := h.budgetService.GetBudgets(userID, familyID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budgets": budgets})
}

// UpdateBudget handles updating a shared budget.
// @Summary     Update a family budget
// @Description Apply a partial update to a shared budget
// @Tags        family-budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id       path string                    true "Family ID"
// @Param       budgetId path string                    true "Budget ID"
// @Param       request  body UpdateFamilyBudgetRequest true "Updated fields"
// @Success     200 {object} models.FamilyBudget "Updated budget"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "View-only member"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /families/{id}/budgets/{budgetId} [put]
func (h *FamilyBudgetHandler) UpdateBudget(c *gin.Context) {
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

	budgetID, err := parsePathID(c, "budgetId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateFamilyBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	budget, err := h.budgetService.UpdateBudget(userID, familyID, budgetID,
		req.Category, req.LimitAmount, req.Period, req.SpentAmount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budget": budget})
}

// DeleteBudget handles deleting a shared budget.
// @Summary     Delete a family budget
// @Description Delete a shared budget
// @Tags        family-budgets
// @Produce     json
// @Security    BearerAuth
// @Param       id       path string true "Family ID"
// @Param       budgetId path string true "Budget ID"
// @Success     200 {object} MessageResponse "Budget deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "View-only member"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /families/{id}/budgets/{budgetId} [delete]
func (h *FamilyBudgetHandler) DeleteBudget(c *gin.Context) {
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

	budgetID, err := parsePathID(c, "budgetId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.budgetService.DeleteBudget(userID, familyID, budgetID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Budget deleted successfully"})
}
