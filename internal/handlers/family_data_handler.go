package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kindred/internal/services"
)

// FamilyDataHandler handles the shared family data views.
type FamilyDataHandler struct {
	dataService services.FamilyDataServicer
}

// NewFamilyDataHandler creates a new FamilyDataHandler.
func NewFamilyDataHandler(dataService services.FamilyDataServicer) *FamilyDataHandler {
	return &FamilyDataHandler{dataService: dataService}
}

// GetFamilyTransactions handles the per-member transaction view.
// @Summary     Get family transactions
// @Description Per-member transactions, filtered by each member's sharing flag
// @Tags        family-data
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Family ID"
// @Success     200 {object} services.FamilyTransactions "Member transactions"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Not a member"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /families/{id}/transactions [get]
func (h *FamilyDataHandler) GetFamilyTransactions(c *gin.Context) {
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

	result, err := h.dataService.GetFamilyTransactions(userID, familyID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetFamilySummary handles the family dashboard summary.
// @Summary     Get family summary
// @Description Aggregated totals, category breakdown, and goal contributions
// @Tags        family-data
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Family ID"
// @Success     200 {object} services.FamilySummary "Family summary"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Not a member"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /families/{id}/summary [get]
func (h *FamilyDataHandler) GetFamilySummary(c *gin.Context) {
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

	summary, err := h.dataService.GetFamilySummary(userID, familyID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
