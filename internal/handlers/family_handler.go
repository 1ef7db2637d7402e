package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "kindred/internal/errors"
	"kindred/internal/models"
	"kindred/internal/services"
)

// FamilyHandler handles family membership lifecycle requests.
type FamilyHandler struct {
	familyService   services.FamilyServicer
	activityService services.ActivityServicer
}

// NewFamilyHandler creates a new FamilyHandler.
func NewFamilyHandler(familyService services.FamilyServicer, activityService services.ActivityServicer) *FamilyHandler {
	return &FamilyHandler{familyService: familyService, activityService: activityService}
}

// CreateFamilyRequest represents the request payload for creating a family.
type CreateFamilyRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// JoinFamilyRequest represents the request payload for joining a family.
type JoinFamilyRequest struct {
	RoomCode   string                  `json:"room_code" binding:"required,len=6"`
	Permission models.FamilyPermission `json:"permission" binding:"required,family_permission"`
}

// ResolveRequestRequest represents the payload for accepting a join request.
type ResolveRequestRequest struct {
	Permission models.FamilyPermission `json:"permission" binding:"required,family_permission"`
}

// UpdatePermissionRequest represents the payload for changing a member's permission.
type UpdatePermissionRequest struct {
	Permission models.FamilyPermission `json:"permission" binding:"required,family_permission"`
}

// SharingRequest represents the payload for the transaction-sharing toggle.
type SharingRequest struct {
	IsSharing *bool `json:"is_sharing" binding:"required"`
}

// CreateFamily handles the creation of a new family.
// @Summary     Create a family
// @Description Create a family; the caller becomes its creator
// @Tags        families
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateFamilyRequest true "Family details"
// @Success     201 {object} models.Family "Family created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /families [post]
func (h *FamilyHandler) CreateFamily(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateFamilyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	family, err := h.familyService.CreateFamily(userID, req.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"family": family})
}

// GetMyFamilies handles listing the caller's families.
// @Summary     Get my families
// @Description List every family the caller is an accepted member of
// @Tags        families
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string][]models.Family "Families"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /families [get]
func (h *FamilyHandler) GetMyFamilies(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	families, err := h.familyService.GetMyFamilies(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"families": families})
}

// JoinFamily handles a join request by room code.
// @Summary     Request to join a family
// @Description Submit a join request for the family behind a room code
// @Tags        families
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body JoinFamilyRequest true "Room code and desired permission"
// @Success     201 {object} models.FamilyMember "Pending request created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Room code not found"
// @Failure     409 {object} ErrorResponse "Already a member or request pending"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /families/join [post]
func (h *FamilyHandler) JoinFamily(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req JoinFamilyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	member, err := h.familyService.JoinFamily(userID, req.RoomCode, req.Permission)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"request": member})
}

// GetPendingRequests handles listing pending join requests for families the caller created.
// @Summary     Get pending join requests
// @Description List pending join requests across families the caller created
// @Tags        families
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string][]models.FamilyMember "Pending requests"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /families/requests [get]
func (h *FamilyHandler) GetPendingRequests(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	requests, err := h.familyService.GetPendingRequests(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

// GetMyJoinRequests handles listing the caller's own join requests.
// @Summary     Get my join requests
// @Description List the caller's join requests in every state
// @Tags        families
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string][]models.FamilyMember "Join requests"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /families/my-requests [get]
func (h *FamilyHandler) GetMyJoinRequests(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	requests, err := h.familyService.GetMyJoinRequests(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

// AcceptRequest handles accepting a pending join request.
// @Summary     Accept a join request
// @Description Accept a pending request, granting the chosen permission
// @Tags        families
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       memberId path string               true "Membership ID"
// @Param       request  body ResolveRequestRequest true "Granted permission"
// @Success     200 {object} models.FamilyMember "Accepted membership"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Not the family creator"
// @Failure     404 {object} ErrorResponse "Request not found"
// @Failure     409 {object} ErrorResponse "Request already resolved"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /families/members/{memberId}/accept [post]
func (h *FamilyHandler) AcceptRequest(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	memberID, err := parsePathID(c, "memberId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ResolveRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	member, err := h.familyService.AcceptRequest(userID, memberID, req.Permission)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"member": member})
}

// RejectRequest handles rejecting a pending join request.
// @Summary     Reject a join request
// @Description Reject a pending request; the requester may apply again later
// @Tags        families
// @Produce     json
// @Security    BearerAuth
// @Param       memberId path string true "Membership ID"
// @Success     200 {object} models.FamilyMember "Rejected membership"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Not the family creator"
// @Failure     404 {object} ErrorResponse "Request not found"
// @Failure     409 {object} ErrorResponse "Request already resolved"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /families/members/{memberId}/reject [post]
func (h *FamilyHandler) RejectRequest(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	memberID, err := parsePathID(c, "memberId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	member, err := h.familyService.RejectRequest(userID, memberID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"member": member})
}

// UpdateMemberPermissions handles changing a member's permission level.
// @Summary     Update member permissions
// @Description Change an accepted member's permission level
// @Tags        families
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       memberId path string                  true "Membership ID"
// @Param       request  body UpdatePermissionRequest true "New permission"
// @Success     200 {object} models.FamilyMember "Updated membership"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Not the family creator or target immutable"
// @Failure     404 {object} ErrorResponse "Member not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /families/members/{memberId}/permissions [put]
func (h *FamilyHandler) UpdateMemberPermissions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	memberID, err := parsePathID(c, "memberId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdatePermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	member, err := h.familyService.UpdateMemberPermissions(userID, memberID, req.Permission)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"member": member})
}

// RemoveMember handles removing a member from a family.
// @Summary     Remove a member
// @Description Remove an accepted member from the family
// @Tags        families
// @Produce     json
// @Security    BearerAuth
// @Param       memberId path string true "Membership ID"
// @Success     200 {object} MessageResponse "Member removed"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Not the family creator or target immutable"
// @Failure     404 {object} ErrorResponse "Member not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /families/members/{memberId} [delete]
func (h *FamilyHandler) RemoveMember(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	memberID, err := parsePathID(c, "memberId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.familyService.RemoveMember(userID, memberID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Member removed successfully"})
}

// LeaveFamily handles a member leaving a family.
// @Summary     Leave a family
// @Description Leave a family the caller is a member of; creators cannot leave
// @Tags        families
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Family ID"
// @Success     200 {object} MessageResponse "Left family"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Creator cannot leave"
// @Failure     404 {object} ErrorResponse "Not a member"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /families/{id}/leave [post]
func (h *FamilyHandler) LeaveFamily(c *gin.Context) {
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

	if err := h.familyService.LeaveFamily(userID, familyID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Left family successfully"})
}

// DeleteFamily handles deleting a family and all its shared state.
// @Summary     Delete a family
// @Description Delete a family with its budgets, goals, and memberships
// @Tags        families
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Family ID"
// @Success     200 {object} MessageResponse "Family deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Not the family creator"
// @Failure     404 {object} ErrorResponse "Family not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /families/{id} [delete]
func (h *FamilyHandler) DeleteFamily(c *gin.Context) {
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

	if err := h.familyService.DeleteFamily(userID, familyID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Family deleted successfully"})
}

// SetTransactionSharing handles the caller's transaction-sharing toggle.
// @Summary     Set transaction sharing
// @Description Toggle whether the caller's transactions are visible to the family
// @Tags        families
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string         true "Family ID"
// @Param       request body SharingRequest true "Sharing flag"
// @Success     200 {object} models.FamilyMember "Updated membership"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Not a member"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /families/{id}/sharing [put]
func (h *FamilyHandler) SetTransactionSharing(c *gin.Context) {
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

	var req SharingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	member, err := h.familyService.SetTransactionSharing(userID, familyID, *req.IsSharing)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"member": member})
}

// GetFamilyActivity handles reading the family activity feed.
// @Summary     Get family activity
// @Description List the most recent activity entries for a family
// @Tags        families
// @Produce     json
// @Security    BearerAuth
// @Param       id    path  string true  "Family ID"
// @Param       limit query int    false "Max entries (default 50, max 100)"
// @Success     200 {object} map[string][]models.ActivityLog "Activity entries"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Not a member"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /families/{id}/activity [get]
func (h *FamilyHandler) GetFamilyActivity(c *gin.Context) {
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

	limit := 50
	if v := c.Query("limit"); v != "" {
		if n, convErr := parseLimit(v); convErr == nil {
			limit = n
		}
	}

	entries, err := h.activityService.GetFamilyActivity(userID, familyID, limit)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"activity": entries})
}
