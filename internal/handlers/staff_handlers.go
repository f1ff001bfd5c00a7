package handlers

import (
	"net/http"

	"pub_pos_backend/internal/middleware"
	"pub_pos_backend/internal/models"
	"pub_pos_backend/internal/services"
	"pub_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// StaffHandler holds the staff service.
type StaffHandler struct {
	staffService services.StaffService
}

// NewStaffHandler creates a new StaffHandler.
func NewStaffHandler(ss services.StaffService) *StaffHandler {
	return &StaffHandler{staffService: ss}
}

type setActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

func actorRole(c *gin.Context) (models.StaffRole, bool) {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "User not authenticated.", "Missing session in context"))
		return "", false
	}
	return sess.Role, true
}

// GetStaffMembers lists the directory visible to the caller.
func (h *StaffHandler) GetStaffMembers(c *gin.Context) {
	actor, ok := actorRole(c)
	if !ok {
		return
	}
	staff, err := h.staffService.ListStaff(c.Request.Context(), actor)
	if err != nil {
		utils.LogError(err, "GetStaffMembers: Error from staffService.ListStaff")
		respondServiceError(c, err, "Failed to fetch staff members.")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":  staff,
		"total": len(staff),
	})
}

func (h *StaffHandler) GetStaffMemberByID(c *gin.Context) {
	actor, ok := actorRole(c)
	if !ok {
		return
	}
	staff, err := h.staffService.GetStaff(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		utils.LogError(err, "GetStaffMemberByID: Error from staffService.GetStaff for ID "+c.Param("id"))
		respondServiceError(c, err, "Failed to fetch staff member.")
		return
	}
	c.JSON(http.StatusOK, staff)
}

// CreateStaffMember handles the creation of a new staff member.
func (h *StaffHandler) CreateStaffMember(c *gin.Context) {
	actor, ok := actorRole(c)
	if !ok {
		return
	}
	var req services.CreateStaffRequest
	if !bindJSON(c, &req, "CreateStaffMember") {
		return
	}

	staff, err := h.staffService.CreateStaff(c.Request.Context(), actor, req)
	if err != nil {
		utils.LogError(err, "CreateStaffMember: Error from staffService.CreateStaff")
		respondServiceError(c, err, "Failed to create staff member.")
		return
	}
	c.JSON(http.StatusCreated, staff)
}

func (h *StaffHandler) UpdateStaffMember(c *gin.Context) {
	actor, ok := actorRole(c)
	if !ok {
		return
	}
	var req services.UpdateStaffRequest
	if !bindJSON(c, &req, "UpdateStaffMember") {
		return
	}

	staff, err := h.staffService.UpdateStaff(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		utils.LogError(err, "UpdateStaffMember: Error from staffService.UpdateStaff for ID "+c.Param("id"))
		respondServiceError(c, err, "Failed to update staff member.")
		return
	}
	c.JSON(http.StatusOK, staff)
}

// SetStaffActive suspends or reactivates a staff member.
func (h *StaffHandler) SetStaffActive(c *gin.Context) {
	actor, ok := actorRole(c)
	if !ok {
		return
	}
	var req setActiveRequest
	if !bindJSON(c, &req, "SetStaffActive") {
		return
	}

	staff, err := h.staffService.SetActive(c.Request.Context(), actor, c.Param("id"), *req.Active)
	if err != nil {
		utils.LogError(err, "SetStaffActive: Error from staffService.SetActive for ID "+c.Param("id"))
		respondServiceError(c, err, "Failed to update staff member.")
		return
	}
	c.JSON(http.StatusOK, staff)
}

func (h *StaffHandler) DeleteStaffMember(c *gin.Context) {
	actor, ok := actorRole(c)
	if !ok {
		return
	}
	if err := h.staffService.DeleteStaff(c.Request.Context(), actor, c.Param("id")); err != nil {
		utils.LogError(err, "DeleteStaffMember: Error from staffService.DeleteStaff for ID "+c.Param("id"))
		respondServiceError(c, err, "Failed to delete staff member.")
		return
	}
	c.Status(http.StatusNoContent)
}
