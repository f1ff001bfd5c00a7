package handlers

import (
	"net/http"

	"pub_pos_backend/internal/middleware"
	"pub_pos_backend/internal/models"
	"pub_pos_backend/internal/services"
	"pub_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AuthHandler holds the authentication service.
type AuthHandler struct {
	authService services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(as services.AuthService) *AuthHandler {
	return &AuthHandler{authService: as}
}

// Login signs a staff member in for the screen of the requested role.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.Credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "Login: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		utils.LogWarn(err, "Login: rejected", map[string]interface{}{"role": req.Role})
		respondServiceError(c, err, "Failed to login.")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ProvisionSuperadmin creates the first superadmin. Refused once one exists.
func (h *AuthHandler) ProvisionSuperadmin(c *gin.Context) {
	var req models.ProvisionPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "ProvisionSuperadmin: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	resp, err := h.authService.ProvisionSuperadmin(c.Request.Context(), req)
	if err != nil {
		utils.LogError(err, "ProvisionSuperadmin: Error from authService.ProvisionSuperadmin")
		respondServiceError(c, err, "Could not create super admin.")
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Logout revokes the caller's session token.
func (h *AuthHandler) Logout(c *gin.Context) {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "User not authenticated.", "Missing session in context"))
		return
	}
	h.authService.Logout(sess)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully."})
}

// GetCurrentSession returns the session resolved from the bearer token.
func (h *AuthHandler) GetCurrentSession(c *gin.Context) {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "User not authenticated.", "Missing session in context"))
		return
	}
	c.JSON(http.StatusOK, sess)
}
