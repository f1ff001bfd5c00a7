package handlers

import (
	"net/http"

	"pub_pos_backend/internal/services"
	"pub_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// SettingsHandler serves the venue settings singleton.
type SettingsHandler struct {
	settingsService services.SettingsService
}

func NewSettingsHandler(ss services.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: ss}
}

// GetSettings returns the settings in effect, defaults included.
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	settings, err := h.settingsService.GetSettings(c.Request.Context())
	if err != nil {
		utils.LogError(err, "GetSettings: Error from settingsService.GetSettings")
		respondServiceError(c, err, "Failed to fetch settings.")
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	var req services.UpsertSettingsRequest
	if !bindJSON(c, &req, "UpdateSettings") {
		return
	}

	settings, err := h.settingsService.UpsertSettings(c.Request.Context(), req)
	if err != nil {
		utils.LogError(err, "UpdateSettings: Error from settingsService.UpsertSettings")
		respondServiceError(c, err, "Failed to save settings.")
		return
	}
	c.JSON(http.StatusOK, settings)
}
