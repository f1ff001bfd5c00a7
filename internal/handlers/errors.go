package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"pub_pos_backend/internal/cart"
	"pub_pos_backend/internal/services"
	"pub_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// respondServiceError maps service errors onto the API error envelope. fallback is
// the message used for unexpected failures.
func respondServiceError(c *gin.Context, err error, fallback string) {
	var loginErr *services.LoginError
	if errors.As(err, &loginErr) {
		respondLoginError(c, loginErr)
		return
	}

	switch {
	case errors.Is(err, services.ErrValidation):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, validationMessage(err), err.Error()))
	case errors.Is(err, services.ErrOrderNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Order not found.", err.Error()))
	case errors.Is(err, services.ErrMenuItemNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Menu item not found.", err.Error()))
	case errors.Is(err, services.ErrStaffNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Staff member not found.", err.Error()))
	case errors.Is(err, cart.ErrCartNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Cart not found or expired.", err.Error()))
	case errors.Is(err, services.ErrInvalidTransition):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeInvalidTransition, "This status change is not allowed.", err.Error()))
	case errors.Is(err, services.ErrTransitionForbidden), errors.Is(err, services.ErrForbidden):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, "You do not have permission to perform this action.", err.Error()))
	case errors.Is(err, services.ErrEmailExists):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Email already exists.", err.Error()))
	case errors.Is(err, services.ErrUnavailable), errors.Is(err, context.DeadlineExceeded):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusServiceUnavailable, utils.ErrCodeUnavailable, "Data is temporarily unavailable.", err.Error()))
	default:
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, fallback, "Internal error"))
	}
}

// respondLoginError surfaces the categorized login message verbatim.
func respondLoginError(c *gin.Context, err *services.LoginError) {
	switch {
	case errors.Is(err, services.ErrWrongRole):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeWrongRole, err.Message, ""))
	case errors.Is(err, services.ErrStaffSuspended):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeSuspended, err.Message, ""))
	case errors.Is(err, services.ErrSuperadminAvailable):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeProvisionAvailable, err.Message, ""))
	case errors.Is(err, services.ErrSuperadminExists):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, err.Message, ""))
	default:
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, err.Message, ""))
	}
}

// validationMessage strips the sentinel prefix so the user sees only the reason.
func validationMessage(err error) string {
	msg := strings.TrimPrefix(err.Error(), services.ErrValidation.Error()+": ")
	if msg == "" {
		return "Input validation failed"
	}
	return msg
}

// bindJSON binds the request body into dst and responds on failure.
func bindJSON(c *gin.Context, dst any, op string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		utils.LogError(err, op+": Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return false
	}
	return true
}
