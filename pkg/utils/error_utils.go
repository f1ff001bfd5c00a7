package utils

import (
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
)

// APIError is the standardized error envelope returned by every handler.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code,omitempty"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
}

// NewAPIError creates a new APIError instance
func NewAPIError(statusCode int, code string, message string, details string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Code:       code,
		Message:    message,
		Details:    details,
	}
}

// RespondWithError sends a standardized JSON error response
func RespondWithError(c *gin.Context, err *APIError) {
	c.JSON(err.StatusCode, gin.H{"error": err})
	c.Abort()
}

const (
	ErrCodeBadRequest          = "BAD_REQUEST"
	ErrCodeUnauthorized        = "UNAUTHORIZED"
	ErrCodeForbidden           = "FORBIDDEN"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeConflict            = "CONFLICT"
	ErrCodeInternalServerError = "INTERNAL_SERVER_ERROR"
	ErrCodeValidationFailed    = "VALIDATION_FAILED"
	ErrCodeInvalidTransition   = "INVALID_TRANSITION"
	ErrCodeWrongRole           = "WRONG_ROLE"
	ErrCodeSuspended           = "SUSPENDED"
	ErrCodeProvisionAvailable  = "SUPERADMIN_PROVISION_AVAILABLE"
	ErrCodeUnavailable         = "SERVICE_UNAVAILABLE"
)

var emailRegex = regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`)

// IsValidEmail checks if a string is a valid email format.
func IsValidEmail(email string) bool {
	return emailRegex.MatchString(strings.ToLower(email))
}
