package models

import "time"

// Credentials for a login request. Login is an email lookup against the staff directory.
type Credentials struct {
	Email string `json:"email" binding:"required"`
	Role  string `json:"role" binding:"required"`
}

// ProvisionPayload requests the one-time superadmin bootstrap.
type ProvisionPayload struct {
	Email string `json:"email" binding:"required"`
}

// LoginResponse carries the signed session token the client keeps in durable storage.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Staff     Staff     `json:"staff"`
}
