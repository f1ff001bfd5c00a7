package models

import (
	"strings"
	"time"
)

// StaffRole gates screens and lifecycle transitions.
type StaffRole string

const (
	RoleWaiter     StaffRole = "waiter"
	RoleCounter    StaffRole = "counter"
	RoleAdmin      StaffRole = "admin"
	RoleSuperadmin StaffRole = "superadmin"
)

// ParseStaffRole accepts role names case-insensitively.
func ParseStaffRole(s string) (StaffRole, bool) {
	switch r := StaffRole(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleWaiter, RoleCounter, RoleAdmin, RoleSuperadmin:
		return r, true
	}
	return "", false
}

// Satisfies reports whether a record with role r may act as role want.
// Superadmin satisfies every role.
func (r StaffRole) Satisfies(want StaffRole) bool {
	return r == want || r == RoleSuperadmin
}

// Staff is a directory entry. Email is stored lower-cased; Active false means suspended.
type Staff struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      StaffRole `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}

// NormalizeEmail is the lookup form of an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
