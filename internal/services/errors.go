package services

import (
	"context"
	"errors"
	"fmt"
)

// --- Custom Service Errors ---
var (
	ErrValidation          = errors.New("validation failed")
	ErrUnavailable         = errors.New("data is not available")
	ErrOrderNotFound       = errors.New("order not found")
	ErrMenuItemNotFound    = errors.New("menu item not found")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrTransitionForbidden = errors.New("role may not perform this status transition")
	ErrForbidden           = errors.New("not allowed to manage this record")
	ErrEmailExists         = errors.New("email already exists")

	// Login outcomes. They surface verbatim to the user through LoginError.
	ErrStaffNotFound       = errors.New("staff not found")
	ErrWrongRole           = errors.New("wrong role")
	ErrStaffSuspended      = errors.New("staff suspended")
	ErrSuperadminAvailable = errors.New("no superadmin exists")
	ErrSuperadminExists    = errors.New("superadmin already exists")
)

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// LoginError carries the user-facing message for a categorized login failure.
type LoginError struct {
	Reason  error
	Message string
}

func (e *LoginError) Error() string { return e.Message }
func (e *LoginError) Unwrap() error { return e.Reason }

func loginError(reason error, format string, args ...any) error {
	return &LoginError{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// Snapshot is the read side of a live collection view.
type Snapshot[T any] interface {
	Items() []T
	Wait(ctx context.Context) error
}

// current waits for the first delivery and returns the items.
func current[T any](ctx context.Context, src Snapshot[T]) ([]T, error) {
	if err := src.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return src.Items(), nil
}
