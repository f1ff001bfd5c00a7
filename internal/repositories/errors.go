package repositories

import (
	"context"
	"errors"
	"fmt"

	"pub_pos_backend/internal/store"
)

var (
	// ErrNotFound is returned when a specific record is not found.
	ErrNotFound = errors.New("requested record not found")

	// ErrDatabaseError is returned for unexpected store errors.
	// It wraps the underlying store error.
	ErrDatabaseError = errors.New("database error")

	// ErrDuplicateKey is returned when a write would duplicate a business key (staff email).
	ErrDuplicateKey = errors.New("duplicate key value violates unique constraint")

	// ErrStale is returned when a guarded write finds the record already changed.
	ErrStale = errors.New("record changed since it was read")
)

// Collection names served by the store.
const (
	CollectionMenu     = "menu"
	CollectionOrders   = "orders"
	CollectionStaff    = "staff"
	CollectionSettings = "settings"
)

// Collections lists every collection the application uses.
var Collections = []string{CollectionMenu, CollectionOrders, CollectionStaff, CollectionSettings}

// DocumentExecutor is the part of store.Store the repositories write through.
// It is satisfied by both the memory and the Postgres store.
type DocumentExecutor interface {
	Create(ctx context.Context, collection string, data map[string]any) (store.Document, error)
	Get(ctx context.Context, collection, id string) (store.Document, error)
	Update(ctx context.Context, collection, id string, fields map[string]any) error
	UpdateIf(ctx context.Context, collection, id, field string, expect any, fields map[string]any) error
	Delete(ctx context.Context, collection, id string) error
	Increment(ctx context.Context, collection, id, field string, delta float64) error
	Query(ctx context.Context, collection, field string, value any, limit int) ([]store.Document, error)
}

// wrapStoreError maps store errors onto repository sentinels.
func wrapStoreError(err error, action string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, action)
	}
	if errors.Is(err, store.ErrConflict) {
		return fmt.Errorf("%w: %s", ErrStale, action)
	}
	return fmt.Errorf("%w: %s: %v", ErrDatabaseError, action, err)
}
