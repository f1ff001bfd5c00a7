// Package store defines the document-store contract the application is built on:
// collections of schemaless documents with generated ids, partial merges, atomic
// numeric increments, equality queries and live full-snapshot subscriptions.
package store

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("document not found")

	// ErrUnknownCollection is returned for operations on a collection the store does not serve.
	ErrUnknownCollection = errors.New("unknown collection")

	// ErrNotNumeric is returned by Increment when the target field holds a non-numeric value.
	ErrNotNumeric = errors.New("field is not numeric")

	// ErrClosed is returned once the store has been closed. Open subscriptions end with it.
	ErrClosed = errors.New("store closed")

	// ErrConflict is returned by UpdateIf when the guard field no longer holds the expected value.
	ErrConflict = errors.New("document changed concurrently")
)

// FieldCreatedAt is the server-assigned creation timestamp. It can be used as an
// ordering field but is never written by clients.
const FieldCreatedAt = "createdAt"

// Document is one record of a collection.
type Document struct {
	ID        string
	Data      map[string]any
	CreatedAt time.Time
}

// Direction of an ordering specification.
type Direction int

const (
	Asc Direction = iota
	Desc
)

// OrderBy sorts subscription snapshots by a single field.
type OrderBy struct {
	Field     string
	Direction Direction
}

// Snapshot is the full ordered content of a collection at one point in time.
// Seq increases with every change the store observes.
type Snapshot struct {
	Docs []Document
	Seq  uint64
}

// Store is implemented by MemoryStore and PostgresStore.
type Store interface {
	Create(ctx context.Context, collection string, data map[string]any) (Document, error)
	Get(ctx context.Context, collection, id string) (Document, error)
	Update(ctx context.Context, collection, id string, fields map[string]any) error
	UpdateIf(ctx context.Context, collection, id, field string, expect any, fields map[string]any) error
	Delete(ctx context.Context, collection, id string) error
	Increment(ctx context.Context, collection, id, field string, delta float64) error
	Query(ctx context.Context, collection, field string, value any, limit int) ([]Document, error)
	Subscribe(ctx context.Context, collection string, order *OrderBy) (*Subscription, error)
	Close() error
}
