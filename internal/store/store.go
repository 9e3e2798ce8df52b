package store

import (
	"context"
	"errors"

	"github.com/persondir/persondir/internal/models"
)

// ErrNotFound is returned by Get and Delete when the requested person does not exist.
var ErrNotFound = errors.New("person not found")

// Store defines the interface for person persistence.
type Store interface {
	// EnsureConstraints creates uniqueness constraints if they don't exist.
	EnsureConstraints(ctx context.Context) error

	// Upsert inserts or updates a person record keyed by its ID.
	Upsert(ctx context.Context, rec models.Record) error

	// Get retrieves a single record by ID.
	Get(ctx context.Context, id string) (*models.Record, error)

	// Delete removes a record by ID.
	Delete(ctx context.Context, id string) error

	// List returns records in stable ID order.
	// The cursor parameter is opaque; pass "" for the first page.
	// The returned cursor is empty when no more results remain.
	List(ctx context.Context, limit uint64, cursor string) ([]models.Record, string, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int64, error)

	// Stats returns collection statistics.
	Stats(ctx context.Context) (*models.DirectoryStats, error)

	// Close cleans up resources.
	Close(ctx context.Context) error
}
