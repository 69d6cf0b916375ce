package repository

import (
	"context"

	"github.com/joseph-ayodele/quote-compare/internal/entity"
)

// ComparisonStore persists comparisons. Get and List return copies; callers
// never share memory with the store.
type ComparisonStore interface {
	// Put inserts a new comparison. An existing id is a conflict.
	Put(ctx context.Context, c entity.Comparison) error
	// Get returns common.ErrNotFound for unknown ids.
	Get(ctx context.Context, id string) (entity.Comparison, error)
	// Update applies fn to the stored record under that record's lock and
	// saves the result. fn errors abort the update.
	Update(ctx context.Context, id string, fn func(*entity.Comparison) error) (entity.Comparison, error)
	// List returns every comparison, newest first.
	List(ctx context.Context) ([]entity.Comparison, error)
	// Ping checks the backend is reachable.
	Ping(ctx context.Context) error
	Close() error
}
