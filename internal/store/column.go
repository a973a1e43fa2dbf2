package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/kanban-api/internal/domain"
)

// ColumnStore defines the persistence operations for board columns.
type ColumnStore interface {
	// GetByID retrieves a column by its unique ID.
	// Returns ErrColumnNotFound if the column does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Column, error)

	// ListByBoard returns the board's columns ordered by position.
	ListByBoard(ctx context.Context, boardID uuid.UUID) ([]*domain.Column, error)

	// FirstByBoard returns the board's first column by position. This is the
	// fallback target for scheduler-synthesized issues when a template has no
	// configured column.
	// Returns ErrColumnNotFound if the board has no columns.
	FirstByBoard(ctx context.Context, boardID uuid.UUID) (*domain.Column, error)

	// WithTx returns a new ColumnStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) ColumnStore
}
