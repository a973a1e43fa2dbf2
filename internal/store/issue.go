// Package store provides abstractions and implementations for data persistence
package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/kanban-api/internal/domain"
)

// IssueStore defines the persistence operations for issues, including the
// position-shift primitives the move engine is built on. Implementations must
// make every method usable both on a plain connection and inside a
// transaction (via WithTx), because the dense-rank invariant is only allowed
// to be transiently violated inside an uncommitted transaction.
type IssueStore interface {
	// Create saves a new issue to the store.
	// Returns ErrDuplicate if an issue with the same ID already exists.
	Create(ctx context.Context, issue *domain.Issue) error

	// GetByID retrieves an issue by its unique ID.
	// Returns ErrIssueNotFound if the issue does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Issue, error)

	// Update persists the issue's mutable placement fields: column, position,
	// status, category and the updated-at timestamp.
	// Returns ErrIssueNotFound if the issue does not exist.
	Update(ctx context.Context, issue *domain.Issue) error

	// Delete removes an issue from the store by its ID.
	// Returns ErrIssueNotFound if the issue does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// ShiftRange adds delta to the position of every issue in the column
	// whose position lies in [from, to]. A negative to means "no upper
	// bound". The excluded issue, if non-nil, is left untouched regardless
	// of its position.
	ShiftRange(ctx context.Context, columnID uuid.UUID, from, to, delta int, exclude *uuid.UUID) error

	// MaxPosition returns the highest position currently occupied in the
	// column, or -1 if the column is empty.
	MaxPosition(ctx context.Context, columnID uuid.UUID) (int, error)

	// CountInColumn returns the number of issues currently in the column.
	CountInColumn(ctx context.Context, columnID uuid.UUID) (int, error)

	// CountChildren returns the number of issues whose parent is the given issue.
	CountChildren(ctx context.Context, parentID uuid.UUID) (int, error)

	// ListByProject returns every issue in the project ordered column-major:
	// by the column's board position first, then by issue position.
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*domain.Issue, error)

	// ListByColumn returns the column's issues ordered by position.
	ListByColumn(ctx context.Context, columnID uuid.UUID) ([]*domain.Issue, error)

	// WithTx returns a new IssueStore instance that uses the provided transaction.
	// This allows for multiple operations to be executed within a single transaction.
	WithTx(tx *sql.Tx) IssueStore
}
