package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/kanban-api/internal/domain"
)

// BoardStore defines the read operations this core needs on boards. Boards
// are created and managed elsewhere; the move engine only resolves them to
// check project membership.
type BoardStore interface {
	// GetByID retrieves a board by its unique ID.
	// Returns ErrNotFound if the board does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Board, error)

	// WithTx returns a new BoardStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) BoardStore
}
