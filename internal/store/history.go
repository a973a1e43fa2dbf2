package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/kanban-api/internal/domain"
)

// HistoryStore defines the persistence operations for the audit log.
// The log is append-only: there is deliberately no update or delete.
type HistoryStore interface {
	// Append writes one immutable history entry.
	Append(ctx context.Context, entry *domain.HistoryEntry) error

	// ListByEntity returns the entries recorded for one entity, newest first.
	ListByEntity(ctx context.Context, entityType domain.EntityType, entityID uuid.UUID) ([]*domain.HistoryEntry, error)

	// WithTx returns a new HistoryStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) HistoryStore
}
