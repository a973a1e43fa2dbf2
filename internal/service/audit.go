package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/kanban-api/internal/domain"
	"github.com/phrazzld/kanban-api/internal/store"
)

// appendHistory builds and writes one audit entry inside the caller's
// transaction, so history commits or rolls back with the mutation it records.
func appendHistory(
	ctx context.Context,
	history store.HistoryStore,
	tenantID uuid.UUID,
	entityType domain.EntityType,
	entityID, actorID uuid.UUID,
	field domain.HistoryField,
	oldValue, newValue string,
) error {
	entry, err := domain.NewHistoryEntry(tenantID, entityType, entityID, actorID, field, oldValue, newValue)
	if err != nil {
		return err
	}
	return history.Append(ctx, entry)
}
