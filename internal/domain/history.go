package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// EntityType identifies the kind of entity a history entry refers to.
type EntityType string

// Possible entity type values
const (
	EntityTypeIssue    EntityType = "issue"
	EntityTypeColumn   EntityType = "column"
	EntityTypeTemplate EntityType = "template"
)

// HistoryField identifies which aspect of an entity a history entry records.
type HistoryField string

// Possible history field values
const (
	HistoryFieldCreated  HistoryField = "created"
	HistoryFieldDeleted  HistoryField = "deleted"
	HistoryFieldColumn   HistoryField = "column"
	HistoryFieldStatus   HistoryField = "status"
	HistoryFieldPosition HistoryField = "position"
)

// History-specific validation errors
var (
	// ErrHistoryIDEmpty is returned when a history entry ID is empty or nil.
	ErrHistoryIDEmpty = errors.New("history entry ID cannot be empty")

	// ErrHistoryEntityIDEmpty is returned when a history entry references no entity.
	ErrHistoryEntityIDEmpty = errors.New("history entry entity ID cannot be empty")

	// ErrHistoryActorIDEmpty is returned when a history entry has no actor.
	ErrHistoryActorIDEmpty = errors.New("history entry actor ID cannot be empty")
)

// HistoryEntry records one immutable change to an entity. Entries are
// append-only: they are never updated or deleted once written.
type HistoryEntry struct {
	ID         uuid.UUID    `json:"id"`
	TenantID   uuid.UUID    `json:"tenant_id"`
	EntityType EntityType   `json:"entity_type"`
	EntityID   uuid.UUID    `json:"entity_id"`
	ActorID    uuid.UUID    `json:"actor_id"`
	Field      HistoryField `json:"field"`
	OldValue   string       `json:"old_value,omitempty"`
	NewValue   string       `json:"new_value,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
}

// NewHistoryEntry creates an entry for one field change performed by actor.
func NewHistoryEntry(
	tenantID uuid.UUID,
	entityType EntityType,
	entityID uuid.UUID,
	actorID uuid.UUID,
	field HistoryField,
	oldValue, newValue string,
) (*HistoryEntry, error) {
	entry := &HistoryEntry{
		ID:         uuid.New(),
		TenantID:   tenantID,
		EntityType: entityType,
		EntityID:   entityID,
		ActorID:    actorID,
		Field:      field,
		OldValue:   oldValue,
		NewValue:   newValue,
		CreatedAt:  time.Now().UTC(),
	}

	if err := entry.Validate(); err != nil {
		return nil, err
	}

	return entry, nil
}

// Validate checks if the HistoryEntry has valid data.
func (h *HistoryEntry) Validate() error {
	if h.ID == uuid.Nil {
		return ErrHistoryIDEmpty
	}

	if h.EntityID == uuid.Nil {
		return ErrHistoryEntityIDEmpty
	}

	if h.ActorID == uuid.Nil {
		return ErrHistoryActorIDEmpty
	}

	return nil
}
