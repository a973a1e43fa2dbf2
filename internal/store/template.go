package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/kanban-api/internal/domain"
)

// TemplateStore defines the persistence operations the scheduler needs for
// recurring issue templates. Templates are created and edited elsewhere; this
// core only reads them and advances their run bookkeeping.
type TemplateStore interface {
	// GetByID retrieves a template by its unique ID.
	// Returns ErrTemplateNotFound if the template does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.RecurringIssueTemplate, error)

	// ListDue returns every active template whose NextRunAt is at or before
	// the given instant, ordered by NextRunAt ascending.
	ListDue(ctx context.Context, now time.Time) ([]*domain.RecurringIssueTemplate, error)

	// UpdateRunTimes persists a template's run bookkeeping after one
	// synthesized occurrence. The scheduler calls this once per catch-up
	// iteration, not once per loop, so a crash mid-loop never loses or
	// duplicates an occurrence.
	// Returns ErrTemplateNotFound if the template does not exist.
	UpdateRunTimes(ctx context.Context, id uuid.UUID, lastRunAt, nextRunAt time.Time) error

	// Deactivate marks a template inactive so the scheduler skips it.
	// Returns ErrTemplateNotFound if the template does not exist.
	Deactivate(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new TemplateStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) TemplateStore
}
