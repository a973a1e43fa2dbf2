package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/kanban-api/internal/domain"
	"github.com/phrazzld/kanban-api/internal/store"
)

// PostgresTemplateStore implements the store.TemplateStore interface
// using a PostgreSQL database as the storage backend. The recurrence config
// and issue defaults are stored as jsonb, validated into their typed form on
// the way out.
type PostgresTemplateStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTemplateStore creates a new PostgreSQL implementation of the TemplateStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresTemplateStore(db store.DBTX, logger *slog.Logger) *PostgresTemplateStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTemplateStore{
		db:     db,
		logger: logger.With(slog.String("component", "template_store")),
	}
}

// Ensure PostgresTemplateStore implements store.TemplateStore interface
var _ store.TemplateStore = (*PostgresTemplateStore)(nil)

const templateColumns = `id, tenant_id, board_id, column_id, title, description,
	frequency, config, defaults, next_run_at, last_run_at, is_active,
	created_at, updated_at`

// GetByID implements store.TemplateStore.GetByID
func (s *PostgresTemplateStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.RecurringIssueTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM recurring_issue_templates WHERE id = $1`

	tmpl, err := scanTemplate(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTemplateNotFound
		}
		return nil, MapError(err)
	}

	return tmpl, nil
}

// ListDue implements store.TemplateStore.ListDue
func (s *PostgresTemplateStore) ListDue(ctx context.Context, now time.Time) ([]*domain.RecurringIssueTemplate, error) {
	query := `
		SELECT ` + templateColumns + `
		FROM recurring_issue_templates
		WHERE is_active = TRUE AND next_run_at <= $1
		ORDER BY next_run_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, now)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var templates []*domain.RecurringIssueTemplate
	for rows.Next() {
		tmpl, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan template row: %w", err)
		}
		templates = append(templates, tmpl)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating template rows: %w", err)
	}

	return templates, nil
}

// UpdateRunTimes implements store.TemplateStore.UpdateRunTimes
func (s *PostgresTemplateStore) UpdateRunTimes(ctx context.Context, id uuid.UUID, lastRunAt, nextRunAt time.Time) error {
	query := `
		UPDATE recurring_issue_templates
		SET last_run_at = $1, next_run_at = $2, updated_at = NOW()
		WHERE id = $3
	`

	result, err := s.db.ExecContext(ctx, query, lastRunAt, nextRunAt, id)
	if err != nil {
		return MapError(err)
	}

	return CheckRowsAffected(result, "template")
}

// Deactivate implements store.TemplateStore.Deactivate
func (s *PostgresTemplateStore) Deactivate(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE recurring_issue_templates
		SET is_active = FALSE, updated_at = NOW()
		WHERE id = $1
	`

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return MapError(err)
	}

	return CheckRowsAffected(result, "template")
}

// WithTx implements store.TemplateStore.WithTx
func (s *PostgresTemplateStore) WithTx(tx *sql.Tx) store.TemplateStore {
	return &PostgresTemplateStore{
		db:     tx,
		logger: s.logger,
	}
}

func scanTemplate(row rowScanner) (*domain.RecurringIssueTemplate, error) {
	var tmpl domain.RecurringIssueTemplate
	var description sql.NullString
	var lastRunAt sql.NullTime
	var config, defaults []byte

	err := row.Scan(
		&tmpl.ID,
		&tmpl.TenantID,
		&tmpl.BoardID,
		&tmpl.ColumnID,
		&tmpl.Title,
		&description,
		&tmpl.Frequency,
		&config,
		&defaults,
		&tmpl.NextRunAt,
		&lastRunAt,
		&tmpl.IsActive,
		&tmpl.CreatedAt,
		&tmpl.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	tmpl.Description = description.String
	if lastRunAt.Valid {
		t := lastRunAt.Time
		tmpl.LastRunAt = &t
	}

	if len(config) > 0 {
		if err := json.Unmarshal(config, &tmpl.Config); err != nil {
			return nil, fmt.Errorf("failed to decode template config: %w", err)
		}
	}
	if len(defaults) > 0 {
		if err := json.Unmarshal(defaults, &tmpl.Defaults); err != nil {
			return nil, fmt.Errorf("failed to decode template defaults: %w", err)
		}
	}

	// Stored config is untrusted until validated against the frequency.
	if err := tmpl.Config.ValidateFor(tmpl.Frequency); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	return &tmpl, nil
}
