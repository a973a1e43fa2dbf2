// Package postgres provides PostgreSQL implementations of the store interfaces.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/kanban-api/internal/domain"
	"github.com/phrazzld/kanban-api/internal/store"
)

// PostgresIssueStore implements the store.IssueStore interface
// using a PostgreSQL database as the storage backend.
type PostgresIssueStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresIssueStore creates a new PostgreSQL implementation of the IssueStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresIssueStore(db store.DBTX, logger *slog.Logger) *PostgresIssueStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresIssueStore{
		db:     db,
		logger: logger.With(slog.String("component", "issue_store")),
	}
}

// Ensure PostgresIssueStore implements store.IssueStore interface
var _ store.IssueStore = (*PostgresIssueStore)(nil)

const issueColumns = `id, tenant_id, project_id, board_id, column_id, position,
	title, description, status, category, type, priority, labels,
	epic_id, sprint_id, parent_issue_id, assignee_id, reporter_id,
	created_at, updated_at`

// Create implements store.IssueStore.Create
func (s *PostgresIssueStore) Create(ctx context.Context, issue *domain.Issue) error {
	if err := issue.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	// Labels live in a jsonb column so the schema stays flexible.
	labels, err := json.Marshal(issue.Labels)
	if err != nil {
		return fmt.Errorf("%w: failed to encode labels: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO issues (` + issueColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`

	_, err = s.db.ExecContext(ctx, query,
		issue.ID,
		issue.TenantID,
		issue.ProjectID,
		issue.BoardID,
		issue.ColumnID,
		issue.Position,
		issue.Title,
		issue.Description,
		issue.Status,
		issue.Category,
		issue.Type,
		issue.Priority,
		labels,
		issue.EpicID,
		issue.SprintID,
		issue.ParentIssueID,
		issue.AssigneeID,
		issue.ReporterID,
		issue.CreatedAt,
		issue.UpdatedAt,
	)
	if err != nil {
		return MapError(err)
	}

	return nil
}

// GetByID implements store.IssueStore.GetByID
func (s *PostgresIssueStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Issue, error) {
	query := `SELECT ` + issueColumns + ` FROM issues WHERE id = $1`

	issue, err := scanIssue(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if IsNotFoundError(MapError(err)) {
			return nil, store.ErrIssueNotFound
		}
		return nil, MapError(err)
	}

	return issue, nil
}

// Update implements store.IssueStore.Update
// It persists the issue's placement fields: column, position, status,
// category and the updated-at timestamp.
func (s *PostgresIssueStore) Update(ctx context.Context, issue *domain.Issue) error {
	query := `
		UPDATE issues
		SET column_id = $1, position = $2, status = $3, category = $4, updated_at = $5
		WHERE id = $6
	`

	result, err := s.db.ExecContext(ctx, query,
		issue.ColumnID,
		issue.Position,
		issue.Status,
		issue.Category,
		issue.UpdatedAt,
		issue.ID,
	)
	if err != nil {
		return MapError(err)
	}

	return CheckRowsAffected(result, "issue")
}

// Delete implements store.IssueStore.Delete
func (s *PostgresIssueStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM issues WHERE id = $1`, id)
	if err != nil {
		return MapError(err)
	}

	return CheckRowsAffected(result, "issue")
}

// ShiftRange implements store.IssueStore.ShiftRange
// It adds delta to the position of every issue in the column whose position
// lies in [from, to]; to < 0 removes the upper bound. The excluded issue, if
// given, keeps its position so the moved row itself is never double-shifted.
func (s *PostgresIssueStore) ShiftRange(
	ctx context.Context,
	columnID uuid.UUID,
	from, to, delta int,
	exclude *uuid.UUID,
) error {
	query := `
		UPDATE issues
		SET position = position + $1, updated_at = NOW()
		WHERE column_id = $2
		  AND position >= $3
		  AND ($4 < 0 OR position <= $4)
		  AND ($5::uuid IS NULL OR id <> $5)
	`

	_, err := s.db.ExecContext(ctx, query, delta, columnID, from, to, exclude)
	if err != nil {
		return MapError(err)
	}

	return nil
}

// MaxPosition implements store.IssueStore.MaxPosition
// Returns -1 if the column holds no issues, so the next tail position is
// always MaxPosition+1.
func (s *PostgresIssueStore) MaxPosition(ctx context.Context, columnID uuid.UUID) (int, error) {
	var max int
	query := `SELECT COALESCE(MAX(position), -1) FROM issues WHERE column_id = $1`

	if err := s.db.QueryRowContext(ctx, query, columnID).Scan(&max); err != nil {
		return 0, MapError(err)
	}

	return max, nil
}

// CountInColumn implements store.IssueStore.CountInColumn
func (s *PostgresIssueStore) CountInColumn(ctx context.Context, columnID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM issues WHERE column_id = $1`

	if err := s.db.QueryRowContext(ctx, query, columnID).Scan(&count); err != nil {
		return 0, MapError(err)
	}

	return count, nil
}

// CountChildren implements store.IssueStore.CountChildren
func (s *PostgresIssueStore) CountChildren(ctx context.Context, parentID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM issues WHERE parent_issue_id = $1`

	if err := s.db.QueryRowContext(ctx, query, parentID).Scan(&count); err != nil {
		return 0, MapError(err)
	}

	return count, nil
}

// ListByProject implements store.IssueStore.ListByProject
// Issues come back column-major: ordered by the owning column's board
// position first, then by issue position within the column. This is the
// ordering the notifier broadcasts as the board snapshot.
func (s *PostgresIssueStore) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*domain.Issue, error) {
	query := `
		SELECT i.id, i.tenant_id, i.project_id, i.board_id, i.column_id, i.position,
			i.title, i.description, i.status, i.category, i.type, i.priority, i.labels,
			i.epic_id, i.sprint_id, i.parent_issue_id, i.assignee_id, i.reporter_id,
			i.created_at, i.updated_at
		FROM issues i
		JOIN columns c ON c.id = i.column_id
		WHERE i.project_id = $1
		ORDER BY c.position ASC, i.position ASC
	`

	rows, err := s.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	return collectIssues(rows)
}

// ListByColumn implements store.IssueStore.ListByColumn
func (s *PostgresIssueStore) ListByColumn(ctx context.Context, columnID uuid.UUID) ([]*domain.Issue, error) {
	query := `
		SELECT ` + issueColumns + `
		FROM issues
		WHERE column_id = $1
		ORDER BY position ASC
	`

	rows, err := s.db.QueryContext(ctx, query, columnID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	return collectIssues(rows)
}

// WithTx implements store.IssueStore.WithTx
func (s *PostgresIssueStore) WithTx(tx *sql.Tx) store.IssueStore {
	return &PostgresIssueStore{
		db:     tx,
		logger: s.logger,
	}
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scanning code.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanIssue(row rowScanner) (*domain.Issue, error) {
	var issue domain.Issue
	var description sql.NullString
	var labels []byte

	err := row.Scan(
		&issue.ID,
		&issue.TenantID,
		&issue.ProjectID,
		&issue.BoardID,
		&issue.ColumnID,
		&issue.Position,
		&issue.Title,
		&description,
		&issue.Status,
		&issue.Category,
		&issue.Type,
		&issue.Priority,
		&labels,
		&issue.EpicID,
		&issue.SprintID,
		&issue.ParentIssueID,
		&issue.AssigneeID,
		&issue.ReporterID,
		&issue.CreatedAt,
		&issue.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	issue.Description = description.String
	if len(labels) > 0 {
		if err := json.Unmarshal(labels, &issue.Labels); err != nil {
			return nil, fmt.Errorf("failed to decode labels: %w", err)
		}
	}

	return &issue, nil
}

func collectIssues(rows *sql.Rows) ([]*domain.Issue, error) {
	var issues []*domain.Issue

	for rows.Next() {
		issue, err := scanIssue(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan issue row: %w", err)
		}
		issues = append(issues, issue)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating issue rows: %w", err)
	}

	return issues, nil
}
