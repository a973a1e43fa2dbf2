package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/kanban-api/internal/domain"
	"github.com/phrazzld/kanban-api/internal/store"
)

// PostgresColumnStore implements the store.ColumnStore interface
// using a PostgreSQL database as the storage backend.
type PostgresColumnStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresColumnStore creates a new PostgreSQL implementation of the ColumnStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresColumnStore(db store.DBTX, logger *slog.Logger) *PostgresColumnStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresColumnStore{
		db:     db,
		logger: logger.With(slog.String("component", "column_store")),
	}
}

// Ensure PostgresColumnStore implements store.ColumnStore interface
var _ store.ColumnStore = (*PostgresColumnStore)(nil)

const columnColumns = `id, board_id, name, category, position, wip_limit`

// GetByID implements store.ColumnStore.GetByID
func (s *PostgresColumnStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Column, error) {
	query := `SELECT ` + columnColumns + ` FROM columns WHERE id = $1`

	col, err := scanColumn(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrColumnNotFound
		}
		return nil, MapError(err)
	}

	return col, nil
}

// ListByBoard implements store.ColumnStore.ListByBoard
func (s *PostgresColumnStore) ListByBoard(ctx context.Context, boardID uuid.UUID) ([]*domain.Column, error) {
	query := `SELECT ` + columnColumns + ` FROM columns WHERE board_id = $1 ORDER BY position ASC`

	rows, err := s.db.QueryContext(ctx, query, boardID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var columns []*domain.Column
	for rows.Next() {
		col, err := scanColumn(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan column row: %w", err)
		}
		columns = append(columns, col)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating column rows: %w", err)
	}

	return columns, nil
}

// FirstByBoard implements store.ColumnStore.FirstByBoard
func (s *PostgresColumnStore) FirstByBoard(ctx context.Context, boardID uuid.UUID) (*domain.Column, error) {
	query := `SELECT ` + columnColumns + ` FROM columns WHERE board_id = $1 ORDER BY position ASC LIMIT 1`

	col, err := scanColumn(s.db.QueryRowContext(ctx, query, boardID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrColumnNotFound
		}
		return nil, MapError(err)
	}

	return col, nil
}

// WithTx implements store.ColumnStore.WithTx
func (s *PostgresColumnStore) WithTx(tx *sql.Tx) store.ColumnStore {
	return &PostgresColumnStore{
		db:     tx,
		logger: s.logger,
	}
}

func scanColumn(row rowScanner) (*domain.Column, error) {
	var col domain.Column
	var limit sql.NullInt64

	err := row.Scan(
		&col.ID,
		&col.BoardID,
		&col.Name,
		&col.Category,
		&col.Position,
		&limit,
	)
	if err != nil {
		return nil, err
	}

	if limit.Valid {
		l := int(limit.Int64)
		col.Limit = &l
	}

	return &col, nil
}
