package service

import (
	"context"
	"database/sql"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/kanban-api/internal/domain"
	"github.com/phrazzld/kanban-api/internal/platform/logger"
	"github.com/phrazzld/kanban-api/internal/store"
)

// CreateIssueRequest carries the caller-supplied fields for a new issue.
// Project, board and tenant are derived server-side from the target column
// and the actor; position is always assigned at the tail of the column.
type CreateIssueRequest struct {
	ColumnID      uuid.UUID
	Title         string
	Description   string
	Type          string
	Priority      string
	Status        string
	Labels        []string
	EpicID        *uuid.UUID
	SprintID      *uuid.UUID
	ParentIssueID *uuid.UUID
	AssigneeID    *uuid.UUID
	ReporterID    *uuid.UUID
}

// BoardService provides the board mutation operations. All three mutations
// run their reads and writes inside one database transaction so no other
// transaction ever observes a partially-shifted column.
type BoardService interface {
	// CreateIssue appends a new issue at the tail of the given column.
	CreateIssue(ctx context.Context, req CreateIssueRequest, actor domain.Actor) (*domain.Issue, error)

	// MoveIssue reorders an issue within its column or moves it to another
	// column at the given position, preserving dense ranks in both columns.
	MoveIssue(ctx context.Context, issueID, sourceColumnID, destColumnID uuid.UUID, newPosition int, actor domain.Actor) error

	// DeleteIssue removes an issue and compacts the trailing positions of
	// its column. Issues with sub-issues are rejected.
	DeleteIssue(ctx context.Context, issueID uuid.UUID, actor domain.Actor) error

	// GetIssue retrieves an issue by its ID.
	GetIssue(ctx context.Context, issueID uuid.UUID) (*domain.Issue, error)

	// ListProjectIssues returns the project's full ordered issue list.
	ListProjectIssues(ctx context.Context, projectID uuid.UUID) ([]*domain.Issue, error)
}

// boardServiceImpl implements the BoardService interface
type boardServiceImpl struct {
	db       *sql.DB
	issues   store.IssueStore
	columns  store.ColumnStore
	boards   store.BoardStore
	history  store.HistoryStore
	notifier *Notifier
	cache    CacheInvalidator
	logger   *slog.Logger
}

// NewBoardService creates a new BoardService.
// It returns an error if any of the required dependencies are nil.
func NewBoardService(
	db *sql.DB,
	issues store.IssueStore,
	columns store.ColumnStore,
	boards store.BoardStore,
	history store.HistoryStore,
	notifier *Notifier,
	cache CacheInvalidator,
	lg *slog.Logger,
) (BoardService, error) {
	if db == nil {
		return nil, domain.NewValidationError("db", "cannot be nil", domain.ErrValidation)
	}
	if issues == nil {
		return nil, domain.NewValidationError("issues", "cannot be nil", domain.ErrValidation)
	}
	if columns == nil {
		return nil, domain.NewValidationError("columns", "cannot be nil", domain.ErrValidation)
	}
	if boards == nil {
		return nil, domain.NewValidationError("boards", "cannot be nil", domain.ErrValidation)
	}
	if history == nil {
		return nil, domain.NewValidationError("history", "cannot be nil", domain.ErrValidation)
	}
	if notifier == nil {
		return nil, domain.NewValidationError("notifier", "cannot be nil", domain.ErrValidation)
	}
	if cache == nil {
		cache = NoopInvalidator{}
	}
	if lg == nil {
		lg = slog.Default()
	}

	return &boardServiceImpl{
		db:       db,
		issues:   issues,
		columns:  columns,
		boards:   boards,
		history:  history,
		notifier: notifier,
		cache:    cache,
		logger:   lg.With(slog.String("component", "board_service")),
	}, nil
}

// CreateIssue implements BoardService.CreateIssue
func (s *boardServiceImpl) CreateIssue(
	ctx context.Context,
	req CreateIssueRequest,
	actor domain.Actor,
) (*domain.Issue, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var created *domain.Issue

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txIssues := s.issues.WithTx(tx)
		txColumns := s.columns.WithTx(tx)
		txBoards := s.boards.WithTx(tx)
		txHistory := s.history.WithTx(tx)

		col, err := txColumns.GetByID(ctx, req.ColumnID)
		if err != nil {
			return err
		}

		board, err := txBoards.GetByID(ctx, col.BoardID)
		if err != nil {
			return err
		}

		// A parent link must stay inside the parent's project.
		if req.ParentIssueID != nil {
			parent, err := txIssues.GetByID(ctx, *req.ParentIssueID)
			if err != nil {
				return err
			}
			if parent.ProjectID != board.ProjectID {
				return ErrProjectMismatch
			}
		}

		issue, err := domain.NewIssue(actor.TenantID, board.ProjectID, col.BoardID, col.ID, req.Title)
		if err != nil {
			return err
		}

		issue.Description = req.Description
		issue.Type = req.Type
		issue.Priority = req.Priority
		issue.Labels = req.Labels
		issue.EpicID = req.EpicID
		issue.SprintID = req.SprintID
		issue.ParentIssueID = req.ParentIssueID
		issue.AssigneeID = req.AssigneeID
		issue.ReporterID = req.ReporterID

		// New issues take the column's status/category unless the caller
		// supplied an explicit status.
		issue.Category = col.Category
		issue.Status = req.Status
		if issue.Status == "" {
			issue.Status = col.Name
		}

		// Tail append: one past the highest occupied rank.
		maxPos, err := txIssues.MaxPosition(ctx, col.ID)
		if err != nil {
			return err
		}
		issue.Position = maxPos + 1

		if err := txIssues.Create(ctx, issue); err != nil {
			log.Error("failed to create issue in transaction",
				slog.String("column_id", col.ID.String()),
				slog.String("error", err.Error()))
			return NewBoardServiceError("create_issue", "failed to save issue", err)
		}

		if err := appendHistory(ctx, txHistory, issue.TenantID, domain.EntityTypeIssue,
			issue.ID, actor.ID, domain.HistoryFieldCreated, "", issue.Title); err != nil {
			return NewBoardServiceError("create_issue", "failed to record history", err)
		}

		created = issue
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, created.ProjectID, created.ID, created.ColumnID)
	s.notifier.NotifyBoard(ctx, BoardActionCreate, created.BoardID, created.ProjectID, actor.ID, created.ID)

	log.Debug("issue created",
		slog.String("issue_id", created.ID.String()),
		slog.String("column_id", created.ColumnID.String()),
		slog.Int("position", created.Position))

	return created, nil
}

// MoveIssue implements BoardService.MoveIssue
// The algorithm always works off the live row's column and position rather
// than caller-supplied values, so concurrent movers serialize cleanly on the
// transaction.
func (s *boardServiceImpl) MoveIssue(
	ctx context.Context,
	issueID, sourceColumnID, destColumnID uuid.UUID,
	newPosition int,
	actor domain.Actor,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if newPosition < 0 {
		return ErrInvalidPosition
	}

	var (
		moved       bool
		boardID     uuid.UUID
		projectID   uuid.UUID
		oldColumnID uuid.UUID
		newColumnID uuid.UUID
	)

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txIssues := s.issues.WithTx(tx)
		txColumns := s.columns.WithTx(tx)
		txBoards := s.boards.WithTx(tx)
		txHistory := s.history.WithTx(tx)

		issue, err := txIssues.GetByID(ctx, issueID)
		if err != nil {
			return err
		}

		if _, err := txColumns.GetByID(ctx, sourceColumnID); err != nil {
			return err
		}
		dest, err := txColumns.GetByID(ctx, destColumnID)
		if err != nil {
			return err
		}

		destBoard, err := txBoards.GetByID(ctx, dest.BoardID)
		if err != nil {
			return err
		}
		if destBoard.ProjectID != issue.ProjectID {
			return ErrProjectMismatch
		}

		oldColumnID = issue.ColumnID
		oldPos := issue.Position
		projectID = issue.ProjectID

		if dest.ID == issue.ColumnID {
			// Same-column reorder. The WIP gate never applies here: the
			// issue is already resident, so occupancy does not change.
			count, err := txIssues.CountInColumn(ctx, dest.ID)
			if err != nil {
				return err
			}
			target := newPosition
			if target > count-1 {
				target = count - 1
			}

			if target == oldPos {
				return nil // no-op: no shifts, no history, no broadcast
			}

			if target > oldPos {
				// Moving down: everything in (oldPos, target] steps up one rank.
				err = txIssues.ShiftRange(ctx, dest.ID, oldPos+1, target, -1, &issue.ID)
			} else {
				// Moving up: everything in [target, oldPos) steps down one rank.
				err = txIssues.ShiftRange(ctx, dest.ID, target, oldPos-1, +1, &issue.ID)
			}
			if err != nil {
				return NewBoardServiceError("move_issue", "failed to shift positions", err)
			}

			issue.Position = target
			issue.UpdatedAt = time.Now().UTC()
			if err := txIssues.Update(ctx, issue); err != nil {
				return NewBoardServiceError("move_issue", "failed to update issue", err)
			}

			if err := appendHistory(ctx, txHistory, issue.TenantID, domain.EntityTypeIssue,
				issue.ID, actor.ID, domain.HistoryFieldPosition,
				strconv.Itoa(oldPos), strconv.Itoa(target)); err != nil {
				return NewBoardServiceError("move_issue", "failed to record history", err)
			}
		} else {
			// Cross-column move: the gate blocks net increases only.
			occupancy, err := txIssues.CountInColumn(ctx, dest.ID)
			if err != nil {
				return err
			}
			if err := checkColumnCapacity(dest.Limit, occupancy, false); err != nil {
				return err
			}

			target := newPosition
			if target > occupancy {
				target = occupancy
			}

			// Close the gap in the source column.
			if err := txIssues.ShiftRange(ctx, issue.ColumnID, oldPos+1, -1, -1, &issue.ID); err != nil {
				return NewBoardServiceError("move_issue", "failed to compact source column", err)
			}
			// Open a slot in the destination column.
			if err := txIssues.ShiftRange(ctx, dest.ID, target, -1, +1, &issue.ID); err != nil {
				return NewBoardServiceError("move_issue", "failed to open destination slot", err)
			}

			oldStatus := issue.Status

			issue.ColumnID = dest.ID
			issue.BoardID = dest.BoardID
			issue.Position = target
			// Status and category always track the destination column on a
			// cross-column move, whatever the caller supplied.
			issue.Status = dest.Name
			issue.Category = dest.Category
			issue.UpdatedAt = time.Now().UTC()

			if err := txIssues.Update(ctx, issue); err != nil {
				return NewBoardServiceError("move_issue", "failed to update issue", err)
			}

			if err := appendHistory(ctx, txHistory, issue.TenantID, domain.EntityTypeIssue,
				issue.ID, actor.ID, domain.HistoryFieldColumn,
				oldColumnID.String(), dest.ID.String()); err != nil {
				return NewBoardServiceError("move_issue", "failed to record history", err)
			}
			if oldStatus != issue.Status {
				if err := appendHistory(ctx, txHistory, issue.TenantID, domain.EntityTypeIssue,
					issue.ID, actor.ID, domain.HistoryFieldStatus,
					oldStatus, issue.Status); err != nil {
					return NewBoardServiceError("move_issue", "failed to record history", err)
				}
			}
		}

		moved = true
		boardID = issue.BoardID
		newColumnID = issue.ColumnID
		return nil
	})
	if err != nil {
		return err
	}

	if !moved {
		return nil // idempotent move: leave caches, history and subscribers untouched
	}

	s.invalidate(ctx, projectID, issueID, oldColumnID, newColumnID)
	s.notifier.NotifyBoard(ctx, BoardActionMove, boardID, projectID, actor.ID, issueID)

	log.Debug("issue moved",
		slog.String("issue_id", issueID.String()),
		slog.String("source_column_id", oldColumnID.String()),
		slog.String("dest_column_id", newColumnID.String()),
		slog.Int("position", newPosition))

	return nil
}

// DeleteIssue implements BoardService.DeleteIssue
func (s *boardServiceImpl) DeleteIssue(
	ctx context.Context,
	issueID uuid.UUID,
	actor domain.Actor,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var (
		boardID   uuid.UUID
		projectID uuid.UUID
		columnID  uuid.UUID
	)

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txIssues := s.issues.WithTx(tx)
		txHistory := s.history.WithTx(tx)

		issue, err := txIssues.GetByID(ctx, issueID)
		if err != nil {
			return err
		}

		children, err := txIssues.CountChildren(ctx, issue.ID)
		if err != nil {
			return err
		}
		if children > 0 {
			return ErrHasSubIssues
		}

		if err := txIssues.Delete(ctx, issue.ID); err != nil {
			return NewBoardServiceError("delete_issue", "failed to delete issue", err)
		}

		// Compact the trailing positions of the column.
		if err := txIssues.ShiftRange(ctx, issue.ColumnID, issue.Position+1, -1, -1, nil); err != nil {
			return NewBoardServiceError("delete_issue", "failed to compact column", err)
		}

		if err := appendHistory(ctx, txHistory, issue.TenantID, domain.EntityTypeIssue,
			issue.ID, actor.ID, domain.HistoryFieldDeleted, issue.Title, ""); err != nil {
			return NewBoardServiceError("delete_issue", "failed to record history", err)
		}

		boardID = issue.BoardID
		projectID = issue.ProjectID
		columnID = issue.ColumnID
		return nil
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx, projectID, issueID, columnID)
	s.notifier.NotifyBoard(ctx, BoardActionDelete, boardID, projectID, actor.ID, issueID)

	log.Debug("issue deleted",
		slog.String("issue_id", issueID.String()),
		slog.String("column_id", columnID.String()))

	return nil
}

// GetIssue implements BoardService.GetIssue
func (s *boardServiceImpl) GetIssue(ctx context.Context, issueID uuid.UUID) (*domain.Issue, error) {
	issue, err := s.issues.GetByID(ctx, issueID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, store.ErrIssueNotFound
		}
		return nil, NewBoardServiceError("get_issue", "failed to retrieve issue", err)
	}
	return issue, nil
}

// ListProjectIssues implements BoardService.ListProjectIssues
func (s *boardServiceImpl) ListProjectIssues(ctx context.Context, projectID uuid.UUID) ([]*domain.Issue, error) {
	issues, err := s.issues.ListByProject(ctx, projectID)
	if err != nil {
		return nil, NewBoardServiceError("list_project_issues", "failed to list issues", err)
	}
	return issues, nil
}

// invalidate drops the derived read caches touched by a mutation. Failures
// are logged and swallowed; the mutation has already committed.
func (s *boardServiceImpl) invalidate(ctx context.Context, projectID, issueID uuid.UUID, columnIDs ...uuid.UUID) {
	keys := []string{projectIssuesKey(projectID), issueKey(issueID)}
	seen := make(map[uuid.UUID]struct{}, len(columnIDs))
	for _, id := range columnIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		keys = append(keys, columnIssuesKey(id))
	}

	if err := s.cache.Invalidate(ctx, keys...); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("cache invalidation failed",
			slog.String("project_id", projectID.String()),
			slog.String("error", err.Error()))
	}
}
