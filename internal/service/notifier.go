package service

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/phrazzld/kanban-api/internal/domain"
	"github.com/phrazzld/kanban-api/internal/platform/logger"
	"github.com/phrazzld/kanban-api/internal/store"
)

// BoardAction tags the kind of mutation a snapshot broadcast was triggered by.
type BoardAction string

// Possible board action values
const (
	BoardActionCreate BoardAction = "create"
	BoardActionUpdate BoardAction = "update"
	BoardActionMove   BoardAction = "move"
	BoardActionDelete BoardAction = "delete"
)

// BoardSnapshot is the payload pushed to a board's subscribers after every
// mutation. Instead of a diff it carries the entire ordered issue list for
// the project, so clients replace state wholesale and never merge. ActorID
// lets the originating client suppress a redundant self-refresh; Version is
// monotonically increasing so clients can discard out-of-order deliveries.
type BoardSnapshot struct {
	Action   BoardAction     `json:"action"`
	BoardID  uuid.UUID       `json:"board_id"`
	IssueIDs []uuid.UUID     `json:"issue_ids"`
	ActorID  uuid.UUID       `json:"actor_id"`
	Version  uint64          `json:"version"`
	Issues   []*domain.Issue `json:"issues"`
}

// Broadcaster pushes a payload to every subscriber of a board's room.
type Broadcaster interface {
	BroadcastToBoard(ctx context.Context, boardID uuid.UUID, payload any) error
}

// Notifier recomputes and broadcasts board snapshots. Broadcast is
// fire-and-forget: failures are logged and never propagate to the mutation
// that triggered them.
type Notifier struct {
	issueStore  store.IssueStore
	broadcaster Broadcaster
	version     atomic.Uint64
	logger      *slog.Logger
}

// NewNotifier creates a Notifier. If logger is nil, a default logger is used.
func NewNotifier(issueStore store.IssueStore, broadcaster Broadcaster, lg *slog.Logger) *Notifier {
	if lg == nil {
		lg = slog.Default()
	}
	return &Notifier{
		issueStore:  issueStore,
		broadcaster: broadcaster,
		logger:      lg.With(slog.String("component", "notifier")),
	}
}

// NotifyBoard recomputes the project's full ordered issue list and pushes it
// to the board's room. Always safe to call after commit; errors are logged,
// never returned.
func (n *Notifier) NotifyBoard(
	ctx context.Context,
	action BoardAction,
	boardID, projectID uuid.UUID,
	actorID uuid.UUID,
	issueIDs ...uuid.UUID,
) {
	log := logger.FromContextOrDefault(ctx, n.logger)

	issues, err := n.issueStore.ListByProject(ctx, projectID)
	if err != nil {
		log.Error("failed to recompute board snapshot",
			slog.String("board_id", boardID.String()),
			slog.String("project_id", projectID.String()),
			slog.String("error", err.Error()))
		return
	}

	snapshot := &BoardSnapshot{
		Action:   action,
		BoardID:  boardID,
		IssueIDs: issueIDs,
		ActorID:  actorID,
		Version:  n.version.Add(1),
		Issues:   issues,
	}

	if err := n.broadcaster.BroadcastToBoard(ctx, boardID, snapshot); err != nil {
		log.Error("failed to broadcast board snapshot",
			slog.String("board_id", boardID.String()),
			slog.String("action", string(action)),
			slog.Uint64("version", snapshot.Version),
			slog.String("error", err.Error()))
	}
}
