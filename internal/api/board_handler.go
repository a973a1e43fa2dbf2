package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/kanban-api/internal/api/shared"
	"github.com/phrazzld/kanban-api/internal/platform/logger"
	"github.com/phrazzld/kanban-api/internal/ws"
)

// BoardHandler handles board-level HTTP requests, currently the websocket
// subscription endpoint for board change notifications.
type BoardHandler struct {
	hub    *ws.Hub
	logger *slog.Logger
}

// NewBoardHandler creates a new BoardHandler.
func NewBoardHandler(hub *ws.Hub, logger *slog.Logger) *BoardHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for BoardHandler")
	}

	return &BoardHandler{
		hub:    hub,
		logger: logger.With(slog.String("component", "board_handler")),
	}
}

// SubscribeBoard handles GET /ws/boards/{id} requests.
// It upgrades the connection to a websocket and subscribes it to the board's
// room; every board mutation then pushes a full snapshot to the peer.
func (h *BoardHandler) SubscribeBoard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	boardID, err := pathUUID(r, "id")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid board ID format")
		return
	}

	log.Debug("board subscription opened", slog.String("board_id", boardID.String()))
	ws.ServeWS(h.hub, boardID, w, r)
}
