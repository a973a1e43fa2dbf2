package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/kanban-api/internal/api/shared"
	"github.com/phrazzld/kanban-api/internal/domain"
	"github.com/phrazzld/kanban-api/internal/platform/logger"
	"github.com/phrazzld/kanban-api/internal/redact"
	"github.com/phrazzld/kanban-api/internal/service"
)

// IssueHandler handles issue-related HTTP requests.
type IssueHandler struct {
	boardService service.BoardService
	logger       *slog.Logger
}

// NewIssueHandler creates a new IssueHandler.
func NewIssueHandler(boardService service.BoardService, logger *slog.Logger) *IssueHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for IssueHandler")
	}

	return &IssueHandler{
		boardService: boardService,
		logger:       logger.With(slog.String("component", "issue_handler")),
	}
}

// actorFromContext reads the actor and tenant resolved by the middleware.
func actorFromContext(r *http.Request) (domain.Actor, bool) {
	actorID, ok := r.Context().Value(shared.ActorIDContextKey).(uuid.UUID)
	if !ok || actorID == uuid.Nil {
		return domain.Actor{}, false
	}
	tenantID, ok := r.Context().Value(shared.TenantIDContextKey).(uuid.UUID)
	if !ok || tenantID == uuid.Nil {
		return domain.Actor{}, false
	}
	return domain.Actor{ID: actorID, TenantID: tenantID}, true
}

// pathUUID extracts and parses a UUID path parameter.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, name))
}

// CreateIssue handles POST /issues requests.
// The new issue is appended at the tail of the named column; project, board
// and tenant are derived from the column and the actor.
func (h *IssueHandler) CreateIssue(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	actor, ok := actorFromContext(r)
	if !ok {
		log.Warn("actor not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Actor not found or invalid")
		return
	}

	var req CreateIssueRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		log.Warn("validation error", slog.String("error", redact.Error(err)))
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	columnID, err := uuid.Parse(req.ColumnID)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid column ID format")
		return
	}

	issue, err := h.boardService.CreateIssue(r.Context(), service.CreateIssueRequest{
		ColumnID:      columnID,
		Title:         req.Title,
		Description:   req.Description,
		Type:          req.Type,
		Priority:      req.Priority,
		Status:        req.Status,
		Labels:        req.Labels,
		EpicID:        parseUUIDPtr(req.EpicID),
		SprintID:      parseUUIDPtr(req.SprintID),
		ParentIssueID: parseUUIDPtr(req.ParentIssueID),
		AssigneeID:    parseUUIDPtr(req.AssigneeID),
		ReporterID:    parseUUIDPtr(req.ReporterID),
	}, actor)
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		if statusCode == http.StatusInternalServerError {
			safeMessage = "Failed to create issue"
		}
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	log.Debug("issue created",
		slog.String("issue_id", issue.ID.String()),
		slog.String("column_id", columnID.String()),
		slog.Int("position", issue.Position))
	shared.RespondWithJSON(w, r, http.StatusCreated, issueToResponse(issue))
}

// MoveIssue handles POST /issues/{id}/move requests.
// It reorders the issue inside its column or moves it across columns while
// keeping positions dense in both.
func (h *IssueHandler) MoveIssue(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	actor, ok := actorFromContext(r)
	if !ok {
		log.Warn("actor not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Actor not found or invalid")
		return
	}

	issueID, err := pathUUID(r, "id")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid issue ID format")
		return
	}

	var req MoveIssueRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		log.Warn("validation error", slog.String("error", redact.Error(err)))
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	sourceColumnID, err := uuid.Parse(req.SourceColumnID)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid source column ID format")
		return
	}
	destColumnID, err := uuid.Parse(req.DestColumnID)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid destination column ID format")
		return
	}

	err = h.boardService.MoveIssue(r.Context(), issueID, sourceColumnID, destColumnID, *req.NewPosition, actor)
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		if statusCode == http.StatusInternalServerError {
			safeMessage = "Failed to move issue"
		}
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	log.Debug("issue moved",
		slog.String("issue_id", issueID.String()),
		slog.String("dest_column_id", destColumnID.String()),
		slog.Int("new_position", *req.NewPosition))
	w.WriteHeader(http.StatusNoContent)
}

// DeleteIssue handles DELETE /issues/{id} requests.
// Deleting an issue with sub-issues is rejected with 409.
func (h *IssueHandler) DeleteIssue(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	actor, ok := actorFromContext(r)
	if !ok {
		log.Warn("actor not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Actor not found or invalid")
		return
	}

	issueID, err := pathUUID(r, "id")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid issue ID format")
		return
	}

	if err := h.boardService.DeleteIssue(r.Context(), issueID, actor); err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		if statusCode == http.StatusInternalServerError {
			safeMessage = "Failed to delete issue"
		}
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	log.Debug("issue deleted", slog.String("issue_id", issueID.String()))
	w.WriteHeader(http.StatusNoContent)
}

// GetIssue handles GET /issues/{id} requests.
func (h *IssueHandler) GetIssue(w http.ResponseWriter, r *http.Request) {
	issueID, err := pathUUID(r, "id")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid issue ID format")
		return
	}

	issue, err := h.boardService.GetIssue(r.Context(), issueID)
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		if statusCode == http.StatusInternalServerError {
			safeMessage = "Failed to get issue"
		}
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, issueToResponse(issue))
}

// ListProjectIssues handles GET /projects/{id}/issues requests.
// Issues are returned in board order: by column position, then by issue
// position inside the column.
func (h *IssueHandler) ListProjectIssues(w http.ResponseWriter, r *http.Request) {
	projectID, err := pathUUID(r, "id")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid project ID format")
		return
	}

	issues, err := h.boardService.ListProjectIssues(r.Context(), projectID)
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		if statusCode == http.StatusInternalServerError {
			safeMessage = "Failed to list project issues"
		}
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, issuesToListResponse(issues))
}
