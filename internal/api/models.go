package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/kanban-api/internal/domain"
)

// CreateIssueRequest represents the request body for creating an issue.
// Project, board and tenant are derived server-side; clients only name the
// destination column.
type CreateIssueRequest struct {
	ColumnID      string   `json:"column_id"      validate:"required,uuid"`
	Title         string   `json:"title"          validate:"required,max=500"`
	Description   string   `json:"description"    validate:"max=10000"`
	Type          string   `json:"type"           validate:"omitempty,max=100"`
	Priority      string   `json:"priority"       validate:"omitempty,max=100"`
	Status        string   `json:"status"         validate:"omitempty,max=100"`
	Labels        []string `json:"labels"         validate:"omitempty,dive,max=100"`
	EpicID        *string  `json:"epic_id"        validate:"omitempty,uuid"`
	SprintID      *string  `json:"sprint_id"      validate:"omitempty,uuid"`
	ParentIssueID *string  `json:"parent_issue_id" validate:"omitempty,uuid"`
	AssigneeID    *string  `json:"assignee_id"    validate:"omitempty,uuid"`
	ReporterID    *string  `json:"reporter_id"    validate:"omitempty,uuid"`
}

// MoveIssueRequest represents the request body for moving an issue.
type MoveIssueRequest struct {
	SourceColumnID string `json:"source_column_id" validate:"required,uuid"`
	DestColumnID   string `json:"dest_column_id"   validate:"required,uuid"`
	NewPosition    *int   `json:"new_position"     validate:"required,min=0"`
}

// IssueResponse represents the response data for an issue.
type IssueResponse struct {
	ID            string     `json:"id"`
	TenantID      string     `json:"tenant_id"`
	ProjectID     string     `json:"project_id"`
	BoardID       string     `json:"board_id"`
	ColumnID      string     `json:"column_id"`
	Position      int        `json:"position"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	Status        string     `json:"status"`
	Category      string     `json:"category"`
	Type          string     `json:"type"`
	Priority      string     `json:"priority"`
	Labels        []string   `json:"labels,omitempty"`
	EpicID        *string    `json:"epic_id,omitempty"`
	SprintID      *string    `json:"sprint_id,omitempty"`
	ParentIssueID *string    `json:"parent_issue_id,omitempty"`
	AssigneeID    *string    `json:"assignee_id,omitempty"`
	ReporterID    *string    `json:"reporter_id,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// IssueListResponse wraps the ordered issue list for a project.
type IssueListResponse struct {
	Issues []IssueResponse `json:"issues"`
	Count  int             `json:"count"`
}

// issueToResponse converts a domain.Issue to an IssueResponse.
func issueToResponse(issue *domain.Issue) IssueResponse {
	return IssueResponse{
		ID:            issue.ID.String(),
		TenantID:      issue.TenantID.String(),
		ProjectID:     issue.ProjectID.String(),
		BoardID:       issue.BoardID.String(),
		ColumnID:      issue.ColumnID.String(),
		Position:      issue.Position,
		Title:         issue.Title,
		Description:   issue.Description,
		Status:        issue.Status,
		Category:      issue.Category,
		Type:          issue.Type,
		Priority:      issue.Priority,
		Labels:        issue.Labels,
		EpicID:        uuidPtrToString(issue.EpicID),
		SprintID:      uuidPtrToString(issue.SprintID),
		ParentIssueID: uuidPtrToString(issue.ParentIssueID),
		AssigneeID:    uuidPtrToString(issue.AssigneeID),
		ReporterID:    uuidPtrToString(issue.ReporterID),
		CreatedAt:     issue.CreatedAt,
		UpdatedAt:     issue.UpdatedAt,
	}
}

// issuesToListResponse converts a slice of issues to an IssueListResponse.
func issuesToListResponse(issues []*domain.Issue) IssueListResponse {
	out := make([]IssueResponse, 0, len(issues))
	for _, issue := range issues {
		out = append(out, issueToResponse(issue))
	}
	return IssueListResponse{Issues: out, Count: len(out)}
}

func uuidPtrToString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

// parseUUIDPtr parses an optional string field into an optional UUID. A nil
// or empty input yields nil; the caller has already run tag validation so a
// parse failure here is unexpected and treated as absent.
func parseUUIDPtr(s *string) *uuid.UUID {
	if s == nil || *s == "" {
		return nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil
	}
	return &id
}
