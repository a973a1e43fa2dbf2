package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Issue-specific validation errors
var (
	// ErrIssueIDEmpty is returned when an issue ID is empty or nil.
	ErrIssueIDEmpty = errors.New("issue ID cannot be empty")

	// ErrIssueTenantIDEmpty is returned when an issue's tenant ID is empty or nil.
	ErrIssueTenantIDEmpty = errors.New("issue tenant ID cannot be empty")

	// ErrIssueProjectIDEmpty is returned when an issue's project ID is empty or nil.
	ErrIssueProjectIDEmpty = errors.New("issue project ID cannot be empty")

	// ErrIssueColumnIDEmpty is returned when an issue's column ID is empty or nil.
	ErrIssueColumnIDEmpty = errors.New("issue column ID cannot be empty")

	// ErrIssueTitleEmpty is returned when an issue's title is empty.
	ErrIssueTitleEmpty = errors.New("issue title cannot be empty")

	// ErrIssuePositionNegative is returned when an issue's position is negative.
	ErrIssuePositionNegative = errors.New("issue position cannot be negative")
)

// Issue represents a single tracked work item on a board. Within its column,
// an issue occupies a dense, zero-based rank stored in Position: for a column
// holding N issues, the set of positions is exactly {0, 1, ..., N-1}.
type Issue struct {
	ID            uuid.UUID  `json:"id"`
	TenantID      uuid.UUID  `json:"tenant_id"`
	ProjectID     uuid.UUID  `json:"project_id"`
	BoardID       uuid.UUID  `json:"board_id"`
	ColumnID      uuid.UUID  `json:"column_id"`
	Position      int        `json:"position"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	Status        string     `json:"status"`
	Category      string     `json:"category"`
	Type          string     `json:"type"`
	Priority      string     `json:"priority"`
	Labels        []string   `json:"labels,omitempty"`
	EpicID        *uuid.UUID `json:"epic_id,omitempty"`
	SprintID      *uuid.UUID `json:"sprint_id,omitempty"`
	ParentIssueID *uuid.UUID `json:"parent_issue_id,omitempty"`
	AssigneeID    *uuid.UUID `json:"assignee_id,omitempty"`
	ReporterID    *uuid.UUID `json:"reporter_id,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// NewIssue creates a new Issue in the given column. It generates a new UUID
// for the issue ID and sets the creation/update timestamps. The position is
// assigned by the store at creation time (tail of the destination column), so
// it is left at zero here. Returns an error if validation fails.
func NewIssue(tenantID, projectID, boardID, columnID uuid.UUID, title string) (*Issue, error) {
	now := time.Now().UTC()
	issue := &Issue{
		ID:        uuid.New(),
		TenantID:  tenantID,
		ProjectID: projectID,
		BoardID:   boardID,
		ColumnID:  columnID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := issue.Validate(); err != nil {
		return nil, err
	}

	return issue, nil
}

// Validate checks if the Issue has valid data.
// Returns an error if any field fails validation.
func (i *Issue) Validate() error {
	if i.ID == uuid.Nil {
		return ErrIssueIDEmpty
	}

	if i.TenantID == uuid.Nil {
		return ErrIssueTenantIDEmpty
	}

	if i.ProjectID == uuid.Nil {
		return ErrIssueProjectIDEmpty
	}

	if i.ColumnID == uuid.Nil {
		return ErrIssueColumnIDEmpty
	}

	if i.Title == "" {
		return ErrIssueTitleEmpty
	}

	if i.Position < 0 {
		return ErrIssuePositionNegative
	}

	return nil
}
