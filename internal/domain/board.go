package domain

import (
	"github.com/google/uuid"
)

// Board groups the columns of a single project view. The move engine loads it
// to verify that every column involved in an operation belongs to the issue's
// project, and the scheduler uses it to resolve a template's project.
type Board struct {
	ID        uuid.UUID `json:"id"`
	TenantID  uuid.UUID `json:"tenant_id"`
	ProjectID uuid.UUID `json:"project_id"`
	Name      string    `json:"name"`
}
