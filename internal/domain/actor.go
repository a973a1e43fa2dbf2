package domain

import (
	"github.com/google/uuid"
)

// Actor identifies the authenticated user performing an operation, together
// with the tenant scoping it. Both are resolved by upstream middleware and
// trusted as-is here.
type Actor struct {
	ID       uuid.UUID `json:"id"`
	TenantID uuid.UUID `json:"tenant_id"`
}
