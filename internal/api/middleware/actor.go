package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/kanban-api/internal/api/shared"
)

// Headers set by the upstream auth/tenant-resolution layer. This service
// never computes identity or authorization itself; it trusts these values
// as resolved facts.
const (
	ActorIDHeader  = "X-Actor-ID"
	TenantIDHeader = "X-Tenant-ID"
)

// ActorMiddleware extracts the resolved actor and tenant IDs from the
// request headers and places them in the context. Requests without both
// headers are rejected: they can only reach this service by bypassing the
// auth layer.
func ActorMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actorID, err := uuid.Parse(r.Header.Get(ActorIDHeader))
		if err != nil || actorID == uuid.Nil {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Missing or invalid actor identity")
			return
		}

		tenantID, err := uuid.Parse(r.Header.Get(TenantIDHeader))
		if err != nil || tenantID == uuid.Nil {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Missing or invalid tenant")
			return
		}

		ctx := context.WithValue(r.Context(), shared.ActorIDContextKey, actorID)
		ctx = context.WithValue(ctx, shared.TenantIDContextKey, tenantID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
