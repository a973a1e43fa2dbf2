package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// CacheInvalidator removes derived read-cache entries by key. Implementations
// must treat missing keys as success; invalidation is best-effort and its
// failures never fail the originating mutation.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, keys ...string) error
}

// NoopInvalidator is used when no cache backend is configured.
type NoopInvalidator struct{}

// Invalidate implements CacheInvalidator.
func (NoopInvalidator) Invalidate(ctx context.Context, keys ...string) error {
	return nil
}

// Cache key builders. Every mutation invalidates the project list, the issue
// itself and each affected column's issue list.

func projectIssuesKey(projectID uuid.UUID) string {
	return fmt.Sprintf("project:%s:issues", projectID)
}

func issueKey(issueID uuid.UUID) string {
	return fmt.Sprintf("issue:%s", issueID)
}

func columnIssuesKey(columnID uuid.UUID) string {
	return fmt.Sprintf("column:%s:issues", columnID)
}
