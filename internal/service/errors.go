// Package service implements the board move engine: transactional create,
// move and delete of issues under the dense-rank position invariant, plus the
// audit, notification and cache side effects every mutation carries.
package service

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced by the board service. These map one-to-one onto
// user-visible failure modes; infrastructure failures are wrapped with
// BoardServiceError instead.
var (
	// ErrInvalidPosition is returned when a move targets a negative position.
	ErrInvalidPosition = errors.New("position must be non-negative")

	// ErrProjectMismatch is returned when the issue and the columns involved
	// in an operation do not all belong to the same project.
	ErrProjectMismatch = errors.New("issue and columns must belong to the same project")

	// ErrColumnFull is returned when a move would raise a column's occupancy
	// above its WIP limit. Reorders inside the column are never blocked.
	ErrColumnFull = errors.New("column is at its WIP limit")

	// ErrHasSubIssues is returned when deleting an issue that still has
	// sub-issues referencing it as parent.
	ErrHasSubIssues = errors.New("issue has sub-issues and cannot be deleted")
)

// BoardServiceError is a custom error type for board service errors.
type BoardServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for BoardServiceError.
func (e *BoardServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("board service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("board service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *BoardServiceError) Unwrap() error {
	return e.Err
}

// NewBoardServiceError creates a new BoardServiceError.
func NewBoardServiceError(operation, message string, err error) *BoardServiceError {
	return &BoardServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
