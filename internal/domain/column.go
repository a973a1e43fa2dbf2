package domain

import (
	"errors"

	"github.com/google/uuid"
)

// Column-specific validation errors
var (
	// ErrColumnIDEmpty is returned when a column ID is empty or nil.
	ErrColumnIDEmpty = errors.New("column ID cannot be empty")

	// ErrColumnBoardIDEmpty is returned when a column's board ID is empty or nil.
	ErrColumnBoardIDEmpty = errors.New("column board ID cannot be empty")

	// ErrColumnNameEmpty is returned when a column's name is empty.
	ErrColumnNameEmpty = errors.New("column name cannot be empty")

	// ErrColumnLimitInvalid is returned when a column's WIP limit is zero or negative.
	ErrColumnLimitInvalid = errors.New("column limit must be greater than zero")
)

// Column represents a single lane on a board. Issues inside a column carry a
// dense rank; the column itself carries a Position ordering it among its
// board's columns. Limit is the optional WIP cap: nil means unlimited.
type Column struct {
	ID       uuid.UUID `json:"id"`
	BoardID  uuid.UUID `json:"board_id"`
	Name     string    `json:"name"`
	Category string    `json:"category"`
	Position int       `json:"position"`
	Limit    *int      `json:"limit,omitempty"`
}

// Validate checks if the Column has valid data.
func (c *Column) Validate() error {
	if c.ID == uuid.Nil {
		return ErrColumnIDEmpty
	}

	if c.BoardID == uuid.Nil {
		return ErrColumnBoardIDEmpty
	}

	if c.Name == "" {
		return ErrColumnNameEmpty
	}

	if c.Limit != nil && *c.Limit <= 0 {
		return ErrColumnLimitInvalid
	}

	return nil
}
