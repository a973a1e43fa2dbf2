package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Frequency determines how a recurring issue template advances its schedule.
type Frequency string

// Possible frequency values
const (
	FrequencyDaily   Frequency = "DAILY"
	FrequencyWeekly  Frequency = "WEEKLY"
	FrequencyMonthly Frequency = "MONTHLY"
	FrequencyCustom  Frequency = "CUSTOM"
)

// Valid reports whether f is one of the supported frequencies.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyCustom:
		return true
	}
	return false
}

// Template-specific validation errors
var (
	// ErrTemplateIDEmpty is returned when a template ID is empty or nil.
	ErrTemplateIDEmpty = errors.New("template ID cannot be empty")

	// ErrTemplateTenantIDEmpty is returned when a template's tenant ID is empty or nil.
	ErrTemplateTenantIDEmpty = errors.New("template tenant ID cannot be empty")

	// ErrTemplateBoardIDEmpty is returned when a template's board ID is empty or nil.
	ErrTemplateBoardIDEmpty = errors.New("template board ID cannot be empty")

	// ErrTemplateTitleEmpty is returned when a template's title is empty.
	ErrTemplateTitleEmpty = errors.New("template title cannot be empty")

	// ErrTemplateNextRunZero is returned when a template's next run time is unset.
	ErrTemplateNextRunZero = errors.New("template next run time cannot be zero")

	// ErrRecurrenceIntervalInvalid is returned when a daily interval is negative.
	ErrRecurrenceIntervalInvalid = errors.New("recurrence interval cannot be negative")

	// ErrRecurrenceWeekdayInvalid is returned when a weekly day set contains
	// a value outside Sunday..Saturday.
	ErrRecurrenceWeekdayInvalid = errors.New("recurrence weekday must be between 0 and 6")

	// ErrRecurrenceDayOfMonthInvalid is returned when a monthly day-of-month
	// is outside 1..31.
	ErrRecurrenceDayOfMonthInvalid = errors.New("recurrence day of month must be between 1 and 31")
)

// RecurrenceConfig holds the frequency-specific schedule parameters for a
// template. Only the fields matching the template's Frequency are meaningful:
// Interval for DAILY, Days for WEEKLY, DayOfMonth for MONTHLY. The zero value
// is valid for every frequency and selects the documented defaults (every 1
// day, +7 days, same day next month).
type RecurrenceConfig struct {
	Interval   int            `json:"interval,omitempty"`
	Days       []time.Weekday `json:"days,omitempty"`
	DayOfMonth int            `json:"day_of_month,omitempty"`
}

// ValidateFor checks the config fields relevant to the given frequency.
// Fields belonging to other frequencies are ignored rather than rejected, so
// a template can switch frequency without clearing stale parameters.
func (c RecurrenceConfig) ValidateFor(freq Frequency) error {
	switch freq {
	case FrequencyDaily:
		if c.Interval < 0 {
			return ErrRecurrenceIntervalInvalid
		}
	case FrequencyWeekly:
		for _, d := range c.Days {
			if d < time.Sunday || d > time.Saturday {
				return ErrRecurrenceWeekdayInvalid
			}
		}
	case FrequencyMonthly:
		if c.DayOfMonth < 0 || c.DayOfMonth > 31 {
			return ErrRecurrenceDayOfMonthInvalid
		}
	case FrequencyCustom:
		// No parameters; CUSTOM falls back to a daily advance.
	default:
		return ErrInvalidFrequency
	}
	return nil
}

// IssueDefaults is the payload a template stamps onto every issue it
// synthesizes.
type IssueDefaults struct {
	Type       string     `json:"type"`
	Priority   string     `json:"priority"`
	Status     string     `json:"status"`
	Labels     []string   `json:"labels,omitempty"`
	AssigneeID *uuid.UUID `json:"assignee_id,omitempty"`
	ReporterID *uuid.UUID `json:"reporter_id,omitempty"`
}

// RecurringIssueTemplate describes a schedule for materializing issues.
// NextRunAt always holds the next *scheduled* instant; it advances only via
// the scheduler's pure next-run computation, never via wall-clock execution
// time, so each scheduled slot is represented at most once. Once any run has
// occurred, NextRunAt > LastRunAt.
type RecurringIssueTemplate struct {
	ID          uuid.UUID        `json:"id"`
	TenantID    uuid.UUID        `json:"tenant_id"`
	BoardID     uuid.UUID        `json:"board_id"`
	ColumnID    *uuid.UUID       `json:"column_id,omitempty"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	Frequency   Frequency        `json:"frequency"`
	Config      RecurrenceConfig `json:"config"`
	Defaults    IssueDefaults    `json:"defaults"`
	NextRunAt   time.Time        `json:"next_run_at"`
	LastRunAt   *time.Time       `json:"last_run_at,omitempty"`
	IsActive    bool             `json:"is_active"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// Validate checks if the template has valid data.
// Returns an error if any field fails validation.
func (t *RecurringIssueTemplate) Validate() error {
	if t.ID == uuid.Nil {
		return ErrTemplateIDEmpty
	}

	if t.TenantID == uuid.Nil {
		return ErrTemplateTenantIDEmpty
	}

	if t.BoardID == uuid.Nil {
		return ErrTemplateBoardIDEmpty
	}

	if t.Title == "" {
		return ErrTemplateTitleEmpty
	}

	if !t.Frequency.Valid() {
		return ErrInvalidFrequency
	}

	if t.NextRunAt.IsZero() {
		return ErrTemplateNextRunZero
	}

	return t.Config.ValidateFor(t.Frequency)
}
