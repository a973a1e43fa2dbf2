package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func validTemplate() RecurringIssueTemplate {
	return RecurringIssueTemplate{
		ID:        uuid.New(),
		TenantID:  uuid.New(),
		BoardID:   uuid.New(),
		Title:     "Weekly triage",
		Frequency: FrequencyWeekly,
		Config: RecurrenceConfig{
			Days: []time.Weekday{time.Monday, time.Thursday},
		},
		NextRunAt: time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC),
		IsActive:  true,
	}
}

func TestTemplateValidate(t *testing.T) {
	t.Parallel() // Enable parallel execution

	tmpl := validTemplate()
	if err := tmpl.Validate(); err != nil {
		t.Errorf("Expected valid template to pass validation, got %v", err)
	}

	missingID := validTemplate()
	missingID.ID = uuid.Nil
	if err := missingID.Validate(); err != ErrTemplateIDEmpty {
		t.Errorf("Expected error %v, got %v", ErrTemplateIDEmpty, err)
	}

	missingBoard := validTemplate()
	missingBoard.BoardID = uuid.Nil
	if err := missingBoard.Validate(); err != ErrTemplateBoardIDEmpty {
		t.Errorf("Expected error %v, got %v", ErrTemplateBoardIDEmpty, err)
	}

	emptyTitle := validTemplate()
	emptyTitle.Title = ""
	if err := emptyTitle.Validate(); err != ErrTemplateTitleEmpty {
		t.Errorf("Expected error %v, got %v", ErrTemplateTitleEmpty, err)
	}

	badFrequency := validTemplate()
	badFrequency.Frequency = Frequency("HOURLY")
	if err := badFrequency.Validate(); err != ErrInvalidFrequency {
		t.Errorf("Expected error %v, got %v", ErrInvalidFrequency, err)
	}

	zeroNextRun := validTemplate()
	zeroNextRun.NextRunAt = time.Time{}
	if err := zeroNextRun.Validate(); err != ErrTemplateNextRunZero {
		t.Errorf("Expected error %v, got %v", ErrTemplateNextRunZero, err)
	}
}

func TestRecurrenceConfigValidateFor(t *testing.T) {
	t.Parallel() // Enable parallel execution
	tests := []struct {
		name    string
		freq    Frequency
		config  RecurrenceConfig
		wantErr error
	}{
		{
			name:   "daily zero value selects default interval",
			freq:   FrequencyDaily,
			config: RecurrenceConfig{},
		},
		{
			name:   "daily with explicit interval",
			freq:   FrequencyDaily,
			config: RecurrenceConfig{Interval: 3},
		},
		{
			name:    "daily negative interval rejected",
			freq:    FrequencyDaily,
			config:  RecurrenceConfig{Interval: -1},
			wantErr: ErrRecurrenceIntervalInvalid,
		},
		{
			name:   "weekly empty day set allowed",
			freq:   FrequencyWeekly,
			config: RecurrenceConfig{},
		},
		{
			name:    "weekly out-of-range weekday rejected",
			freq:    FrequencyWeekly,
			config:  RecurrenceConfig{Days: []time.Weekday{time.Weekday(7)}},
			wantErr: ErrRecurrenceWeekdayInvalid,
		},
		{
			name:   "monthly day of month in range",
			freq:   FrequencyMonthly,
			config: RecurrenceConfig{DayOfMonth: 31},
		},
		{
			name:    "monthly day of month out of range",
			freq:    FrequencyMonthly,
			config:  RecurrenceConfig{DayOfMonth: 32},
			wantErr: ErrRecurrenceDayOfMonthInvalid,
		},
		{
			name:   "custom ignores all parameters",
			freq:   FrequencyCustom,
			config: RecurrenceConfig{Interval: -5, DayOfMonth: 99},
		},
		{
			name: "stale fields from another frequency are ignored",
			freq: FrequencyDaily,
			config: RecurrenceConfig{
				Interval:   2,
				Days:       []time.Weekday{time.Weekday(42)},
				DayOfMonth: 99,
			},
		},
		{
			name:    "unknown frequency rejected",
			freq:    Frequency("YEARLY"),
			config:  RecurrenceConfig{},
			wantErr: ErrInvalidFrequency,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.config.ValidateFor(tc.freq)
			if err != tc.wantErr {
				t.Errorf("Expected error %v, got %v", tc.wantErr, err)
			}
		})
	}
}
