package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/kanban-api/internal/domain"
	"github.com/phrazzld/kanban-api/internal/service"
	"github.com/phrazzld/kanban-api/internal/store"
)

// IssueCreator is the slice of the board service the scheduler needs.
// Synthesized issues go through the same creation path as user-created ones,
// so they pick up audit entries, cache invalidation and broadcasts for free.
type IssueCreator interface {
	CreateIssue(ctx context.Context, req service.CreateIssueRequest, actor domain.Actor) (*domain.Issue, error)
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithTickInterval sets how often the scheduler polls for due templates.
func WithTickInterval(d time.Duration) Option {
	return func(s *Scheduler) { s.tickInterval = d }
}

// WithMaxCatchUp bounds how many missed occurrences one template may
// synthesize in a single tick.
func WithMaxCatchUp(n int) Option {
	return func(s *Scheduler) { s.maxCatchUp = n }
}

// WithNowFunc overrides the clock, for tests.
func WithNowFunc(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// Scheduler is the recurrence worker: a single long-lived goroutine that
// polls for due templates and synthesizes their missed occurrences. It holds
// no cross-process coordination; running two instances against the same
// database will duplicate synthesized issues. That is a documented limitation
// of this design, not something the scheduler guards against.
type Scheduler struct {
	templates store.TemplateStore
	columns   store.ColumnStore
	creator   IssueCreator
	logger    *slog.Logger

	tickInterval time.Duration
	maxCatchUp   int
	now          func() time.Time

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// New creates a Scheduler. Defaults: 60s tick, 30 catch-up iterations.
func New(
	templates store.TemplateStore,
	columns store.ColumnStore,
	creator IssueCreator,
	logger *slog.Logger,
	opts ...Option,
) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Scheduler{
		templates:    templates,
		columns:      columns,
		creator:      creator,
		logger:       logger.With(slog.String("component", "scheduler")),
		tickInterval: 60 * time.Second,
		maxCatchUp:   30,
		now:          func() time.Time { return time.Now().UTC() },
		stopCh:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start launches the tick loop goroutine.
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.tickLoop()
	s.logger.Info("scheduler started",
		slog.Duration("tick_interval", s.tickInterval),
		slog.Int("max_catchup", s.maxCatchUp))
}

// Stop signals the scheduler to stop and waits for the tick loop to finish.
func (s *Scheduler) Stop() {
	close(s.stopCh)
	s.wg.Wait()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) tickLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.Tick(context.Background())
		}
	}
}

// Tick runs one scheduling pass: find every active due template and catch
// each one up. Exported so a tick can be driven directly in tests and from
// operational tooling.
func (s *Scheduler) Tick(ctx context.Context) {
	now := s.now()

	due, err := s.templates.ListDue(ctx, now)
	if err != nil {
		s.logger.Error("failed to list due templates", slog.String("error", err.Error()))
		return
	}

	for _, tmpl := range due {
		// One broken template must never block the others in this tick.
		s.catchUp(ctx, tmpl, now)
	}
}

// catchUp synthesizes every missed occurrence of one template, up to
// maxCatchUp, advancing NextRunAt by pure schedule steps. Run bookkeeping is
// persisted after every synthesized issue rather than once at loop end, so a
// crash mid-loop neither loses nor duplicates an occurrence.
func (s *Scheduler) catchUp(ctx context.Context, tmpl *domain.RecurringIssueTemplate, now time.Time) {
	log := s.logger.With(
		slog.String("template_id", tmpl.ID.String()),
		slog.String("frequency", string(tmpl.Frequency)))

	iterations := 0
	for !tmpl.NextRunAt.After(now) && iterations < s.maxCatchUp {
		if err := s.synthesize(ctx, tmpl); err != nil {
			// Do not advance NextRunAt: the failed occurrence is retried on
			// the next tick. At-least-once, not exactly-once.
			log.Error("failed to synthesize occurrence",
				slog.Time("scheduled_at", tmpl.NextRunAt),
				slog.String("error", err.Error()))
			return
		}

		next := ComputeNextRun(tmpl.NextRunAt, tmpl.Frequency, tmpl.Config)
		ranAt := s.now()
		if err := s.templates.UpdateRunTimes(ctx, tmpl.ID, ranAt, next); err != nil {
			log.Error("failed to persist template run times",
				slog.Time("next_run_at", next),
				slog.String("error", err.Error()))
			return
		}

		tmpl.LastRunAt = &ranAt
		tmpl.NextRunAt = next
		iterations++
	}

	if iterations == s.maxCatchUp && !tmpl.NextRunAt.After(now) {
		// Still behind: the template stays due and resumes next tick.
		log.Warn("catch-up limit reached, deferring remainder to next tick",
			slog.Int("max_catchup", s.maxCatchUp),
			slog.Time("next_run_at", tmpl.NextRunAt))
	}
}

// synthesize creates one concrete issue from the template via the shared
// creation path. The issue lands in the template's configured column, or the
// board's first column by position when none is configured.
func (s *Scheduler) synthesize(ctx context.Context, tmpl *domain.RecurringIssueTemplate) error {
	var columnID uuid.UUID
	if tmpl.ColumnID != nil {
		columnID = *tmpl.ColumnID
	} else {
		col, err := s.columns.FirstByBoard(ctx, tmpl.BoardID)
		if err != nil {
			return err
		}
		columnID = col.ID
	}

	req := service.CreateIssueRequest{
		ColumnID:    columnID,
		Title:       tmpl.Title,
		Description: tmpl.Description,
		Type:        tmpl.Defaults.Type,
		Priority:    tmpl.Defaults.Priority,
		Status:      tmpl.Defaults.Status,
		Labels:      tmpl.Defaults.Labels,
		AssigneeID:  tmpl.Defaults.AssigneeID,
		ReporterID:  tmpl.Defaults.ReporterID,
	}

	// The template itself acts when no reporter default is configured, so
	// audit entries always carry a meaningful actor.
	actor := domain.Actor{ID: tmpl.ID, TenantID: tmpl.TenantID}
	if tmpl.Defaults.ReporterID != nil {
		actor.ID = *tmpl.Defaults.ReporterID
	}

	_, err := s.creator.CreateIssue(ctx, req, actor)
	return err
}
