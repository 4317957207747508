package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"paghetta/internal/core"
	applog "paghetta/internal/log"
	"paghetta/internal/metrics"
	ports "paghetta/internal/sheets"
)

// Notifier receives every chore once it is persisted.
type Notifier interface {
	PublishChoreRecorded(ctx context.Context, e core.ChoreEvent, ref string) error
}

// SubmitResult is what a successful submission produced.
type SubmitResult struct {
	Event core.ChoreEvent
	Ref   string
}

// ChoreService records chores and summarizes who earned what.
type ChoreService struct {
	store       ports.ChoreStore
	prices      core.PriceTable
	notifier    Notifier
	metrics     *metrics.Metrics
	now         func() time.Time
	recentLimit int
}

type Option func(*ChoreService)

// WithClock overrides time.Now for the submission timestamp.
func WithClock(now func() time.Time) Option {
	return func(s *ChoreService) { s.now = now }
}

// WithNotifier publishes each recorded chore; nil disables publishing.
func WithNotifier(n Notifier) Option {
	return func(s *ChoreService) { s.notifier = n }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *ChoreService) { s.metrics = m }
}

// WithRecentLimit sets how many trailing rows Summarize returns.
func WithRecentLimit(n int) Option {
	return func(s *ChoreService) {
		if n > 0 {
			s.recentLimit = n
		}
	}
}

func NewChoreService(store ports.ChoreStore, prices core.PriceTable, opts ...Option) *ChoreService {
	if prices.Len() == 0 {
		prices = core.DefaultPriceTable()
	}
	s := &ChoreService{
		store:       store,
		prices:      prices,
		now:         time.Now,
		recentLimit: core.DefaultRecentLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Prices returns the table the service prices chores with.
func (s *ChoreService) Prices() core.PriceTable { return s.prices }

// RecentLimit returns how many rows Summarize keeps in Recent.
func (s *ChoreService) RecentLimit() int { return s.recentLimit }

// Submit prices the task and appends one row for person. Input is checked
// before the store is touched. Submitting twice appends twice.
func (s *ChoreService) Submit(ctx context.Context, person, task string) (SubmitResult, error) {
	person = strings.TrimSpace(person)
	task = strings.TrimSpace(task)

	if err := core.ValidatePerson(person); err != nil {
		s.metrics.Submission(metrics.OutcomeValidationError)
		return SubmitResult{}, &core.ValidationError{Field: "person", Err: err}
	}
	price, ok := s.prices.Price(task)
	if !ok {
		s.metrics.Submission(metrics.OutcomeValidationError)
		return SubmitResult{}, &core.ValidationError{Field: "task", Err: core.ErrUnknownTask}
	}

	e := core.ChoreEvent{
		Timestamp: s.now().Truncate(time.Second),
		Task:      task,
		Amount:    price,
		Person:    person,
	}

	start := time.Now()
	ref, err := s.store.Append(ctx, e)
	s.metrics.ObserveStore("append", start)
	if err != nil {
		s.metrics.Submission(metrics.OutcomeStoreError)
		slog.ErrorContext(ctx, "Failed to append chore", "task", task, "person", person, "error", err)
		return SubmitResult{}, &core.StoreError{Op: "append", Err: err}
	}

	s.metrics.Submission(metrics.OutcomeOK)
	s.metrics.AmountRecorded(task, price)
	applog.NewStructuredLogger(applog.FromContext(ctx)).LogChoreRecorded(ctx, person, task, price, ref)

	if s.notifier != nil {
		if err := s.notifier.PublishChoreRecorded(ctx, e, ref); err != nil {
			// The row is already persisted.
			slog.WarnContext(ctx, "Failed to publish chore.recorded", "ref", ref, "error", err)
		}
	}

	return SubmitResult{Event: e, Ref: ref}, nil
}

// Summarize fetches every row once and derives per-person totals and the
// recent tail from that single read.
func (s *ChoreService) Summarize(ctx context.Context) (core.Summary, error) {
	start := time.Now()
	events, err := s.store.ListEvents(ctx)
	s.metrics.ObserveStore("list", start)
	if err != nil {
		s.metrics.SummaryRead(metrics.OutcomeStoreError)
		slog.ErrorContext(ctx, "Failed to read chores", "error", err)
		return core.Summary{}, &core.StoreError{Op: "list", Err: err}
	}

	s.metrics.SummaryRead(metrics.OutcomeOK)
	sum := core.Summarize(events, s.recentLimit)
	slog.DebugContext(ctx, "Summary computed", "rows", len(events), "people", len(sum.Totals))
	return sum, nil
}

// Ready pings the store when it supports it. Remote stores are not pinged
// so that health checks do not cost a sheet read each.
func (s *ChoreService) Ready(ctx context.Context) error {
	if s.store == nil {
		return errors.New("no store configured")
	}
	if p, ok := s.store.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}
