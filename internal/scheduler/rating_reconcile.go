package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateSchedule checks a five-field cron expression.
func ValidateSchedule(expr string) error {
	_, err := parser.Parse(expr)
	return err
}

// NextRun returns the first activation of expr after from.
func NextRun(expr string, from time.Time) (time.Time, error) {
	sched, err := parser.Parse(expr)
	if err != nil {
		return time.Time{}, err
	}
	return sched.Next(from), nil
}

// RecomputeRequester triggers a full rating reconciliation.
type RecomputeRequester interface {
	RequestRatingRecompute(ctx context.Context, reason string) (string, error)
}

// Reconciler recomputes all ratings synchronously.
type Reconciler interface {
	RecomputeAll(ctx context.Context) (int64, error)
}

// Direct runs the reconciliation inline, for deployments without the task
// queue.
type Direct struct {
	Reconciler Reconciler
}

func (d Direct) RequestRatingRecompute(ctx context.Context, reason string) (string, error) {
	if _, err := d.Reconciler.RecomputeAll(ctx); err != nil {
		return "", err
	}
	return "inline", nil
}

// RatingReconcileScheduler periodically requests a rating reconciliation.
type RatingReconcileScheduler struct {
	requester RecomputeRequester
	schedule  string

	cron      *cron.Cron
	entryID   cron.EntryID
	mu        sync.Mutex
	isRunning bool
	cancel    context.CancelFunc
}

// NewRatingReconcileScheduler creates a scheduler for the given cron schedule.
func NewRatingReconcileScheduler(requester RecomputeRequester, schedule string) *RatingReconcileScheduler {
	return &RatingReconcileScheduler{
		requester: requester,
		schedule:  schedule,
		cron:      cron.New(cron.WithParser(parser)),
	}
}

// Start registers the job and starts the cron loop. It stops when ctx is
// cancelled or Stop is called.
func (s *RatingReconcileScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if err := ValidateSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	jobCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		s.run(jobCtx, "scheduled")
	})
	if err != nil {
		s.cancel()
		return fmt.Errorf("failed to schedule rating reconciliation: %w", err)
	}
	s.entryID = entryID

	s.cron.Start()
	s.isRunning = true

	nextRun, _ := NextRun(s.schedule, time.Now())
	log.Printf("[RATING] Reconcile scheduler started with schedule '%s'. Next run: %v", s.schedule, nextRun)

	go func(done <-chan struct{}) {
		<-done
		s.Stop()
	}(jobCtx.Done())

	return nil
}

// Stop stops the cron loop and waits for a running job to finish.
func (s *RatingReconcileScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	s.cancel()
	<-s.cron.Stop().Done()
	s.cron.Remove(s.entryID)

	s.isRunning = false
	log.Printf("[RATING] Reconcile scheduler stopped")
}

// IsRunning reports whether the cron loop is active.
func (s *RatingReconcileScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// RunNow requests a reconciliation immediately.
func (s *RatingReconcileScheduler) RunNow(ctx context.Context) (string, error) {
	return s.requester.RequestRatingRecompute(ctx, "manual")
}

func (s *RatingReconcileScheduler) run(ctx context.Context, reason string) {
	id, err := s.requester.RequestRatingRecompute(ctx, reason)
	if err != nil {
		log.Printf("[RATING] Reconcile request failed: %v", err)
		return
	}
	log.Printf("[RATING] Reconcile requested (%s): %s", reason, id)
}
