package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// RatingReconciler rewrites every book's rating from its comments.
type RatingReconciler interface {
	RecomputeAll(ctx context.Context) (int64, error)
}

// RecomputeRatingsTask repairs drift between books.rating and the comment
// ratings it is derived from.
type RecomputeRatingsTask struct {
	Reason string `json:"reason"`
}

// Config returns the queue configuration for rating reconciliation.
func (t RecomputeRatingsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "recompute_ratings",
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     10 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   7 * 24 * time.Hour,
			OnlyFailed: false,
		},
	}
}

// RecomputeRatingsProcessor runs a full reconciliation.
func RecomputeRatingsProcessor(reconciler RatingReconciler) backlite.QueueProcessor[RecomputeRatingsTask] {
	return func(ctx context.Context, task RecomputeRatingsTask) error {
		if reconciler == nil {
			return fmt.Errorf("rating reconciler not configured")
		}
		n, err := reconciler.RecomputeAll(ctx)
		if err != nil {
			return fmt.Errorf("recompute ratings (%s): %w", task.Reason, err)
		}
		log.Printf("[TASK] Recomputed ratings for %d books (%s)", n, task.Reason)
		return nil
	}
}

// NewRecomputeRatingsQueue creates a backlite queue for rating reconciliation.
func NewRecomputeRatingsQueue(reconciler RatingReconciler) backlite.Queue {
	return backlite.NewQueue(RecomputeRatingsProcessor(reconciler))
}
