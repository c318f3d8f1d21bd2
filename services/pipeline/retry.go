package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/customeros/mailvault/interfaces"
	"github.com/customeros/mailvault/internal/logger"
	"github.com/customeros/mailvault/internal/models"
)

// ExhaustedError reports that every attempt of a run failed. It wraps the
// error from the last attempt.
type ExhaustedError struct {
	Attempts int
	LastErr  error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("all %d attempts failed: %v", e.Attempts, e.LastErr)
}

func (e *ExhaustedError) Unwrap() error {
	return e.LastErr
}

// RetryRunner re-runs a failed batch a fixed number of times with a fixed
// delay in between. A run either succeeds as a whole or counts as a failed
// attempt, there is no partial credit.
type RetryRunner struct {
	coordinator interfaces.BatchProcessor
	maxAttempts int
	delay       time.Duration
	sleep       func(time.Duration)
	log         logger.Logger
}

func NewRetryRunner(coordinator interfaces.BatchProcessor, maxAttempts int, delay time.Duration, log logger.Logger) *RetryRunner {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &RetryRunner{
		coordinator: coordinator,
		maxAttempts: maxAttempts,
		delay:       delay,
		sleep:       time.Sleep,
		log:         log,
	}
}

// Run executes the batch until it succeeds or attempts run out. After the
// last failed attempt it returns an ExhaustedError.
func (r *RetryRunner) Run(ctx context.Context) (models.RunSummary, error) {
	var lastErr error

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		r.log.Infof("Processing attempt %d/%d", attempt, r.maxAttempts)

		summary, err := r.attempt(ctx)
		if err == nil {
			r.log.Info("Processing completed successfully")
			return summary, nil
		}

		lastErr = err
		r.log.Errorf("Attempt %d failed: %v", attempt, err)

		if attempt < r.maxAttempts {
			r.log.Infof("Retrying in %s", r.delay)
			r.sleep(r.delay)
		}
	}

	r.log.Error("All retry attempts failed")
	return models.RunSummary{}, &ExhaustedError{Attempts: r.maxAttempts, LastErr: lastErr}
}

// attempt converts a panicking run into a failed attempt so a fault in one
// attempt never escapes the retry loop.
func (r *RetryRunner) attempt(ctx context.Context) (summary models.RunSummary, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = errors.Errorf("batch aborted: %v", rec)
		}
	}()
	return r.coordinator.ProcessBatch(ctx)
}
