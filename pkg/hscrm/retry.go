package hscrm

import (
	"context"
	"fmt"
	"time"

	"github.com/fivetwenty-io/hscrm/internal/constants"
)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// SleepContext is the default SleepFunc.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("sleep interrupted: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}

// RetryConfig configures the transient-failure retry policy.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts one top-level call may
	// spend on transient failures before the failure is surfaced.
	MaxAttempts int
	// Backoff is the fixed wait between attempts.
	Backoff time.Duration
	// Sleep waits between attempts. Defaults to SleepContext.
	Sleep SleepFunc
	// Classify reports whether an error is transient. Defaults to IsTransient.
	Classify func(error) bool
}

// DefaultRetryConfig returns the default retry configuration: three
// attempts with a fixed sixty second backoff.
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts: constants.DefaultRetryAttempts,
		Backoff:     constants.DefaultRetryBackoff,
		Sleep:       SleepContext,
		Classify:    IsTransient,
	}
}

func (c *RetryConfig) withDefaults() *RetryConfig {
	defaults := DefaultRetryConfig()
	if c == nil {
		return defaults
	}

	merged := *c
	if merged.MaxAttempts <= 0 {
		merged.MaxAttempts = defaults.MaxAttempts
	}

	if merged.Backoff < 0 {
		merged.Backoff = 0
	}

	if merged.Sleep == nil {
		merged.Sleep = defaults.Sleep
	}

	if merged.Classify == nil {
		merged.Classify = defaults.Classify
	}

	return &merged
}

// RetrySupervisor retries transient failures of the steps of one top-level
// call. Its attempt budget is shared by every step run through it, so a
// paginated walk gets one budget, not one per page. Create a new supervisor
// for every top-level call.
type RetrySupervisor struct {
	config   *RetryConfig
	logger   Logger
	failures int
}

// NewRetrySupervisor creates a supervisor with a fresh attempt budget.
func NewRetrySupervisor(config *RetryConfig, logger Logger) *RetrySupervisor {
	return &RetrySupervisor{
		config: config.withDefaults(),
		logger: logger,
	}
}

// Failures returns the number of transient failures absorbed so far.
func (s *RetrySupervisor) Failures() int {
	return s.failures
}

// Do runs step, retrying it after transient failures while the budget
// lasts. Non-transient errors are returned immediately.
func (s *RetrySupervisor) Do(ctx context.Context, op string, step func(ctx context.Context) error) error {
	for {
		err := step(ctx)
		if err == nil {
			return nil
		}

		if !s.config.Classify(err) {
			return err
		}

		s.failures++

		if s.failures >= s.config.MaxAttempts {
			return fmt.Errorf("%s: %w after %d attempts: %w", op, ErrRetryAttemptsExhausted, s.failures, err)
		}

		if s.logger != nil {
			s.logger.Warn("transient failure, retrying", map[string]interface{}{
				"operation": op,
				"attempt":   s.failures,
				"backoff":   s.config.Backoff.String(),
				"error":     err.Error(),
			})
		}

		sleepErr := s.config.Sleep(ctx, s.config.Backoff)
		if sleepErr != nil {
			return fmt.Errorf("%s: %w", op, sleepErr)
		}
	}
}

// Retry runs a single-shot call under a fresh supervisor.
func Retry[T any](ctx context.Context, config *RetryConfig, logger Logger, op string, call func(ctx context.Context) (T, error)) (T, error) {
	var result T

	err := NewRetrySupervisor(config, logger).Do(ctx, op, func(ctx context.Context) error {
		value, err := call(ctx)
		if err != nil {
			return err
		}

		result = value

		return nil
	})

	return result, err
}

// Supervise wraps a page fetcher so each page fetch runs under the
// supervisor. Retries re-request the page that failed; batches that were
// already returned are never fetched again.
func Supervise[T any](supervisor *RetrySupervisor, op string, fetch PageFetcher[T]) PageFetcher[T] {
	return func(ctx context.Context, after string) (*Page[T], error) {
		var page *Page[T]

		err := supervisor.Do(ctx, op, func(ctx context.Context) error {
			fetched, err := fetch(ctx, after)
			if err != nil {
				return err
			}

			page = fetched

			return nil
		})

		return page, err
	}
}
