package client

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/hscrm/pkg/hscrm"
)

// consistencyCheck reports whether an asynchronous side effect is visible.
type consistencyCheck func(ctx context.Context) (bool, error)

// awaitConsistency polls check until it reports true or the configured
// timeout is used up. The first check runs after the initial delay. Elapsed
// time is counted in requested waits so an injected Sleep controls it fully.
// It returns false without an error when the timeout is reached.
func awaitConsistency(ctx context.Context, config *hscrm.ConsistencyConfig, check consistencyCheck) (bool, error) {
	sleep := config.Sleep
	if sleep == nil {
		sleep = hscrm.SleepContext
	}

	waited := config.InitialDelay

	err := sleep(ctx, config.InitialDelay)
	if err != nil {
		return false, fmt.Errorf("waiting for consistency: %w", err)
	}

	for {
		ok, err := check(ctx)
		if err != nil {
			return false, err
		}

		if ok {
			return true, nil
		}

		if config.Interval <= 0 || waited+config.Interval > config.Timeout {
			return false, nil
		}

		err = sleep(ctx, config.Interval)
		if err != nil {
			return false, fmt.Errorf("waiting for consistency: %w", err)
		}

		waited += config.Interval
	}
}
