// Package asyncjob provides the submit-then-poll primitive shared by the
// video generation and post-processing calls.
package asyncjob

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// State is the job lifecycle state.
type State string

const (
	StateQueued     State = "queued"
	StateProcessing State = "processing"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
	StateTimedOut   State = "timed_out" // synthetic, never reported by a remote
)

// Terminal reports whether no further transition can occur.
func (s State) Terminal() bool {
	switch s {
	case StateSucceeded, StateFailed, StateTimedOut:
		return true
	default:
		return false
	}
}

// Poll is one observation of a remote job. Result is only valid when State
// is StateSucceeded; Reason carries the remote failure text for StateFailed.
type Poll[T any] struct {
	State  State
	Result T
	Reason string
}

// Task records one submitted job's lifecycle.
type Task struct {
	TaskID      string
	Status      State
	SubmittedAt time.Time
	Attempts    int
}

// FailedError is returned when the remote reports an explicit failure state.
type FailedError struct {
	TaskID string
	Reason string
}

func (e *FailedError) Error() string {
	return fmt.Sprintf("job %s failed: %s", e.TaskID, e.Reason)
}

// TimeoutError is returned when the attempt budget runs out before a
// terminal state. The remote job is not cancelled; most providers have no
// cancel endpoint.
type TimeoutError struct {
	TaskID   string
	Attempts int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("job %s timed out after %d poll attempts", e.TaskID, e.Attempts)
}

// Options tunes the polling loop.
type Options struct {
	// Name labels log lines; use the remote service name.
	Name string
	// Interval between polls. Fixed rather than exponential: remote job
	// latencies sit in the 2-6 minute range, and a fixed short interval
	// keeps the wall-clock overhead predictable and testable.
	Interval time.Duration
	// MaxAttempts bounds the number of polls before a synthetic timeout.
	MaxAttempts int
}

// Defaults applied when Options fields are unset. Exported so callers can
// derive deadlines from the effective poll budget.
const (
	DefaultInterval    = 5 * time.Second
	DefaultMaxAttempts = 120 // 10 minutes at the default interval
)

// Budget is the wall-clock ceiling of a poll loop with the given settings,
// with the defaults applied.
func Budget(interval time.Duration, maxAttempts int) time.Duration {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return time.Duration(maxAttempts) * interval
}

// Run submits the job and polls it until a terminal state, the attempt
// budget, or ctx cancellation. A transient poll failure consumes one attempt
// exactly like a "still processing" response, so the timeout stays
// deterministic under network noise. A job is never left silently
// processing: exhausting the budget yields a TimeoutError.
func Run[T any](
	ctx context.Context,
	opts Options,
	submit func(ctx context.Context) (string, error),
	poll func(ctx context.Context, taskID string) (Poll[T], error),
) (Task, T, error) {
	var zero T

	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	maxAttempts := opts.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	taskID, err := submit(ctx)
	if err != nil {
		return Task{}, zero, fmt.Errorf("submit job: %w", err)
	}

	task := Task{
		TaskID:      taskID,
		Status:      StateQueued,
		SubmittedAt: time.Now(),
	}

	log.Info().Str("job", opts.Name).Str("task_id", taskID).Msg("job submitted")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for task.Attempts < maxAttempts {
		select {
		case <-ctx.Done():
			return task, zero, ctx.Err()
		case <-ticker.C:
		}

		task.Attempts++

		observed, err := poll(ctx, taskID)
		if err != nil {
			// Transient poll errors burn an attempt like any other poll.
			log.Warn().
				Err(err).
				Str("job", opts.Name).
				Str("task_id", taskID).
				Int("attempt", task.Attempts).
				Msg("poll request failed")
			continue
		}

		switch observed.State {
		case StateSucceeded:
			task.Status = StateSucceeded
			log.Info().
				Str("job", opts.Name).
				Str("task_id", taskID).
				Int("attempts", task.Attempts).
				Msg("job succeeded")
			return task, observed.Result, nil
		case StateFailed:
			task.Status = StateFailed
			return task, zero, &FailedError{TaskID: taskID, Reason: observed.Reason}
		default:
			task.Status = observed.State
			log.Debug().
				Str("job", opts.Name).
				Str("task_id", taskID).
				Str("state", string(observed.State)).
				Int("attempt", task.Attempts).
				Msg("job still running")
		}
	}

	task.Status = StateTimedOut
	return task, zero, &TimeoutError{TaskID: taskID, Attempts: task.Attempts}
}
