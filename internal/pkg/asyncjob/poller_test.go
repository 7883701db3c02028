package asyncjob

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestRun(t *testing.T) {
	Convey("Run submits then polls to a terminal state", t, func() {
		ctx := context.Background()
		opts := Options{Name: "test", Interval: time.Millisecond, MaxAttempts: 5}

		submit := func(ctx context.Context) (string, error) { return "task-1", nil }

		Convey("stops the instant a terminal state is observed", func() {
			polls := 0
			poll := func(ctx context.Context, taskID string) (Poll[string], error) {
				polls++
				if polls < 3 {
					return Poll[string]{State: StateProcessing}, nil
				}
				return Poll[string]{State: StateSucceeded, Result: "https://cdn/video.mp4"}, nil
			}

			task, result, err := Run(ctx, opts, submit, poll)
			So(err, ShouldBeNil)
			So(result, ShouldEqual, "https://cdn/video.mp4")
			So(task.TaskID, ShouldEqual, "task-1")
			So(task.Status, ShouldEqual, StateSucceeded)
			So(task.Attempts, ShouldEqual, 3)
			So(polls, ShouldEqual, 3)
		})

		Convey("an explicit remote failure returns a FailedError", func() {
			poll := func(ctx context.Context, taskID string) (Poll[string], error) {
				return Poll[string]{State: StateFailed, Reason: "content policy"}, nil
			}

			task, _, err := Run(ctx, opts, submit, poll)
			var failed *FailedError
			So(errors.As(err, &failed), ShouldBeTrue)
			So(failed.TaskID, ShouldEqual, "task-1")
			So(failed.Reason, ShouldEqual, "content policy")
			So(task.Status, ShouldEqual, StateFailed)
		})

		Convey("exhausting the attempt budget synthesizes a timeout", func() {
			polls := 0
			poll := func(ctx context.Context, taskID string) (Poll[string], error) {
				polls++
				return Poll[string]{State: StateProcessing}, nil
			}

			task, _, err := Run(ctx, opts, submit, poll)
			var timeout *TimeoutError
			So(errors.As(err, &timeout), ShouldBeTrue)
			So(timeout.Attempts, ShouldEqual, 5)
			So(task.Status, ShouldEqual, StateTimedOut)
			So(polls, ShouldEqual, 5)
		})

		Convey("transient poll errors consume attempts like any other poll", func() {
			polls := 0
			poll := func(ctx context.Context, taskID string) (Poll[string], error) {
				polls++
				return Poll[string]{}, errors.New("connection reset")
			}

			task, _, err := Run(ctx, opts, submit, poll)
			var timeout *TimeoutError
			So(errors.As(err, &timeout), ShouldBeTrue)
			So(task.Attempts, ShouldEqual, 5)
		})

		Convey("a transient error followed by success still succeeds", func() {
			polls := 0
			poll := func(ctx context.Context, taskID string) (Poll[string], error) {
				polls++
				if polls == 1 {
					return Poll[string]{}, errors.New("connection reset")
				}
				return Poll[string]{State: StateSucceeded, Result: "ok"}, nil
			}

			task, result, err := Run(ctx, opts, submit, poll)
			So(err, ShouldBeNil)
			So(result, ShouldEqual, "ok")
			So(task.Attempts, ShouldEqual, 2)
		})

		Convey("a submit failure aborts before any poll", func() {
			submitErr := func(ctx context.Context) (string, error) {
				return "", errors.New("401 unauthorized")
			}
			polled := false
			poll := func(ctx context.Context, taskID string) (Poll[string], error) {
				polled = true
				return Poll[string]{}, nil
			}

			_, _, err := Run(ctx, opts, submitErr, poll)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "401")
			So(polled, ShouldBeFalse)
		})

		Convey("context cancellation stops the loop", func() {
			cancelCtx, cancel := context.WithCancel(ctx)
			poll := func(ctx context.Context, taskID string) (Poll[string], error) {
				cancel()
				return Poll[string]{State: StateProcessing}, nil
			}

			_, _, err := Run(cancelCtx, Options{Interval: time.Millisecond, MaxAttempts: 100}, submit, poll)
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})
}

func TestBudget(t *testing.T) {
	Convey("Budget reports the wall-clock ceiling of a poll loop", t, func() {
		So(Budget(2*time.Second, 30), ShouldEqual, time.Minute)

		Convey("unset settings fall back to the loop defaults", func() {
			So(Budget(0, 0), ShouldEqual, 10*time.Minute)
			So(Budget(time.Second, 0), ShouldEqual, 120*time.Second)
			So(Budget(0, 12), ShouldEqual, time.Minute)
		})
	})
}

func TestStateTerminal(t *testing.T) {
	Convey("Terminal is true only for final states", t, func() {
		So(StateSucceeded.Terminal(), ShouldBeTrue)
		So(StateFailed.Terminal(), ShouldBeTrue)
		So(StateTimedOut.Terminal(), ShouldBeTrue)
		So(StateQueued.Terminal(), ShouldBeFalse)
		So(StateProcessing.Terminal(), ShouldBeFalse)
	})
}
