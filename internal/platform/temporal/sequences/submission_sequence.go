package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

const (
	// SubmissionTimeout bounds one submission attempt from scheduling to completion. The
	// backend client applies its own shorter per-request timeout inside it.
	SubmissionTimeout = 10 * time.Second

	// SubmissionDeadline bounds a whole submission workflow and the caller waiting on it. A
	// workflow no worker picked up in time expires instead of running later.
	SubmissionDeadline = SubmissionTimeout + 2*time.Second
)

// RunSubmission executes a single submission activity exactly once and decodes its result.
// Submissions are not idempotent on the order service, so nothing is retried here.
func RunSubmission[T any](ctx workflow.Context, activityName string, input any) (*T, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("submission sequence started", "activity", activityName)
	options := workflow.ActivityOptions{
		StartToCloseTimeout:    SubmissionTimeout,
		ScheduleToCloseTimeout: SubmissionTimeout,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	}

	var out T
	if err := workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, options), activityName, input).Get(ctx, &out); err != nil {
		logger.Error("submission sequence failed", "activity", activityName, "error", err)
		return nil, err
	}
	logger.Info("submission sequence completed", "activity", activityName)
	return &out, nil
}
