package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// DigestInput is the input for the exposure digest workflow.
type DigestInput struct {
	SpotID string
	Date   string // YYYY-MM-DD
}

// ExposureDigestWorkflow computes a spot's daily exposure digest, stores it,
// and publishes it to subscribers. If publication fails, the stored digest is
// deleted (saga compensation) so the catalog never advertises a digest that
// downstream consumers missed.
func ExposureDigestWorkflow(ctx workflow.Context, input DigestInput) error {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting exposure digest workflow", "spotID", input.SpotID, "date", input.Date)

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 60 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	// Step 1: Compute and store the digest
	var sunHours float64
	err := workflow.ExecuteActivity(ctx, "ComputeDigest", input.SpotID, input.Date).Get(ctx, &sunHours)
	if err != nil {
		return err
	}

	// Step 2: Publish to subscribers
	err = workflow.ExecuteActivity(ctx, "PublishDigest", input.SpotID, input.Date).Get(ctx, nil)
	if err != nil {
		logger.Warn("digest publish failed, compensating", "error", err)
		// Compensate: delete the stored digest
		_ = workflow.ExecuteActivity(ctx, "DeleteDigest", input.SpotID, input.Date).Get(ctx, nil)
		return err
	}

	logger.Info("Exposure digest stored and published", "spotID", input.SpotID, "sunHours", sunHours)
	return nil
}

// DailyDigestWorkflow fans out ExposureDigestWorkflow over the whole catalog
// for one date. Spot failures are isolated; the workflow reports how many
// digests succeeded.
func DailyDigestWorkflow(ctx workflow.Context, date string) (int, error) {
	logger := workflow.GetLogger(ctx)

	// Cron runs pass an empty date and digest the current day.
	if date == "" {
		date = workflow.Now(ctx).UTC().Format("2006-01-02")
	}

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 60 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	var spotIDs []string
	if err := workflow.ExecuteActivity(ctx, "ListSpotIDs").Get(ctx, &spotIDs); err != nil {
		return 0, err
	}

	childOpts := workflow.ChildWorkflowOptions{
		WorkflowExecutionTimeout: 10 * time.Minute,
	}
	ctx = workflow.WithChildOptions(ctx, childOpts)

	succeeded := 0
	for _, id := range spotIDs {
		err := workflow.ExecuteChildWorkflow(ctx, ExposureDigestWorkflow, DigestInput{
			SpotID: id,
			Date:   date,
		}).Get(ctx, nil)
		if err != nil {
			logger.Warn("digest failed for spot", "spotID", id, "error", err)
			continue
		}
		succeeded++
	}

	logger.Info("Daily digest run complete", "date", date, "succeeded", succeeded, "total", len(spotIDs))
	return succeeded, nil
}
