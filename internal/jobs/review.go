package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sevigo/merge-warden/internal/core"
	"github.com/sevigo/merge-warden/internal/review"
)

// ReviewJob is a background job that runs one AI-assisted merge request
// review cycle through the orchestrator.
type ReviewJob struct {
	usecase *review.Usecase
	logger  *slog.Logger
}

// NewReviewJob creates a new ReviewJob over the review orchestrator.
func NewReviewJob(usecase *review.Usecase, logger *slog.Logger) core.Job {
	if usecase == nil {
		panic("review usecase cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &ReviewJob{usecase: usecase, logger: logger}
}

// Run executes the review cycle for a given event.
func (j *ReviewJob) Run(ctx context.Context, event *core.ReviewEvent) error {
	if err := j.validateInputs(ctx, event); err != nil {
		j.logger.Error("input validation failed", "error", err)
		return fmt.Errorf("input validation failed: %w", err)
	}

	j.logger.Info("starting review job", "project_id", event.ProjectID, "mr_iid", event.MRIID)

	if err := j.usecase.ProcessEvent(ctx, event); err != nil {
		return err
	}

	j.logger.Info("review job completed", "project_id", event.ProjectID, "mr_iid", event.MRIID)
	return nil
}

// validateInputs ensures the event contains all required fields.
func (j *ReviewJob) validateInputs(ctx context.Context, event *core.ReviewEvent) error {
	if ctx == nil {
		return fmt.Errorf("context cannot be nil")
	}
	if event == nil {
		return fmt.Errorf("event cannot be nil")
	}
	if event.ProjectID <= 0 {
		return fmt.Errorf("project id must be positive, got: %d", event.ProjectID)
	}
	if event.MRIID <= 0 {
		return fmt.Errorf("merge request iid must be positive, got: %d", event.MRIID)
	}
	if event.Action == "" {
		return fmt.Errorf("event action cannot be empty")
	}
	return nil
}
