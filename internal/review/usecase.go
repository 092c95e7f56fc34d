// Package review drives the merge request review pipeline: fetch,
// analyze, persist, rate, and post results back to the host.
package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sevigo/merge-warden/internal/core"
	"github.com/sevigo/merge-warden/internal/gitlab"
	"github.com/sevigo/merge-warden/internal/llm"
	"github.com/sevigo/merge-warden/internal/rating"
	"github.com/sevigo/merge-warden/internal/storage"
)

// allowedActions lists the webhook actions that trigger a review. Any
// other action is dropped without error.
var allowedActions = map[string]struct{}{
	"open":            {},
	"update":          {},
	"reopen":          {},
	core.ActionManual: {},
}

// recommendationLabels maps each verdict onto the label bundle requested
// on the host. Every bundle carries the ai-reviewed tag.
var recommendationLabels = map[core.Recommendation][]string{
	core.RecommendMerge:      {"ai-reviewed", "ready-for-merge"},
	core.RecommendNeedsFixes: {"ai-reviewed", "needs-review", "changes-requested"},
	core.RecommendReject:     {"ai-reviewed", "needs-review", "rejected"},
}

// Usecase orchestrates one review cycle per event. It owns no state
// between invocations; everything durable lives in the stores.
type Usecase struct {
	host      gitlab.Client
	analyzer  llm.Analyzer
	reviews   storage.ReviewStore
	ratings   *rating.Engine
	standards []string
	logger    *slog.Logger
}

// NewUsecase creates the review orchestrator.
func NewUsecase(
	host gitlab.Client,
	analyzer llm.Analyzer,
	reviews storage.ReviewStore,
	ratings *rating.Engine,
	standards []string,
	logger *slog.Logger,
) *Usecase {
	if host == nil {
		panic("host client cannot be nil")
	}
	if analyzer == nil {
		panic("analyzer cannot be nil")
	}
	if reviews == nil {
		panic("review store cannot be nil")
	}
	return &Usecase{
		host:      host,
		analyzer:  analyzer,
		reviews:   reviews,
		ratings:   ratings,
		standards: standards,
		logger:    logger,
	}
}

// ProcessEvent runs the full cycle for one webhook event: action filter,
// review, then posting results back to the host. Filtered actions are a
// logged no-op. Errors beyond the localized best-effort steps propagate
// to the job runner.
func (u *Usecase) ProcessEvent(ctx context.Context, event *core.ReviewEvent) error {
	u.logger.Info("processing review event",
		"project_id", event.ProjectID,
		"mr_iid", event.MRIID,
		"action", event.Action,
	)

	if _, ok := allowedActions[event.Action]; !ok {
		u.logger.Info("ignoring merge request action", "action", event.Action)
		return nil
	}

	if _, err := u.ReviewMergeRequest(ctx, event.ProjectID, event.MRIID); err != nil {
		return fmt.Errorf("review of MR %d/%d failed: %w", event.ProjectID, event.MRIID, err)
	}

	if err := u.PostReview(ctx, event.ProjectID, event.MRIID); err != nil {
		return fmt.Errorf("posting review of MR %d/%d failed: %w", event.ProjectID, event.MRIID, err)
	}

	return nil
}

// ReviewMergeRequest fetches the merge request and its diff, analyzes the
// changes, updates the author rating, and persists the result keyed by
// the project-scoped iid.
func (u *Usecase) ReviewMergeRequest(ctx context.Context, projectID, mrIID int) (*core.ReviewResult, error) {
	u.logger.Info("starting review", "project_id", projectID, "mr_iid", mrIID)

	mr, err := u.host.GetMergeRequest(ctx, projectID, mrIID)
	if err != nil {
		return nil, fmt.Errorf("failed to get merge request: %w", err)
	}
	diffs, err := u.host.GetMergeRequestDiff(ctx, projectID, mrIID)
	if err != nil {
		return nil, fmt.Errorf("failed to get merge request diff: %w", err)
	}

	u.logger.Info("analyzing merge request", "title", mr.Title, "files", len(diffs))

	analysis, err := u.analyzer.Analyze(ctx, llm.Request{
		Title:       mr.Title,
		Description: mr.Description,
		Diffs:       diffs,
		Standards:   u.standards,
	})
	if err != nil {
		return nil, fmt.Errorf("analysis failed: %w", err)
	}

	// Rating updates are best effort: a failure is logged but never
	// aborts the review. A merge request without an author email simply
	// skips the update.
	if mr.AuthorEmail != "" && u.ratings != nil {
		if _, err := u.ratings.Update(ctx, mr.AuthorEmail, analysis.QualityScore); err != nil {
			u.logger.Error("failed to update author rating",
				"email", mr.AuthorEmail,
				"error", err,
			)
		}
	}

	result := &core.ReviewResult{
		MRID:           mrIID, // project-scoped iid, never mr.ID
		ProjectID:      projectID,
		Comments:       analysis.Comments,
		Summary:        analysis.Summary,
		Recommendation: analysis.Recommendation,
		QualityScore:   analysis.QualityScore,
		ReviewedAt:     time.Now().UTC(),
	}

	if err := u.reviews.Save(ctx, result); err != nil {
		return nil, fmt.Errorf("failed to persist review result: %w", err)
	}

	u.logger.Info("review completed",
		"project_id", projectID,
		"mr_iid", mrIID,
		"comments", len(result.Comments),
		"recommendation", result.Recommendation,
		"score", result.QualityScore,
	)
	return result, nil
}

// PostReview loads the persisted result and posts it back to the host:
// each comment individually, then the aggregate summary note, then the
// label bundle for the recommendation. A failure posting one comment is
// logged and does not stop the remaining comments, the summary, or the
// labels.
func (u *Usecase) PostReview(ctx context.Context, projectID, mrIID int) error {
	result, err := u.reviews.Get(ctx, projectID, mrIID)
	if errors.Is(err, storage.ErrNotFound) {
		u.logger.Info("no review to post", "project_id", projectID, "mr_iid", mrIID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load review result: %w", err)
	}

	var failed int
	for _, comment := range result.Comments {
		if err := u.host.PostComment(ctx, projectID, mrIID, comment); err != nil {
			failed++
			u.logger.Error("failed to post review comment",
				"file", comment.FilePath,
				"line", comment.Line,
				"error", err,
			)
			continue
		}
		u.logger.Debug("posted review comment", "file", comment.FilePath, "line", comment.Line)
	}
	if failed > 0 {
		u.logger.Warn("some review comments could not be posted",
			"failed", failed,
			"total", len(result.Comments),
		)
	}

	if err := u.host.PostSummaryNote(ctx, projectID, mrIID, result.SummaryMarkdown()); err != nil {
		return fmt.Errorf("failed to post summary note: %w", err)
	}

	labels := labelsFor(result.Recommendation)
	if err := u.host.UpdateLabels(ctx, projectID, mrIID, labels); err != nil {
		return fmt.Errorf("failed to update labels: %w", err)
	}

	u.logger.Info("review posted", "project_id", projectID, "mr_iid", mrIID, "labels", labels)
	return nil
}

// GetReview returns a stored review result for read-only display.
func (u *Usecase) GetReview(ctx context.Context, projectID, mrIID int) (*core.ReviewResult, error) {
	return u.reviews.Get(ctx, projectID, mrIID)
}

// ListReviews returns all stored review results for a project.
func (u *Usecase) ListReviews(ctx context.Context, projectID int) ([]*core.ReviewResult, error) {
	return u.reviews.List(ctx, projectID)
}

// GetRating returns a stored author rating for read-only display.
func (u *Usecase) GetRating(ctx context.Context, email string) (*core.UserRating, error) {
	return u.ratings.Rating(ctx, email)
}

func labelsFor(recommendation core.Recommendation) []string {
	if labels, ok := recommendationLabels[recommendation]; ok {
		return labels
	}
	return []string{"ai-reviewed"}
}
