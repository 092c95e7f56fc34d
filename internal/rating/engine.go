// Package rating maintains the per-author quality rating updated after
// each review.
package rating

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sevigo/merge-warden/internal/core"
	"github.com/sevigo/merge-warden/internal/storage"
)

// baseRating is the rating every author starts with.
const baseRating = 500

// Engine applies review outcomes to author ratings. The rating is an
// unbounded running sum: each update moves it by quality score minus 50,
// with no clamping, decay, or weighting by review count.
type Engine struct {
	store  storage.RatingStore
	logger *slog.Logger
}

// NewEngine creates a rating engine over the given store.
func NewEngine(store storage.RatingStore, logger *slog.Logger) *Engine {
	return &Engine{store: store, logger: logger}
}

// Update applies one review's quality score to the author's rating and
// persists the result. Authors without a stored rating start at the
// baseline with a zero review count.
func (e *Engine) Update(ctx context.Context, email string, qualityScore int) (*core.UserRating, error) {
	userRating, err := e.store.GetRating(ctx, email)
	if errors.Is(err, storage.ErrNotFound) {
		e.logger.Info("creating new user rating", "email", email)
		userRating = &core.UserRating{Email: email, Rating: baseRating}
	} else if err != nil {
		return nil, fmt.Errorf("failed to load rating for %s: %w", email, err)
	}

	delta := qualityScore - 50
	userRating.Rating += delta
	userRating.ReviewCount++
	userRating.LastUpdated = time.Now().UTC()

	if err := e.store.SaveRating(ctx, userRating); err != nil {
		return nil, fmt.Errorf("failed to save rating for %s: %w", email, err)
	}

	e.logger.Info("updated user rating",
		"email", email,
		"rating", userRating.Rating,
		"delta", delta,
		"review_count", userRating.ReviewCount,
	)
	return userRating, nil
}

// Rating returns the stored rating for an email. Callers see
// storage.ErrNotFound for authors that were never reviewed.
func (e *Engine) Rating(ctx context.Context, email string) (*core.UserRating, error) {
	return e.store.GetRating(ctx, email)
}
