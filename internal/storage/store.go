// Package storage provides the persistence backends for review results
// and user ratings. All review store backends share one contract and one
// key derivation, so they are interchangeable at startup.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/sevigo/merge-warden/internal/core"
)

// ErrNotFound is returned when no record exists for the requested key.
var ErrNotFound = errors.New("record not found")

// ReviewStore defines the interface for persisting review results.
// Save is an upsert: re-saving the same (project, MR) key replaces the
// previous value.
type ReviewStore interface {
	Save(ctx context.Context, result *core.ReviewResult) error
	Get(ctx context.Context, projectID, mrIID int) (*core.ReviewResult, error)
	List(ctx context.Context, projectID int) ([]*core.ReviewResult, error)
}

// RatingStore defines the interface for persisting per-author ratings,
// keyed by email.
type RatingStore interface {
	GetRating(ctx context.Context, email string) (*core.UserRating, error)
	SaveRating(ctx context.Context, rating *core.UserRating) error
}

// reviewKey derives the storage key for a review result. Every backend
// uses the same derivation; the MR component is always the project-scoped
// iid, never the host-global id.
func reviewKey(projectID, mrIID int) string {
	return fmt.Sprintf("%d:%d", projectID, mrIID)
}
