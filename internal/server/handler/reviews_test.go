package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/merge-warden/internal/core"
	"github.com/sevigo/merge-warden/internal/llm"
	"github.com/sevigo/merge-warden/internal/rating"
	"github.com/sevigo/merge-warden/internal/review"
	"github.com/sevigo/merge-warden/internal/storage"
)

// noopHost satisfies the host interface for handler tests that never
// reach the host.
type noopHost struct{}

func (noopHost) GetMergeRequest(context.Context, int, int) (*core.MergeRequest, error) {
	return &core.MergeRequest{}, nil
}
func (noopHost) GetMergeRequestDiff(context.Context, int, int) ([]core.FileDiff, error) {
	return nil, nil
}
func (noopHost) PostComment(context.Context, int, int, core.Comment) error { return nil }
func (noopHost) PostSummaryNote(context.Context, int, int, string) error   { return nil }
func (noopHost) UpdateLabels(context.Context, int, int, []string) error    { return nil }

func newTestRouter(t *testing.T, dispatcher core.JobDispatcher) (*chi.Mux, storage.ReviewStore, *rating.Engine) {
	t.Helper()
	logger := testLogger()
	reviews := storage.NewMemoryReviewStore(logger)
	ratings := rating.NewEngine(storage.NewMemoryRatingStore(), logger)
	uc := review.NewUsecase(noopHost{}, llm.NewStubAnalyzer(), reviews, ratings, nil, logger)

	h := NewReviewHandler(dispatcher, uc, logger)
	r := chi.NewRouter()
	r.Get("/reviews/{projectID}/{mrIID}", h.GetReview)
	r.Post("/reviews/{projectID}/{mrIID}", h.TriggerReview)
	r.Get("/users/{email}/rating", h.GetUserRating)
	return r, reviews, ratings
}

func TestGetReview(t *testing.T) {
	router, reviews, _ := newTestRouter(t, &fakeDispatcher{})

	reviewedAt := time.Date(2026, 8, 12, 9, 30, 0, 0, time.UTC)
	require.NoError(t, reviews.Save(context.Background(), &core.ReviewResult{
		MRID:           7,
		ProjectID:      42,
		Summary:        "Looks fine.",
		Recommendation: core.RecommendMerge,
		QualityScore:   85,
		ReviewedAt:     reviewedAt,
	}))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reviews/42/7", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(42), body["project_id"])
	assert.Equal(t, float64(7), body["mr_iid"])
	assert.Equal(t, "Looks fine.", body["summary"])
	assert.Equal(t, "merge", body["recommendation"])
	assert.Equal(t, float64(85), body["quality_score"])
	assert.Equal(t, "2026-08-12T09:30:00Z", body["reviewed_at"])
}

func TestGetReviewNotFound(t *testing.T) {
	router, _, _ := newTestRouter(t, &fakeDispatcher{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reviews/42/999", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetReviewInvalidIDs(t *testing.T) {
	router, _, _ := newTestRouter(t, &fakeDispatcher{})

	for _, path := range []string{"/reviews/abc/7", "/reviews/42/xyz", "/reviews/0/7", "/reviews/42/-1"} {
		t.Run(path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestTriggerReview(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	router, _, _ := newTestRouter(t, dispatcher)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/reviews/42/7", nil))

	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, dispatcher.events, 1)
	assert.Equal(t, 42, dispatcher.events[0].ProjectID)
	assert.Equal(t, 7, dispatcher.events[0].MRIID)
	assert.Equal(t, core.ActionManual, dispatcher.events[0].Action)
}

func TestGetUserRating(t *testing.T) {
	router, _, ratings := newTestRouter(t, &fakeDispatcher{})

	_, err := ratings.Update(context.Background(), "dev@example.com", 80)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/dev@example.com/rating", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "dev@example.com", body["email"])
	assert.Equal(t, float64(530), body["rating"])
	assert.Equal(t, float64(1), body["review_count"])
}

func TestGetUserRatingNotFound(t *testing.T) {
	router, _, _ := newTestRouter(t, &fakeDispatcher{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/nobody@example.com/rating", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
