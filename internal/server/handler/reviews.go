package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sevigo/merge-warden/internal/core"
	"github.com/sevigo/merge-warden/internal/review"
	"github.com/sevigo/merge-warden/internal/storage"
)

// ReviewHandler serves the read-only query endpoints and the manual
// review trigger.
type ReviewHandler struct {
	dispatcher core.JobDispatcher
	usecase    *review.Usecase
	logger     *slog.Logger
}

// NewReviewHandler creates a handler for review queries and triggers.
func NewReviewHandler(dispatcher core.JobDispatcher, usecase *review.Usecase, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{
		dispatcher: dispatcher,
		usecase:    usecase,
		logger:     logger,
	}
}

// GetReview returns the stored review result for a merge request.
func (h *ReviewHandler) GetReview(w http.ResponseWriter, r *http.Request) {
	projectID, mrIID, ok := h.pathIDs(w, r)
	if !ok {
		return
	}

	result, err := h.usecase.GetReview(r.Context(), projectID, mrIID)
	if errors.Is(err, storage.ErrNotFound) {
		http.Error(w, "Review not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("failed to load review", "project_id", projectID, "mr_iid", mrIID, "error", err)
		http.Error(w, "Failed to load review", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"project_id":     result.ProjectID,
		"mr_iid":         result.MRID,
		"summary":        result.Summary,
		"recommendation": result.Recommendation,
		"quality_score":  result.QualityScore,
		"comments_count": len(result.Comments),
		"reviewed_at":    result.ReviewedAt.Format(time.RFC3339),
	})
}

// TriggerReview dispatches a manual review for a merge request, bypassing
// the webhook payload.
func (h *ReviewHandler) TriggerReview(w http.ResponseWriter, r *http.Request) {
	projectID, mrIID, ok := h.pathIDs(w, r)
	if !ok {
		return
	}

	event := core.ManualEvent(projectID, mrIID)
	if err := h.dispatcher.Dispatch(r.Context(), event); err != nil {
		h.logger.Error("failed to dispatch manual review", "project_id", projectID, "mr_iid", mrIID, "error", err)
		http.Error(w, "Failed to start review job", http.StatusInternalServerError)
		return
	}

	h.logger.Info("manual review triggered", "project_id", projectID, "mr_iid", mrIID)

	writeJSON(w, http.StatusAccepted, map[string]any{
		"status":     "triggered",
		"project_id": projectID,
		"mr_iid":     mrIID,
	})
}

// GetUserRating returns the stored rating for an author email.
func (h *ReviewHandler) GetUserRating(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	if email == "" {
		http.Error(w, "Missing email", http.StatusBadRequest)
		return
	}

	rating, err := h.usecase.GetRating(r.Context(), email)
	if errors.Is(err, storage.ErrNotFound) {
		http.Error(w, "User rating not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("failed to load user rating", "email", email, "error", err)
		http.Error(w, "Failed to load user rating", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"email":        rating.Email,
		"rating":       rating.Rating,
		"review_count": rating.ReviewCount,
		"last_updated": rating.LastUpdated.Format(time.RFC3339),
	})
}

// pathIDs parses the projectID/mrIID route parameters, answering 400 on
// anything that is not a positive integer.
func (h *ReviewHandler) pathIDs(w http.ResponseWriter, r *http.Request) (int, int, bool) {
	projectID, err := strconv.Atoi(chi.URLParam(r, "projectID"))
	if err != nil || projectID <= 0 {
		http.Error(w, "Invalid project id", http.StatusBadRequest)
		return 0, 0, false
	}
	mrIID, err := strconv.Atoi(chi.URLParam(r, "mrIID"))
	if err != nil || mrIID <= 0 {
		http.Error(w, "Invalid merge request iid", http.StatusBadRequest)
		return 0, 0, false
	}
	return projectID, mrIID, true
}
