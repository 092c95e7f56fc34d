// Package handler provides HTTP handlers for the merge-warden application.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sevigo/merge-warden/internal/core"
)

// WebhookHandler processes incoming merge request webhooks from the host.
type WebhookHandler struct {
	dispatcher core.JobDispatcher
	logger     *slog.Logger
}

// NewWebhookHandler creates a new webhook handler with the given dispatcher.
func NewWebhookHandler(dispatcher core.JobDispatcher, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Handle processes host webhook requests. The caller gets an immediate
// acknowledgment; the review itself runs as a background job.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var payload core.WebhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.logger.Error("could not parse webhook payload", "error", err)
		http.Error(w, "Could not parse webhook payload", http.StatusBadRequest)
		return
	}

	event, err := core.EventFromWebhook(&payload)
	if err != nil {
		if errors.Is(err, core.ErrNotMergeRequestEvent) {
			h.logger.Info("ignoring webhook event", "object_kind", payload.ObjectKind)
			writeJSON(w, http.StatusOK, map[string]any{
				"status": "ignored",
				"reason": "not a merge request event",
			})
			return
		}
		h.logger.Error("invalid webhook payload", "error", err)
		http.Error(w, "Invalid webhook payload", http.StatusBadRequest)
		return
	}

	if err := h.dispatcher.Dispatch(r.Context(), event); err != nil {
		h.logger.Error("failed to dispatch review job", "error", err,
			"project_id", event.ProjectID, "mr_iid", event.MRIID)
		http.Error(w, "Failed to start review job", http.StatusInternalServerError)
		return
	}

	h.logger.Info("review job dispatched successfully",
		"project_id", event.ProjectID, "mr_iid", event.MRIID, "action", event.Action)

	writeJSON(w, http.StatusAccepted, map[string]any{
		"status":     "accepted",
		"project_id": event.ProjectID,
		"mr_iid":     event.MRIID,
		"action":     event.Action,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
