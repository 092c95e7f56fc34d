package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sevigo/merge-warden/internal/core"
	"github.com/sevigo/merge-warden/internal/review"
	"github.com/sevigo/merge-warden/internal/server/handler"
)

// NewRouter creates and configures a new HTTP router with middleware and API routes.
func NewRouter(dispatcher core.JobDispatcher, usecase *review.Usecase, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// Configure middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		webhookHandler := handler.NewWebhookHandler(dispatcher, logger)
		r.Post("/webhooks/gitlab", webhookHandler.Handle)

		reviewHandler := handler.NewReviewHandler(dispatcher, usecase, logger)
		r.Get("/reviews/{projectID}/{mrIID}", reviewHandler.GetReview)
		r.Post("/reviews/{projectID}/{mrIID}/trigger", reviewHandler.TriggerReview)
		r.Get("/users/{email}/rating", reviewHandler.GetUserRating)
	})

	return r
}
