// Package app initializes and orchestrates the main components of the
// merge-warden application. It wires together the configuration, stores,
// host client, analyzer, and server.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sevigo/merge-warden/internal/config"
	"github.com/sevigo/merge-warden/internal/core"
	"github.com/sevigo/merge-warden/internal/gitlab"
	"github.com/sevigo/merge-warden/internal/jobs"
	"github.com/sevigo/merge-warden/internal/llm"
	"github.com/sevigo/merge-warden/internal/rating"
	"github.com/sevigo/merge-warden/internal/review"
	"github.com/sevigo/merge-warden/internal/server"
	"github.com/sevigo/merge-warden/internal/storage"
)

// App holds the main application components.
type App struct {
	ctx        context.Context
	cfg        *config.Config
	server     *server.Server
	logger     *slog.Logger
	dispatcher core.JobDispatcher

	// Usecase is exposed for the CLI, which drives reviews and queries
	// directly instead of going through the HTTP server.
	Usecase *review.Usecase
}

// NewApp sets up the application with all its dependencies. The returned
// cleanup function releases store connections and must run on shutdown.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, func(), error) {
	logger.Info("initializing merge-warden application",
		"gitlab_url", cfg.GitLabURL,
		"llm_provider", cfg.LLMProvider,
		"storage_backend", cfg.StorageBackend,
		"max_workers", cfg.MaxWorkers,
	)

	host, err := gitlab.NewClient(cfg.GitLabURL, cfg.GitLabToken, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create GitLab client: %w", err)
	}

	analyzer, err := llm.NewAnalyzer(cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create analyzer: %w", err)
	}

	reviews, ratings, cleanup, err := newStores(ctx, cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	ratingEngine := rating.NewEngine(ratings, logger)
	usecase := review.NewUsecase(host, analyzer, reviews, ratingEngine, cfg.Standards, logger)
	reviewJob := jobs.NewReviewJob(usecase, logger)
	dispatcher := jobs.NewDispatcher(reviewJob, cfg.MaxWorkers, logger)
	httpServer := server.NewServer(ctx, cfg, dispatcher, usecase, logger)

	logger.Info("merge-warden application initialized successfully")
	return &App{
		ctx:        ctx,
		cfg:        cfg,
		server:     httpServer,
		logger:     logger,
		dispatcher: dispatcher,
		Usecase:    usecase,
	}, cleanup, nil
}

// newStores creates the review and rating stores for the configured
// backend. The returned cleanup releases any external connections.
func newStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.ReviewStore, storage.RatingStore, func(), error) {
	switch cfg.StorageBackend {
	case "memory":
		logger.Info("using in-memory storage backend")
		return storage.NewMemoryReviewStore(logger), storage.NewMemoryRatingStore(), func() {}, nil

	case "redis":
		logger.Info("using redis storage backend", "url", cfg.RedisURL)
		reviews, err := storage.NewRedisReviewStore(ctx, cfg.RedisURL, logger)
		if err != nil {
			return nil, nil, nil, err
		}
		cleanup := func() {
			if err := reviews.Close(); err != nil {
				logger.Error("error closing redis connection", "error", err)
			}
		}
		return reviews, storage.NewRedisRatingStore(reviews, logger), cleanup, nil

	case "mongo":
		logger.Info("using mongodb storage backend", "db", cfg.MongoDBName)
		client, err := storage.NewMongoClient(ctx, cfg.MongoURL, logger)
		if err != nil {
			return nil, nil, nil, err
		}
		db := client.Database(cfg.MongoDBName)
		cleanup := func() {
			if err := client.Disconnect(context.Background()); err != nil {
				logger.Error("error disconnecting mongodb", "error", err)
			}
		}
		reviews := storage.NewMongoReviewStore(db.Collection("reviews"), logger)
		ratings := storage.NewMongoRatingStore(db.Collection("users"), logger)
		return reviews, ratings, cleanup, nil

	default:
		return nil, nil, nil, fmt.Errorf("unsupported storage backend: %s", cfg.StorageBackend)
	}
}

// Start runs the HTTP server.
func (a *App) Start() error {
	a.logger.Info("starting merge-warden",
		"server_port", a.cfg.ServerPort,
		"max_workers", a.cfg.MaxWorkers,
	)

	if err := a.server.Start(); err != nil {
		a.logger.Error("failed to start HTTP server", "error", err)
		return err
	}
	return nil
}

// Stop shuts down the application cleanly.
func (a *App) Stop() error {
	a.logger.Info("shutting down merge-warden services")

	// Stop the HTTP server first to prevent new incoming requests.
	serverErr := a.server.Stop()
	if serverErr != nil {
		a.logger.Error("error during HTTP server shutdown", "error", serverErr)
		// Continue to stop other components even if the server failed.
	}

	// Stop the job dispatcher, allowing in-flight reviews to finish.
	a.dispatcher.Stop()

	if serverErr != nil {
		return serverErr
	}

	a.logger.Info("merge-warden stopped successfully")
	return nil
}
