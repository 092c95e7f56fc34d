package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sevigo/merge-warden/internal/core"
)

// RedisReviewStore persists review results in a key-value store: one JSON
// value per review key, plus a per-project set of keys backing List. The
// store itself is the serialization point; this layer adds no locking.
type RedisReviewStore struct {
	rdb    *redis.Client
	logger *slog.Logger
}

// NewRedisReviewStore connects to the key-value store at the given URL
// and verifies the connection.
func NewRedisReviewStore(ctx context.Context, url string, logger *slog.Logger) (*RedisReviewStore, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	logger.Info("connected redis review store", "addr", opt.Addr)
	return &RedisReviewStore{rdb: rdb, logger: logger}, nil
}

func redisReviewKey(projectID, mrIID int) string {
	return "review:" + reviewKey(projectID, mrIID)
}

func redisProjectKey(projectID int) string {
	return fmt.Sprintf("reviews:project:%d", projectID)
}

// Save upserts the serialized result and registers its key in the
// per-project index set. Both writes go through one pipeline so a
// concurrent Get never observes a partial overwrite.
func (s *RedisReviewStore) Save(ctx context.Context, result *core.ReviewResult) error {
	data, err := encodeReview(result)
	if err != nil {
		return err
	}

	key := redisReviewKey(result.ProjectID, result.MRID)
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, key, data, 0)
	pipe.SAdd(ctx, redisProjectKey(result.ProjectID), key)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save review to redis: %w", err)
	}

	s.logger.Info("saved review result", "key", key)
	return nil
}

// Get returns the stored review result, or ErrNotFound.
func (s *RedisReviewStore) Get(ctx context.Context, projectID, mrIID int) (*core.ReviewResult, error) {
	data, err := s.rdb.Get(ctx, redisReviewKey(projectID, mrIID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load review from redis: %w", err)
	}
	return decodeReview(data)
}

// List returns all stored review results for a project, resolved through
// the per-project index set. Index entries whose value has expired or
// been deleted are skipped.
func (s *RedisReviewStore) List(ctx context.Context, projectID int) ([]*core.ReviewResult, error) {
	keys, err := s.rdb.SMembers(ctx, redisProjectKey(projectID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list review keys from redis: %w", err)
	}

	var results []*core.ReviewResult
	for _, key := range keys {
		data, err := s.rdb.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load review %s from redis: %w", key, err)
		}
		result, err := decodeReview(data)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}

	s.logger.Debug("listed review results", "project_id", projectID, "count", len(results))
	return results, nil
}

// Close releases the underlying connection pool.
func (s *RedisReviewStore) Close() error {
	return s.rdb.Close()
}

// RedisRatingStore persists user ratings as one JSON value per email.
// It shares the review store's client so both ride one connection pool.
type RedisRatingStore struct {
	rdb    *redis.Client
	logger *slog.Logger
}

// NewRedisRatingStore creates a rating store over the review store's
// connection.
func NewRedisRatingStore(reviews *RedisReviewStore, logger *slog.Logger) *RedisRatingStore {
	return &RedisRatingStore{rdb: reviews.rdb, logger: logger}
}

type ratingRecord struct {
	Email       string `json:"email"`
	Rating      int    `json:"rating"`
	ReviewCount int    `json:"review_count"`
	LastUpdated string `json:"last_updated"`
}

func redisRatingKey(email string) string {
	return "rating:" + email
}

// GetRating returns the stored rating for an email, or ErrNotFound.
func (s *RedisRatingStore) GetRating(ctx context.Context, email string) (*core.UserRating, error) {
	data, err := s.rdb.Get(ctx, redisRatingKey(email)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user rating from redis: %w", err)
	}

	var rec ratingRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode user rating record: %w", err)
	}
	lastUpdated, err := time.Parse(time.RFC3339Nano, rec.LastUpdated)
	if err != nil {
		return nil, fmt.Errorf("invalid user rating timestamp: %w", err)
	}

	return &core.UserRating{
		Email:       rec.Email,
		Rating:      rec.Rating,
		ReviewCount: rec.ReviewCount,
		LastUpdated: lastUpdated,
	}, nil
}

// SaveRating upserts a user rating keyed by email.
func (s *RedisRatingStore) SaveRating(ctx context.Context, rating *core.UserRating) error {
	data, err := json.Marshal(ratingRecord{
		Email:       rating.Email,
		Rating:      rating.Rating,
		ReviewCount: rating.ReviewCount,
		LastUpdated: rating.LastUpdated.Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("failed to encode user rating record: %w", err)
	}

	if err := s.rdb.Set(ctx, redisRatingKey(rating.Email), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save user rating to redis: %w", err)
	}

	s.logger.Info("saved user rating", "email", rating.Email, "rating", rating.Rating)
	return nil
}
