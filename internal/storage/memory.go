package storage

import (
	"context"
	"log/slog"
	"sync"

	"github.com/sevigo/merge-warden/internal/core"
)

// MemoryReviewStore is a volatile, process-lifetime review store. Records
// are held in their serialized form so the memory backend round-trips
// exactly like the external ones.
type MemoryReviewStore struct {
	mu      sync.RWMutex
	records map[string][]byte
	logger  *slog.Logger
}

// NewMemoryReviewStore creates an empty in-memory review store.
func NewMemoryReviewStore(logger *slog.Logger) *MemoryReviewStore {
	return &MemoryReviewStore{
		records: make(map[string][]byte),
		logger:  logger,
	}
}

// Save upserts the review result under its (project, MR) key.
func (s *MemoryReviewStore) Save(_ context.Context, result *core.ReviewResult) error {
	data, err := encodeReview(result)
	if err != nil {
		return err
	}

	key := reviewKey(result.ProjectID, result.MRID)
	s.mu.Lock()
	s.records[key] = data
	s.mu.Unlock()

	s.logger.Info("saved review result", "key", key)
	return nil
}

// Get returns the stored review result, or ErrNotFound.
func (s *MemoryReviewStore) Get(_ context.Context, projectID, mrIID int) (*core.ReviewResult, error) {
	key := reviewKey(projectID, mrIID)
	s.mu.RLock()
	data, ok := s.records[key]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	return decodeReview(data)
}

// List returns all stored review results for a project.
func (s *MemoryReviewStore) List(_ context.Context, projectID int) ([]*core.ReviewResult, error) {
	s.mu.RLock()
	encoded := make([][]byte, 0, len(s.records))
	for _, data := range s.records {
		encoded = append(encoded, data)
	}
	s.mu.RUnlock()

	var results []*core.ReviewResult
	for _, data := range encoded {
		result, err := decodeReview(data)
		if err != nil {
			return nil, err
		}
		if result.ProjectID == projectID {
			results = append(results, result)
		}
	}

	s.logger.Debug("listed review results", "project_id", projectID, "count", len(results))
	return results, nil
}

// MemoryRatingStore is a volatile, process-lifetime user rating store.
type MemoryRatingStore struct {
	mu      sync.RWMutex
	ratings map[string]core.UserRating
}

// NewMemoryRatingStore creates an empty in-memory rating store.
func NewMemoryRatingStore() *MemoryRatingStore {
	return &MemoryRatingStore{ratings: make(map[string]core.UserRating)}
}

// GetRating returns the stored rating for an email, or ErrNotFound.
func (s *MemoryRatingStore) GetRating(_ context.Context, email string) (*core.UserRating, error) {
	s.mu.RLock()
	rating, ok := s.ratings[email]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	return &rating, nil
}

// SaveRating upserts a user rating keyed by email.
func (s *MemoryRatingStore) SaveRating(_ context.Context, rating *core.UserRating) error {
	s.mu.Lock()
	s.ratings[rating.Email] = *rating
	s.mu.Unlock()
	return nil
}
