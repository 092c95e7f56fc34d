package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sevigo/merge-warden/internal/core"
)

// mongoReviewRecord is the document layout of one review result. The
// composite key field carries the same "{project}:{iid}" derivation the
// other backends use; timestamps are native datetimes.
type mongoReviewRecord struct {
	Key            string               `bson:"key"`
	MRID           int                  `bson:"mr_id"`
	ProjectID      int                  `bson:"project_id"`
	Summary        string               `bson:"summary"`
	Recommendation string               `bson:"recommendation"`
	QualityScore   int                  `bson:"quality_score"`
	ReviewedAt     time.Time            `bson:"reviewed_at"`
	Comments       []mongoCommentRecord `bson:"comments"`
}

type mongoCommentRecord struct {
	FilePath string `bson:"file_path"`
	Line     int    `bson:"line"`
	Content  string `bson:"content"`
	Severity string `bson:"severity"`
	Type     string `bson:"type"`
}

type mongoRatingRecord struct {
	Email       string    `bson:"email"`
	Rating      int       `bson:"rating"`
	ReviewCount int       `bson:"review_count"`
	LastUpdated time.Time `bson:"last_updated"`
}

// NewMongoClient connects to the document store and verifies the
// connection with a bounded timeout.
func NewMongoClient(ctx context.Context, uri string, logger *slog.Logger) (*mongo.Client, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	logger.Info("connected to mongodb")
	return client, nil
}

// MongoReviewStore persists review results as documents, upserted on the
// composite key field. List filters on project_id directly instead of
// maintaining an auxiliary index.
type MongoReviewStore struct {
	coll   *mongo.Collection
	logger *slog.Logger
}

// NewMongoReviewStore creates a review store over the given collection.
func NewMongoReviewStore(coll *mongo.Collection, logger *slog.Logger) *MongoReviewStore {
	return &MongoReviewStore{coll: coll, logger: logger}
}

// Save upserts the review document keyed by the composite key.
func (s *MongoReviewStore) Save(ctx context.Context, result *core.ReviewResult) error {
	key := reviewKey(result.ProjectID, result.MRID)

	comments := make([]mongoCommentRecord, 0, len(result.Comments))
	for _, c := range result.Comments {
		comments = append(comments, mongoCommentRecord{
			FilePath: c.FilePath,
			Line:     c.Line,
			Content:  c.Content,
			Severity: string(c.Severity),
			Type:     string(c.Category),
		})
	}

	doc := mongoReviewRecord{
		Key:            key,
		MRID:           result.MRID,
		ProjectID:      result.ProjectID,
		Summary:        result.Summary,
		Recommendation: string(result.Recommendation),
		QualityScore:   result.QualityScore,
		ReviewedAt:     result.ReviewedAt,
		Comments:       comments,
	}

	_, err := s.coll.UpdateOne(ctx,
		bson.M{"key": key},
		bson.M{"$set": doc},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to save review to mongodb: %w", err)
	}

	s.logger.Info("saved review result", "key", key)
	return nil
}

// Get returns the stored review result, or ErrNotFound.
func (s *MongoReviewStore) Get(ctx context.Context, projectID, mrIID int) (*core.ReviewResult, error) {
	var rec mongoReviewRecord
	err := s.coll.FindOne(ctx, bson.M{"key": reviewKey(projectID, mrIID)}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load review from mongodb: %w", err)
	}
	return rec.toResult()
}

// List returns all stored review results for a project.
func (s *MongoReviewStore) List(ctx context.Context, projectID int) ([]*core.ReviewResult, error) {
	cursor, err := s.coll.Find(ctx, bson.M{"project_id": projectID})
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews from mongodb: %w", err)
	}

	var recs []mongoReviewRecord
	if err := cursor.All(ctx, &recs); err != nil {
		return nil, fmt.Errorf("failed to decode reviews from mongodb: %w", err)
	}

	results := make([]*core.ReviewResult, 0, len(recs))
	for _, rec := range recs {
		result, err := rec.toResult()
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}

	s.logger.Debug("listed review results", "project_id", projectID, "count", len(results))
	return results, nil
}

// toResult reconstructs the entity, rejecting unknown enum values.
func (rec *mongoReviewRecord) toResult() (*core.ReviewResult, error) {
	recommendation, err := core.ParseRecommendation(rec.Recommendation)
	if err != nil {
		return nil, fmt.Errorf("invalid review document %s: %w", rec.Key, err)
	}

	comments := make([]core.Comment, 0, len(rec.Comments))
	for _, c := range rec.Comments {
		severity, err := core.ParseCommentSeverity(c.Severity)
		if err != nil {
			return nil, fmt.Errorf("invalid review document %s: %w", rec.Key, err)
		}
		category, err := core.ParseCommentCategory(c.Type)
		if err != nil {
			return nil, fmt.Errorf("invalid review document %s: %w", rec.Key, err)
		}
		comments = append(comments, core.Comment{
			FilePath: c.FilePath,
			Line:     c.Line,
			Content:  c.Content,
			Severity: severity,
			Category: category,
		})
	}

	return &core.ReviewResult{
		MRID:           rec.MRID,
		ProjectID:      rec.ProjectID,
		Summary:        rec.Summary,
		Recommendation: recommendation,
		QualityScore:   rec.QualityScore,
		ReviewedAt:     rec.ReviewedAt,
		Comments:       comments,
	}, nil
}

// MongoRatingStore persists user ratings as email-keyed documents.
type MongoRatingStore struct {
	coll   *mongo.Collection
	logger *slog.Logger
}

// NewMongoRatingStore creates a rating store over the given collection.
func NewMongoRatingStore(coll *mongo.Collection, logger *slog.Logger) *MongoRatingStore {
	return &MongoRatingStore{coll: coll, logger: logger}
}

// GetRating returns the stored rating for an email, or ErrNotFound.
func (s *MongoRatingStore) GetRating(ctx context.Context, email string) (*core.UserRating, error) {
	var rec mongoRatingRecord
	err := s.coll.FindOne(ctx, bson.M{"email": email}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user rating from mongodb: %w", err)
	}

	return &core.UserRating{
		Email:       rec.Email,
		Rating:      rec.Rating,
		ReviewCount: rec.ReviewCount,
		LastUpdated: rec.LastUpdated,
	}, nil
}

// SaveRating upserts a user rating keyed by email.
func (s *MongoRatingStore) SaveRating(ctx context.Context, rating *core.UserRating) error {
	doc := mongoRatingRecord{
		Email:       rating.Email,
		Rating:      rating.Rating,
		ReviewCount: rating.ReviewCount,
		LastUpdated: rating.LastUpdated,
	}

	_, err := s.coll.UpdateOne(ctx,
		bson.M{"email": rating.Email},
		bson.M{"$set": doc},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to save user rating to mongodb: %w", err)
	}

	s.logger.Info("saved user rating", "email", rating.Email, "rating", rating.Rating)
	return nil
}
