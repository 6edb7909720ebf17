package store

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/alxdev/echocheck-backend/internal/models"
)

const feedbackCollection = "feedback"

// Feedback stores user verdicts on classification results.
type Feedback interface {
	Insert(ctx context.Context, fb *models.Feedback) error
	Stats(ctx context.Context) (*models.FeedbackStats, error)
	Recent(ctx context.Context, limit int64) ([]models.Feedback, error)
	Incorrect(ctx context.Context, limit int64) ([]models.Feedback, error)
}

type mongoFeedback struct {
	col *mongo.Collection
}

func NewFeedback(db *mongo.Database) Feedback {
	return &mongoFeedback{col: db.Collection(feedbackCollection)}
}

// Insert stores the feedback and fills in its ID and CreatedAt.
func (s *mongoFeedback) Insert(ctx context.Context, fb *models.Feedback) error {
	fb.CreatedAt = time.Now().UTC()

	res, err := s.col.InsertOne(ctx, fb)
	if err != nil {
		return fmt.Errorf("failed to insert feedback: %w", err)
	}
	fb.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *mongoFeedback) Stats(ctx context.Context) (*models.FeedbackStats, error) {
	total, err := s.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to count feedback: %w", err)
	}
	correct, err := s.col.CountDocuments(ctx, bson.M{"is_correct": true})
	if err != nil {
		return nil, fmt.Errorf("failed to count correct feedback: %w", err)
	}

	rate := 0.0
	if total > 0 {
		rate = math.Round(float64(correct)/float64(total)*10000) / 10000
	}

	return &models.FeedbackStats{
		TotalFeedback:        total,
		CorrectPredictions:   correct,
		IncorrectPredictions: total - correct,
		AccuracyRate:         rate,
	}, nil
}

func (s *mongoFeedback) Recent(ctx context.Context, limit int64) ([]models.Feedback, error) {
	return s.list(ctx, bson.M{}, limit)
}

// Incorrect returns entries where the model got it wrong, newest first.
// Useful for retraining analysis.
func (s *mongoFeedback) Incorrect(ctx context.Context, limit int64) ([]models.Feedback, error) {
	return s.list(ctx, bson.M{"is_correct": false}, limit)
}

func (s *mongoFeedback) list(ctx context.Context, filter bson.M, limit int64) ([]models.Feedback, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)

	cursor, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback: %w", err)
	}
	defer cursor.Close(ctx)

	var list []models.Feedback
	if err := cursor.All(ctx, &list); err != nil {
		return nil, fmt.Errorf("failed to decode feedback: %w", err)
	}
	return list, nil
}
