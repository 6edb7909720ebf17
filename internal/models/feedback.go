package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Feedback records a user's verdict on one classification result.
type Feedback struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Text            string             `bson:"text" json:"text"`
	ModelPrediction string             `bson:"model_prediction" json:"model_prediction"`
	ModelConfidence float64            `bson:"model_confidence" json:"model_confidence"`
	ActualLabel     string             `bson:"actual_label" json:"actual_label"`
	IsCorrect       bool               `bson:"is_correct" json:"is_correct"`
	UserID          primitive.ObjectID `bson:"user_id,omitempty" json:"user_id"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
}

// FeedbackStats aggregates collected feedback.
type FeedbackStats struct {
	TotalFeedback        int64   `json:"total_feedback"`
	CorrectPredictions   int64   `json:"correct_predictions"`
	IncorrectPredictions int64   `json:"incorrect_predictions"`
	AccuracyRate         float64 `json:"accuracy_rate"`
}
