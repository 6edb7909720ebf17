package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/alxdev/echocheck-backend/internal/models"
)

const codesCollection = "verification_codes"

// DefaultCodeTTL is how long an emailed code stays valid.
const DefaultCodeTTL = 10 * time.Minute

// Codes stores one-time verification codes. At most one live code exists
// per (email, purpose); issuing a new one retires the previous.
type Codes interface {
	Create(ctx context.Context, email, code string, purpose models.VerificationPurpose) (*models.VerificationCode, error)
	Consume(ctx context.Context, email, code string, purpose models.VerificationPurpose) error
}

type mongoCodes struct {
	col *mongo.Collection
	ttl time.Duration
}

func NewCodes(db *mongo.Database, ttl time.Duration) Codes {
	if ttl <= 0 {
		ttl = DefaultCodeTTL
	}
	return &mongoCodes{col: db.Collection(codesCollection), ttl: ttl}
}

func (s *mongoCodes) Create(ctx context.Context, email, code string, purpose models.VerificationPurpose) (*models.VerificationCode, error) {
	email = strings.ToLower(email)

	// Retire any unused codes for the same email and purpose first.
	_, err := s.col.UpdateMany(ctx,
		bson.M{"email": email, "type": purpose, "used": false},
		bson.M{"$set": bson.M{"used": true}},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to retire previous codes: %w", err)
	}

	now := time.Now().UTC()
	doc := &models.VerificationCode{
		Email:     email,
		Code:      code,
		Purpose:   purpose,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
		Used:      false,
	}

	res, err := s.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to insert verification code: %w", err)
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc, nil
}

// Consume atomically marks a matching live code as used. ErrNotFound covers
// wrong, expired, and already-used codes alike.
func (s *mongoCodes) Consume(ctx context.Context, email, code string, purpose models.VerificationPurpose) error {
	err := s.col.FindOneAndUpdate(ctx,
		bson.M{
			"email":      strings.ToLower(email),
			"code":       code,
			"type":       purpose,
			"used":       false,
			"expires_at": bson.M{"$gt": time.Now().UTC()},
		},
		bson.M{"$set": bson.M{"used": true}},
	).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to consume verification code: %w", err)
	}
	return nil
}

func ensureCodeIndexes(ctx context.Context, db *mongo.Database) error {
	col := db.Collection(codesCollection)

	// Expired codes are already rejected by the query filter; the TTL
	// index only cleans up stale documents an hour later.
	_, err := col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(3600),
	})
	if err != nil {
		return err
	}

	_, err = col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "email", Value: 1},
			{Key: "type", Value: 1},
			{Key: "used", Value: 1},
			{Key: "expires_at", Value: 1},
		},
	})
	return err
}
