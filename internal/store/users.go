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

const usersCollection = "users"

// Users is the account store. Emails are compared case-insensitively by
// lowercasing on every write and lookup.
type Users interface {
	Create(ctx context.Context, email, passwordHash string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	MarkVerified(ctx context.Context, email string) error
	DeleteUnverified(ctx context.Context, email string) error
}

type mongoUsers struct {
	col *mongo.Collection
}

func NewUsers(db *mongo.Database) Users {
	return &mongoUsers{col: db.Collection(usersCollection)}
}

func (s *mongoUsers) Create(ctx context.Context, email, passwordHash string) (*models.User, error) {
	user := &models.User{
		Email:        strings.ToLower(email),
		PasswordHash: passwordHash,
		IsVerified:   false,
		CreatedAt:    time.Now().UTC(),
	}

	res, err := s.col.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	user.ID = res.InsertedID.(primitive.ObjectID)
	return user, nil
}

func (s *mongoUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.col.FindOne(ctx, bson.M{"email": strings.ToLower(email)}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return &user, nil
}

func (s *mongoUsers) FindByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var user models.User
	err = s.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by id: %w", err)
	}
	return &user, nil
}

func (s *mongoUsers) MarkVerified(ctx context.Context, email string) error {
	res, err := s.col.UpdateOne(ctx,
		bson.M{"email": strings.ToLower(email)},
		bson.M{"$set": bson.M{"is_verified": true}},
	)
	if err != nil {
		return fmt.Errorf("failed to mark user verified: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteUnverified removes a stale unverified account so the email can be
// registered again. Deleting nothing is not an error.
func (s *mongoUsers) DeleteUnverified(ctx context.Context, email string) error {
	_, err := s.col.DeleteOne(ctx, bson.M{
		"email":       strings.ToLower(email),
		"is_verified": false,
	})
	if err != nil {
		return fmt.Errorf("failed to delete unverified user: %w", err)
	}
	return nil
}

func ensureUserIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
