package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is the account document as stored in the users collection.
// PasswordHash never leaves the server.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	IsVerified   bool               `bson:"is_verified" json:"is_verified"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
}

// PublicUser is the user shape returned by the API.
type PublicUser struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	IsVerified bool      `json:"is_verified"`
	CreatedAt  time.Time `json:"created_at"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:         u.ID.Hex(),
		Email:      u.Email,
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt,
	}
}
