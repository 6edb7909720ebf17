package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VerificationPurpose says what a code unlocks.
type VerificationPurpose string

const (
	PurposeRegistration VerificationPurpose = "registration"
	PurposeLogin        VerificationPurpose = "login"
)

func (p VerificationPurpose) Valid() bool {
	return p == PurposeRegistration || p == PurposeLogin
}

// VerificationCode is a one-time email code. The stored field name for the
// purpose is "type", kept for compatibility with existing data.
type VerificationCode struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"-"`
	Email     string              `bson:"email" json:"email"`
	Code      string              `bson:"code" json:"-"`
	Purpose   VerificationPurpose `bson:"type" json:"type"`
	ExpiresAt time.Time           `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time           `bson:"created_at" json:"created_at"`
	Used      bool                `bson:"used" json:"used"`
}
