package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LoginEvent records one successful authentication. Events are append-only
// and owned by their parent User; insertion order is chronological order.
type LoginEvent struct {
	DateTime  time.Time `bson:"dateTime" json:"dateTime"`
	UserAgent string    `bson:"userAgent" json:"userAgent"`
}

type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`

	UserName     string       `bson:"userName" json:"userName"`
	PasswordHash string       `bson:"password" json:"-"` // Never return the hash in JSON
	Email        string       `bson:"email" json:"email"`
	LoginHistory []LoginEvent `bson:"loginHistory" json:"loginHistory"`
}

// IdentitySnapshot is the subset of a User bound into a session at login
// time. It is a point-in-time copy: later changes to the stored record are
// not reflected until the next login.
type IdentitySnapshot struct {
	UserName     string       `json:"userName"`
	Email        string       `json:"email"`
	LoginHistory []LoginEvent `json:"loginHistory"`
}
