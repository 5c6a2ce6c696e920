package services

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/emporia-shop/emporia-backend/internal/models"
)

var (
	ErrDuplicateUsername = errors.New("username already exists")
	ErrUserNotFound      = errors.New("user not found")
	ErrStoreUnavailable  = errors.New("credential store unavailable")
)

// CredentialStore persists user identity and login history in MongoDB.
type CredentialStore struct {
	users *mongo.Collection
}

func NewCredentialStore(db *mongo.Database) *CredentialStore {
	return &CredentialStore{users: db.Collection("users")}
}

// EnsureIndexes creates the unique index on userName. Uniqueness is enforced
// by the storage layer, not just an application-side check.
func (s *CredentialStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userName", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// CreateUser inserts a new user record. A unique-index violation surfaces as
// ErrDuplicateUsername, distinguishable from other write failures.
func (s *CredentialStore) CreateUser(ctx context.Context, user *models.User) error {
	if _, err := s.users.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateUsername
		}
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *CredentialStore) FindByUsername(ctx context.Context, userName string) (*models.User, error) {
	var user models.User
	err := s.users.FindOne(ctx, bson.M{"userName": userName}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return &user, nil
}

// AppendLoginEvent appends one event to the user's history. The $push is
// atomic, so concurrent logins for the same user cannot lose events.
func (s *CredentialStore) AppendLoginEvent(ctx context.Context, userName string, event models.LoginEvent) error {
	res, err := s.users.UpdateOne(ctx,
		bson.M{"userName": userName},
		bson.M{"$push": bson.M{"loginHistory": event}},
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if res.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}
