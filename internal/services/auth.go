package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/emporia-shop/emporia-backend/internal/models"
	"github.com/emporia-shop/emporia-backend/pkg/utils"
)

var (
	ErrPasswordMismatch    = errors.New("passwords do not match")
	ErrUsernameTaken       = errors.New("user name already taken")
	ErrInvalidCredentials  = errors.New("invalid username or password")
	ErrHashingFailure      = errors.New("unable to hash password")
	ErrRegistrationFailed  = errors.New("unable to create user")
	ErrHistoryUpdateFailed = errors.New("unable to record login")
)

// UserStore is the slice of the credential store the engine needs.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	FindByUsername(ctx context.Context, userName string) (*models.User, error)
	AppendLoginEvent(ctx context.Context, userName string, event models.LoginEvent) error
}

type RegisterRequest struct {
	UserName             string `json:"userName"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password2"`
	Email                string `json:"email"`
}

type Credentials struct {
	UserName string `json:"userName"`
	Password string `json:"password"`

	// Captured from the request, not the body
	UserAgent string `json:"-"`
	ClientIP  string `json:"-"`
}

// AuthService orchestrates registration and login over the credential store
// and the password hasher.
type AuthService struct {
	store  UserStore
	hasher utils.Hasher
	now    func() time.Time
}

func NewAuthService(store UserStore, hasher utils.Hasher) *AuthService {
	return &AuthService{store: store, hasher: hasher, now: time.Now}
}

// Register creates a new user with a hashed password. The plaintext never
// reaches the store or a log line. Success carries no payload; the caller
// proceeds to login separately.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) error {
	// Fail fast before any hashing or store access.
	if req.Password != req.PasswordConfirmation {
		return ErrPasswordMismatch
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrHashingFailure, err)
	}

	user := &models.User{
		UserName:     req.UserName,
		Email:        req.Email,
		PasswordHash: hash,
		LoginHistory: []models.LoginEvent{},
		CreatedAt:    s.now(),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicateUsername) {
			return ErrUsernameTaken
		}
		return fmt.Errorf("%w: %v", ErrRegistrationFailed, err)
	}
	return nil
}

// Authenticate validates credentials and records the login before reporting
// success. Unknown users and wrong passwords both come back as
// ErrInvalidCredentials so the response doesn't reveal which usernames
// exist; the precise cause only goes to the server log.
func (s *AuthService) Authenticate(ctx context.Context, creds Credentials) (*models.IdentitySnapshot, error) {
	user, err := s.store.FindByUsername(ctx, creds.UserName)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			log.Printf("login rejected: unknown user %q (ip=%s)", creds.UserName, creds.ClientIP)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := s.hasher.Verify(creds.Password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHashingFailure, err)
	}
	if !ok {
		log.Printf("login rejected: wrong password for user %q (ip=%s)", creds.UserName, creds.ClientIP)
		return nil, ErrInvalidCredentials
	}

	// Recording the login is part of the login itself: if the append fails,
	// the whole attempt fails even though the credentials were valid.
	event := models.LoginEvent{DateTime: s.now(), UserAgent: creds.UserAgent}
	if err := s.store.AppendLoginEvent(ctx, user.UserName, event); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHistoryUpdateFailed, err)
	}

	history := make([]models.LoginEvent, 0, len(user.LoginHistory)+1)
	history = append(history, user.LoginHistory...)
	history = append(history, event)

	return &models.IdentitySnapshot{
		UserName:     user.UserName,
		Email:        user.Email,
		LoginHistory: history,
	}, nil
}
