// Package domain defines the business logic for the galaxy-fit backend.
package domain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrEmailTaken indicates a signup with an already-registered email.
	ErrEmailTaken = errors.New("Email already registered")
	// ErrWeakPassword rejects passwords below the minimum length.
	ErrWeakPassword = errors.New("Password must be at least 6 characters")
	// ErrInvalidCredentials is returned for unknown email and wrong password
	// alike, so callers cannot probe which accounts exist.
	ErrInvalidCredentials = errors.New("Invalid email or password")
)

const minPasswordLength = 6

// UserRepository captures persistence operations for identity records.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	Create(ctx context.Context, user User) error
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	UpdatePassword(ctx context.Context, id, passwordHash string, at time.Time) error
}

// TokenIssuer mints bearer tokens for authenticated users.
type TokenIssuer interface {
	Issue(userID, email string) (string, error)
}

// IdentityService handles signup, login and user lookups.
type IdentityService struct {
	repo   UserRepository
	tokens TokenIssuer
}

// NewIdentityService constructs an IdentityService.
func NewIdentityService(repo UserRepository, tokens TokenIssuer) *IdentityService {
	return &IdentityService{repo: repo, tokens: tokens}
}

// AuthResult pairs the stored user with a freshly issued bearer token.
type AuthResult struct {
	User  User
	Token string
}

// Signup registers a new user and issues a token. Emails are case-folded
// before the uniqueness check.
func (s *IdentityService) Signup(ctx context.Context, email, password string, name *string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if len(password) < minPasswordLength {
		return nil, ErrWeakPassword
	}

	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token}, nil
}

// Login verifies credentials and issues a new token. The last-login timestamp
// is updated on success.
func (s *IdentityService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	if err := s.repo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, err
	}
	user.LastLogin = &now

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: *user, Token: token}, nil
}

// GetUserByID returns the user or nil when absent.
func (s *IdentityService) GetUserByID(ctx context.Context, id string) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

// UpdatePassword re-hashes and overwrites the stored credential. Verifying the
// old password is the caller's responsibility.
func (s *IdentityService) UpdatePassword(ctx context.Context, id, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, id, string(hash), time.Now().UTC())
}
