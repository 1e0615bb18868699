package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"notesapp/models"
	"notesapp/repository"
)

// DefaultCost is the bcrypt work factor when none is configured.
const DefaultCost = 10

// UserStore is the persistence the service needs.
type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// Revoker records a token as unusable until its expiry.
type Revoker interface {
	Revoke(token string, expiresAt time.Time)
}

// LoginResult is returned by a successful Login.
type LoginResult struct {
	Token     string
	UserID    uint
	ExpiresAt time.Time
}

// Service registers users, checks credentials, issues tokens and revokes them on logout.
type Service struct {
	users     UserStore
	tokens    *Tokens
	revoker   Revoker
	cost      int
	dummyHash []byte
}

// NewService validates cost and prepares the hash compared against when the
// email is unknown.
func NewService(users UserStore, tokens *Tokens, revoker Revoker, cost int) (*Service, error) {
	if cost == 0 {
		cost = DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d,%d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), cost)
	if err != nil {
		return nil, fmt.Errorf("dummy hash: %w", err)
	}
	return &Service{users: users, tokens: tokens, revoker: revoker, cost: cost, dummyHash: dummy}, nil
}

// Register creates a user with a bcrypt hash of password.
func (s *Service) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", ErrValidation)
	}
	hash, err := s.HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &models.User{Username: username, Email: email, PasswordHash: hash}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// HashPassword returns the bcrypt hash of password at the configured cost.
func (s *Service) HashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("%w: password is required", ErrValidation)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Login checks email and password and issues an access token.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrValidation)
	}
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// same work as a real comparison
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	token, exp, err := s.tokens.Issue(Identity{UserID: u.ID, Email: u.Email})
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, UserID: u.ID, ExpiresAt: exp}, nil
}

// Logout revokes an already verified token until its own expiry.
func (s *Service) Logout(token string) error {
	if token == "" {
		return fmt.Errorf("%w: token required to logout", ErrValidation)
	}
	exp, err := ExpiryOf(token)
	if err != nil {
		return err
	}
	s.revoker.Revoke(token, exp)
	return nil
}
