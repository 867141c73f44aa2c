package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"kharcha/internal/core"
	"kharcha/internal/storage"
)

// MinPasswordLength is checked before any store call.
const MinPasswordLength = 8

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrEmailExists        = errors.New("email already registered")
	ErrNotVerified        = errors.New("email address has not been verified")
)

// PasswordAuthenticator implements password-based authentication using bcrypt.
type PasswordAuthenticator struct {
	users storage.UserStore
	cost  int
}

// NewPasswordAuthenticator creates a new password-based authenticator.
func NewPasswordAuthenticator(users storage.UserStore) *PasswordAuthenticator {
	return &PasswordAuthenticator{users: users, cost: bcrypt.DefaultCost}
}

// WithCost overrides the bcrypt cost; tests use bcrypt.MinCost.
func (a *PasswordAuthenticator) WithCost(cost int) *PasswordAuthenticator {
	a.cost = cost
	return a
}

// ValidateCredential checks if the password meets minimum requirements.
func (a *PasswordAuthenticator) ValidateCredential(credential string) error {
	if len(credential) < MinPasswordLength {
		return ErrWeakPassword
	}
	return nil
}

// Register creates an unverified account with a hashed password.
func (a *PasswordAuthenticator) Register(ctx context.Context, email, credential string) (core.User, error) {
	email = core.NormalizeEmail(email)
	if email == "" {
		return core.User{}, core.ErrEmptyEmail
	}
	if err := a.ValidateCredential(credential); err != nil {
		return core.User{}, err
	}

	if _, err := a.users.GetUserByEmail(ctx, email); err == nil {
		return core.User{}, ErrEmailExists
	} else if !errors.Is(err, storage.ErrNotFound) {
		return core.User{}, fmt.Errorf("failed to look up user: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(credential), a.cost)
	if err != nil {
		return core.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := a.users.CreateUser(ctx, core.User{Email: email, PasswordHash: string(hashedPassword)})
	if errors.Is(err, storage.ErrEmailTaken) {
		return core.User{}, ErrEmailExists
	}
	if err != nil {
		return core.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Authenticate verifies the email and password, returning the user if valid.
// A correct password for an unverified account yields ErrNotVerified.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context, email, credential string) (core.User, error) {
	user, err := a.users.GetUserByEmail(ctx, email)
	if errors.Is(err, storage.ErrNotFound) {
		return core.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return core.User{}, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(credential)); err != nil {
		return core.User{}, ErrInvalidCredentials
	}
	if !user.Verified {
		return core.User{}, ErrNotVerified
	}

	return user, nil
}

// Verify marks the user as verified and returns the updated record.
func (a *PasswordAuthenticator) Verify(ctx context.Context, userID string) (core.User, error) {
	if err := a.users.MarkVerified(ctx, userID); err != nil {
		return core.User{}, fmt.Errorf("failed to verify user: %w", err)
	}
	return a.users.GetUserByID(ctx, userID)
}
