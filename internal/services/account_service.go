package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"kharcha/internal/auth"
	"kharcha/internal/core"
	"kharcha/internal/storage"
)

// Session is a signed-in user and the token that proves it.
type Session struct {
	User      core.User
	Token     string
	ExpiresAt time.Time
}

// SignUpResult is returned while the new account waits for verification.
type SignUpResult struct {
	User       core.User
	VerifyLink string
}

// AccountService covers sign-up, email verification and sign-in.
type AccountService struct {
	authenticator *auth.PasswordAuthenticator
	tokens        *auth.JWTManager
	baseURL       string
	now           func() time.Time
	events
}

func NewAccountService(users storage.UserStore, tokens *auth.JWTManager, baseURL string, opts ...Option) *AccountService {
	return &AccountService{
		authenticator: auth.NewPasswordAuthenticator(users),
		tokens:        tokens,
		baseURL:       strings.TrimRight(baseURL, "/"),
		now:           time.Now,
		events:        newEvents(opts),
	}
}

// WithBcryptCost lowers hashing cost in tests.
func (s *AccountService) WithBcryptCost(cost int) *AccountService {
	s.authenticator.WithCost(cost)
	return s
}

// SignUp creates an unverified account and returns the link that verifies it.
func (s *AccountService) SignUp(ctx context.Context, email, password string) (SignUpResult, error) {
	user, err := s.authenticator.Register(ctx, email, password)
	s.recorder.StoreWrite("user", "create", err)
	if err != nil {
		return SignUpResult{}, err
	}

	token, err := s.tokens.GenerateVerification(user)
	if err != nil {
		return SignUpResult{}, fmt.Errorf("sign verification token: %w", err)
	}
	link := s.baseURL + "/verify?token=" + url.QueryEscape(token)

	// No mail transport is configured; the link is logged for the operator.
	slog.InfoContext(ctx, "Verification link issued",
		"user_id", user.ID,
		"email", user.Email,
		"link", link)

	return SignUpResult{User: user, VerifyLink: link}, nil
}

// Verify consumes a verification token and signs the user in.
func (s *AccountService) Verify(ctx context.Context, token string) (Session, error) {
	claims, err := s.tokens.ValidateVerification(token)
	if err != nil {
		return Session{}, err
	}
	user, err := s.authenticator.Verify(ctx, claims.UserID)
	if err != nil {
		return Session{}, err
	}
	slog.InfoContext(ctx, "Email verified", "user_id", user.ID)
	return s.session(user)
}

func (s *AccountService) SignIn(ctx context.Context, email, password string) (Session, error) {
	user, err := s.authenticator.Authenticate(ctx, email, password)
	if err != nil {
		return Session{}, err
	}
	return s.session(user)
}

// CreateVerified registers an account that can sign in immediately.
func (s *AccountService) CreateVerified(ctx context.Context, email, password string) (core.User, error) {
	user, err := s.authenticator.Register(ctx, email, password)
	s.recorder.StoreWrite("user", "create", err)
	if err != nil {
		return core.User{}, err
	}
	return s.authenticator.Verify(ctx, user.ID)
}

// Authenticate checks a session token.
func (s *AccountService) Authenticate(token string) (*auth.Claims, error) {
	if token == "" {
		return nil, auth.ErrMissingToken
	}
	return s.tokens.Validate(token)
}

// ValidatePassword applies the local password rules without touching the store.
func (s *AccountService) ValidatePassword(password string) error {
	return s.authenticator.ValidateCredential(password)
}

func (s *AccountService) session(user core.User) (Session, error) {
	token, err := s.tokens.Generate(user)
	if err != nil {
		return Session{}, fmt.Errorf("sign session token: %w", err)
	}
	return Session{
		User:      user,
		Token:     token,
		ExpiresAt: s.now().Add(s.tokens.SessionTTL()),
	}, nil
}
