package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"kharcha/internal/core"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrMissingToken = errors.New("authorization token required")
)

// Token purposes. A verification link cannot be replayed as a session and vice versa.
const (
	PurposeSession = "session"
	PurposeVerify  = "verify"
)

// JWTManager handles JWT token generation and validation.
type JWTManager struct {
	secretKey  []byte
	sessionTTL time.Duration
	verifyTTL  time.Duration
	now        func() time.Time
}

// Claims represents the custom JWT claims for a user.
type Claims struct {
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// NewJWTManager creates a new JWT manager.
// secretKey should be a strong random string (e.g., 32 bytes).
func NewJWTManager(secretKey string, sessionTTL, verifyTTL time.Duration) *JWTManager {
	return &JWTManager{
		secretKey:  []byte(secretKey),
		sessionTTL: sessionTTL,
		verifyTTL:  verifyTTL,
		now:        time.Now,
	}
}

// SessionTTL is how long a session token stays valid.
func (m *JWTManager) SessionTTL() time.Duration { return m.sessionTTL }

// Generate creates a session token for the given user.
func (m *JWTManager) Generate(user core.User) (string, error) {
	return m.sign(user, PurposeSession, m.sessionTTL)
}

// GenerateVerification creates a single-purpose token for the email verification link.
func (m *JWTManager) GenerateVerification(user core.User) (string, error) {
	return m.sign(user, PurposeVerify, m.verifyTTL)
}

func (m *JWTManager) sign(user core.User, purpose string, ttl time.Duration) (string, error) {
	now := m.now()
	claims := &Claims{
		UserID:  user.ID,
		Email:   user.Email,
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// Validate parses a session token and returns its claims.
func (m *JWTManager) Validate(tokenString string) (*Claims, error) {
	return m.validate(tokenString, PurposeSession)
}

// ValidateVerification parses a verification-link token.
func (m *JWTManager) ValidateVerification(tokenString string) (*Claims, error) {
	return m.validate(tokenString, PurposeVerify)
}

func (m *JWTManager) validate(tokenString, purpose string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrMissingToken
	}

	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			// Verify the signing method
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return m.secretKey, nil
		},
		jwt.WithTimeFunc(m.now),
	)

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Purpose != purpose || claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
