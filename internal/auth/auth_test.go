package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"kharcha/internal/core"
	"kharcha/internal/storage/memory"
)

const secret = "test-secret-0123456789"

func TestJWTRoundTrip(t *testing.T) {
	m := NewJWTManager(secret, time.Hour, time.Minute)
	user := core.User{ID: "u1", Email: "a@example.com"}

	token, err := m.Generate(user)
	require.NoError(t, err)

	claims, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "a@example.com", claims.Email)
	assert.Equal(t, PurposeSession, claims.Purpose)
}

func TestJWTPurposesAreNotInterchangeable(t *testing.T) {
	m := NewJWTManager(secret, time.Hour, time.Hour)
	user := core.User{ID: "u1", Email: "a@example.com"}

	verify, err := m.GenerateVerification(user)
	require.NoError(t, err)
	session, err := m.Generate(user)
	require.NoError(t, err)

	_, err = m.Validate(verify)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = m.ValidateVerification(session)
	assert.ErrorIs(t, err, ErrInvalidToken)

	claims, err := m.ValidateVerification(verify)
	require.NoError(t, err)
	assert.Equal(t, PurposeVerify, claims.Purpose)
}

func TestJWTRejects(t *testing.T) {
	m := NewJWTManager(secret, time.Hour, time.Hour)
	user := core.User{ID: "u1", Email: "a@example.com"}
	token, err := m.Generate(user)
	require.NoError(t, err)

	t.Run("empty", func(t *testing.T) {
		_, err := m.Validate("")
		assert.ErrorIs(t, err, ErrMissingToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTManager("another-secret-abcdef", time.Hour, time.Hour)
		_, err := other.Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		defer func() { m.now = time.Now }()
		_, err := m.Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("none algorithm", func(t *testing.T) {
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: "u1", Purpose: PurposeSession})
		s, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = m.Validate(s)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func newAuthenticator() (*PasswordAuthenticator, *memory.Store) {
	store := memory.New()
	return NewPasswordAuthenticator(store).WithCost(bcrypt.MinCost), store
}

func TestRegisterAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	a, _ := newAuthenticator()

	user, err := a.Register(ctx, " New@Example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", user.Email)
	assert.False(t, user.Verified)
	assert.NotEqual(t, "correct horse", user.PasswordHash)

	_, err = a.Authenticate(ctx, "new@example.com", "correct horse")
	assert.ErrorIs(t, err, ErrNotVerified)

	verified, err := a.Verify(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, verified.Verified)

	got, err := a.Authenticate(ctx, "NEW@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = a.Authenticate(ctx, "new@example.com", "wrong password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = a.Authenticate(ctx, "ghost@example.com", "whatever1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	a, _ := newAuthenticator()

	_, err := a.Register(ctx, "a@example.com", "short")
	assert.ErrorIs(t, err, ErrWeakPassword)

	_, err = a.Register(ctx, "  ", "long enough")
	assert.ErrorIs(t, err, core.ErrEmptyEmail)

	_, err = a.Register(ctx, "a@example.com", "long enough")
	require.NoError(t, err)
	_, err = a.Register(ctx, "A@example.com", "long enough")
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestRegisterCreatesProfile(t *testing.T) {
	ctx := context.Background()
	a, store := newAuthenticator()

	user, err := a.Register(ctx, "p@example.com", "long enough")
	require.NoError(t, err)

	p, err := store.GetProfile(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.True(t, p.EnableBudgetAlerts)
}
