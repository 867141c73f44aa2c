package views

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"kharcha/internal/auth"
	"kharcha/internal/services"
	"kharcha/internal/storage/memory"
)

func newLogin() *Login {
	tokens := auth.NewJWTManager("views-test-secret-0123", time.Hour, time.Hour)
	accounts := services.NewAccountService(memory.New(), tokens, "http://localhost:8081").WithBcryptCost(bcrypt.MinCost)
	return NewLogin(accounts)
}

func TestLogin_LocalValidation(t *testing.T) {
	l := newLogin()
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
		want     string
	}{
		{name: "missing email", password: "password123", want: LoginMissingFields},
		{name: "missing password", email: "me@example.com", want: LoginMissingFields},
		{name: "blank email", email: "   ", password: "password123", want: LoginMissingFields},
		{name: "short password", email: "me@example.com", password: "short", want: LoginWeakPassword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, mode := range []LoginMode{ModeSignIn, ModeSignUp} {
				m, sess := l.Submit(ctx, mode, tt.email, tt.password)
				assert.Nil(t, sess)
				assert.Equal(t, tt.want, m.Error)
				assert.Equal(t, mode, m.Mode)
			}
		})
	}
}

func TestLogin_SignUpVerifySignIn(t *testing.T) {
	l := newLogin()
	ctx := context.Background()

	m, sess := l.Submit(ctx, ModeSignUp, "Me@Example.com", "password123")
	require.Nil(t, sess)
	require.Empty(t, m.Error)
	assert.True(t, m.CheckEmail)
	assert.Equal(t, "me@example.com", m.Email)

	m, _ = l.Submit(ctx, ModeSignUp, "me@example.com", "password123")
	assert.Equal(t, LoginEmailTaken, m.Error)

	m, sess = l.Submit(ctx, ModeSignIn, "me@example.com", "password123")
	assert.Nil(t, sess)
	assert.Equal(t, LoginNotVerified, m.Error)

	signup, _ := l.Submit(ctx, ModeSignUp, "other@example.com", "password123")
	link, err := url.Parse(signup.VerifyLink)
	require.NoError(t, err)

	_, sess = l.Verify(ctx, "not-a-token")
	assert.Nil(t, sess)

	m, sess = l.Verify(ctx, link.Query().Get("token"))
	require.NotNil(t, sess)
	assert.Equal(t, "other@example.com", m.Email)
	assert.NotEmpty(t, sess.Token)

	m, sess = l.Submit(ctx, ModeSignIn, "other@example.com", "wrong-password")
	assert.Nil(t, sess)
	assert.Equal(t, LoginBadCredentials, m.Error)

	_, sess = l.Submit(ctx, ModeSignIn, "other@example.com", "password123")
	require.NotNil(t, sess)
	assert.True(t, sess.User.Verified)
}

func TestLoginModel_Text(t *testing.T) {
	up := LoginModel{Mode: ParseMode("SignUp")}
	assert.Equal(t, "Create an Account", up.Title())
	assert.Equal(t, "Or sign in to continue", up.Subtitle())
	assert.Equal(t, ModeSignIn, up.Other())

	in := LoginModel{Mode: ParseMode("whatever")}
	assert.Equal(t, ModeSignIn, in.Mode)
	assert.Equal(t, ModeSignUp, in.Other())
}

func TestResolveTheme(t *testing.T) {
	tests := []struct {
		saved, hint string
		want        Theme
	}{
		{"dark", "", Dark},
		{"light", "dark", Light},
		{"", "dark", Dark},
		{"", `"dark"`, Dark},
		{"", "light", Light},
		{"purple", "", Light},
		{"", "", Light},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ResolveTheme(tt.saved, tt.hint), "saved=%q hint=%q", tt.saved, tt.hint)
	}
	assert.Equal(t, Light, Dark.Toggle())
	assert.Equal(t, Dark, Light.Toggle())
}
