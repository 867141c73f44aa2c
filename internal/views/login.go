package views

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"kharcha/internal/auth"
	"kharcha/internal/services"
)

type LoginMode string

const (
	ModeSignIn LoginMode = "signin"
	ModeSignUp LoginMode = "signup"
)

const (
	LoginMissingFields   = "Please enter both email and password."
	LoginWeakPassword    = "Password must be at least 8 characters."
	LoginBadCredentials  = "Invalid email or password."
	LoginNotVerified     = "Please verify your email before signing in."
	LoginEmailTaken      = "An account with this email already exists."
	LoginInvalidLink     = "This verification link is invalid or has expired."
	LoginUnexpectedError = "Something went wrong. Please try again."
)

// ParseMode maps form input to a mode; anything unknown is sign-in.
func ParseMode(s string) LoginMode {
	if LoginMode(strings.ToLower(strings.TrimSpace(s))) == ModeSignUp {
		return ModeSignUp
	}
	return ModeSignIn
}

type LoginModel struct {
	Mode  LoginMode
	Email string
	Error string

	// CheckEmail is set after a successful sign-up.
	CheckEmail bool
	VerifyLink string
}

func (m LoginModel) SignUp() bool { return m.Mode == ModeSignUp }

func (m LoginModel) Title() string {
	if m.SignUp() {
		return "Create an Account"
	}
	return "Welcome Back"
}

func (m LoginModel) Subtitle() string {
	if m.SignUp() {
		return "Or sign in to continue"
	}
	return "Or create an account"
}

// Other is the mode the switch link leads to.
func (m LoginModel) Other() LoginMode {
	if m.SignUp() {
		return ModeSignIn
	}
	return ModeSignUp
}

type Accounts interface {
	SignUp(ctx context.Context, email, password string) (services.SignUpResult, error)
	SignIn(ctx context.Context, email, password string) (services.Session, error)
	Verify(ctx context.Context, token string) (services.Session, error)
}

// Login drives the sign-in and sign-up form. It holds no per-user state.
type Login struct {
	accounts Accounts
}

func NewLogin(accounts Accounts) *Login {
	return &Login{accounts: accounts}
}

// Submit validates the form locally and then signs in or signs up. A session
// is returned only for a successful sign-in.
func (l *Login) Submit(ctx context.Context, mode LoginMode, email, password string) (LoginModel, *services.Session) {
	m := LoginModel{Mode: mode, Email: strings.TrimSpace(email)}
	if m.Email == "" || password == "" {
		m.Error = LoginMissingFields
		return m, nil
	}
	if len(password) < auth.MinPasswordLength {
		m.Error = LoginWeakPassword
		return m, nil
	}

	if mode == ModeSignUp {
		res, err := l.accounts.SignUp(ctx, m.Email, password)
		if err != nil {
			m.Error = loginError(ctx, err)
			return m, nil
		}
		m.CheckEmail = true
		m.Email = res.User.Email
		m.VerifyLink = res.VerifyLink
		return m, nil
	}

	sess, err := l.accounts.SignIn(ctx, m.Email, password)
	if err != nil {
		m.Error = loginError(ctx, err)
		return m, nil
	}
	return m, &sess
}

// Verify follows a verification link.
func (l *Login) Verify(ctx context.Context, token string) (LoginModel, *services.Session) {
	sess, err := l.accounts.Verify(ctx, token)
	if err != nil {
		slog.WarnContext(ctx, "Verification failed", "error", err)
		return LoginModel{Mode: ModeSignIn, Error: LoginInvalidLink}, nil
	}
	return LoginModel{Mode: ModeSignIn, Email: sess.User.Email}, &sess
}

func loginError(ctx context.Context, err error) string {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return LoginBadCredentials
	case errors.Is(err, auth.ErrNotVerified):
		return LoginNotVerified
	case errors.Is(err, auth.ErrEmailExists):
		return LoginEmailTaken
	case errors.Is(err, auth.ErrWeakPassword):
		return LoginWeakPassword
	default:
		slog.ErrorContext(ctx, "Account operation failed", "error", err)
		return LoginUnexpectedError
	}
}
