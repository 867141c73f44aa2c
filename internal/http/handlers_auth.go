package http

import (
	"net/http"

	"kharcha/internal/auth"
	applog "kharcha/internal/log"
	"kharcha/internal/services"
	"kharcha/internal/views"
)

// sessionHandler serves a signed-in user.
type sessionHandler func(w http.ResponseWriter, r *http.Request, sess *views.Session, claims *auth.Claims)

// withSession authenticates the session cookie and attaches the user's
// projection. The projection is reloaded whenever a full page is opened.
func (s *Server) withSession(h sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := s.authenticate(r)
		if !ok {
			s.clearSessionCookie(w)
			redirect(w, r, "/login")
			return
		}

		logger := applog.FromContext(r.Context()).With(applog.FieldUserID, claims.UserID)
		r = r.WithContext(applog.NewContext(r.Context(), logger))

		sess, fresh := s.session(claims.UserID)
		if fresh || (r.Method == http.MethodGet && !isHTMX(r)) {
			// Load keeps the last projection and sets a notice on failure.
			_ = sess.Load(r.Context())
		}
		h(w, r, sess, claims)
	}
}

func (s *Server) authenticate(r *http.Request) (*auth.Claims, bool) {
	c, err := r.Cookie(sessionCookie)
	if err != nil || c.Value == "" {
		return nil, false
	}
	claims, err := s.accounts.Authenticate(c.Value)
	if err != nil {
		return nil, false
	}
	return claims, true
}

// session returns the cached projection for userID, creating it if needed.
func (s *Server) session(userID string) (*views.Session, bool) {
	if sess, ok := s.sessions.Get(userID); ok {
		return sess, false
	}
	sess := views.NewSession(userID, s.services)
	if s.sessions.Add(userID, sess) {
		return sess, true
	}
	// Lost a race with a concurrent request for the same user.
	if existing, ok := s.sessions.Get(userID); ok {
		return existing, false
	}
	return sess, true
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authenticate(r); ok {
		redirect(w, r, "/")
		return
	}
	m := views.LoginModel{Mode: views.ParseMode(r.URL.Query().Get("mode"))}
	s.renderLogin(w, r, m, http.StatusOK)
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}
	m, sess := s.login.Submit(r.Context(), views.ModeSignIn, formValue(r, "email"), r.Form.Get("password"))
	if sess == nil {
		s.renderLogin(w, r, m, loginStatus(m))
		return
	}
	s.startSession(w, r, sess)
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}
	m, _ := s.login.Submit(r.Context(), views.ModeSignUp, formValue(r, "email"), r.Form.Get("password"))
	s.renderLogin(w, r, m, loginStatus(m))
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	m, sess := s.login.Verify(r.Context(), sanitizeInput(r.URL.Query().Get("token")))
	if sess == nil {
		s.renderLogin(w, r, m, http.StatusBadRequest)
		return
	}
	s.startSession(w, r, sess)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if claims, ok := s.authenticate(r); ok {
		s.sessions.Delete(claims.UserID)
	}
	s.clearSessionCookie(w)
	redirect(w, r, "/login")
}

func (s *Server) handleTheme(w http.ResponseWriter, r *http.Request) {
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}
	s.setThemeCookie(w, theme(r).Toggle())
	redirect(w, r, safeReturnPath(r.Form.Get("return")))
}

// startSession sets the cookie and drops any stale projection so the next
// page load reads fresh data.
func (s *Server) startSession(w http.ResponseWriter, r *http.Request, sess *services.Session) {
	s.sessions.Delete(sess.User.ID)
	s.setSessionCookie(w, sess.Token, sess.ExpiresAt)
	redirect(w, r, "/")
}

func (s *Server) renderLogin(w http.ResponseWriter, r *http.Request, m views.LoginModel, status int) {
	b := s.render(r, "login", newPage(r, "", m.Title(), "login", m), views.Outcome{})
	if !isHTMX(r) && status != http.StatusOK {
		b.Status(status)
	}
	b.Write(w)
}

func loginStatus(m views.LoginModel) int {
	switch m.Error {
	case "":
		return http.StatusOK
	case views.LoginMissingFields, views.LoginWeakPassword:
		return http.StatusUnprocessableEntity
	case views.LoginEmailTaken:
		return http.StatusConflict
	case views.LoginUnexpectedError:
		return http.StatusInternalServerError
	default:
		return http.StatusUnauthorized
	}
}
