package http

import (
	"net/http"
	"strings"
	"time"

	"kharcha/internal/views"
)

const (
	sessionCookie = "kharcha_session"
	themeCookie   = "kharcha_theme"
)

// sanitizeInput removes potentially dangerous characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// safeReturnPath accepts only local absolute paths.
func safeReturnPath(p string) string {
	if p == "" || !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.HasPrefix(p, "/\\") {
		return "/"
	}
	return p
}

func (s *Server) setSessionCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// theme resolves the saved theme cookie, then the browser's colour-scheme hint.
func theme(r *http.Request) views.Theme {
	saved := ""
	if c, err := r.Cookie(themeCookie); err == nil {
		saved = c.Value
	}
	return views.ResolveTheme(saved, r.Header.Get("Sec-CH-Prefers-Color-Scheme"))
}

func (s *Server) setThemeCookie(w http.ResponseWriter, t views.Theme) {
	http.SetCookie(w, &http.Cookie{
		Name:     themeCookie,
		Value:    string(t),
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// redirect sends HTMX clients an HX-Redirect and everyone else a 303.
func redirect(w http.ResponseWriter, r *http.Request, target string) {
	if isHTMX(r) {
		NewHTMXResponse().Header("HX-Redirect", target).Write(w)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
