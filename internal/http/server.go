// Package http serves the server-rendered pages, health endpoints and metrics.
package http

import (
	"context"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"kharcha/internal/auth"
	"kharcha/internal/cache"
	applog "kharcha/internal/log"
	"kharcha/internal/metrics"
	"kharcha/internal/middleware/ratelimit"
	"kharcha/internal/middleware/security"
	"kharcha/internal/middleware/trace"
	"kharcha/internal/views"
	appweb "kharcha/web"
)

// Accounts signs users in and checks session tokens.
type Accounts interface {
	views.Accounts
	Authenticate(token string) (*auth.Claims, error)
}

// Pinger is checked by /readyz.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Options struct {
	Addr     string
	Accounts Accounts
	Services views.Services
	Store    Pinger
	// Metrics may be nil; /metrics is then not mounted.
	Metrics *metrics.Metrics
	// Logger seeds every request's context logger; nil uses slog's default.
	Logger *applog.Logger

	RateLimitPerMinute int
	SessionCacheSize   int
	SessionCacheTTL    time.Duration
	SecureCookies      bool
}

type Server struct {
	http.Server
	templates *template.Template

	accounts      Accounts
	login         *views.Login
	services      views.Services
	store         Pinger
	metrics       *metrics.Metrics
	secureCookies bool

	sessions    *cache.LRUCache[*views.Session]
	caches      *cache.Manager
	rateLimiter *ratelimit.Limiter
	detector    *security.Detector

	started      time.Time
	shutdownOnce sync.Once
}

// NewServer configures routes, middleware and templates, returning a ready-to-run server.
func NewServer(opts Options) *Server {
	if opts.SessionCacheSize <= 0 {
		opts.SessionCacheSize = 256
	}
	if opts.SessionCacheTTL <= 0 {
		opts.SessionCacheTTL = 10 * time.Minute
	}

	s := &Server{
		accounts:      opts.Accounts,
		login:         views.NewLogin(opts.Accounts),
		services:      opts.Services,
		store:         opts.Store,
		metrics:       opts.Metrics,
		secureCookies: opts.SecureCookies,
		sessions:      cache.NewLRUCache[*views.Session](opts.SessionCacheSize, opts.SessionCacheTTL),
		caches:        cache.NewManager(),
		started:       time.Now(),
	}
	s.caches.Register("sessions", s.sessions)
	s.caches.StartCleanup(5 * time.Minute)

	var onSuspicious, onReject func()
	if s.metrics != nil {
		onSuspicious = s.metrics.SuspiciousRequest
		onReject = s.metrics.RateLimited
	}
	s.detector = security.NewDetector(onSuspicious)

	rlConfig := ratelimit.DefaultConfig()
	if opts.RateLimitPerMinute > 0 {
		rlConfig.RequestsPerMinute = opts.RateLimitPerMinute
	}
	rlConfig.OnReject = onReject
	s.rateLimiter = ratelimit.NewLimiter(rlConfig)

	// Parse embedded templates at startup.
	t, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		slog.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	mux := http.NewServeMux()
	s.routes(mux)

	var observer trace.Observer
	if s.metrics != nil {
		observer = s.metrics
	}
	var handler http.Handler = mux
	handler = s.rateLimiter.Middleware(s.detector.ExtractClientIP, nil)(handler)
	handler = s.detector.Middleware(handler)
	handler = trace.NewMiddleware(s.detector.ExtractClientIP, observer).Middleware(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	if opts.Logger != nil {
		handler = applog.Middleware(opts.Logger)(handler)
	}

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	handle := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, trace.Route(h))
	}

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", trace.Route(security.StaticAssetMiddleware(3600)(static)))
	} else {
		slog.Warn("Failed to mount embedded static FS", "error", err)
	}

	handle("GET /healthz", s.handleHealth)
	handle("GET /readyz", s.handleReady)
	if s.metrics != nil {
		mux.Handle("GET /metrics", trace.Route(s.metrics.Handler()))
	}

	handle("GET /login", s.handleLoginPage)
	handle("POST /login", s.handleSignIn)
	handle("POST /signup", s.handleSignUp)
	handle("GET /verify", s.handleVerify)
	handle("POST /logout", s.handleLogout)
	handle("POST /theme", s.handleTheme)

	handle("GET /{$}", s.withSession(s.handleDashboard))
	handle("GET /expenses", s.withSession(s.handleExpenses))
	handle("POST /expenses", s.withSession(s.handleCreateExpense))
	handle("GET /expenses/new", s.withSession(s.handleNewExpense))
	handle("GET /expenses/{id}/edit", s.withSession(s.handleEditExpense))
	handle("POST /expenses/{id}", s.withSession(s.handleUpdateExpense))
	handle("POST /expenses/{id}/delete", s.withSession(s.handleDeleteExpense))
	handle("POST /expenses/modal/close", s.withSession(s.handleCloseModal))
	handle("GET /budget", s.withSession(s.handleBudget))
	handle("POST /budget", s.withSession(s.handleSaveBudget))
	handle("GET /profile", s.withSession(s.handleProfile))
	handle("POST /profile/alerts", s.withSession(s.handleToggleAlerts))
}

// Shutdown stops background cleanup and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.caches.Stop()
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
