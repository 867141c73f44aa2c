package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"kharcha/internal/auth"
	"kharcha/internal/metrics"
	"kharcha/internal/services"
	"kharcha/internal/storage/memory"
	"kharcha/internal/views"
)

type downStore struct{}

func (downStore) Ping(context.Context) error { return errors.New("connection refused") }

type testServer struct {
	srv      *Server
	store    *memory.Store
	accounts *services.AccountService
	cookie   *http.Cookie
	userID   string
}

func newTestServer(t *testing.T, opts ...func(*Options)) *testServer {
	t.Helper()
	store := memory.New()
	tokens := auth.NewJWTManager("http-test-secret-0123456789", time.Hour, time.Hour)
	accounts := services.NewAccountService(store, tokens, "http://localhost:8081").WithBcryptCost(bcrypt.MinCost)

	o := Options{
		Addr:     ":0",
		Accounts: accounts,
		Services: views.Services{
			Expenses: services.NewExpenseService(store),
			Budgets:  services.NewBudgetService(store),
			Profiles: services.NewProfileService(store),
		},
		Store:   store,
		Metrics: metrics.New(),
	}
	for _, fn := range opts {
		fn(&o)
	}
	srv := NewServer(o)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	ctx := context.Background()
	u, err := accounts.CreateVerified(ctx, "me@example.com", "password123")
	require.NoError(t, err)
	sess, err := accounts.SignIn(ctx, "me@example.com", "password123")
	require.NoError(t, err)

	return &testServer{
		srv:      srv,
		store:    store,
		accounts: accounts,
		cookie:   &http.Cookie{Name: sessionCookie, Value: sess.Token},
		userID:   u.ID,
	}
}

func (ts *testServer) do(method, target string, form url.Values, mutate ...func(*http.Request)) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for _, fn := range mutate {
		fn(req)
	}
	rr := httptest.NewRecorder()
	ts.srv.Handler.ServeHTTP(rr, req)
	return rr
}

func (ts *testServer) signedIn(r *http.Request) { r.AddCookie(ts.cookie) }

func htmx(r *http.Request) { r.Header.Set("HX-Request", "true") }

func TestHealthAndReady(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var health map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &health))
	assert.Equal(t, "ok", health["status"])

	rr = ts.do(http.MethodGet, "/readyz", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var ready struct {
		Status string                 `json:"status"`
		Checks map[string]interface{} `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &ready))
	assert.Equal(t, "ready", ready.Status)
	assert.Equal(t, "ok", ready.Checks["store"])
	assert.Equal(t, "ok", ready.Checks["templates"])
}

func TestReadyFailsWhenStoreIsDown(t *testing.T) {
	ts := newTestServer(t, func(o *Options) { o.Store = downStore{} })

	rr := ts.do(http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Contains(t, rr.Body.String(), "connection refused")
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.do(http.MethodGet, "/healthz", nil)

	rr := ts.do(http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "http_requests_total")
}

func TestSecurityHeaders(t *testing.T) {
	ts := newTestServer(t)
	rr := ts.do(http.MethodGet, "/healthz", nil)
	assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, rr.Header().Get("Content-Security-Policy"))
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

func TestProtectedPagesRequireSession(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/", "/expenses", "/budget", "/profile"} {
		rr := ts.do(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusSeeOther, rr.Code, path)
		assert.Equal(t, "/login", rr.Header().Get("Location"), path)
	}

	rr := ts.do(http.MethodGet, "/expenses", nil, htmx)
	assert.Equal(t, "/login", rr.Header().Get("HX-Redirect"))

	rr = ts.do(http.MethodGet, "/", nil, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: sessionCookie, Value: "garbage"})
	})
	assert.Equal(t, http.StatusSeeOther, rr.Code)
}

func TestPagesRender(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		path string
		want []string
	}{
		{"/", []string{"Total Spent (This Month)", "Remaining Budget", views.TrendEmpty, views.BreakdownEmpty}},
		{"/expenses", []string{"No expenses found.", "All Categories", "Groceries"}},
		{"/budget", []string{"Set Budget", "₹1,000.00"}},
		{"/profile", []string{"me@example.com", "Budget alerts"}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rr := ts.do(http.MethodGet, tt.path, nil, ts.signedIn)
			require.Equal(t, http.StatusOK, rr.Code)
			body := rr.Body.String()
			assert.Contains(t, body, "<!DOCTYPE html>")
			for _, w := range tt.want {
				assert.Contains(t, body, w)
			}
		})
	}
}

func TestHTMXRendersPartial(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(http.MethodGet, "/expenses/new", nil, ts.signedIn, htmx)
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.NotContains(t, body, "<!DOCTYPE html>")
	assert.Contains(t, body, "Add Expense")
	assert.Contains(t, body, `name="amount"`)

	rr = ts.do(http.MethodPost, "/expenses/modal/close", url.Values{}, ts.signedIn, htmx)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), "modal-backdrop")
	assert.Contains(t, rr.Header().Get("HX-Trigger"), "modal:closed")
}

func TestCreateExpense(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	// Invalid amount
	rr := ts.do(http.MethodPost, "/expenses", url.Values{
		"amount": {"abc"}, "category": {"cat1"}, "date": {"2025-03-10"},
	}, ts.signedIn)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), views.NoticeInvalidAmount)
	assert.Contains(t, rr.Body.String(), `value="abc"`)

	// Unknown category
	rr = ts.do(http.MethodPost, "/expenses", url.Values{
		"amount": {"10"}, "category": {"nope"}, "date": {"2025-03-10"},
	}, ts.signedIn)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	stored, err := ts.store.ListExpenses(ctx, ts.userID)
	require.NoError(t, err)
	assert.Empty(t, stored)

	// Success over htmx
	rr = ts.do(http.MethodPost, "/expenses", url.Values{
		"amount": {"250.50"}, "category": {"cat2"}, "date": {"2025-03-10"}, "notes": {"Electricity"},
	}, ts.signedIn, htmx)
	require.Equal(t, http.StatusOK, rr.Code)
	trigger := rr.Header().Get("HX-Trigger")
	assert.Contains(t, trigger, "show-notification")
	assert.Contains(t, trigger, views.NoticeExpenseAdded)
	assert.Contains(t, trigger, `"type":"success"`)
	assert.Contains(t, trigger, "expenses:changed")
	assert.Contains(t, rr.Body.String(), "₹250.50")
	assert.Contains(t, rr.Body.String(), "Electricity")

	stored, err = ts.store.ListExpenses(ctx, ts.userID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, int64(25050), stored[0].Amount.Paise)
	assert.Equal(t, "cat2", stored[0].CategoryID)
}

func TestEditAndDeleteExpense(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	rr := ts.do(http.MethodPost, "/expenses", url.Values{
		"amount": {"100"}, "category": {"cat1"}, "date": {"2025-03-10"}, "notes": {"Milk"},
	}, ts.signedIn)
	require.Equal(t, http.StatusOK, rr.Code)
	stored, err := ts.store.ListExpenses(ctx, ts.userID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	id := stored[0].ID

	rr = ts.do(http.MethodGet, "/expenses/"+id+"/edit", nil, ts.signedIn)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Edit Expense")
	assert.Contains(t, rr.Body.String(), `action="/expenses/`+id+`"`)

	rr = ts.do(http.MethodGet, "/expenses/missing/edit", nil, ts.signedIn)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = ts.do(http.MethodPost, "/expenses/"+id, url.Values{
		"amount": {"120"}, "category": {"cat1"}, "date": {"2025-03-11"}, "notes": {"Milk and bread"},
	}, ts.signedIn)
	require.Equal(t, http.StatusOK, rr.Code)
	stored, err = ts.store.ListExpenses(ctx, ts.userID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, id, stored[0].ID)
	assert.Equal(t, int64(12000), stored[0].Amount.Paise)

	rr = ts.do(http.MethodPost, "/expenses/"+id+"/delete", url.Values{}, ts.signedIn, htmx)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("HX-Trigger"), views.NoticeExpenseDeleted)
	stored, err = ts.store.ListExpenses(ctx, ts.userID)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestExpenseFilterAndPaging(t *testing.T) {
	ts := newTestServer(t)

	for i := 0; i < 10; i++ {
		notes := "rent"
		if i%2 == 0 {
			notes = "coffee"
		}
		rr := ts.do(http.MethodPost, "/expenses", url.Values{
			"amount": {"10"}, "category": {"cat5"}, "date": {"2025-03-10"}, "notes": {notes},
		}, ts.signedIn)
		require.Equal(t, http.StatusOK, rr.Code)
	}

	rr := ts.do(http.MethodGet, "/expenses?page=2", nil, ts.signedIn, htmx)
	assert.Contains(t, rr.Body.String(), "Page 2 of 2")
	assert.Contains(t, rr.Body.String(), "Showing 9 to 10 of 10 expenses")

	rr = ts.do(http.MethodGet, "/expenses?filter=1&notes=coffee&category=all", nil, ts.signedIn, htmx)
	assert.Contains(t, rr.Body.String(), "Showing 1 to 5 of 5 expenses")
	assert.Contains(t, rr.Body.String(), "Clear filters")

	// Paging links carry no filter, so the filter sticks.
	rr = ts.do(http.MethodGet, "/expenses?page=1", nil, ts.signedIn, htmx)
	assert.Contains(t, rr.Body.String(), "of 5 expenses")

	rr = ts.do(http.MethodGet, "/expenses?reset=1", nil, ts.signedIn, htmx)
	assert.Contains(t, rr.Body.String(), "of 10 expenses")
}

func TestBudgetAndProfileActions(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	rr := ts.do(http.MethodPost, "/budget", url.Values{"amount": {"-5"}}, ts.signedIn)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), views.NoticeInvalidBudget)

	rr = ts.do(http.MethodPost, "/budget", url.Values{"amount": {"5000"}, "period": {"weekly"}}, ts.signedIn, htmx)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("HX-Trigger"), views.NoticeBudgetSaved)
	b, err := ts.store.GetBudget(ctx, ts.userID)
	require.NoError(t, err)
	assert.Equal(t, int64(500000), b.Amount.Paise)

	rr = ts.do(http.MethodPost, "/profile/alerts", url.Values{}, ts.signedIn, htmx)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("HX-Trigger"), views.NoticeAlertsOff)
	settings, err := ts.store.GetProfile(ctx, ts.userID)
	require.NoError(t, err)
	assert.False(t, settings.EnableBudgetAlerts)
}

func TestSignUpVerifyAndSignIn(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(http.MethodGet, "/login?mode=signup", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Create an Account")

	rr = ts.do(http.MethodPost, "/signup", url.Values{"email": {"new@example.com"}, "password": {"short"}})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), views.LoginWeakPassword)

	rr = ts.do(http.MethodPost, "/signup", url.Values{"email": {"new@example.com"}, "password": {"password123"}})
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "Check your email")
	assert.Contains(t, body, "Verify Email (Simulated)")

	rr = ts.do(http.MethodPost, "/login", url.Values{"email": {"new@example.com"}, "password": {"password123"}})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), views.LoginNotVerified)

	m := regexp.MustCompile(`token=([A-Za-z0-9_\-.]+)`).FindStringSubmatch(body)
	require.Len(t, m, 2)

	rr = ts.do(http.MethodGet, "/verify?token=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), views.LoginInvalidLink)

	rr = ts.do(http.MethodGet, "/verify?token="+m[1], nil)
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))
	assert.Contains(t, rr.Header().Get("Set-Cookie"), sessionCookie+"=")

	rr = ts.do(http.MethodPost, "/login", url.Values{"email": {"new@example.com"}, "password": {"wrong-password"}})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), views.LoginBadCredentials)

	rr = ts.do(http.MethodPost, "/login", url.Values{"email": {"new@example.com"}, "password": {"password123"}})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))
}

func TestLoginPageRedirectsWhenSignedIn(t *testing.T) {
	ts := newTestServer(t)
	rr := ts.do(http.MethodGet, "/login", nil, ts.signedIn)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))
}

func TestLogout(t *testing.T) {
	ts := newTestServer(t)
	ts.do(http.MethodGet, "/", nil, ts.signedIn)
	require.Equal(t, 1, ts.srv.sessions.Size())

	rr := ts.do(http.MethodPost, "/logout", url.Values{}, ts.signedIn)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/login", rr.Header().Get("Location"))
	assert.Contains(t, rr.Header().Get("Set-Cookie"), "Max-Age=0")
	assert.Equal(t, 0, ts.srv.sessions.Size())
}

func TestThemeToggle(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(http.MethodPost, "/theme", url.Values{"return": {"/budget"}})
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/budget", rr.Header().Get("Location"))
	assert.Contains(t, rr.Header().Get("Set-Cookie"), themeCookie+"=dark")

	rr = ts.do(http.MethodPost, "/theme", url.Values{"return": {"//evil.example"}}, func(r *http.Request) {
		r.Header.Set("Sec-CH-Prefers-Color-Scheme", "dark")
	})
	assert.Equal(t, "/", rr.Header().Get("Location"))
	assert.Contains(t, rr.Header().Get("Set-Cookie"), themeCookie+"=light")

	rr = ts.do(http.MethodGet, "/profile", nil, ts.signedIn, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: themeCookie, Value: "dark"})
	})
	assert.Contains(t, rr.Body.String(), `data-theme="dark"`)
}

func TestTemplatesUnavailable(t *testing.T) {
	ts := newTestServer(t)
	ts.srv.templates = nil

	rr := ts.do(http.MethodGet, "/", nil, ts.signedIn)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)

	rr = ts.do(http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestStaticAssets(t *testing.T) {
	ts := newTestServer(t)
	rr := ts.do(http.MethodGet, "/static/app.css", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Cache-Control"), "max-age=3600")
}

func TestSafeReturnPath(t *testing.T) {
	tests := map[string]string{
		"":                     "/",
		"/expenses":            "/expenses",
		"//evil.example":       "/",
		"/\\evil.example":      "/",
		"https://evil.example": "/",
	}
	for in, want := range tests {
		assert.Equal(t, want, safeReturnPath(in), in)
	}
}
