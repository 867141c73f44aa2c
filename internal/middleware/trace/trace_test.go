package trace

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type observation struct {
	method, route string
	status        int
}

type fakeObserver struct {
	got []observation
}

func (f *fakeObserver) ObserveRequest(method, route string, status int, _ time.Duration) {
	f.got = append(f.got, observation{method, route, status})
}

func TestMiddlewareRecordsRoutePattern(t *testing.T) {
	obs := &fakeObserver{}
	mw := NewMiddleware(func(*http.Request) string { return "10.0.0.1" }, obs)

	var seenID string
	mux := http.NewServeMux()
	mux.Handle("POST /expenses/{id}", Route(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = GetRequestID(r.Context())
		w.WriteHeader(http.StatusUnprocessableEntity)
	})))

	rec := httptest.NewRecorder()
	mw.Middleware(mux).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/expenses/abc", nil))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(obs.got) != 1 {
		t.Fatalf("observations = %d, want 1", len(obs.got))
	}
	want := observation{http.MethodPost, "POST /expenses/{id}", http.StatusUnprocessableEntity}
	if obs.got[0] != want {
		t.Errorf("observation = %+v, want %+v", obs.got[0], want)
	}
	if !strings.HasPrefix(seenID, "req_") {
		t.Errorf("request id = %q", seenID)
	}
	if rec.Header().Get("X-Request-ID") != seenID {
		t.Errorf("X-Request-ID header = %q, want %q", rec.Header().Get("X-Request-ID"), seenID)
	}
}

func TestMiddlewareUnmatchedRoute(t *testing.T) {
	obs := &fakeObserver{}
	mw := NewMiddleware(nil, obs)

	rec := httptest.NewRecorder()
	mw.Middleware(http.NewServeMux()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	if len(obs.got) != 1 || obs.got[0].route != "" || obs.got[0].status != http.StatusNotFound {
		t.Errorf("observations = %+v", obs.got)
	}
}

func TestMiddlewareKeepsIncomingRequestID(t *testing.T) {
	mw := NewMiddleware(nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "upstream-1")

	var seen string
	h := mw.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), req)

	if seen != "upstream-1" {
		t.Errorf("request id = %q, want upstream-1", seen)
	}
}

func TestGenerateRequestIDUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := GenerateRequestID()
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
}
