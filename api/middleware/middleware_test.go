package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ashcorp/wishlist-backend/internal/storefront"
	pkgauth "github.com/ashcorp/wishlist-backend/pkg/auth"
	"github.com/ashcorp/wishlist-backend/pkg/config"
	"github.com/ashcorp/wishlist-backend/pkg/logger"
)

func TestRequestIDGeneratesAndPropagates(t *testing.T) {
	var seen string
	handler := RequestID(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if seen == "" || rec.Header().Get(requestIDHeader) != seen {
		t.Fatalf("expected generated request id, ctx=%q header=%q", seen, rec.Header().Get(requestIDHeader))
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "req-abc")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if seen != "req-abc" {
		t.Fatalf("expected caller request id, got %q", seen)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, strings.Repeat("x", maxRequestIDLength+1))
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if len(seen) > maxRequestIDLength {
		t.Fatal("oversized request id should be replaced")
	}
}

func TestRecovererWritesInternalError(t *testing.T) {
	handler := Recoverer(nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "INTERNAL_ERROR") {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

type captureObserver struct {
	method, route string
	status        int
}

func (c *captureObserver) Observe(method, route string, status int, _ time.Duration) {
	c.method, c.route, c.status = method, route, status
}

func TestLoggingRecordsRoutePattern(t *testing.T) {
	buf := &bytes.Buffer{}
	logg := logger.New(logger.Options{ServiceName: "test", Output: buf})
	observer := &captureObserver{}

	r := chi.NewRouter()
	r.Use(Logging(logg, observer))
	r.Get("/api/collection/{collectionId}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/collection/abc", nil))

	if observer.route != "/api/collection/{collectionId}" || observer.status != http.StatusTeapot {
		t.Fatalf("unexpected observation %+v", observer)
	}
	if !strings.Contains(buf.String(), "request.complete") {
		t.Fatalf("expected completion log, got %s", buf.String())
	}
}

func TestStorefrontMiddleware(t *testing.T) {
	luxury, _ := storefront.Lookup("ashluxury")
	var got storefront.Storefront
	handler := Storefront(luxury, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = storefront.FromContext(r.Context())
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if got.Key != storefront.Ashluxury {
		t.Fatalf("expected ashluxury, got %s", got.Key)
	}
}

func TestStorefrontFromQuery(t *testing.T) {
	var got storefront.Storefront
	handler := StorefrontFrom(func(r *http.Request) string {
		return r.URL.Query().Get("storefront")
	}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = storefront.FromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/shopify_orders?storefront=ashluxury", nil))
	if rec.Code != http.StatusOK || got.Key != storefront.Ashluxury {
		t.Fatalf("expected ashluxury, got %s (status %d)", got.Key, rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/shopify_orders", nil))
	if got.Key != storefront.Ashluxe {
		t.Fatalf("expected default storefront, got %s", got.Key)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/shopify_orders?storefront=nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown storefront, got %d", rec.Code)
	}
}

func dashboardConfig() config.DashboardConfig {
	return config.DashboardConfig{JWTSecret: "secret", JWTIssuer: "wishlist-dashboard", TokenTTL: time.Hour}
}

func TestDashboardAuthDisabledWithoutSecret(t *testing.T) {
	called := false
	handler := DashboardAuth(config.DashboardConfig{}, nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if !called {
		t.Fatal("dashboard should be open without a secret")
	}
}

func TestDashboardAuthAcceptsBearerAndCookie(t *testing.T) {
	cfg := dashboardConfig()
	token, err := pkgauth.MintDashboardToken(cfg, time.Now(), pkgauth.DashboardTokenPayload{Operator: "ops@ashluxe.com"})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	var operator string
	handler := DashboardAuth(cfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		operator = DashboardClaimsFromContext(r.Context()).Subject
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || operator != "ops@ashluxe.com" {
		t.Fatalf("bearer: status=%d operator=%q", rec.Code, operator)
	}

	operator = ""
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: DashboardCookie, Value: token})
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || operator != "ops@ashluxe.com" {
		t.Fatalf("cookie: status=%d operator=%q", rec.Code, operator)
	}
}

func TestDashboardAuthRejects(t *testing.T) {
	cfg := dashboardConfig()
	limited, err := pkgauth.MintDashboardToken(cfg, time.Now(), pkgauth.DashboardTokenPayload{Operator: "ops", Storefronts: []string{"ashluxury"}})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	handler := DashboardAuth(cfg, nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run")
	}))

	cases := map[string]string{
		"missing":          "",
		"garbage":          "Bearer not-a-jwt",
		"wrong storefront": "Bearer " + limited,
	}
	for name, header := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", name, rec.Code)
		}
	}
}
