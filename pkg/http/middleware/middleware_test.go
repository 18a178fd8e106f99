package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func TestLimiter_BurstAndRefill(t *testing.T) {
	now := time.Unix(0, 0)
	l := NewLimiter(2, 1)
	l.now = func() time.Time { return now }

	if !l.Allow("a") || !l.Allow("a") {
		t.Fatalf("burst of 2 should be allowed")
	}
	if l.Allow("a") {
		t.Fatalf("third request should be limited")
	}
	if !l.Allow("b") {
		t.Fatalf("keys must not share buckets")
	}

	now = now.Add(1500 * time.Millisecond)
	if !l.Allow("a") {
		t.Fatalf("expected a token after refill")
	}
	if l.Allow("a") {
		t.Fatalf("only one token should have refilled")
	}
}

func TestLimiter_Prune(t *testing.T) {
	now := time.Unix(0, 0)
	l := NewLimiter(1, 1)
	l.now = func() time.Time { return now }
	l.Allow("old")
	now = now.Add(time.Hour)
	l.Allow("new")

	if n := l.Prune(time.Minute); n != 1 {
		t.Fatalf("expected 1 pruned key, got %d", n)
	}
}

func TestRateLimit_Returns429(t *testing.T) {
	e := echo.New()
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, RateLimit(NewLimiter(1, 0)))

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Fatalf("unexpected codes %v", codes)
	}
}

func TestCORS_Preflight(t *testing.T) {
	e := echo.New()
	g := e.Group("/api", CORS(DefaultCORSConfig()))
	g.GET("/x", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	g.OPTIONS("/x", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/api/x", nil)
	req.Header.Set(echo.HeaderOrigin, "http://example.test")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if got := rec.Header().Get(echo.HeaderAccessControlAllowOrigin); got != "http://example.test" {
		t.Fatalf("unexpected allow origin %q", got)
	}
	if rec.Header().Get(echo.HeaderAccessControlMaxAge) != "600" {
		t.Fatalf("expected max age on preflight")
	}
}

func TestCORS_DisallowedOrigin(t *testing.T) {
	e := echo.New()
	cfg := DefaultCORSConfig()
	cfg.AllowOrigins = []string{"http://good.test"}
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, CORS(cfg))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderOrigin, "http://evil.test")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Header().Get(echo.HeaderAccessControlAllowOrigin) != "" {
		t.Fatalf("disallowed origin must not get CORS headers")
	}
}
