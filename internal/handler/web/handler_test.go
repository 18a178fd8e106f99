package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"IndexScope/internal/repository"
	"IndexScope/internal/services/chart"
	"IndexScope/internal/services/projection"
	"IndexScope/internal/usecase"
	"IndexScope/pkg/cache"
	"IndexScope/pkg/metrics"
	"IndexScope/pkg/session"
	pkgsqlite "IndexScope/pkg/sqlite"
)

const nyseCSV = `Index, Date, Open, High, Low, Close, Adj Close
NYSE, 2020-01-01, 10, 10, 10, 10, 10
NYSE, 2020-01-02, 11, 11, 11, 11, 11
NYSE, 2020-01-03, 12, 12, 12, 12, 12
`

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "indexData.csv")
	if err := os.WriteFile(csvPath, []byte(nyseCSV), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	c, err := pkgsqlite.NewClient(pkgsqlite.WithPath(filepath.Join(dir, "stocks.db")))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	store, err := repository.NewSQLiteStore(ctx, c, "stock_data")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	loader := usecase.NewStoreLoader(repository.NewCSVSource(csvPath), store, metrics.Noop{}, nil)
	if _, err := loader.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}

	mem := cache.NewMemoryCache()
	t.Cleanup(func() { _ = mem.Close() })

	charts := usecase.NewChartsUseCase(store, projection.NewModel(), chart.NewRenderer(320, 200), repository.NoopPublisher{}, metrics.Noop{}, nil)
	h := NewHandler(nil, charts, session.NewManager(mem), metrics.Noop{})

	e := echo.New()
	e.Renderer = MustTemplates()
	h.RegisterRoutes(e)
	return e
}

// browser replays the session cookie across requests.
type browser struct {
	t       *testing.T
	e       *echo.Echo
	cookies []*http.Cookie
}

func (b *browser) do(method, path string, form url.Values) *httptest.ResponseRecorder {
	b.t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for _, ck := range b.cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	b.e.ServeHTTP(rec, req)
	if cks := rec.Result().Cookies(); len(cks) > 0 {
		b.cookies = cks
	}
	return rec
}

func expectRedirect(t *testing.T, rec *httptest.ResponseRecorder, to string) {
	t.Helper()
	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d: %s", rec.Code, rec.Body.String())
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != to {
		t.Fatalf("expected redirect to %s, got %s", to, loc)
	}
}

func TestHome_ListsSymbols(t *testing.T) {
	b := &browser{t: t, e: newTestServer(t)}
	for _, path := range []string{"/", "/index", "/home"} {
		rec := b.do(http.MethodGet, path, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `<option value="NYSE">NYSE</option>`) {
			t.Fatalf("%s: symbol missing from page", path)
		}
	}
}

func TestVisualize_NoSelection(t *testing.T) {
	b := &browser{t: t, e: newTestServer(t)}

	expectRedirect(t, b.do(http.MethodGet, "/action/visualize", nil), "/")

	rec := b.do(http.MethodGet, "/", nil)
	if !strings.Contains(rec.Body.String(), "Please choose a stock to view!") {
		t.Fatalf("expected error on home page")
	}
	rec = b.do(http.MethodGet, "/", nil)
	if strings.Contains(rec.Body.String(), "Please choose a stock to view!") {
		t.Fatalf("error message should be shown only once")
	}
}

func TestVisualize_ShowsChart(t *testing.T) {
	b := &browser{t: t, e: newTestServer(t)}

	rec := b.do(http.MethodPost, "/action/visualize", url.Values{"index": {"NYSE"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "- NYSE") || !strings.Contains(body, "data:image/png;base64,") {
		t.Fatalf("unexpected page %s", body)
	}

	// selection is remembered
	rec = b.do(http.MethodGet, "/action/visualize", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "- NYSE") {
		t.Fatalf("expected remembered selection, got %d", rec.Code)
	}
}

func TestVisualize_UnknownSymbol(t *testing.T) {
	b := &browser{t: t, e: newTestServer(t)}

	expectRedirect(t, b.do(http.MethodPost, "/action/visualize", url.Values{"index": {"GSPC"}}), "/")
	rec := b.do(http.MethodGet, "/", nil)
	if !strings.Contains(rec.Body.String(), "No data was found for GSPC!") {
		t.Fatalf("expected no data message, got %s", rec.Body.String())
	}
}

func TestProject_Flow(t *testing.T) {
	tests := []struct {
		name    string
		project url.Values
		message string
	}{
		{"missing field", url.Values{}, "No date was given! Please enter a valid date to predict!"},
		{"empty", url.Values{"project": {""}}, "No date was given! Please enter a valid date to predict!"},
		{"unreadable", url.Values{"project": {"tomorrow"}}, "The date you entered could not be read! Please use YYYY-MM-DD."},
		{"same day", url.Values{"project": {"2020-01-03"}}, "The date you projected to was not in the future!"},
		{"past", url.Values{"project": {"2019-06-01"}}, "The date you projected to was not in the future!"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &browser{t: t, e: newTestServer(t)}
			b.do(http.MethodPost, "/action/visualize", url.Values{"index": {"NYSE"}})

			expectRedirect(t, b.do(http.MethodPost, "/action/project", tt.project), "/action/visualize")
			rec := b.do(http.MethodGet, "/action/visualize", nil)
			if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), tt.message) {
				t.Fatalf("expected %q on chart page, got %d %s", tt.message, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestProject_Success(t *testing.T) {
	b := &browser{t: t, e: newTestServer(t)}
	b.do(http.MethodPost, "/action/visualize", url.Values{"index": {"NYSE"}})

	rec := b.do(http.MethodPost, "/action/project", url.Values{"project": {"2020-01-10"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "- NYSE (Projected to 2020-01-10)") {
		t.Fatalf("unexpected page %s", rec.Body.String())
	}
}

func TestProject_NoSelection(t *testing.T) {
	b := &browser{t: t, e: newTestServer(t)}

	expectRedirect(t, b.do(http.MethodPost, "/action/project", url.Values{"project": {"2020-01-10"}}), "/action/visualize")
	// visualize has no selection either, so the message travels on to home
	expectRedirect(t, b.do(http.MethodGet, "/action/visualize", nil), "/")
	rec := b.do(http.MethodGet, "/", nil)
	if !strings.Contains(rec.Body.String(), "Please choose a stock to view!") {
		t.Fatalf("expected selection message on home page")
	}
}

func TestHome_ClearsSelection(t *testing.T) {
	b := &browser{t: t, e: newTestServer(t)}
	b.do(http.MethodPost, "/action/visualize", url.Values{"index": {"NYSE"}})

	expectRedirect(t, b.do(http.MethodPost, "/action/go_home", nil), "/")
	b.do(http.MethodGet, "/", nil)
	expectRedirect(t, b.do(http.MethodGet, "/action/visualize", nil), "/")
}
