package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"runtime"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SmallVagetable/nanobot-hyc/internal/config"
	"github.com/SmallVagetable/nanobot-hyc/internal/inspector"
	"github.com/SmallVagetable/nanobot-hyc/internal/restarter"
)

func init() { gin.SetMode(gin.TestMode) }

func requireUnix(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires Unix-like environment")
	}
}

// emptyInspector sees no processes at all.
type emptyInspector struct{}

func (emptyInspector) FindByCommandPattern(string) (int, bool, error) { return 0, false, nil }
func (emptyInspector) FindByPort(int) (int, bool, error)              { return 0, false, nil }
func (emptyInspector) Alive(int) bool                                 { return false }
func (emptyInspector) Signal(int, inspector.Signal) error             { return nil }

func testRouter(t *testing.T, basePath string) *Router {
	t.Helper()
	cfg := config.Default()
	cfg.Command = "true"
	cfg.Log.Path = ""
	rst := restarter.New(cfg, emptyInspector{}, slog.Default())
	rst.SetSleep(func(time.Duration) {})
	return NewRouter(rst, basePath)
}

func TestStatusEndpoint(t *testing.T) {
	h := testRouter(t, "/api").Handler()
	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status code %d", rec.Code)
	}
	var st restarter.Status
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if st.Running {
		t.Fatalf("expected not running, got %+v", st)
	}
}

func TestHealthzEndpoint(t *testing.T) {
	h := testRouter(t, "").Handler()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status code %d", rec.Code)
	}
}

func TestRestartEndpoint(t *testing.T) {
	requireUnix(t)
	h := testRouter(t, "/api").Handler()
	req := httptest.NewRequest(http.MethodPost, "/api/restart", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status code %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestRestartEndpointFailure(t *testing.T) {
	requireUnix(t)
	cfg := config.Default()
	cfg.Command = "/definitely/not/a/binary"
	cfg.Log.Path = ""
	rst := restarter.New(cfg, emptyInspector{}, slog.Default())
	rst.SetSleep(func(time.Duration) {})
	h := NewRouter(rst, "").Handler()

	req := httptest.NewRequest(http.MethodPost, "/restart", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 for launch failure, got %d", rec.Code)
	}
}

func TestSanitizeBase(t *testing.T) {
	cases := map[string]string{
		"":      "",
		"/":     "",
		"api":   "/api",
		"/api":  "/api",
		"/api/": "/api",
	}
	for in, want := range cases {
		if got := sanitizeBase(in); got != want {
			t.Fatalf("sanitizeBase(%q) = %q, want %q", in, got, want)
		}
	}
}
