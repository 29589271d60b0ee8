package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/labstack/echo/v4"
)

type stubSession bool

func (s stubSession) Connected() bool { return bool(s) }

func TestCheck_Ok(t *testing.T) {
	svc := NewService(stubSession(true), t.TempDir())

	report := svc.Check()
	if report.Status != "ok" {
		t.Errorf("status = %q, want ok (detail: %s)", report.Status, report.Detail)
	}
	if !report.Connected || !report.BasePathWritable {
		t.Errorf("unexpected report: %+v", report)
	}
}

func TestCheck_Disconnected(t *testing.T) {
	svc := NewService(stubSession(false), t.TempDir())

	report := svc.Check()
	if report.Status != "degraded" {
		t.Errorf("status = %q, want degraded", report.Status)
	}
	if report.Connected {
		t.Errorf("connected should be false")
	}
}

func TestCheck_MissingBasePath(t *testing.T) {
	svc := NewService(stubSession(true), filepath.Join(t.TempDir(), "missing"))

	report := svc.Check()
	if report.Status != "degraded" {
		t.Errorf("status = %q, want degraded", report.Status)
	}
	if report.BasePathWritable {
		t.Errorf("base path should not be writable")
	}
	if report.Detail == "" {
		t.Errorf("degraded report should carry a detail message")
	}
}

func TestCheckBasePath_NotADirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "plain")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	ok, detail := checkBasePath(file)
	if ok {
		t.Fatalf("regular file reported as usable base path")
	}
	if detail == "" {
		t.Errorf("no detail for unusable base path")
	}
}

func TestHandler_StatusCodes(t *testing.T) {
	tests := []struct {
		name      string
		connected bool
		want      int
	}{
		{"ok", true, http.StatusOK},
		{"degraded", false, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			h := NewHandlers(NewService(stubSession(tt.connected), t.TempDir()))
			h.RegisterRoutes(e.Group("/health"))

			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}

			var report Report
			if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
				t.Fatalf("decode report: %v", err)
			}
			if report.Connected != tt.connected {
				t.Errorf("connected = %v, want %v", report.Connected, tt.connected)
			}
		})
	}
}
