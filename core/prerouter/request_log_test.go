package prerouter

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/easyfin/easyfin/config"
)

func TestRequestLog_SuccessfulRequest(t *testing.T) {
	logBuffer := new(bytes.Buffer)
	cfg := config.NewDefaultConfig()
	cfg.Log.Request.Activated = true
	app := newTestApp(t, cfg, slog.New(newMemoryHandler(logBuffer)))

	finalHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	handlerChain := NewRecorder(app).Execute(NewRequestLog(app).Execute(finalHandler))

	req := httptest.NewRequest("POST", "/api/auth/register?q=1", nil)
	req.RemoteAddr = "192.0.2.1:12345"
	handlerChain.ServeHTTP(httptest.NewRecorder(), req)

	if logBuffer.Len() == 0 {
		t.Fatal("Expected a log entry, but none was written")
	}
	logRecord, err := newMemoryHandler(logBuffer).LastRecord()
	if err != nil {
		t.Fatalf("Failed to parse log output: %v", err)
	}

	if logRecord["msg"] != "http_request" {
		t.Errorf("Expected log message 'http_request', got '%v'", logRecord["msg"])
	}
	if status, _ := logRecord["status"].(float64); status != http.StatusCreated {
		t.Errorf("Expected status %d, got %v", http.StatusCreated, logRecord["status"])
	}
	if ip, _ := logRecord["remote_ip"].(string); ip != "192.0.2.1" {
		t.Errorf("Expected remote_ip '192.0.2.1', got '%v'", logRecord["remote_ip"])
	}
	if uri, _ := logRecord["uri"].(string); uri != "/api/auth/register?q=1" {
		t.Errorf("Expected uri '/api/auth/register?q=1', got '%v'", logRecord["uri"])
	}
}

func TestRequestLog_Deactivated(t *testing.T) {
	logBuffer := new(bytes.Buffer)
	cfg := config.NewDefaultConfig()
	cfg.Log.Request.Activated = false
	app := newTestApp(t, cfg, slog.New(newMemoryHandler(logBuffer)))

	finalHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	handlerChain := NewRecorder(app).Execute(NewRequestLog(app).Execute(finalHandler))
	handlerChain.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	if logBuffer.Len() != 0 {
		t.Errorf("Expected no log output, got: %s", logBuffer.String())
	}
}

func TestRequestLog_ProxyHeaderAndLimits(t *testing.T) {
	logBuffer := new(bytes.Buffer)
	cfg := config.NewDefaultConfig()
	cfg.Log.Request.Activated = true
	cfg.Log.Request.Limits.UserAgentLength = 10
	cfg.Server.ClientIpProxyHeader = "X-Forwarded-For"
	app := newTestApp(t, cfg, slog.New(newMemoryHandler(logBuffer)))

	handlerChain := NewRecorder(app).Execute(NewRequestLog(app).Execute(http.NotFoundHandler()))

	req := httptest.NewRequest("GET", "/missing", nil)
	req.RemoteAddr = "10.0.0.1:80"
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	req.Header.Set("User-Agent", strings.Repeat("a", 50))
	handlerChain.ServeHTTP(httptest.NewRecorder(), req)

	logRecord, err := newMemoryHandler(logBuffer).LastRecord()
	if err != nil {
		t.Fatalf("Failed to parse log output: %v", err)
	}
	if ip, _ := logRecord["remote_ip"].(string); ip != "203.0.113.9" {
		t.Errorf("Expected forwarded ip, got '%v'", logRecord["remote_ip"])
	}
	if ua, _ := logRecord["user_agent"].(string); ua != strings.Repeat("a", 10)+"..." {
		t.Errorf("Expected truncated user agent, got '%v'", logRecord["user_agent"])
	}
	if status, _ := logRecord["status"].(float64); status != http.StatusNotFound {
		t.Errorf("Expected status %d, got %v", http.StatusNotFound, logRecord["status"])
	}
}

func TestCutStr(t *testing.T) {
	testCases := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"longer than ten", 10, "longer tha..."},
		{"no limit", 0, "no limit"},
	}
	for _, tc := range testCases {
		if got := cutStr(tc.in, tc.max); got != tc.want {
			t.Errorf("cutStr(%q, %d) = %q, want %q", tc.in, tc.max, got, tc.want)
		}
	}
}
