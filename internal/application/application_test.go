package application

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/voxdial/voxdial/internal/config"
)

func testConfig() config.Config {
	return config.Config{
		Port:                "8080",
		BaseURL:             "calls.example.com",
		EngineURL:           "http://engine:9000",
		LogLevel:            "info",
		ShutdownGracePeriod: time.Second,
		ReadHeaderTimeout:   time.Second,
		WriteTimeout:        time.Second,
		IdleTimeout:         time.Second,
		RateLimitRPS:        25,
		RateLimitBurst:      50,
	}
}

func TestNewWiresServer(t *testing.T) {
	app, err := New(testConfig(), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	server := app.Server()
	if server.Addr != ":8080" {
		t.Fatalf("expected addr :8080, got %s", server.Addr)
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from health, got %d", rec.Code)
	}
}

func TestNewKeepsExplicitAddr(t *testing.T) {
	cfg := testConfig()
	cfg.Port = "127.0.0.1:3000"

	app, err := New(cfg, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if app.Server().Addr != "127.0.0.1:3000" {
		t.Fatalf("unexpected addr %s", app.Server().Addr)
	}
}
