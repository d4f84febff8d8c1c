package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/galatea-comics/galatea/internal/db"
)

func TestHealthCheck(t *testing.T) {
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer database.Close()

	srv := New(Config{Port: 0}, database, nil)

	req := httptest.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", body["status"])
	}
	if srv.Database() != database {
		t.Error("Database() should return the injected handle")
	}
}

func TestCORSHeaders(t *testing.T) {
	srv := New(Config{Port: 0, AllowAll: true}, nil, nil)

	req := httptest.NewRequest("OPTIONS", "/healthz", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("expected CORS Allow-Origin header")
	}
}

func TestAPIRateLimit(t *testing.T) {
	srv := New(Config{RateLimit: 0.001, RateBurst: 2}, nil, nil)
	srv.API().Get("/api/ping", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("pong"))
	})

	get := func(path, addr string) int {
		req := httptest.NewRequest("GET", path, nil)
		req.RemoteAddr = addr
		w := httptest.NewRecorder()
		srv.Router().ServeHTTP(w, req)
		return w.Code
	}

	for i := 0; i < 2; i++ {
		if code := get("/api/ping", "10.0.0.1:5000"); code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, code)
		}
	}
	if code := get("/api/ping", "10.0.0.1:5001"); code != http.StatusTooManyRequests {
		t.Errorf("expected 429 after burst, got %d", code)
	}
	if code := get("/api/ping", "10.0.0.2:5000"); code != http.StatusOK {
		t.Errorf("other clients have their own bucket, got %d", code)
	}
	if code := get("/healthz", "10.0.0.1:5000"); code != http.StatusOK {
		t.Errorf("healthz is not rate limited, got %d", code)
	}
}

func TestRateLimitDisabled(t *testing.T) {
	srv := New(Config{}, nil, nil)
	srv.API().Get("/api/ping", func(w http.ResponseWriter, r *http.Request) {})

	for i := 0; i < 50; i++ {
		req := httptest.NewRequest("GET", "/api/ping", nil)
		w := httptest.NewRecorder()
		srv.Router().ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, w.Code)
		}
	}
}
