package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Akilesh-programmer/Blog-Website-GDG/internal/middleware"
)

func TestRateLimiterBlocksAfterLimit(t *testing.T) {
	rl := middleware.NewRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !rl.Allow("1.2.3.4") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.Allow("1.2.3.4") {
		t.Fatal("request over the limit should be blocked")
	}
}

func TestRateLimiterIsolatesClients(t *testing.T) {
	rl := middleware.NewRateLimiter(1, time.Minute)

	if !rl.Allow("1.1.1.1") {
		t.Fatal("first client should be allowed")
	}
	if !rl.Allow("2.2.2.2") {
		t.Fatal("second client should not share the first client's budget")
	}
	if rl.Allow("1.1.1.1") {
		t.Fatal("first client should be over its budget")
	}
}

func TestRateLimiterResetsAfterWindow(t *testing.T) {
	rl := middleware.NewRateLimiter(1, 20*time.Millisecond)

	if !rl.Allow("1.2.3.4") {
		t.Fatal("first request should be allowed")
	}
	if rl.Allow("1.2.3.4") {
		t.Fatal("second request in the window should be blocked")
	}
	time.Sleep(30 * time.Millisecond)
	if !rl.Allow("1.2.3.4") {
		t.Fatal("request after the window should be allowed again")
	}
}

func TestLimitMiddlewareRespondsWith429(t *testing.T) {
	rl := middleware.NewRateLimiter(1, time.Minute)
	handler := rl.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/users/login", nil)
	req.Header.Set("X-Real-IP", "9.9.9.9")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("first request: got status %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: got status %d, want 429", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("got content type %q, want application/json", ct)
	}
}
