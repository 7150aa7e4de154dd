package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func limitedRequest(t *testing.T, handler http.Handler, remoteAddr string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiterBlocksAfterLimit(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)
	handler := rl.Middleware(okHandler())

	for i := 0; i < 3; i++ {
		if rec := limitedRequest(t, handler, "10.0.0.1:41000"); rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, rec.Code)
		}
	}

	rec := limitedRequest(t, handler, "10.0.0.1:41000")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after limit, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header on a limited response")
	}
}

func TestRateLimiterKeysByHostNotPort(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	handler := rl.Middleware(okHandler())

	// Same client reconnecting on a new ephemeral port shares one bucket.
	limitedRequest(t, handler, "10.0.0.1:41000")
	limitedRequest(t, handler, "10.0.0.1:41001")
	if rec := limitedRequest(t, handler, "10.0.0.1:41002"); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 for same host on a different port, got %d", rec.Code)
	}

	// A different client is unaffected.
	if rec := limitedRequest(t, handler, "10.0.0.2:41000"); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for a different client, got %d", rec.Code)
	}
}

func TestRateLimiterResetsAfterWindow(t *testing.T) {
	rl := NewRateLimiter(1, 30*time.Millisecond)
	handler := rl.Middleware(okHandler())

	limitedRequest(t, handler, "10.0.0.1:41000")
	if rec := limitedRequest(t, handler, "10.0.0.1:41000"); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 inside the window, got %d", rec.Code)
	}

	time.Sleep(60 * time.Millisecond)

	if rec := limitedRequest(t, handler, "10.0.0.1:41000"); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 after the window reset, got %d", rec.Code)
	}
}
