package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mkravets/secretdrop/internal/ratelimit"
)

func TestWithRateLimit(t *testing.T) {
	handler := WithRateLimit(ratelimit.New())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func(addr string) int {
		req := httptest.NewRequest("POST", "/api/secrets/abc/reveal", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	// Ports vary per request but the counter is keyed by host.
	for i := 0; i < 5; i++ {
		if code := do("192.0.2.1:40000"); code != http.StatusOK {
			t.Fatalf("attempt %d status = %d; want 200", i+1, code)
		}
	}
	if code := do("192.0.2.1:40001"); code != http.StatusTooManyRequests {
		t.Errorf("6th attempt status = %d; want 429", code)
	}
	if code := do("192.0.2.2:40000"); code != http.StatusOK {
		t.Errorf("other address status = %d; want 200", code)
	}
}
