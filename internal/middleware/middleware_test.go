package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shareit/shareit-api/internal/pkg/logger"
	"github.com/shareit/shareit-api/internal/pkg/ratelimit"
)

func TestRequestIDPropagates(t *testing.T) {
	var ctxID string
	var hasLogger bool
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxID = GetRequestID(r.Context())
		hasLogger = r.Context().Value(logger.ContextKey) != nil
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if ctxID != "abc" || w.Header().Get(RequestIDHeader) != "abc" {
		t.Fatalf("expected request id abc, got ctx=%q header=%q", ctxID, w.Header().Get(RequestIDHeader))
	}
	if !hasLogger {
		t.Fatal("expected request logger in context")
	}

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Header().Get(RequestIDHeader) == "" {
		t.Fatal("expected generated request id")
	}
}

func TestRecoverReturns500(t *testing.T) {
	h := Recover(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

type stubLimiter struct {
	allow bool
	err   error
	keys  []string
}

func (s *stubLimiter) Allow(_ context.Context, key string) (bool, error) {
	s.keys = append(s.keys, key)
	return s.allow, s.err
}

func TestRateLimit(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	tests := []struct {
		name    string
		limiter *stubLimiter
		caller  string
		want    int
		wantKey string
	}{
		{name: "allowed by user", limiter: &stubLimiter{allow: true}, caller: "9", want: http.StatusOK, wantKey: "user:9"},
		{name: "denied", limiter: &stubLimiter{allow: false}, caller: "9", want: http.StatusTooManyRequests, wantKey: "user:9"},
		{name: "leading zeros share the bucket", limiter: &stubLimiter{allow: true}, caller: "0009", want: http.StatusOK, wantKey: "user:9"},
		{name: "unparsable caller keyed by ip", limiter: &stubLimiter{allow: true}, caller: "nine", want: http.StatusOK, wantKey: "ip:192.0.2.1"},
		{name: "keyed by ip", limiter: &stubLimiter{allow: true}, want: http.StatusOK, wantKey: "ip:192.0.2.1"},
		{name: "fails open", limiter: &stubLimiter{err: errors.New("redis down")}, want: http.StatusOK, wantKey: "ip:192.0.2.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/items", nil)
			if tt.caller != "" {
				req.Header.Set(UserIDHeader, tt.caller)
			}
			w := httptest.NewRecorder()
			RateLimit(tt.limiter)(ok).ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, w.Code)
			}
			if len(tt.limiter.keys) != 1 || tt.limiter.keys[0] != tt.wantKey {
				t.Fatalf("expected key %s, got %v", tt.wantKey, tt.limiter.keys)
			}
		})
	}
}

func TestRateLimitCallerSpellings(t *testing.T) {
	h := RateLimit(ratelimit.NewLocalLimiter(1, 1))(RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	for i, caller := range []string{"1", "01", "001", "0001", "+1"} {
		req := httptest.NewRequest(http.MethodGet, "/items", nil)
		req.Header.Set(UserIDHeader, caller)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		want := http.StatusTooManyRequests
		if i == 0 {
			want = http.StatusOK
		}
		if w.Code != want {
			t.Fatalf("caller %q: expected %d, got %d", caller, want, w.Code)
		}
	}
}
