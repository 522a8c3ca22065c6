package middleware

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pantrymatch/server/internal/infrastructure/config"
	"github.com/pantrymatch/server/pkg/errors"
)

func newTestMiddleware() *Middleware {
	return New(&config.Config{
		App:       config.AppConfig{Environment: "development"},
		Server:    config.ServerConfig{AllowedOrigins: []string{"https://pantry.example"}},
		RateLimit: config.RateLimitConfig{Enable: true, RequestsPerMin: 60, BurstSize: 2, CleanupInterval: time.Minute},
	}, zap.NewNop())
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errors.ErrorDetails {
	t.Helper()
	var body errors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func TestJSONOnly(t *testing.T) {
	m := newTestMiddleware()
	h := m.JSONOnly(okHandler)

	tests := []struct {
		name        string
		method      string
		contentType string
		want        int
	}{
		{name: "json post", method: http.MethodPost, contentType: "application/json", want: http.StatusOK},
		{name: "json with charset", method: http.MethodPost, contentType: "application/json; charset=utf-8", want: http.StatusOK},
		{name: "form post", method: http.MethodPost, contentType: "application/x-www-form-urlencoded", want: http.StatusUnsupportedMediaType},
		{name: "missing content type", method: http.MethodPost, want: http.StatusUnsupportedMediaType},
		{name: "get ignores content type", method: http.MethodGet, want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/v1/suggestions", strings.NewReader(`{}`))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			if tt.want == http.StatusUnsupportedMediaType {
				assert.Equal(t, errors.CodeUnsupportedMediaType, decodeError(t, rec).Code)
			}
		})
	}
}

func TestCORS(t *testing.T) {
	m := newTestMiddleware()
	h := m.CORS(okHandler)

	t.Run("allowed origin preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/suggestions", nil)
		req.Header.Set("Origin", "https://pantry.example")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "https://pantry.example", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("unknown origin gets no headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/ingredients", nil)
		req.Header.Set("Origin", "https://evil.example")
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestRecovery(t *testing.T) {
	m := newTestMiddleware()
	h := m.Recovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, errors.CodeInternal, decodeError(t, rec).Code)
}

func TestSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestMiddleware().Security(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))
}

func TestRateLimit_Local(t *testing.T) {
	m := newTestMiddleware()
	limiter := NewLocalLimiter(m.config.RateLimit)
	rejected := 0
	h := m.RateLimit(limiter, func() { rejected++ })(okHandler)

	send := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/ingredients", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1:1111").Code)
	assert.Equal(t, http.StatusOK, send("10.0.0.1:2222").Code)

	rec := send("10.0.0.1:3333")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Equal(t, errors.CodeTooManyRequests, decodeError(t, rec).Code)
	assert.Equal(t, 1, rejected)

	// other clients have their own bucket
	assert.Equal(t, http.StatusOK, send("10.0.0.2:1111").Code)
	assert.Equal(t, 2, limiter.Len())

	limiter.cleanup(time.Now().Add(time.Hour))
	assert.Equal(t, 0, limiter.Len())
}

type fakeCounter struct {
	counts map[string]int64
	err    error
}

func (f *fakeCounter) IncrWindow(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	if f.err != nil {
		return 0, 0, f.err
	}
	f.counts[key]++
	return f.counts[key], window / 2, nil
}

func TestRateLimit_Redis(t *testing.T) {
	m := newTestMiddleware()

	t.Run("fixed window", func(t *testing.T) {
		counter := &fakeCounter{counts: map[string]int64{}}
		limiter := NewRedisLimiter(counter, config.RateLimitConfig{RequestsPerMin: 2})
		h := m.RateLimit(limiter, nil)(okHandler)

		codes := make([]int, 0, 3)
		for i := 0; i < 3; i++ {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = "192.0.2.7:4000"
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			codes = append(codes, rec.Code)
			if rec.Code == http.StatusTooManyRequests {
				assert.Equal(t, "30", rec.Header().Get("Retry-After"))
			}
		}

		assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
		assert.Equal(t, int64(3), counter.counts["pantrymatch:ratelimit:192.0.2.7"])
	})

	t.Run("fails open", func(t *testing.T) {
		limiter := NewRedisLimiter(&fakeCounter{err: stderrors.New("connection refused")}, config.RateLimitConfig{RequestsPerMin: 1})
		rec := httptest.NewRecorder()

		m.RateLimit(limiter, nil)(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
