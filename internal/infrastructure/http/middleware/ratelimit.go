package middleware

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pantrymatch/server/internal/infrastructure/config"
	"github.com/pantrymatch/server/pkg/errors"
)

// Limiter decides whether a client identified by key may make another request
type Limiter interface {
	Allow(ctx context.Context, key string) (allowed bool, retryAfter time.Duration, err error)
}

// LocalLimiter keeps one token bucket per client in process memory
type LocalLimiter struct {
	mu       sync.Mutex
	clients  map[string]*client
	limit    rate.Limit
	burst    int
	idleTTL  time.Duration
	interval time.Duration
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLocalLimiter refills requestsPerMin tokens per minute up to burst
func NewLocalLimiter(cfg config.RateLimitConfig) *LocalLimiter {
	burst := cfg.BurstSize
	if burst < 1 {
		burst = 1
	}
	interval := cfg.CleanupInterval
	if interval <= 0 {
		interval = time.Minute
	}
	return &LocalLimiter{
		clients:  make(map[string]*client),
		limit:    rate.Limit(float64(cfg.RequestsPerMin) / 60),
		burst:    burst,
		idleTTL:  3 * interval,
		interval: interval,
	}
}

// Allow takes one token from the client's bucket
func (l *LocalLimiter) Allow(_ context.Context, key string) (bool, time.Duration, error) {
	now := time.Now()

	l.mu.Lock()
	c, ok := l.clients[key]
	if !ok {
		c = &client{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[key] = c
	}
	c.lastSeen = now
	l.mu.Unlock()

	r := c.limiter.ReserveN(now, 1)
	if !r.OK() {
		return false, time.Minute, nil
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, delay, nil
	}
	return true, 0, nil
}

// Run evicts idle clients until ctx is done
func (l *LocalLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			l.cleanup(now)
		}
	}
}

func (l *LocalLimiter) cleanup(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, c := range l.clients {
		if now.Sub(c.lastSeen) > l.idleTTL {
			delete(l.clients, key)
		}
	}
}

// Len returns the number of tracked clients
func (l *LocalLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// WindowCounter is a shared fixed-window counter, such as Redis
type WindowCounter interface {
	IncrWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

// RedisLimiter enforces requestsPerMin per client across every replica that
// shares the counter
type RedisLimiter struct {
	counter WindowCounter
	limit   int64
	window  time.Duration
	prefix  string
}

// NewRedisLimiter creates a fixed window limiter of one minute
func NewRedisLimiter(counter WindowCounter, cfg config.RateLimitConfig) *RedisLimiter {
	return &RedisLimiter{
		counter: counter,
		limit:   int64(cfg.RequestsPerMin),
		window:  time.Minute,
		prefix:  "pantrymatch:ratelimit:",
	}
}

// Allow increments the client's window counter
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	count, ttl, err := l.counter.IncrWindow(ctx, l.prefix+key, l.window)
	if err != nil {
		return false, 0, err
	}
	if count > l.limit {
		if ttl <= 0 {
			ttl = l.window
		}
		return false, ttl, nil
	}
	return true, 0, nil
}

// RateLimit rejects clients over their limit with 429. Limiter failures let
// the request through. onReject may be nil.
func (m *Middleware) RateLimit(limiter Limiter, onReject func()) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, retryAfter, err := limiter.Allow(r.Context(), clientKey(r))
			if err != nil {
				m.logger.Warn("Rate limiter unavailable, allowing request",
					zap.String("path", r.URL.Path),
					zap.Error(err),
				)
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				if onReject != nil {
					onReject()
				}
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
				WriteError(w, r, errors.NewTooManyRequestsError(m.config.RateLimit.RequestsPerMin))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientKey identifies the caller by IP. chi's RealIP middleware has already
// replaced RemoteAddr with the forwarded address when present.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
