// AngelaMos | 2026
// ratelimit.go

package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	redis_rate "github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/ristan-marine/catalog-api/internal/config"
	"github.com/ristan-marine/catalog-api/internal/core"
	"github.com/ristan-marine/catalog-api/internal/metrics"
)

const rateLimitKeyPrefix = "catalog:rl:"

type RateLimitConfig struct {
	// Name labels the rate_limit_hits metric.
	Name     string
	Limit    redis_rate.Limit
	KeyFunc  func(*http.Request) string
	FailOpen bool
}

// RateLimiter throttles the unauthenticated form endpoints (login, signup,
// inquiry). Counters live in Redis so every replica shares them; when Redis
// is unreachable each replica falls back to its own token buckets.
type RateLimiter struct {
	shared *redis_rate.Limiter
	local  *localBuckets
	cfg    RateLimitConfig
}

// NewRateLimiter builds a limiter. A nil client keeps counters in process.
func NewRateLimiter(rdb *redis.Client, cfg RateLimitConfig) *RateLimiter {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = KeyByIP
	}
	if cfg.Name == "" {
		cfg.Name = "default"
	}

	rl := &RateLimiter{
		local: newLocalBuckets(),
		cfg:   cfg,
	}
	if rdb != nil {
		rl.shared = redis_rate.NewLimiter(rdb)
	}
	return rl
}

func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := rl.cfg.KeyFunc(r)

		res, err := rl.allow(r.Context(), key)
		if err != nil {
			if !rl.cfg.FailOpen {
				core.JSON(w, http.StatusServiceUnavailable,
					core.ErrorResponse{Error: "Service Unavailable"})
				return
			}
			slog.WarnContext(r.Context(), "rate limiter unavailable, allowing request",
				"limiter", rl.cfg.Name,
				"error", err,
			)
			next.ServeHTTP(w, r)
			return
		}

		writeLimitHeaders(w.Header(), res)

		if res.Allowed == 0 {
			metrics.RateLimitHits.WithLabelValues(rl.cfg.Name).Inc()

			retry := max(int(res.RetryAfter.Seconds()), 1)
			w.Header().Set("Retry-After", strconv.Itoa(retry))
			core.JSON(w, http.StatusTooManyRequests, core.ErrorResponse{
				Error: fmt.Sprintf("Too many requests. Try again in %d seconds.", retry),
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) allow(ctx context.Context, key string) (*redis_rate.Result, error) {
	if rl.shared != nil {
		res, err := rl.shared.Allow(ctx, rateLimitKeyPrefix+key, rl.cfg.Limit)
		if err == nil {
			return res, nil
		}
		slog.DebugContext(ctx, "shared rate limiter failed, using local buckets",
			"limiter", rl.cfg.Name,
			"error", err,
		)
	}
	return rl.local.take(key, rl.cfg.Limit)
}

// KeyByIP identifies the client by the address the edge proxy appended last.
func KeyByIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		return "ip:" + strings.TrimSpace(hops[len(hops)-1])
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return "ip:" + xri
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}

// KeyByIPAndRoute limits each client per endpoint, so a burst of contact
// form posts does not eat into login attempts.
func KeyByIPAndRoute(r *http.Request) string {
	return KeyByIP(r) + ":" + r.Method + ":" + r.URL.Path
}

func writeLimitHeaders(h http.Header, res *redis_rate.Result) {
	h.Set("X-RateLimit-Limit", strconv.Itoa(res.Limit.Rate))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
	h.Set("X-RateLimit-Reset",
		strconv.FormatInt(time.Now().Add(res.ResetAfter).Unix(), 10))
}

// LimitFromConfig converts the configured window into a limiter rule.
func LimitFromConfig(cfg config.RateLimitConfig) redis_rate.Limit {
	burst := cfg.Burst
	if burst < 1 {
		burst = cfg.Requests
	}
	return redis_rate.Limit{
		Rate:   cfg.Requests,
		Burst:  burst,
		Period: cfg.Window,
	}
}

const localBucketTTL = 10 * time.Minute

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// localBuckets is the per-process fallback. Idle buckets are swept lazily
// on access instead of by a background goroutine.
type localBuckets struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

func newLocalBuckets() *localBuckets {
	return &localBuckets{
		buckets:   make(map[string]*bucket),
		lastSweep: time.Now(),
	}
}

func (l *localBuckets) take(key string, limit redis_rate.Limit) (*redis_rate.Result, error) {
	if limit.Rate <= 0 || limit.Period <= 0 {
		return nil, fmt.Errorf("invalid rate limit %d per %s", limit.Rate, limit.Period)
	}

	perSecond := float64(limit.Rate) / limit.Period.Seconds()
	interval := time.Duration(float64(time.Second) / perSecond)
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) > localBucketTTL {
		for k, b := range l.buckets {
			if now.Sub(b.lastSeen) > localBucketTTL {
				delete(l.buckets, k)
			}
		}
		l.lastSweep = now
	}

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rate.Limit(perSecond), max(limit.Burst, 1))}
		l.buckets[key] = b
	}
	b.lastSeen = now

	res := &redis_rate.Result{
		Limit:      limit,
		ResetAfter: interval,
		RetryAfter: -1,
	}

	if b.limiter.AllowN(now, 1) {
		res.Allowed = 1
	} else {
		res.RetryAfter = interval
	}
	res.Remaining = max(int(b.limiter.TokensAt(now)), 0)

	return res, nil
}
