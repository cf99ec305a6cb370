package middleware

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/loiredigital/site/internal/metrics"
)

// =============================================================================
// Rate Limiter
// =============================================================================

// RateLimiter tracks request counts per identifier with a fixed window.
//
// One limiter instance backs every public intake endpoint; each call site
// passes its own limit/window pair to Allow. The window is fixed, not
// sliding: a counter lives until its reset time and is then replaced. That
// allows up to 2x the limit across a window boundary, which is accepted —
// the limiter deters naive form abuse, it is not a precision guarantee.
// State is per process only; horizontally scaled instances each enforce
// their own independent limit.
type RateLimiter struct {
	logger *slog.Logger

	mu      sync.Mutex
	records map[string]*rateLimitRecord
	now     func() time.Time
}

type rateLimitRecord struct {
	count     int
	resetTime time.Time
}

// NewRateLimiter creates an empty rate limiter.
func NewRateLimiter(logger *slog.Logger) *RateLimiter {
	return &RateLimiter{
		logger:  logger,
		records: make(map[string]*rateLimitRecord),
		now:     time.Now,
	}
}

// Allow reports whether a request from key should be allowed under the
// given limit and window. The check and the increment happen under one
// lock so two concurrent requests cannot both slip under the limit.
func (rl *RateLimiter) Allow(key string, limit int, window time.Duration) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	record, exists := rl.records[key]

	// First request, or the previous window has passed: start a fresh one.
	if !exists || now.After(record.resetTime) {
		rl.records[key] = &rateLimitRecord{
			count:     1,
			resetTime: now.Add(window),
		}
		return true
	}

	// Saturated for the rest of this window. No mutation on denial.
	if record.count >= limit {
		return false
	}

	record.count++
	return true
}

// TimeUntilReset returns how long until the window for key expires.
// Returns 0 for unknown keys or already-expired windows.
func (rl *RateLimiter) TimeUntilReset(key string) time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	record, exists := rl.records[key]
	if !exists {
		return 0
	}

	remaining := record.resetTime.Sub(rl.now())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Sweep deletes every record whose window has passed and returns the number
// removed. The check path already treats expired records as absent, so this
// is housekeeping that bounds memory growth, not a correctness requirement.
func (rl *RateLimiter) Sweep() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	removed := 0
	for key, record := range rl.records {
		if now.After(record.resetTime) {
			delete(rl.records, key)
			removed++
		}
	}
	return removed
}

// StartSweeper runs Sweep on the given interval until ctx is done.
func (rl *RateLimiter) StartSweeper(done <-chan struct{}, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if removed := rl.Sweep(); removed > 0 {
					rl.logger.Debug("rate limit sweep", "removed", removed)
				}
			}
		}
	}()
}

// size returns the number of tracked records. Test hook.
func (rl *RateLimiter) size() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.records)
}

// =============================================================================
// Rate Limit Middleware
// =============================================================================

// RateLimitMiddleware applies one limit/window pair from a shared limiter
// to the routes it wraps.
type RateLimitMiddleware struct {
	limiter *RateLimiter
	limit   int
	window  time.Duration
	scope   string // metric label, e.g. "contact" or "quote_email"
	logger  *slog.Logger
}

// NewRateLimitMiddleware creates middleware enforcing limit requests per
// window per client on the wrapped handler.
func NewRateLimitMiddleware(limiter *RateLimiter, limit int, window time.Duration, scope string, logger *slog.Logger) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		limiter: limiter,
		limit:   limit,
		window:  window,
		scope:   scope,
		logger:  logger,
	}
}

// Limit returns middleware that rejects over-limit requests with 429.
func (m *RateLimitMiddleware) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientIP := getClientIP(r)

		if !m.limiter.Allow(clientIP, m.limit, m.window) {
			m.logger.Warn("rate limit exceeded",
				"ip", clientIP,
				"path", r.URL.Path,
				"scope", m.scope,
			)
			metrics.RateLimitDenied.WithLabelValues(m.scope).Inc()

			retryAfter := int(m.limiter.TimeUntilReset(clientIP).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"success": false,
				"message": "Trop de requêtes. Veuillez réessayer dans quelques instants.",
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

// =============================================================================
// Helpers
// =============================================================================

// getClientIP extracts the client IP from the request, considering proxy headers.
func getClientIP(r *http.Request) string {
	// X-Forwarded-For can contain multiple IPs: client, proxy1, proxy2.
	// The first one is the original client.
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		if len(ips) > 0 {
			clientIP := strings.TrimSpace(ips[0])
			if clientIP != "" {
				return clientIP
			}
		}
	}

	// X-Real-IP (nginx)
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr might not have a port
		return r.RemoteAddr
	}

	return ip
}
