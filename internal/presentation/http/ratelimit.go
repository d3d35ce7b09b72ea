package httppresentation

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/Zhima-Mochi/minishop-orders/internal/observability"
	"github.com/Zhima-Mochi/minishop-orders/internal/observability/logctx"
)

// WindowCounter counts hits per key inside a fixed window.
type WindowCounter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RateLimiter rejects clients that exceed limit requests per window. Counter
// failures let the request through.
type RateLimiter struct {
	counter WindowCounter
	limit   int
	window  time.Duration
	log     observability.Logger
}

func NewRateLimiter(counter WindowCounter, limit int, window time.Duration, logger observability.Logger) *RateLimiter {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &RateLimiter{counter: counter, limit: limit, window: window, log: logger}
}

func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if l == nil || l.counter == nil || l.limit <= 0 {
			next.ServeHTTP(w, r)
			return
		}
		ctx := r.Context()
		ip := clientIP(r)

		current, err := l.counter.Incr(ctx, ip, l.window)
		if err != nil {
			logctx.FromOr(ctx, l.log).Warn("rate_limit_check_failed", observability.F("error", err))
			next.ServeHTTP(w, r)
			return
		}
		if current > int64(l.limit) {
			w.Header().Set("Retry-After", strconv.Itoa(int(l.window.Seconds())))
			writeJSON(w, http.StatusTooManyRequests, errorBody{Message: "too many requests"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
