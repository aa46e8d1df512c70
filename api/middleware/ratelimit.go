package middleware

import (
	"catalog_server/handling"
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/MonkyMars/gecho"
)

// RateCounter counts hits per key in a fixed window. *services.CacheService implements it.
type RateCounter interface {
	IncrementRateLimit(ctx context.Context, key string, window time.Duration) (int64, error)
}

// limitFor picks the read or write budget for a request.
func (mw *Middleware) limitFor(method string) (int, time.Duration) {
	if method == http.MethodGet || method == http.MethodHead {
		return mw.cfg.RateLimit.ReadLimit, mw.cfg.RateLimit.ReadWindow
	}
	return mw.cfg.RateLimit.WriteLimit, mw.cfg.RateLimit.WriteWindow
}

// clientIP expects chi's RealIP to have run first.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// rateLimitKey groups paths so ids do not create new counters: /products/42 -> /products/{id}.
func rateLimitKey(ip, method, path string) string {
	parts := strings.Split(strings.TrimSuffix(path, "/"), "/")
	for i, part := range parts {
		if _, err := strconv.ParseInt(part, 10, 64); err == nil {
			parts[i] = "{id}"
		}
	}
	group := "read"
	if method != http.MethodGet && method != http.MethodHead {
		group = "write"
	}
	return ip + ":" + group + ":" + strings.Join(parts, "/")
}

// RateLimit rejects clients over their budget with 429. It fails open when the counter errors,
// and is a no-op when counter is nil or limiting is disabled.
func (mw *Middleware) RateLimit(counter RateCounter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if counter == nil || mw.cfg.RateLimit == nil || !mw.cfg.RateLimit.Enabled {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// health, metrics and images are never limited
			if r.URL.Path == "/" || strings.HasPrefix(r.URL.Path, "/health") || r.URL.Path == "/metrics" ||
				strings.HasPrefix(r.URL.Path, mw.cfg.Uploads.PublicPrefix+"/") {
				next.ServeHTTP(w, r)
				return
			}

			ip := clientIP(r)
			limit, window := mw.limitFor(r.Method)

			count, err := counter.IncrementRateLimit(r.Context(), rateLimitKey(ip, r.Method, r.URL.Path), window)
			if err != nil {
				mw.logger.Warn("Rate limit counter failed, allowing request",
					gecho.Field("error", err),
					gecho.Field("ip", ip),
				)
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(limit))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(max(0, int64(limit)-count), 10))

			if count > int64(limit) {
				mw.logger.Warn("Rate limit exceeded",
					gecho.Field("ip", ip),
					gecho.Field("path", r.URL.Path),
					gecho.Field("count", count),
					gecho.Field("limit", limit),
				)
				h.Set("Retry-After", strconv.Itoa(int(window.Seconds())))
				handling.WriteError(w, r, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
