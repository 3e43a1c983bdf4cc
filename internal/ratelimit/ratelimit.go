// Package ratelimit provides the per-IP request ceiling middleware. Counters
// default to process memory; configuring a Redis address moves them to Redis
// so every instance shares one window.
package ratelimit

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/httprate"
	"github.com/redis/go-redis/v9"

	"github.com/mockshop/mockshop/pkg/web"
)

// Options configures the limiter.
type Options struct {
	// Requests is the ceiling per key within one Window.
	Requests int
	Window   time.Duration
	// RedisAddr, when set, backs the counters with Redis.
	RedisAddr string
}

// Middleware returns a handler that rejects clients exceeding the configured
// per-IP request rate with 429 and the standard error envelope.
func Middleware(opts Options, logger *slog.Logger) func(next http.Handler) http.Handler {
	limitLogger := logger.With("component", "ratelimit")

	httprateOpts := []httprate.Option{
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			limitLogger.Warn("rate limit exceeded", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
			web.RespondError(w, limitLogger, http.StatusTooManyRequests, "rate limit exceeded")
		}),
	}
	if opts.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: opts.RedisAddr})
		httprateOpts = append(httprateOpts, httprate.WithLimitCounter(NewRedisCounter(client)))
		limitLogger.Info("rate limit counters backed by redis", "addr", opts.RedisAddr)
	}

	return httprate.Limit(opts.Requests, opts.Window, httprateOpts...)
}
