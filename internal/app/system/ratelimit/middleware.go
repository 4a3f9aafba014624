package ratelimit

import (
	"net/http"

	"go.uber.org/zap"
)

// Middleware throttles requests per client IP. Over-limit callers get 429.
// A limiter failure is logged and the request is let through.
func Middleware(l Allower, logger *zap.Logger, onLimited func(r *http.Request)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, err := l.Allow(r.Context(), ClientIP(r))
			if err != nil {
				logger.Warn("rate limiter unavailable", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			if !ok {
				if onLimited != nil {
					onLimited(r)
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":"too many requests, try again later"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
