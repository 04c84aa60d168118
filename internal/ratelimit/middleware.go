package ratelimit

import (
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	limiter "github.com/ulule/limiter/v3"

	"github.com/noah-isme/backend-tour/internal/common"
)

// KeyFunc derives the bucket a request is counted against.
type KeyFunc func(*http.Request) string

// ByClientIP counts requests per client address within a named scope.
func ByClientIP(scope string) KeyFunc {
	return func(r *http.Request) string {
		return scope + ":" + common.ClientIP(r)
	}
}

// Handler enforces a limiter in front of a route.
type Handler struct {
	Limiter *limiter.Limiter
	Key     KeyFunc
	Logger  zerolog.Logger
}

// Middleware answers 429 once the bucket is spent. Store failures let the
// request through.
func (h Handler) Middleware(next http.Handler) http.Handler {
	if h.Limiter == nil || h.Key == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lctx, err := h.Limiter.Get(r.Context(), h.Key(r))
		if err != nil {
			h.Logger.Warn().Err(err).Msg("rate limiter unavailable")
			next.ServeHTTP(w, r)
			return
		}

		headers := w.Header()
		headers.Set("X-RateLimit-Limit", strconv.FormatInt(lctx.Limit, 10))
		headers.Set("X-RateLimit-Remaining", strconv.FormatInt(lctx.Remaining, 10))
		headers.Set("X-RateLimit-Reset", strconv.FormatInt(lctx.Reset, 10))

		if lctx.Reached {
			retry := time.Until(time.Unix(lctx.Reset, 0)).Seconds()
			if retry < 0 {
				retry = 0
			}
			headers.Set("Retry-After", strconv.Itoa(int(retry)))
			common.JSONError(w, http.StatusTooManyRequests, "Quá nhiều yêu cầu, vui lòng thử lại sau")
			return
		}
		next.ServeHTTP(w, r)
	})
}
