package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"
)

// RequestLogger attaches a request-scoped zerolog logger carrying a request id
// and emits one access log line per request.
func RequestLogger(next http.Handler) http.Handler {
	access := hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	})

	h := hlog.RequestIDHandler("req_id", "X-Request-Id")(next)
	h = hlog.RemoteAddrHandler("ip")(h)
	h = access(h)
	return hlog.NewHandler(log.Logger)(h)
}
