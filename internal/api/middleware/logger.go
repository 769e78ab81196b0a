package middleware

import (
	"net/http"
	"strings"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Logger returns a middleware that logs every HTTP request with the given logger.
// The request-scoped logger (tagged with the chi request ID) is stored in the
// request context so handlers can retrieve it with zerolog.Ctx.
func Logger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			reqID := chimiddleware.GetReqID(r.Context())
			if reqID != "" {
				w.Header().Set("X-Request-Id", reqID)
			}
			reqLog := log.With().Str("request_id", reqID).Logger()
			r = r.WithContext(reqLog.WithContext(r.Context()))

			// Create a response writer wrapper to capture status code
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			// Strip CR/LF from user-supplied values to prevent log injection.
			sanitize := strings.NewReplacer("\n", "", "\r", "").Replace

			event := reqLog.Info()
			if wrapped.statusCode >= http.StatusInternalServerError {
				event = reqLog.Error()
			}
			event.
				Str("method", sanitize(r.Method)).
				Str("path", sanitize(r.URL.Path)).
				Int("status", wrapped.statusCode).
				Dur("duration", time.Since(start)).
				Msg("request")
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
