package middleware

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/staff-registry/internal"
	"github.com/frahmantamala/staff-registry/internal/transport"
	"github.com/frahmantamala/staff-registry/pkg/logger"

	"github.com/google/uuid"
)

const TraceHeader = "X-Trace-ID"

// RequestID tags the request with a trace id and the caller's IP, both on
// a request-scoped copy of lg and on the context itself.
func RequestID(lg *slog.Logger) func(http.Handler) http.Handler {
	if lg == nil {
		lg = logger.LoggerWrapper()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			traceID := r.Header.Get(TraceHeader)
			if traceID == "" {
				traceID = uuid.NewString()
			}
			clientIP := transport.ClientIP(r)

			ctx := logger.WithLogger(r.Context(), lg.With("traceID", traceID, "clientIP", clientIP))
			ctx = internal.ContextWithClientIP(ctx, clientIP)

			w.Header().Set(TraceHeader, traceID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
