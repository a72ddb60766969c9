package log

import (
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"
	"time"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// RequestMiddleware logs every request with a generated request id, the
// response status and the duration. 4xx logs at warn, 5xx at error.
func RequestMiddleware(logger *Logger) func(http.Handler) http.Handler {
	httpLogger := logger.WithComponent(ComponentHTTP)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			reqLogger := httpLogger.With(FieldRequestID, newRequestID())

			next.ServeHTTP(rec, r)

			level := slog.LevelInfo
			if rec.status >= 500 {
				level = slog.LevelError
			} else if rec.status >= 400 {
				level = slog.LevelWarn
			}

			fields := NewFields().
				WithRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.RemoteAddr).
				WithStatus(rec.status, time.Since(start))
			reqLogger.Logger.Log(r.Context(), level, "HTTP request completed", fields.ToSlice()...)
		})
	}
}

func newRequestID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "unknown"
	}
	return hex.EncodeToString(b)
}
