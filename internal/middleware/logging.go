package middleware

import (
	"net/http"
	"time"

	"heart-clinic/internal/logger"
)

// responseRecorder captures the status code
type responseRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (r *responseRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}

func Logging(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &responseRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rec, r)
			log.HTTPRequest(r.Method, r.URL.Path, rec.statusCode, time.Since(start).Milliseconds(), r.RemoteAddr)
		})
	}
}
