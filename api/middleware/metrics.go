package middleware

import (
	"net/http"
	"time"

	"github.com/yonasbekele/serenity-backend/pkg/metrics"
)

// Metrics records request counts and latency. Safe to install with a nil
// collector; it then passes requests straight through.
func Metrics(httpMetrics *metrics.HTTPMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if httpMetrics == nil {
				next.ServeHTTP(w, r)
				return
			}

			rec := &statusRecorder{ResponseWriter: w}
			start := time.Now()

			next.ServeHTTP(rec, r)

			if rec.status == 0 {
				rec.status = http.StatusOK
			}
			httpMetrics.ObserveRequest(r.Method, rec.status, time.Since(start))
		})
	}
}
