package middleware

import (
	"net/http"
	"time"
)

type requestObserver interface {
	ObserveRequest(method string, route string, status int, elapsed time.Duration)
}

// Metrics counts requests by matched route, so has to run inside chi router
func Metrics(o requestObserver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lw := newLogWriter(w)

			next.ServeHTTP(lw, r)

			o.ObserveRequest(r.Method, routePattern(r), lw.data.responseStatus, time.Since(start))
		})
	}
}
