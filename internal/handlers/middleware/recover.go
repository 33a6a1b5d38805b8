package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/nkiryanov/zifybot/internal/handlers/render"
)

// Recover turns a panic in any handler into 500 response
func Recover(l errorLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				l.Error("Handler panicked", "path", r.URL.Path, "reason", rec, "stack", string(debug.Stack()))
				render.Error(w, http.StatusInternalServerError, "Internal server error")
			}()

			next.ServeHTTP(w, r)
		})
	}
}
