package handlers

import (
	"net/http"
	"time"

	"github.com/nkiryanov/zifybot/internal/handlers/render"
)

func handleHealth(now func() time.Time) http.Handler {
	type response struct {
		Timestamp time.Time `json:"timestamp"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		render.Success(w, http.StatusOK, "Server is running", response{Timestamp: now().UTC()})
	})
}
