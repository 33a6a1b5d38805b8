package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/zifybot/internal/handlers/middleware"
	"github.com/nkiryanov/zifybot/internal/logger"
)

func Test_Router(t *testing.T) {
	t.Parallel()

	t.Run("health", func(t *testing.T) {
		app := newTestApp(t, telnyxConfig)

		code, body := app.do(t, http.MethodGet, "/health", "", "")

		require.Equal(t, http.StatusOK, code)
		require.Contains(t, body, `"message":"Server is running"`)
		require.Contains(t, body, `"timestamp"`)
	})

	t.Run("unknown route", func(t *testing.T) {
		app := newTestApp(t, telnyxConfig)

		code, body := app.do(t, http.MethodGet, "/api/nothing-here", "", "")

		require.Equal(t, http.StatusNotFound, code)
		require.JSONEq(t, `{"status":"error","message":"Route not found"}`, body)
	})

	t.Run("method not allowed", func(t *testing.T) {
		app := newTestApp(t, telnyxConfig)

		code, body := app.do(t, http.MethodGet, "/api/auth/login", "", "")

		require.Equal(t, http.StatusMethodNotAllowed, code)
		require.JSONEq(t, `{"status":"error","message":"Method not allowed"}`, body)
	})

	t.Run("metrics exposed", func(t *testing.T) {
		app := newTestApp(t, telnyxConfig)
		_, _ = app.do(t, http.MethodGet, "/health", "", "")

		code, body := app.do(t, http.MethodGet, "/metrics", "", "")

		require.Equal(t, http.StatusOK, code)
		require.Contains(t, body, `zifybot_http_requests_total{method="GET",route="/health",status="200"} 1`)
	})

	t.Run("metrics not mounted without handler", func(t *testing.T) {
		router := NewRouter(nil, nil, nil, nil, logger.NewNoOpLogger(), Options{})

		code, _ := serve(t, router, http.MethodGet, "/metrics", "")

		require.Equal(t, http.StatusNotFound, code)
	})

	t.Run("request id returned", func(t *testing.T) {
		router := NewRouter(nil, nil, nil, nil, logger.NewNoOpLogger(), Options{})
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set(middleware.RequestIDHeader, "req-42")
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		require.Equal(t, "req-42", rec.Header().Get(middleware.RequestIDHeader))
	})

	t.Run("cors", func(t *testing.T) {
		tests := []struct {
			name        string
			origin      string
			wantAllowed bool
		}{
			{"dev frontend", "http://localhost:3000", true},
			{"admin frontend", "http://localhost:3001", true},
			{"foreign origin", "https://evil.example.com", false},
		}

		router := NewRouter(nil, nil, nil, nil, logger.NewNoOpLogger(), Options{})

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				req := httptest.NewRequest(http.MethodOptions, "/api/auth/login", nil)
				req.Header.Set("Origin", tt.origin)
				req.Header.Set("Access-Control-Request-Method", http.MethodPost)
				req.Header.Set("Access-Control-Request-Headers", "authorization,content-type")
				rec := httptest.NewRecorder()

				router.ServeHTTP(rec, req)

				if tt.wantAllowed {
					require.Equal(t, tt.origin, rec.Header().Get("Access-Control-Allow-Origin"))
					require.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
				} else {
					require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
				}
			})
		}
	})

	t.Run("cors custom origins", func(t *testing.T) {
		router := NewRouter(nil, nil, nil, nil, logger.NewNoOpLogger(), Options{CORSOrigins: []string{"https://app.example.com"}})
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", "https://app.example.com")
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		require.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	})
}
