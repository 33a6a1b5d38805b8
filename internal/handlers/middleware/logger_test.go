package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

type loggerFunc func(string, ...any)

func (f loggerFunc) Info(msg string, v ...any) { f(msg, v...) }

func TestLoggerMiddleware(t *testing.T) {
	called := 0
	var msg string
	var args []any

	logger := loggerFunc(func(m string, v ...any) {
		called++
		msg = m
		args = v
	})

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, err := w.Write([]byte("hi"))
		require.NoError(t, err, "should write response")
	})

	router := chi.NewRouter()
	router.Use(RequestID, LoggerMiddleware(logger))
	router.Get("/items/{id}", h)

	srv := httptest.NewServer(router)
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/items/42", nil)
	require.NoError(t, err)
	req.Header.Set(RequestIDHeader, "req-1")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err, "should make request to test server")
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "should read response body")
	defer resp.Body.Close() // nolint:errcheck

	require.Equalf(t, http.StatusTeapot, resp.StatusCode, "should return status Teapot. Resp: %s", string(body))
	require.Equal(t, "hi", string(body), "should return 'hi' in response")
	require.Equal(t, "req-1", resp.Header.Get(RequestIDHeader), "incoming request id should be kept")

	require.Equal(t, 1, called, "logger should be called once")
	require.Equal(t, "got HTTP request", msg, "logger should log 'got HTTP request'")
	require.Len(t, args, 14, "logger should log 14 fields")
	require.Equal(t, "method", args[0])
	require.Equal(t, "GET", args[1])
	require.Equal(t, "uri", args[2])
	require.Equal(t, "/items/42", args[3])
	require.Equal(t, "route", args[4])
	require.Equal(t, "/items/{id}", args[5])
	require.Equal(t, "request_id", args[6])
	require.Equal(t, "req-1", args[7])
	require.Equal(t, "duration", args[8])
	require.NotEmpty(t, args[9], "duration should not be empty")
	require.Equal(t, "status", args[10])
	require.Equal(t, http.StatusTeapot, args[11])
	require.Equal(t, "size", args[12])
	require.Equal(t, 2, args[13], "size should be 2 (length of 'hi')")
}

func TestLoggerMiddleware_OutOfRouter(t *testing.T) {
	var args []any
	logger := loggerFunc(func(_ string, v ...any) { args = v })

	h := LoggerMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	rr := httptest.NewRecorder()

	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/test", nil))

	require.Equal(t, "", args[5], "no route without chi")
	require.Equal(t, http.StatusOK, args[11], "status is OK when handler did not set it")
	require.Equal(t, 0, args[13])
}
