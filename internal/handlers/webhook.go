package handlers

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/nkiryanov/zifybot/internal/logger"
)

const (
	// Provider events are small, anything bigger is not an event
	webhookBodyLimit = 64 << 10

	webhookTimeout = 15 * time.Second
)

// handleWebhook acknowledges every delivery with 200 'OK'
// Processing faults end up in logs only, so provider never redelivers because of them
func handleWebhook(events eventHandler, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer acknowledge(w)

		body, err := io.ReadAll(io.LimitReader(r.Body, webhookBodyLimit))
		if err != nil {
			l.Warn("Failed to read webhook body", "error", err)
			return
		}

		// Keep processing when provider drops the connection
		ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), webhookTimeout)
		defer cancel()

		processWebhook(ctx, events, body, l)
	})
}

func processWebhook(ctx context.Context, events eventHandler, body []byte, l logger.Logger) {
	defer func() {
		if rec := recover(); rec != nil {
			l.Error("Webhook processing panicked", "reason", rec)
		}
	}()

	if err := events.Handle(ctx, body); err != nil {
		l.Warn("Webhook event not processed", "error", err)
	}
}

func acknowledge(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
