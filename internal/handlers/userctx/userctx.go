package userctx

import (
	"context"

	"github.com/nkiryanov/zifybot/internal/models"
)

type ctxKey string

const userKey ctxKey = "user"

// Create a new context with the authenticated identity
func New(ctx context.Context, p models.TokenPayload) context.Context {
	return context.WithValue(ctx, userKey, p)
}

// Extract the authenticated identity from the context
func FromContext(ctx context.Context) (models.TokenPayload, bool) {
	p, ok := ctx.Value(userKey).(models.TokenPayload)
	return p, ok
}
