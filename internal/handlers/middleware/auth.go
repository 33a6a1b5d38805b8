package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/nkiryanov/zifybot/internal/apperrors"
	"github.com/nkiryanov/zifybot/internal/handlers/render"
	"github.com/nkiryanov/zifybot/internal/handlers/userctx"
	"github.com/nkiryanov/zifybot/internal/models"
)

const (
	MsgNoToken      = "No token provided. Please provide a valid authentication token."
	MsgInvalidToken = "Invalid or expired token. Please login again."
	MsgAuthError    = "Authentication error"

	MsgNotAuthenticated = "Unauthorized. Please authenticate first."
	MsgForbidden        = "Forbidden. You do not have permission to access this resource."
)

var errAuthPanic = errors.New("authentication panicked")

type authenticator interface {
	// Has to return error wrapping apperrors.ErrInvalidToken if token can't be trusted
	Authenticate(access string) (models.TokenPayload, error)
}

type errorLogger interface {
	Error(msg string, args ...any)
}

// Authenticate puts identity of a valid bearer access token to the request context
func Authenticate(a authenticator, l errorLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			payload, err := authenticate(a, r)

			switch {
			case errors.Is(err, apperrors.ErrUnauthenticated):
				render.Error(w, http.StatusUnauthorized, MsgNoToken)
				return
			case errors.Is(err, apperrors.ErrInvalidToken):
				render.Error(w, http.StatusUnauthorized, MsgInvalidToken)
				return
			case err != nil:
				l.Error("Authentication failed", "path", r.URL.Path, "error", err)
				render.Error(w, http.StatusInternalServerError, MsgAuthError)
				return
			}

			ctx := userctx.New(r.Context(), payload)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole lets through identities with one of the roles
// Has to be used after Authenticate
func RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			payload, ok := userctx.FromContext(r.Context())
			if !ok {
				render.Error(w, http.StatusUnauthorized, MsgNotAuthenticated)
				return
			}

			if !slices.Contains(roles, payload.Role) {
				render.Error(w, http.StatusForbidden, MsgForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func authenticate(a authenticator, r *http.Request) (payload models.TokenPayload, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %v", errAuthPanic, rec)
		}
	}()

	token, ok := bearerToken(r.Header.Get("Authorization"))
	if !ok {
		return payload, apperrors.ErrUnauthenticated
	}

	return a.Authenticate(token)
}

// bearerToken extracts token from 'Authorization: Bearer <token>'
// Scheme is case insensitive
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)
	return token, token != ""
}
