package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/cors"

	"github.com/nkiryanov/zifybot/internal/handlers/middleware"
	"github.com/nkiryanov/zifybot/internal/handlers/render"
	"github.com/nkiryanov/zifybot/internal/logger"
	"github.com/nkiryanov/zifybot/internal/metrics"
	"github.com/nkiryanov/zifybot/internal/models"
)

var DefaultCORSOrigins = []string{
	"http://localhost:3000",
	"http://localhost:3001",
	"http://localhost:3002",
}

type Options struct {
	// Browser origins allowed to call the API
	// If not set than DefaultCORSOrigins used
	CORSOrigins []string

	// Collectors for request metrics, nil disables them
	Metrics *metrics.Metrics

	// Served on /metrics when set
	MetricsHandler http.Handler
}

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

func NewRouter(
	authService authService,
	userService userService,
	callService callService,
	events eventHandler,
	logger logger.Logger,
	opts Options,
) http.Handler {
	withAuth := middleware.Authenticate(authService, logger)
	withAdmin := func(h http.Handler) http.Handler {
		return chain(h, withAuth, middleware.RequireRole(models.RoleAdmin))
	}

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.LoggerMiddleware(logger),
		middleware.Metrics(opts.Metrics),
		middleware.Recover(logger),
	)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		render.Error(w, http.StatusNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		render.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Method(http.MethodGet, "/health", handleHealth(time.Now))
	if opts.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", opts.MetricsHandler)
	}

	r.Route("/api", func(api chi.Router) {
		api.Method(http.MethodPost, "/webhook/aiagent", handleWebhook(events, logger))

		api.Group(func(api chi.Router) {
			api.Use(middleware.BodyLimit(middleware.DefaultBodyLimit))

			api.Route("/auth", func(auth chi.Router) {
				auth.Method(http.MethodPost, "/register", handleRegister(authService, logger))
				auth.Method(http.MethodPost, "/login", handleLogin(authService, logger))
				auth.Method(http.MethodPost, "/admin/login", handleAdminLogin(authService, logger))
				auth.Method(http.MethodPost, "/refresh", handleTokenRefresh(authService, logger))

				auth.Method(http.MethodGet, "/me", withAuth(handleUserMe(userService, logger)))
				auth.Method(http.MethodGet, "/protected", withAuth(handleProtected("This is a protected route")))
				auth.Method(http.MethodGet, "/admin/protected", withAdmin(handleProtected("This is an admin-only route")))
			})

			api.Route("/admin", func(admin chi.Router) {
				admin.Method(http.MethodGet, "/users", withAdmin(handleListUsers(userService, logger)))
				admin.Method(http.MethodGet, "/users/{id}", withAdmin(handleGetUser(userService, logger)))
				admin.Method(http.MethodGet, "/dashboard/stats", withAdmin(handleDashboardStats(userService, logger)))
			})

			api.Route("/telnyx", func(telnyx chi.Router) {
				telnyx.Method(http.MethodPost, "/call-lead", withAuth(handleCallLead(callService, logger)))
				telnyx.Method(http.MethodGet, "/calls/{callControlId}", withAuth(handleGetCallSession(callService, logger)))
			})
		})
	})

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = DefaultCORSOrigins
	}
	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Requested-With", "Accept", "Origin"},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: true,
	})

	return c.Handler(r)
}

type authService interface {
	// Has to return apperrors.ErrUserAlreadyExists if email is taken
	Register(ctx context.Context, reg models.Registration) (models.User, models.TokenPair, error)

	// Has to return apperrors.ErrInvalidCredentials for unknown email or wrong password
	Login(ctx context.Context, email string, password string) (models.User, models.TokenPair, error)

	// Same as Login, plus apperrors.ErrAdminRequired if the account is not admin
	AdminLogin(ctx context.Context, email string, password string) (models.User, models.TokenPair, error)

	// If token can't be trusted: has to return apperrors.ErrInvalidToken
	// If user is gone: has to return apperrors.ErrUserNotFound
	Refresh(ctx context.Context, refresh string) (models.TokenPair, error)

	// Verify access token
	Authenticate(access string) (models.TokenPayload, error)
}

type userService interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (models.User, error)
	ListUsers(ctx context.Context, page int, limit int) (models.UserPage, error)
	Stats(ctx context.Context) (models.UserStats, error)
}

type callService interface {
	InitiateCall(ctx context.Context, destination string, initiatedBy uuid.UUID) (models.Call, error)
	Session(ctx context.Context, callControlID string) (models.CallSession, error)
}

type eventHandler interface {
	Handle(ctx context.Context, body []byte) error
}
