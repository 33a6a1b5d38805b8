package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/nkiryanov/zifybot/internal/handlers"
	"github.com/nkiryanov/zifybot/internal/logger"
	"github.com/nkiryanov/zifybot/internal/metrics"
	"github.com/nkiryanov/zifybot/internal/service/auth"
	"github.com/nkiryanov/zifybot/internal/service/auth/tokenmanager"
	"github.com/nkiryanov/zifybot/internal/service/calls"
	"github.com/nkiryanov/zifybot/internal/service/telnyx"
	"github.com/nkiryanov/zifybot/internal/service/user"
	"github.com/nkiryanov/zifybot/internal/storage"
)

const shutdownTimeout = 5 * time.Second

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler

	logger logger.Logger
	close  func()
}

func NewServerApp(ctx context.Context, c *Config, l logger.Logger) (*ServerApp, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	// Connect to the database; postgres is migrated on connect
	store, closeStore, err := storage.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	// Initialize services
	tokenManager, err := tokenmanager.New(tokenmanager.Config{
		AccessSecret:  c.AccessSecret,
		RefreshSecret: c.RefreshSecret,
	})
	if err != nil {
		closeStore()
		return nil, fmt.Errorf("error while creating token manager. Err: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	userService := user.NewService(auth.DefaultHasher, store.User())
	authService := auth.NewService(tokenManager, userService)

	provider := telnyx.NewClient(telnyx.Config{APIKey: c.Telnyx.APIKey, BaseURL: c.Telnyx.APIURL}, l)
	orchestrator := calls.NewOrchestrator(c.CallsConfig(), provider, store.CallSession(), l, m)
	processor := calls.NewProcessor(
		calls.ProcessorConfig{StartAgentOnce: c.Telnyx.StartAgentOnce},
		orchestrator,
		store.CallSession(),
		l,
		m,
	)

	if missing := orchestrator.Missing(); len(missing) > 0 {
		l.Warn("Telnyx is not fully configured, call features will report it", "missing", missing)
	}
	l.Info("Telnyx configuration", "api_key", logger.Mask(c.Telnyx.APIKey), "connection_id", c.Telnyx.ConnectionID)

	mux := handlers.NewRouter(authService, userService, orchestrator, processor, l, handlers.Options{
		CORSOrigins:    c.CORSOrigins,
		Metrics:        m,
		MetricsHandler: metrics.Handler(reg),
	})

	return &ServerApp{
		ListenAddr: c.ListenAddr,
		Handler:    mux,
		logger:     l,
		close:      closeStore,
	}, nil
}

// Run starts http server and closes gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	defer s.close()

	httpServer := &http.Server{
		Addr:              s.ListenAddr,
		Handler:           s.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); errors.Is(err, context.DeadlineExceeded) {
			s.logger.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		s.logger.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	s.logger.Info("Starting server", "address", s.ListenAddr)
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed

	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
