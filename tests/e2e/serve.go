package e2e

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/zifybot/internal/handlers"
	"github.com/nkiryanov/zifybot/internal/logger"
	"github.com/nkiryanov/zifybot/internal/metrics"
	"github.com/nkiryanov/zifybot/internal/repository/postgres"
	"github.com/nkiryanov/zifybot/internal/service/auth"
	"github.com/nkiryanov/zifybot/internal/service/auth/tokenmanager"
	"github.com/nkiryanov/zifybot/internal/service/calls"
	"github.com/nkiryanov/zifybot/internal/service/telnyx"
	"github.com/nkiryanov/zifybot/internal/service/user"
	"github.com/nkiryanov/zifybot/internal/testutil"
)

const (
	CallControlID = "v3:e2e-call"
	AssistantID   = "assistant-e2e"
)

type Services struct {
	AuthService  *auth.AuthService
	UserService  *user.UserService
	Orchestrator *calls.Orchestrator
	Telnyx       *FakeTelnyx
}

// Request received by the fake provider
type ProviderRequest struct {
	Path string
	Body map[string]any
}

// Telnyx API stand-in: every dial creates CallControlID, every agent start succeeds
type FakeTelnyx struct {
	mu       sync.Mutex
	requests []ProviderRequest
}

func (f *FakeTelnyx) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	data, _ := io.ReadAll(r.Body)
	var body map[string]any
	_ = json.Unmarshal(data, &body)

	f.mu.Lock()
	f.requests = append(f.requests, ProviderRequest{Path: r.URL.Path, Body: body})
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.URL.Path == "/calls":
		_, _ = io.WriteString(w, `{"data":{"call_control_id":"`+CallControlID+`","call_session_id":"sess-e2e","is_alive":false,"record_type":"call"}}`)
	case strings.HasSuffix(r.URL.Path, "/actions/ai_assistant_start"):
		_, _ = io.WriteString(w, `{"data":{"result":"ok"}}`)
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"errors":[{"code":"404","title":"Not found"}]}`)
	}
}

func (f *FakeTelnyx) Requests() []ProviderRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ProviderRequest(nil), f.requests...)
}

// Create db transaction and run server in with that connection (one connection cause one transaction)
// The created transaction passed to inner function: so, you can safely use testutil.WithTx with it
func ServeWithTx(dbpool *pgxpool.Pool, t *testing.T, fn func(tx pgx.Tx, srvURL string, services Services)) {
	testutil.WithTx(dbpool, t, func(tx pgx.Tx) {
		l := logger.NewNoOpLogger()
		m := metrics.New(prometheus.NewRegistry())

		// Initialize repositories
		storage := postgres.NewStorage(tx)

		fake := &FakeTelnyx{}
		provider := httptest.NewServer(fake)
		defer provider.Close()

		// Initialize services
		tokenManager, err := tokenmanager.New(tokenmanager.Config{AccessSecret: "access-secret", RefreshSecret: "refresh-secret"})
		require.NoError(t, err, "token manager should be created without errors")

		us := user.NewService(auth.DefaultHasher, storage.User())
		as := auth.NewService(tokenManager, us)

		client := telnyx.NewClient(telnyx.Config{APIKey: "KEY-e2e-0123456789", BaseURL: provider.URL}, l)
		orchestrator := calls.NewOrchestrator(calls.Config{
			APIKey:       "KEY-e2e-0123456789",
			ConnectionID: "conn-e2e",
			PhoneNumber:  "+15550000000",
			WebhookURL:   "https://example.com/api/webhook/aiagent",
			AssistantID:  AssistantID,
		}, client, storage.CallSession(), l, m)
		processor := calls.NewProcessor(calls.ProcessorConfig{}, orchestrator, storage.CallSession(), l, m)

		// Complete all together as router
		router := handlers.NewRouter(as, us, orchestrator, processor, l, handlers.Options{Metrics: m})

		// Run http server with the router in transaction
		srv := httptest.NewServer(router)
		defer srv.Close()

		fn(tx, srv.URL, Services{
			AuthService:  as,
			UserService:  us,
			Orchestrator: orchestrator,
			Telnyx:       fake,
		})
	})
}

// Send JSON request and return status code and decoded body
func Do(t *testing.T, method string, url string, token string, body string) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded map[string]any
	if len(data) > 0 && data[0] == '{' {
		require.NoErrorf(t, json.Unmarshal(data, &decoded), "body: %s", string(data))
	}
	return resp.StatusCode, decoded
}
