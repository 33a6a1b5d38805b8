package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/zifybot/internal/apperrors"
	"github.com/nkiryanov/zifybot/internal/logger"
	"github.com/nkiryanov/zifybot/internal/metrics"
	"github.com/nkiryanov/zifybot/internal/mocks"
	"github.com/nkiryanov/zifybot/internal/models"
	"github.com/nkiryanov/zifybot/internal/service/auth"
	"github.com/nkiryanov/zifybot/internal/service/auth/tokenmanager"
	"github.com/nkiryanov/zifybot/internal/service/calls"
	"github.com/nkiryanov/zifybot/internal/service/user"
)

// In-memory user repository
type memUsers struct {
	mu    sync.Mutex
	users []models.User
}

func (r *memUsers) CreateUser(_ context.Context, u models.NewUser) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := strings.ToLower(u.Email)
	for _, existing := range r.users {
		if existing.Email == email {
			return models.User{}, apperrors.ErrUserAlreadyExists
		}
	}

	// Strictly growing timestamps keep 'newest first' stable
	now := time.Now().Add(time.Duration(len(r.users)) * time.Millisecond)
	created := models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: u.PasswordHash,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		PhoneNumber:  u.PhoneNumber,
		Role:         u.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.users = append(r.users, created)
	return created, nil
}

func (r *memUsers) GetUserByID(_ context.Context, id uuid.UUID) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return models.User{}, apperrors.ErrUserNotFound
}

func (r *memUsers) GetUserByEmail(_ context.Context, email string) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == strings.ToLower(email) {
			return u, nil
		}
	}
	return models.User{}, apperrors.ErrUserNotFound
}

func (r *memUsers) ListUsers(_ context.Context, page int, limit int) (models.UserPage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sorted := slices.Clone(r.users)
	slices.Reverse(sorted)

	start := min((page-1)*limit, len(sorted))
	end := min(start+limit, len(sorted))

	return models.UserPage{Users: sorted[start:end], Total: int64(len(sorted)), Page: page, Limit: limit}, nil
}

func (r *memUsers) Stats(context.Context) (models.UserStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var stats models.UserStats
	for _, u := range r.users {
		stats.TotalAccounts++
		if u.Role == models.RoleAdmin {
			stats.TotalAdmins++
		} else {
			stats.TotalUsers++
		}
	}
	return stats, nil
}

// In-memory call session repository
type memSessions struct {
	mu       sync.Mutex
	sessions map[string]models.CallSession
}

func (r *memSessions) SaveDialed(_ context.Context, s models.CallSession) (models.CallSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.sessions[s.CallControlID]; ok {
		s.Phase = existing.Phase
	} else {
		s.Phase = models.CallPhaseDialing
	}
	s.CreatedAt = time.Now()
	r.sessions[s.CallControlID] = s
	return s, nil
}

func (r *memSessions) MarkAnswered(_ context.Context, id string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if ok && s.Phase != models.CallPhaseDialing {
		return false, nil
	}
	s.CallControlID = id
	s.Phase = models.CallPhaseAnswered
	s.AnsweredAt = &at
	r.sessions[id] = s
	return true, nil
}

func (r *memSessions) MarkEnded(_ context.Context, id string, cause string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.sessions[id]
	if s.Phase == models.CallPhaseEnded {
		return nil
	}
	s.CallControlID = id
	s.Phase = models.CallPhaseEnded
	s.HangupCause = cause
	s.EndedAt = &at
	r.sessions[id] = s
	return nil
}

func (r *memSessions) GetCallSession(_ context.Context, id string) (models.CallSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return models.CallSession{}, apperrors.ErrCallSessionNotFound
	}
	return s, nil
}

var telnyxConfig = calls.Config{
	APIKey:       "KEY0123456789",
	ConnectionID: "conn-1",
	PhoneNumber:  "+15550000000",
	WebhookURL:   "https://example.com/api/webhook/aiagent",
	AssistantID:  "assistant-1",
}

type testApp struct {
	URL      string
	Users    *user.UserService
	Auth     *auth.AuthService
	Provider *mocks.MockProvider
	Sessions *memSessions
	Registry *prometheus.Registry
}

// Start the whole router with production services over in-memory storage
func newTestApp(t *testing.T, callsCfg calls.Config) *testApp {
	t.Helper()

	tokens, err := tokenmanager.New(tokenmanager.Config{AccessSecret: "access-secret", RefreshSecret: "refresh-secret"})
	require.NoError(t, err)

	users := user.NewService(auth.BcryptHasher{}, &memUsers{})
	authService := auth.NewService(tokens, users)

	sessions := &memSessions{sessions: make(map[string]models.CallSession)}
	provider := mocks.NewMockProvider(gomock.NewController(t))
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	l := logger.NewNoOpLogger()

	orchestrator := calls.NewOrchestrator(callsCfg, provider, sessions, l, m)
	processor := calls.NewProcessor(calls.ProcessorConfig{}, orchestrator, sessions, l, m)

	router := NewRouter(authService, users, orchestrator, processor, l, Options{
		Metrics:        m,
		MetricsHandler: metrics.Handler(reg),
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testApp{
		URL:      srv.URL,
		Users:    users,
		Auth:     authService,
		Provider: provider,
		Sessions: sessions,
		Registry: reg,
	}
}

// Do request and return status code and body
func (a *testApp) do(t *testing.T, method string, path string, token string, body string) (int, string) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, a.URL+path, reader)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, string(data)
}

// Create account and return its access token
func (a *testApp) tokenFor(t *testing.T, email string, role models.Role) (models.User, string) {
	t.Helper()

	u, err := a.Users.CreateUser(t.Context(), models.Registration{
		Email:       email,
		Password:    "pw123456",
		FirstName:   "Test",
		LastName:    "User",
		PhoneNumber: "+10000000000",
	}, role)
	require.NoError(t, err)

	_, pair, err := a.Auth.Login(t.Context(), email, "pw123456")
	require.NoError(t, err)

	return u, pair.Access.Value
}
