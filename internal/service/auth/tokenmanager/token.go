package tokenmanager

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/nkiryanov/zifybot/internal/apperrors"
	"github.com/nkiryanov/zifybot/internal/models"
)

const (
	defaultAccessTokenTTL  = 15 * time.Minute
	defaultRefreshTokenTTL = 7 * 24 * time.Hour
	defaultSigningMethod   = "HS256"
)

type Claims struct {
	jwt.RegisteredClaims
	models.TokenPayload
}

// Token manager with sensible default
type Config struct {
	// Secrets to sign access and refresh tokens
	// Both required and must differ, so a token of one class never verifies as the other
	AccessSecret  string
	RefreshSecret string

	// JWT MAC (Message Authentication Code) algorithm
	// If not set than default is used
	Alg string

	// Access and refresh token lifetimes
	// If not set than default is used
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type TokenManager struct {
	accessKey  []byte
	refreshKey []byte

	alg jwt.SigningMethod

	accessTTL  time.Duration
	refreshTTL time.Duration

	now func() time.Time
}

func New(cfg Config) (*TokenManager, error) {
	switch {
	case cfg.AccessSecret == "":
		return nil, errors.New("access secret must not be empty")
	case cfg.RefreshSecret == "":
		return nil, errors.New("refresh secret must not be empty")
	case cfg.AccessSecret == cfg.RefreshSecret:
		return nil, errors.New("access and refresh secrets must differ")
	}

	if cfg.Alg == "" {
		cfg.Alg = defaultSigningMethod
	}
	alg := jwt.GetSigningMethod(cfg.Alg)
	if _, ok := alg.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unsupported signing method %q", cfg.Alg)
	}

	setDefaultDuration := func(field *time.Duration, def time.Duration) {
		if *field == 0 {
			*field = def
		}
	}
	setDefaultDuration(&cfg.AccessTTL, defaultAccessTokenTTL)
	setDefaultDuration(&cfg.RefreshTTL, defaultRefreshTokenTTL)

	return &TokenManager{
		accessKey:  []byte(cfg.AccessSecret),
		refreshKey: []byte(cfg.RefreshSecret),
		alg:        alg,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		now:        time.Now,
	}, nil
}

func (m *TokenManager) IssueAccess(payload models.TokenPayload) (models.IssuedToken, error) {
	return m.issue(payload, m.accessKey, m.accessTTL)
}

func (m *TokenManager) IssueRefresh(payload models.TokenPayload) (models.IssuedToken, error) {
	return m.issue(payload, m.refreshKey, m.refreshTTL)
}

func (m *TokenManager) IssuePair(payload models.TokenPayload) (models.TokenPair, error) {
	access, err := m.IssueAccess(payload)
	if err != nil {
		return models.TokenPair{}, err
	}

	refresh, err := m.IssueRefresh(payload)
	if err != nil {
		return models.TokenPair{}, err
	}

	return models.TokenPair{Access: access, Refresh: refresh}, nil
}

// Parse and validate access token
// Any failure is reported as apperrors.ErrInvalidToken
func (m *TokenManager) VerifyAccess(token string) (models.TokenPayload, error) {
	return m.verify(token, m.accessKey)
}

// Parse and validate refresh token
// Any failure is reported as apperrors.ErrInvalidToken
func (m *TokenManager) VerifyRefresh(token string) (models.TokenPayload, error) {
	return m.verify(token, m.refreshKey)
}

func (m *TokenManager) issue(payload models.TokenPayload, key []byte, ttl time.Duration) (models.IssuedToken, error) {
	now := m.now().Truncate(time.Second)
	expiresAt := now.Add(ttl)

	token := jwt.NewWithClaims(
		m.alg,
		Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        uuid.NewString(),
				Subject:   payload.UserID.String(),
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(expiresAt),
			},
			TokenPayload: payload,
		},
	)

	signed, err := token.SignedString(key)
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("error while signing token. Err: %w", err)
	}

	return models.IssuedToken{Value: signed, ExpiresAt: expiresAt}, nil
}

func (m *TokenManager) verify(token string, key []byte) (models.TokenPayload, error) {
	claims := &Claims{}

	_, err := jwt.ParseWithClaims(
		token,
		claims,
		func(t *jwt.Token) (any, error) {
			return key, nil
		},
		jwt.WithValidMethods([]string{m.alg.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return models.TokenPayload{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidToken, err)
	}

	if claims.UserID == uuid.Nil {
		return models.TokenPayload{}, fmt.Errorf("%w: token has no subject", apperrors.ErrInvalidToken)
	}

	return claims.TokenPayload, nil
}
