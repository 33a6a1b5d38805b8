package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/nkiryanov/zifybot/internal/apperrors"
	"github.com/nkiryanov/zifybot/internal/models"
)

type tokenManager interface {
	IssuePair(payload models.TokenPayload) (models.TokenPair, error)
	VerifyAccess(token string) (models.TokenPayload, error)
	VerifyRefresh(token string) (models.TokenPayload, error)
}

type userService interface {
	// Has to return apperrors.ErrUserAlreadyExists if email is taken
	CreateUser(ctx context.Context, reg models.Registration, role models.Role) (models.User, error)

	// Has to return apperrors.ErrInvalidCredentials for unknown email or wrong password
	VerifyCredentials(ctx context.Context, email string, password string) (models.User, error)

	// Has to return apperrors.ErrUserNotFound if user not found
	GetUserByID(ctx context.Context, id uuid.UUID) (models.User, error)
}

// Auth service
type AuthService struct {
	tokens tokenManager
	users  userService
}

func NewService(tokens tokenManager, users userService) *AuthService {
	return &AuthService{tokens: tokens, users: users}
}

// Register creates a regular user account; role is never taken from the caller
func (s *AuthService) Register(ctx context.Context, reg models.Registration) (models.User, models.TokenPair, error) {
	user, err := s.users.CreateUser(ctx, reg, models.RoleUser)
	if err != nil {
		return user, models.TokenPair{}, err
	}

	pair, err := s.tokens.IssuePair(models.PayloadFromUser(user))
	if err != nil {
		return user, pair, fmt.Errorf("token could not be generated, sorry. %w", err)
	}

	return user, pair, nil
}

func (s *AuthService) Login(ctx context.Context, email string, password string) (models.User, models.TokenPair, error) {
	user, err := s.users.VerifyCredentials(ctx, email, password)
	if err != nil {
		return user, models.TokenPair{}, err
	}

	pair, err := s.tokens.IssuePair(models.PayloadFromUser(user))
	if err != nil {
		return user, pair, fmt.Errorf("token could not be generated, sorry. %w", err)
	}

	return user, pair, nil
}

// AdminLogin checks the password first and the role second,
// so the role of an account is revealed only to someone who knows its password
func (s *AuthService) AdminLogin(ctx context.Context, email string, password string) (models.User, models.TokenPair, error) {
	user, err := s.users.VerifyCredentials(ctx, email, password)
	if err != nil {
		return user, models.TokenPair{}, err
	}

	if user.Role != models.RoleAdmin {
		return models.User{}, models.TokenPair{}, apperrors.ErrAdminRequired
	}

	pair, err := s.tokens.IssuePair(models.PayloadFromUser(user))
	if err != nil {
		return user, pair, fmt.Errorf("token could not be generated, sorry. %w", err)
	}

	return user, pair, nil
}

// Refresh exchanges a refresh token for a new pair
// Payload is re-derived from the stored user, so email or role changes are picked up
func (s *AuthService) Refresh(ctx context.Context, refresh string) (models.TokenPair, error) {
	payload, err := s.tokens.VerifyRefresh(refresh)
	if err != nil {
		return models.TokenPair{}, err
	}

	user, err := s.users.GetUserByID(ctx, payload.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return models.TokenPair{}, err
		}
		return models.TokenPair{}, fmt.Errorf("can't get user. Err: %w", err)
	}

	pair, err := s.tokens.IssuePair(models.PayloadFromUser(user))
	if err != nil {
		return pair, fmt.Errorf("token could not be generated, sorry. %w", err)
	}

	return pair, nil
}

// Authenticate validates access token and returns its payload
func (s *AuthService) Authenticate(access string) (models.TokenPayload, error) {
	return s.tokens.VerifyAccess(access)
}
