package user

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/nkiryanov/zifybot/internal/apperrors"
	"github.com/nkiryanov/zifybot/internal/models"
	"github.com/nkiryanov/zifybot/internal/repository"
	"github.com/nkiryanov/zifybot/internal/service/auth"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

type UserService struct {
	hasher   auth.PasswordHasher
	userRepo repository.UserRepo

	// Hash compared against when email is unknown, so both login failures cost the same
	dummyOnce sync.Once
	dummyHash string
}

func NewService(hasher auth.PasswordHasher, userRepo repository.UserRepo) *UserService {
	if hasher == nil {
		hasher = auth.DefaultHasher
	}

	return &UserService{
		hasher:   hasher,
		userRepo: userRepo,
	}
}

func (s *UserService) CreateUser(ctx context.Context, reg models.Registration, role models.Role) (models.User, error) {
	var user models.User

	if reg.Password == "" {
		return user, fmt.Errorf("password must not be empty: %w", apperrors.ErrValidation)
	}
	if role != models.RoleUser && role != models.RoleAdmin {
		return user, fmt.Errorf("unknown role %q: %w", role, apperrors.ErrValidation)
	}

	hash, err := s.hasher.Hash(reg.Password)
	if err != nil {
		return user, fmt.Errorf("can't use this as password, Err: %w", err)
	}

	user, err = s.userRepo.CreateUser(ctx, models.NewUser{
		Email:        reg.Email,
		PasswordHash: hash,
		FirstName:    reg.FirstName,
		LastName:     reg.LastName,
		PhoneNumber:  reg.PhoneNumber,
		Role:         role,
	})
	if err != nil {
		return user, fmt.Errorf("can't create user. Err: %w", err)
	}

	return user, nil
}

// VerifyCredentials returns the user if password matches the stored hash
// Unknown email and wrong password both end with apperrors.ErrInvalidCredentials
func (s *UserService) VerifyCredentials(ctx context.Context, email string, password string) (models.User, error) {
	user, err := s.userRepo.GetUserByEmail(ctx, email)
	switch {
	case errors.Is(err, apperrors.ErrUserNotFound):
		_ = s.hasher.Compare(s.getDummyHash(), password)
		return models.User{}, apperrors.ErrInvalidCredentials
	case err != nil:
		return models.User{}, fmt.Errorf("can't get user. Err: %w", err)
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return models.User{}, apperrors.ErrInvalidCredentials
	}

	return user, nil
}

func (s *UserService) GetUserByID(ctx context.Context, id uuid.UUID) (models.User, error) {
	return s.userRepo.GetUserByID(ctx, id)
}

// ListUsers returns a page of users; out of range page or limit fall back to defaults
func (s *UserService) ListUsers(ctx context.Context, page int, limit int) (models.UserPage, error) {
	if page < 1 {
		page = DefaultPage
	}
	switch {
	case limit < 1:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}

	result, err := s.userRepo.ListUsers(ctx, page, limit)
	if err != nil {
		return result, fmt.Errorf("can't list users. Err: %w", err)
	}
	return result, nil
}

func (s *UserService) Stats(ctx context.Context) (models.UserStats, error) {
	stats, err := s.userRepo.Stats(ctx)
	if err != nil {
		return stats, fmt.Errorf("can't count users. Err: %w", err)
	}
	return stats, nil
}

func (s *UserService) getDummyHash() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash(uuid.NewString())
	})
	return s.dummyHash
}
