package repository

//go:generate mockgen -destination=../mocks/repository.go -package=mocks github.com/nkiryanov/zifybot/internal/repository CallSessionRepo

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nkiryanov/zifybot/internal/models"
)

// User repository interface
type UserRepo interface {
	// Create user
	// If user with the email exists already has to return error apperrors.ErrUserAlreadyExists
	CreateUser(ctx context.Context, user models.NewUser) (models.User, error)

	// Get user by it's id or email
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)

	// Return one page of users ordered by creation time, newest first
	// Page numbering starts at 1
	ListUsers(ctx context.Context, page int, limit int) (models.UserPage, error)

	// Count users by role
	Stats(ctx context.Context) (models.UserStats, error)
}

// Call session repository interface
// Sessions are keyed by the provider call control id
type CallSessionRepo interface {
	// Store a freshly dialed call
	// If the session exists already (webhook outran the dial response) its phase must be kept
	SaveDialed(ctx context.Context, session models.CallSession) (models.CallSession, error)

	// Move the session to 'answered'
	// Transition applies only from 'dialing' or when the session is unknown yet
	// Returns false when the session was answered or ended before
	MarkAnswered(ctx context.Context, callControlID string, at time.Time) (bool, error)

	// Move the session to 'ended' and keep the hangup cause
	// Ended session stays as is
	MarkEnded(ctx context.Context, callControlID string, cause string, at time.Time) error

	// If session not found must return apperrors.ErrCallSessionNotFound
	GetCallSession(ctx context.Context, callControlID string) (models.CallSession, error)
}

type Storage interface {
	User() UserRepo
	CallSession() CallSessionRepo
}
