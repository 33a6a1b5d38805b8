package models

import (
	"time"

	"github.com/google/uuid"
)

// Identity carried by both access and refresh tokens
type TokenPayload struct {
	UserID uuid.UUID `json:"userId"`
	Email  string    `json:"email"`
	Role   Role      `json:"role"`
}

func PayloadFromUser(u User) TokenPayload {
	return TokenPayload{UserID: u.ID, Email: u.Email, Role: u.Role}
}

type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}

// Token pair issued by TokenManager, AuthService
type TokenPair struct {
	Access  IssuedToken
	Refresh IssuedToken
}
