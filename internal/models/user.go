package models

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	PhoneNumber  string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Fields required to create a user record.
// Role is left to the caller: registration always passes RoleUser
type NewUser struct {
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	PhoneNumber  string
	Role         Role
}

// One page of users, newest first
type UserPage struct {
	Users []User
	Total int64
	Page  int
	Limit int
}

// Number of pages for the page limit, at least 0
func (p UserPage) Pages() int {
	if p.Limit <= 0 {
		return 0
	}
	return int((p.Total + int64(p.Limit) - 1) / int64(p.Limit))
}

type UserStats struct {
	TotalUsers    int64
	TotalAdmins   int64
	TotalAccounts int64
}

// Data a person submits to get an account, password in plain text
type Registration struct {
	Email       string
	Password    string
	FirstName   string
	LastName    string
	PhoneNumber string
}
