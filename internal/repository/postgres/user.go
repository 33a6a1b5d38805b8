package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nkiryanov/zifybot/internal/apperrors"
	"github.com/nkiryanov/zifybot/internal/models"
)

type UserRepo struct {
	DB DBTX
}

const userColumns = `id, email, password_hash, first_name, last_name, phone_number, role, created_at, updated_at`

const createUser = `-- name: CreateUser
INSERT INTO users (id, email, password_hash, first_name, last_name, phone_number, role)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + userColumns

func (r *UserRepo) CreateUser(ctx context.Context, u models.NewUser) (models.User, error) {
	rows, _ := r.DB.Query(ctx, createUser,
		uuid.New(),
		normalizeEmail(u.Email),
		u.PasswordHash,
		u.FirstName,
		u.LastName,
		u.PhoneNumber,
		string(u.Role),
	)
	user, err := pgx.CollectOneRow(rows, rowToUser)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return user, apperrors.ErrUserAlreadyExists
		}

		return user, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

const getUserByID = `-- name: GetUserByID
SELECT ` + userColumns + ` FROM users
WHERE id = $1
`

func (r *UserRepo) GetUserByID(ctx context.Context, id uuid.UUID) (models.User, error) {
	rows, _ := r.DB.Query(ctx, getUserByID, id)
	return collectUser(rows)
}

const getUserByEmail = `-- name: GetUserByEmail
SELECT ` + userColumns + ` FROM users
WHERE email = $1
`

func (r *UserRepo) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	rows, _ := r.DB.Query(ctx, getUserByEmail, normalizeEmail(email))
	return collectUser(rows)
}

const listUsers = `-- name: ListUsers
SELECT ` + userColumns + ` FROM users
ORDER BY created_at DESC, id
LIMIT $1 OFFSET $2
`

const countUsers = `-- name: CountUsers
SELECT count(*) FROM users
`

func (r *UserRepo) ListUsers(ctx context.Context, page int, limit int) (models.UserPage, error) {
	result := models.UserPage{Page: page, Limit: limit}

	err := r.DB.QueryRow(ctx, countUsers).Scan(&result.Total)
	if err != nil {
		return result, fmt.Errorf("db error: %w", err)
	}

	rows, _ := r.DB.Query(ctx, listUsers, limit, (page-1)*limit)
	users, err := pgx.CollectRows(rows, rowToUser)
	if err != nil {
		return result, fmt.Errorf("db error: %w", err)
	}

	result.Users = users
	return result, nil
}

const userStats = `-- name: UserStats
SELECT
    count(*) FILTER (WHERE role = 'user'),
    count(*) FILTER (WHERE role = 'admin'),
    count(*)
FROM users
`

func (r *UserRepo) Stats(ctx context.Context) (models.UserStats, error) {
	var s models.UserStats

	err := r.DB.QueryRow(ctx, userStats).Scan(&s.TotalUsers, &s.TotalAdmins, &s.TotalAccounts)
	if err != nil {
		return s, fmt.Errorf("db error: %w", err)
	}

	return s, nil
}

func collectUser(rows pgx.Rows) (models.User, error) {
	user, err := pgx.CollectOneRow(rows, rowToUser)

	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, pgx.ErrNoRows):
		return user, apperrors.ErrUserNotFound
	default:
		return user, fmt.Errorf("db error: %w", err)
	}
}

func rowToUser(row pgx.CollectableRow) (models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.FirstName,
		&u.LastName,
		&u.PhoneNumber,
		&u.Role,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}

// Emails are unique case-insensitively
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
