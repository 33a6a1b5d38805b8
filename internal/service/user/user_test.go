package user

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/zifybot/internal/apperrors"
	"github.com/nkiryanov/zifybot/internal/models"
	"github.com/nkiryanov/zifybot/internal/repository/postgres"
	"github.com/nkiryanov/zifybot/internal/service/auth"
	"github.com/nkiryanov/zifybot/internal/testutil"
)

func TestUser(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	// Helper function to create UserService within transaction
	inTx := func(t *testing.T, fn func(s *UserService)) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			fn(NewService(auth.DefaultHasher, &postgres.UserRepo{DB: tx}))
		})
	}

	reg := models.Registration{
		Email:       "lead@example.com",
		Password:    "password123",
		FirstName:   "Lead",
		LastName:    "Owner",
		PhoneNumber: "+15551234567",
	}

	t.Run("CreateUser", func(t *testing.T) {
		t.Run("create ok", func(t *testing.T) {
			inTx(t, func(s *UserService) {
				user, err := s.CreateUser(t.Context(), reg, models.RoleUser)

				require.NoError(t, err, "creating new user should be ok")
				require.NotEmpty(t, user.ID, "user ID should not be empty")
				require.Equal(t, "lead@example.com", user.Email)
				require.Equal(t, models.RoleUser, user.Role)
				require.NotEqual(t, "password123", user.PasswordHash, "password should be hashed")
				require.NotZero(t, user.CreatedAt, "created at should be set")
			})
		})

		t.Run("empty password fail", func(t *testing.T) {
			inTx(t, func(s *UserService) {
				noPassword := reg
				noPassword.Password = ""

				_, err := s.CreateUser(t.Context(), noPassword, models.RoleUser)

				require.ErrorIs(t, err, apperrors.ErrValidation)
			})
		})

		t.Run("unknown role fail", func(t *testing.T) {
			inTx(t, func(s *UserService) {
				_, err := s.CreateUser(t.Context(), reg, models.Role("superuser"))

				require.ErrorIs(t, err, apperrors.ErrValidation)
			})
		})

		t.Run("duplicate email fail", func(t *testing.T) {
			inTx(t, func(s *UserService) {
				_, err := s.CreateUser(t.Context(), reg, models.RoleUser)
				require.NoError(t, err)

				_, err = s.CreateUser(t.Context(), reg, models.RoleAdmin)

				require.ErrorIs(t, err, apperrors.ErrUserAlreadyExists)
			})
		})
	})

	t.Run("VerifyCredentials", func(t *testing.T) {
		inTx(t, func(s *UserService) {
			created, err := s.CreateUser(t.Context(), reg, models.RoleUser)
			require.NoError(t, err)

			got, err := s.VerifyCredentials(t.Context(), "LEAD@example.com", "password123")
			require.NoError(t, err)
			require.Equal(t, created.ID, got.ID)

			_, err = s.VerifyCredentials(t.Context(), "lead@example.com", "wrong")
			require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

			_, err = s.VerifyCredentials(t.Context(), "ghost@example.com", "password123")
			require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
		})
	})

	t.Run("ListUsers", func(t *testing.T) {
		inTx(t, func(s *UserService) {
			for i := range 12 {
				r := reg
				r.Email = fmt.Sprintf("lead%d@example.com", i)
				_, err := s.CreateUser(t.Context(), r, models.RoleUser)
				require.NoError(t, err)
			}

			tests := []struct {
				name      string
				page      int
				limit     int
				wantPage  int
				wantLimit int
				wantLen   int
			}{
				{"defaults", 0, 0, 1, 10, 10},
				{"second page", 2, 10, 2, 10, 2},
				{"negative values", -1, -5, 1, 10, 10},
				{"limit capped", 1, 1000, 1, 100, 12},
			}

			for _, tt := range tests {
				t.Run(tt.name, func(t *testing.T) {
					page, err := s.ListUsers(t.Context(), tt.page, tt.limit)

					require.NoError(t, err)
					require.Equal(t, tt.wantPage, page.Page)
					require.Equal(t, tt.wantLimit, page.Limit)
					require.Len(t, page.Users, tt.wantLen)
					require.Equal(t, int64(12), page.Total)
				})
			}
		})
	})

	t.Run("Stats", func(t *testing.T) {
		inTx(t, func(s *UserService) {
			_, err := s.CreateUser(t.Context(), reg, models.RoleUser)
			require.NoError(t, err)
			admin := reg
			admin.Email = "admin@example.com"
			_, err = s.CreateUser(t.Context(), admin, models.RoleAdmin)
			require.NoError(t, err)

			stats, err := s.Stats(t.Context())

			require.NoError(t, err)
			require.Equal(t, models.UserStats{TotalUsers: 1, TotalAdmins: 1, TotalAccounts: 2}, stats)
		})
	})
}
