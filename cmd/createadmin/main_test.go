package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/zifybot/internal/apperrors"
	"github.com/nkiryanov/zifybot/internal/testutil"
)

func Test_run(t *testing.T) {
	t.Run("invalid arguments", func(t *testing.T) {
		tests := []struct {
			name string
			args []string
			want string
		}{
			{"no database", []string{"--email", "root@x.com", "--password", "secret"}, "database dsn is required"},
			{"no email", []string{"-d", "postgres://localhost/db", "--password", "secret"}, "--email is required"},
			{"short password", []string{"-d", "postgres://localhost/db", "--email", "root@x.com", "--password", "123"}, "at least 6"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				err := run(t.Context(), func(string) string { return "" }, tt.args, &bytes.Buffer{})

				require.ErrorContains(t, err, tt.want)
			})
		}
	})

	t.Run("create admin", func(t *testing.T) {
		pg := testutil.StartPostgresContainer(t)
		t.Cleanup(pg.Terminate)

		getenv := func(key string) string {
			if key == "DATABASE_URI" {
				return pg.DSN
			}
			return ""
		}
		args := []string{"--email", "Root@X.com", "--password", "secret1"}
		var out bytes.Buffer

		err := run(t.Context(), getenv, args, &out)

		require.NoError(t, err)
		require.Contains(t, out.String(), "email=root@x.com")

		err = run(t.Context(), getenv, args, &bytes.Buffer{})
		require.ErrorIs(t, err, apperrors.ErrUserAlreadyExists)
	})
}
