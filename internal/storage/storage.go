package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/nkiryanov/zifybot/internal/db"
	"github.com/nkiryanov/zifybot/internal/repository"
	"github.com/nkiryanov/zifybot/internal/repository/mongo"
	"github.com/nkiryanov/zifybot/internal/repository/postgres"
)

// Open connects to the database the DSN points to
// postgres:// and postgresql:// DSNs are migrated before use; mongodb:// and mongodb+srv:// get their indexes ensured
func Open(ctx context.Context, dsn string) (repository.Storage, func(), error) {
	switch scheme(dsn) {
	case "postgres", "postgresql":
		pool, err := db.ConnectAndMigrate(ctx, dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("error while connecting to postgres. Err: %w", err)
		}
		return postgres.NewStorage(pool), pool.Close, nil

	case "mongodb", "mongodb+srv":
		s, err := mongo.New(ctx, dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("error while connecting to mongo. Err: %w", err)
		}
		return s, func() { _ = s.Close(context.Background()) }, nil

	default:
		return nil, nil, fmt.Errorf("unsupported database dsn scheme %q", scheme(dsn))
	}
}

func scheme(dsn string) string {
	s, _, ok := strings.Cut(dsn, "://")
	if !ok {
		return ""
	}
	return strings.ToLower(s)
}
