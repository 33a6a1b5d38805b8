package mongo

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/nkiryanov/zifybot/internal/repository"
)

const (
	usersCollection        = "users"
	callSessionsCollection = "call_sessions"
	defaultDBName          = "zifybot"
)

// Storage keeps users and call sessions in MongoDB
type Storage struct {
	client       *mongodriver.Client
	users        *mongodriver.Collection
	callSessions *mongodriver.Collection
}

// New connects to MongoDB, pings it and ensures indexes
// Database name is taken from the URI path
func New(ctx context.Context, uri string) (*Storage, error) {
	if uri == "" {
		return nil, fmt.Errorf("mongo: empty uri")
	}

	cli, err := mongodriver.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := cli.Ping(ctx, readpref.Primary()); err != nil {
		_ = cli.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := cli.Database(databaseFromURI(uri))
	s := &Storage{
		client:       cli,
		users:        db.Collection(usersCollection),
		callSessions: db.Collection(callSessionsCollection),
	}

	if err := s.ensureIndexes(ctx); err != nil {
		_ = s.Close(context.Background())
		return nil, err
	}

	return s, nil
}

func (s *Storage) User() repository.UserRepo {
	return &UserRepo{coll: s.users}
}

func (s *Storage) CallSession() repository.CallSessionRepo {
	return &CallSessionRepo{coll: s.callSessions}
}

func (s *Storage) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// ensureIndexes creates:
// - unique email, so concurrent registrations can't create duplicates
// - created_at desc for the admin user list
func (s *Storage) ensureIndexes(ctx context.Context) error {
	models := []mongodriver.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("email_unique").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("created_at_desc"),
		},
	}

	if _, err := s.users.Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("mongo ensure indexes: %w", err)
	}
	return nil
}

// databaseFromURI returns database name from the mongodb URI path or the default one
func databaseFromURI(uri string) string {
	u, err := url.Parse(uri)
	if err == nil {
		if name := strings.Trim(u.Path, "/"); name != "" {
			return name
		}
	}
	return defaultDBName
}
