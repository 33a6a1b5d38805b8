package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nkiryanov/zifybot/internal/apperrors"
	"github.com/nkiryanov/zifybot/internal/models"
)

type userDoc struct {
	ID           string    `bson:"_id"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"password_hash"`
	FirstName    string    `bson:"first_name"`
	LastName     string    `bson:"last_name"`
	PhoneNumber  string    `bson:"phone_number"`
	Role         string    `bson:"role"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

func (d userDoc) toModel() (models.User, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return models.User{}, fmt.Errorf("mongo: bad user id %q: %w", d.ID, err)
	}

	return models.User{
		ID:           id,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		FirstName:    d.FirstName,
		LastName:     d.LastName,
		PhoneNumber:  d.PhoneNumber,
		Role:         models.Role(d.Role),
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}, nil
}

type UserRepo struct {
	coll *mongodriver.Collection
}

func (r *UserRepo) CreateUser(ctx context.Context, u models.NewUser) (models.User, error) {
	// Mongo keeps milliseconds only
	now := time.Now().UTC().Truncate(time.Millisecond)
	doc := userDoc{
		ID:           uuid.NewString(),
		Email:        normalizeEmail(u.Email),
		PasswordHash: u.PasswordHash,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		PhoneNumber:  u.PhoneNumber,
		Role:         string(u.Role),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongodriver.IsDuplicateKeyError(err) {
			return models.User{}, apperrors.ErrUserAlreadyExists
		}
		return models.User{}, fmt.Errorf("mongo insert user: %w", err)
	}

	return doc.toModel()
}

func (r *UserRepo) GetUserByID(ctx context.Context, id uuid.UUID) (models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id.String()})
}

func (r *UserRepo) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	return r.findOne(ctx, bson.M{"email": normalizeEmail(email)})
}

func (r *UserRepo) ListUsers(ctx context.Context, page int, limit int) (models.UserPage, error) {
	result := models.UserPage{Page: page, Limit: limit}

	total, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return result, fmt.Errorf("mongo count users: %w", err)
	}
	result.Total = total

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return result, fmt.Errorf("mongo find users: %w", err)
	}
	defer cur.Close(ctx) // nolint:errcheck

	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return result, fmt.Errorf("mongo decode users: %w", err)
	}

	result.Users = make([]models.User, 0, len(docs))
	for _, d := range docs {
		u, err := d.toModel()
		if err != nil {
			return result, err
		}
		result.Users = append(result.Users, u)
	}

	return result, nil
}

func (r *UserRepo) Stats(ctx context.Context) (models.UserStats, error) {
	var s models.UserStats

	counters := []struct {
		filter bson.M
		dst    *int64
	}{
		{bson.M{"role": string(models.RoleUser)}, &s.TotalUsers},
		{bson.M{"role": string(models.RoleAdmin)}, &s.TotalAdmins},
		{bson.M{}, &s.TotalAccounts},
	}

	for _, c := range counters {
		n, err := r.coll.CountDocuments(ctx, c.filter)
		if err != nil {
			return s, fmt.Errorf("mongo count users: %w", err)
		}
		*c.dst = n
	}

	return s, nil
}

func (r *UserRepo) findOne(ctx context.Context, filter bson.M) (models.User, error) {
	var doc userDoc

	err := r.coll.FindOne(ctx, filter).Decode(&doc)
	switch {
	case err == nil:
		return doc.toModel()
	case errors.Is(err, mongodriver.ErrNoDocuments):
		return models.User{}, apperrors.ErrUserNotFound
	default:
		return models.User{}, fmt.Errorf("mongo find user: %w", err)
	}
}

// Emails are unique case-insensitively
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
