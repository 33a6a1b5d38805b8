package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nkiryanov/zifybot/internal/apperrors"
	"github.com/nkiryanov/zifybot/internal/models"
)

type callSessionDoc struct {
	CallControlID string     `bson:"_id"`
	CallSessionID string     `bson:"call_session_id"`
	CallLegID     string     `bson:"call_leg_id"`
	ConnectionID  string     `bson:"connection_id"`
	From          string     `bson:"from"`
	To            string     `bson:"to"`
	Phase         string     `bson:"phase"`
	HangupCause   string     `bson:"hangup_cause"`
	InitiatedBy   *string    `bson:"initiated_by,omitempty"`
	CreatedAt     time.Time  `bson:"created_at"`
	AnsweredAt    *time.Time `bson:"answered_at,omitempty"`
	EndedAt       *time.Time `bson:"ended_at,omitempty"`
}

func (d callSessionDoc) toModel() models.CallSession {
	s := models.CallSession{
		CallControlID: d.CallControlID,
		CallSessionID: d.CallSessionID,
		CallLegID:     d.CallLegID,
		ConnectionID:  d.ConnectionID,
		From:          d.From,
		To:            d.To,
		Phase:         models.CallPhase(d.Phase),
		HangupCause:   d.HangupCause,
		CreatedAt:     d.CreatedAt,
		AnsweredAt:    d.AnsweredAt,
		EndedAt:       d.EndedAt,
	}
	if d.InitiatedBy != nil {
		if id, err := uuid.Parse(*d.InitiatedBy); err == nil {
			s.InitiatedBy = &id
		}
	}
	return s
}

type CallSessionRepo struct {
	coll *mongodriver.Collection
}

func (r *CallSessionRepo) SaveDialed(ctx context.Context, s models.CallSession) (models.CallSession, error) {
	set := bson.M{
		"call_session_id": s.CallSessionID,
		"call_leg_id":     s.CallLegID,
		"connection_id":   s.ConnectionID,
		"from":            s.From,
		"to":              s.To,
	}
	if s.InitiatedBy != nil {
		set["initiated_by"] = s.InitiatedBy.String()
	}

	update := bson.M{
		"$set": set,
		"$setOnInsert": bson.M{
			"phase":        string(models.CallPhaseDialing),
			"hangup_cause": "",
			"created_at":   time.Now().UTC().Truncate(time.Millisecond),
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc callSessionDoc
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": s.CallControlID}, update, opts).Decode(&doc)
	if err != nil {
		return models.CallSession{}, fmt.Errorf("mongo save call session: %w", err)
	}

	return doc.toModel(), nil
}

// Guarded upsert: filter matches only a dialing session, so for answered or ended one
// the upsert collides on _id and nothing changes
func (r *CallSessionRepo) MarkAnswered(ctx context.Context, callControlID string, at time.Time) (bool, error) {
	filter := bson.M{"_id": callControlID, "phase": string(models.CallPhaseDialing)}
	update := bson.M{
		"$set": bson.M{
			"phase":       string(models.CallPhaseAnswered),
			"answered_at": at.UTC(),
		},
		"$setOnInsert": bson.M{"created_at": at.UTC()},
	}

	res, err := r.coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	switch {
	case mongodriver.IsDuplicateKeyError(err):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("mongo mark call answered: %w", err)
	}

	return res.ModifiedCount > 0 || res.UpsertedCount > 0, nil
}

func (r *CallSessionRepo) MarkEnded(ctx context.Context, callControlID string, cause string, at time.Time) error {
	filter := bson.M{"_id": callControlID, "phase": bson.M{"$ne": string(models.CallPhaseEnded)}}
	update := bson.M{
		"$set": bson.M{
			"phase":        string(models.CallPhaseEnded),
			"hangup_cause": cause,
			"ended_at":     at.UTC(),
		},
		"$setOnInsert": bson.M{"created_at": at.UTC()},
	}

	_, err := r.coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil && !mongodriver.IsDuplicateKeyError(err) {
		return fmt.Errorf("mongo mark call ended: %w", err)
	}
	return nil
}

func (r *CallSessionRepo) GetCallSession(ctx context.Context, callControlID string) (models.CallSession, error) {
	var doc callSessionDoc

	err := r.coll.FindOne(ctx, bson.M{"_id": callControlID}).Decode(&doc)
	switch {
	case err == nil:
		return doc.toModel(), nil
	case errors.Is(err, mongodriver.ErrNoDocuments):
		return models.CallSession{}, apperrors.ErrCallSessionNotFound
	default:
		return models.CallSession{}, fmt.Errorf("mongo find call session: %w", err)
	}
}
