package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/nkiryanov/zifybot/internal/apperrors"
	"github.com/nkiryanov/zifybot/internal/models"
)

type CallSessionRepo struct {
	DB DBTX
}

const callSessionColumns = `call_control_id, call_session_id, call_leg_id, connection_id, from_number, to_number,
phase, hangup_cause, initiated_by, created_at, answered_at, ended_at`

// Dial details are always overwritten, phase is kept when the webhook came first
const saveDialedCall = `-- name: SaveDialedCall
INSERT INTO call_sessions (call_control_id, call_session_id, call_leg_id, connection_id, from_number, to_number, phase, initiated_by)
VALUES ($1, $2, $3, $4, $5, $6, 'dialing', $7)
ON CONFLICT (call_control_id) DO UPDATE SET
    call_session_id = EXCLUDED.call_session_id,
    call_leg_id     = EXCLUDED.call_leg_id,
    connection_id   = EXCLUDED.connection_id,
    from_number     = EXCLUDED.from_number,
    to_number       = EXCLUDED.to_number,
    initiated_by    = EXCLUDED.initiated_by
RETURNING ` + callSessionColumns

func (r *CallSessionRepo) SaveDialed(ctx context.Context, s models.CallSession) (models.CallSession, error) {
	rows, _ := r.DB.Query(ctx, saveDialedCall,
		s.CallControlID,
		s.CallSessionID,
		s.CallLegID,
		s.ConnectionID,
		s.From,
		s.To,
		s.InitiatedBy,
	)
	session, err := pgx.CollectOneRow(rows, rowToCallSession)
	if err != nil {
		return session, fmt.Errorf("db error: %w", err)
	}

	return session, nil
}

const markCallAnswered = `-- name: MarkCallAnswered
INSERT INTO call_sessions (call_control_id, phase, answered_at)
VALUES ($1, 'answered', $2)
ON CONFLICT (call_control_id) DO UPDATE SET
    phase       = 'answered',
    answered_at = EXCLUDED.answered_at
WHERE call_sessions.phase = 'dialing'
RETURNING call_control_id
`

func (r *CallSessionRepo) MarkAnswered(ctx context.Context, callControlID string, at time.Time) (bool, error) {
	var id string
	err := r.DB.QueryRow(ctx, markCallAnswered, callControlID, at).Scan(&id)

	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, pgx.ErrNoRows):
		return false, nil
	default:
		return false, fmt.Errorf("db error: %w", err)
	}
}

const markCallEnded = `-- name: MarkCallEnded
INSERT INTO call_sessions (call_control_id, phase, hangup_cause, ended_at)
VALUES ($1, 'ended', $2, $3)
ON CONFLICT (call_control_id) DO UPDATE SET
    phase        = 'ended',
    hangup_cause = EXCLUDED.hangup_cause,
    ended_at     = EXCLUDED.ended_at
WHERE call_sessions.phase <> 'ended'
`

func (r *CallSessionRepo) MarkEnded(ctx context.Context, callControlID string, cause string, at time.Time) error {
	_, err := r.DB.Exec(ctx, markCallEnded, callControlID, cause, at)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

const getCallSession = `-- name: GetCallSession
SELECT ` + callSessionColumns + ` FROM call_sessions
WHERE call_control_id = $1
`

func (r *CallSessionRepo) GetCallSession(ctx context.Context, callControlID string) (models.CallSession, error) {
	rows, _ := r.DB.Query(ctx, getCallSession, callControlID)
	session, err := pgx.CollectOneRow(rows, rowToCallSession)

	switch {
	case err == nil:
		return session, nil
	case errors.Is(err, pgx.ErrNoRows):
		return session, apperrors.ErrCallSessionNotFound
	default:
		return session, fmt.Errorf("db error: %w", err)
	}
}

func rowToCallSession(row pgx.CollectableRow) (models.CallSession, error) {
	var s models.CallSession
	err := row.Scan(
		&s.CallControlID,
		&s.CallSessionID,
		&s.CallLegID,
		&s.ConnectionID,
		&s.From,
		&s.To,
		&s.Phase,
		&s.HangupCause,
		&s.InitiatedBy,
		&s.CreatedAt,
		&s.AnsweredAt,
		&s.EndedAt,
	)
	return s, err
}
