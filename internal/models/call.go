package models

import (
	"time"

	"github.com/google/uuid"
)

type CallPhase string

const (
	CallPhaseDialing  CallPhase = "dialing"
	CallPhaseAnswered CallPhase = "answered"
	CallPhaseEnded    CallPhase = "ended"
)

// Call record returned by the telephony provider when a call is created
type Call struct {
	CallControlID string `json:"call_control_id"`
	CallLegID     string `json:"call_leg_id,omitempty"`
	CallSessionID string `json:"call_session_id,omitempty"`
	IsAlive       bool   `json:"is_alive"`
	RecordType    string `json:"record_type,omitempty"`
}

// Locally tracked lifecycle of one outbound call, keyed by the provider call control id
type CallSession struct {
	CallControlID string
	CallSessionID string
	CallLegID     string
	ConnectionID  string
	From          string
	To            string
	Phase         CallPhase
	HangupCause   string
	InitiatedBy   *uuid.UUID
	CreatedAt     time.Time
	AnsweredAt    *time.Time
	EndedAt       *time.Time
}
