package calls

import (
	"encoding/json"
)

const (
	EventCallAnswered = "call.answered"
	EventCallHangup   = "call.hangup"

	// Hangup cause when provider did not send one
	UnknownHangupCause = "Unknown"
)

// Webhook body as delivered by the provider
type Envelope struct {
	Data *EventData `json:"data"`
}

type EventData struct {
	ID         string `json:"id"`
	EventType  string `json:"event_type"`
	RecordType string `json:"record_type"`
	OccurredAt string `json:"occurred_at"`

	// Some deliveries carry the id next to payload instead of inside it
	CallControlID string `json:"call_control_id"`

	Payload *EventPayload `json:"payload"`
}

type EventPayload struct {
	CallControlID string `json:"call_control_id"`
	CallSessionID string `json:"call_session_id"`
	CallLegID     string `json:"call_leg_id"`
	ConnectionID  string `json:"connection_id"`
	From          string `json:"from"`
	To            string `json:"to"`
	State         string `json:"state"`
	HangupCause   string `json:"hangup_cause"`
	HangupSource  string `json:"hangup_source"`
}

// Event is one of CallAnswered, CallHangup or OtherEvent
type Event interface {
	EventType() string
	isEvent()
}

type CallAnswered struct {
	Data EventData
}

type CallHangup struct {
	Data  EventData
	Cause string
}

type OtherEvent struct {
	Data EventData
}

func (e CallAnswered) EventType() string { return e.Data.EventType }
func (e CallHangup) EventType() string   { return e.Data.EventType }
func (e OtherEvent) EventType() string   { return e.Data.EventType }

func (CallAnswered) isEvent() {}
func (CallHangup) isEvent()   {}
func (OtherEvent) isEvent()   {}

// ParseEvent decodes webhook body
// Returns false for malformed JSON or when the 'data' envelope is missing
func ParseEvent(body []byte) (Event, bool) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, false
	}
	if env.Data == nil {
		return nil, false
	}
	data := *env.Data

	switch data.EventType {
	case EventCallAnswered:
		return CallAnswered{Data: data}, true
	case EventCallHangup:
		cause := UnknownHangupCause
		if data.Payload != nil && data.Payload.HangupCause != "" {
			cause = data.Payload.HangupCause
		}
		return CallHangup{Data: data, Cause: cause}, true
	default:
		return OtherEvent{Data: data}, true
	}
}

// ExtractCallControlID looks the call id up in order:
// payload.call_control_id, call_control_id, payload.call_session_id
func ExtractCallControlID(data EventData) (string, bool) {
	if data.Payload != nil && data.Payload.CallControlID != "" {
		return data.Payload.CallControlID, true
	}
	if data.CallControlID != "" {
		return data.CallControlID, true
	}
	if data.Payload != nil && data.Payload.CallSessionID != "" {
		return data.Payload.CallSessionID, true
	}
	return "", false
}
