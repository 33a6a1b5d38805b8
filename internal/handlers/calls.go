package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nkiryanov/zifybot/internal/apperrors"
	"github.com/nkiryanov/zifybot/internal/handlers/render"
	"github.com/nkiryanov/zifybot/internal/handlers/userctx"
	"github.com/nkiryanov/zifybot/internal/logger"
	"github.com/nkiryanov/zifybot/internal/models"
)

const (
	msgNotConfigured = "Telnyx is not configured. Missing required environment variables."
	msgConfigHelp    = "Please add these variables to your .env file"

	msgProviderAuth      = "Telnyx authentication failed"
	msgProviderAuthError = "Invalid or missing API key. Please check your TELNYX_API_KEY in .env file"
	msgProviderAuthHint  = "Make sure your API key is correct and has the necessary permissions"
)

type callLeadRequest struct {
	DestinationNumber string `json:"destinationNumber" validate:"required,e164"`
}

func (callLeadRequest) ValidationMessage() string {
	return "destinationNumber is required and must be in E.164 format"
}

func handleCallLead(callService callService, l logger.Logger) http.Handler {
	type response struct {
		Call models.Call `json:"call"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, err := render.BindAndValidate[callLeadRequest](w, r)
		if err != nil {
			return
		}

		var initiatedBy uuid.UUID
		if payload, ok := userctx.FromContext(r.Context()); ok {
			initiatedBy = payload.UserID
		}

		call, err := callService.InitiateCall(r.Context(), req.DestinationNumber, initiatedBy)

		var (
			misconfigured *apperrors.MisconfiguredError
			providerErr   *apperrors.ProviderError
		)

		switch {
		case err == nil:
			render.Success(w, http.StatusOK, "Call initiated successfully", response{Call: call})
		case errors.As(err, &misconfigured):
			render.Fail(w, http.StatusInternalServerError, render.Envelope{
				Message:          msgNotConfigured,
				MissingVariables: misconfigured.Missing,
				Help:             msgConfigHelp,
			})
		case errors.Is(err, apperrors.ErrProviderAuth):
			env := render.Envelope{
				Message: msgProviderAuth,
				Error:   msgProviderAuthError,
				Hint:    msgProviderAuthHint,
			}
			if errors.As(err, &providerErr) {
				env.Details = providerErr.Details
			}
			render.Fail(w, http.StatusUnauthorized, env)
		case errors.As(err, &providerErr):
			render.Fail(w, http.StatusInternalServerError, render.Envelope{
				Message: "Failed to initiate call",
				Error:   providerErr.Message,
			})
		default:
			l.Error("Failed to initiate call", "error", err)
			render.Error(w, http.StatusInternalServerError, "Failed to initiate call")
		}
	})
}

func handleGetCallSession(callService callService, l logger.Logger) http.Handler {
	type session struct {
		CallControlID string           `json:"callControlId"`
		CallSessionID string           `json:"callSessionId,omitempty"`
		CallLegID     string           `json:"callLegId,omitempty"`
		From          string           `json:"from"`
		To            string           `json:"to"`
		Phase         models.CallPhase `json:"phase"`
		HangupCause   string           `json:"hangupCause,omitempty"`
		InitiatedBy   *uuid.UUID       `json:"initiatedBy,omitempty"`
		CreatedAt     time.Time        `json:"createdAt"`
		AnsweredAt    *time.Time       `json:"answeredAt,omitempty"`
		EndedAt       *time.Time       `json:"endedAt,omitempty"`
	}
	type response struct {
		Session session `json:"session"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "callControlId")

		s, err := callService.Session(r.Context(), id)
		if err == nil && !canReadSession(r, s) {
			// Others' calls look the same as unknown ones
			err = apperrors.ErrCallSessionNotFound
		}

		switch {
		case err == nil:
			render.Success(w, http.StatusOK, "", response{Session: session{
				CallControlID: s.CallControlID,
				CallSessionID: s.CallSessionID,
				CallLegID:     s.CallLegID,
				From:          s.From,
				To:            s.To,
				Phase:         s.Phase,
				HangupCause:   s.HangupCause,
				InitiatedBy:   s.InitiatedBy,
				CreatedAt:     s.CreatedAt,
				AnsweredAt:    s.AnsweredAt,
				EndedAt:       s.EndedAt,
			}})
		case errors.Is(err, apperrors.ErrCallSessionNotFound):
			render.Error(w, http.StatusNotFound, "Call session not found")
		default:
			l.Error("Failed to get call session", "call_control_id", id, "error", err)
			render.Error(w, http.StatusInternalServerError, "Failed to fetch call session")
		}
	})
}

// Admins read any session, users only the calls they placed
func canReadSession(r *http.Request, s models.CallSession) bool {
	payload, ok := userctx.FromContext(r.Context())
	if !ok {
		return false
	}
	if payload.Role == models.RoleAdmin {
		return true
	}
	return s.InitiatedBy != nil && *s.InitiatedBy == payload.UserID
}
