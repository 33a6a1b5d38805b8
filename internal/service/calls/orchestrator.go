package calls

//go:generate mockgen -destination=../../mocks/calls.go -package=mocks github.com/nkiryanov/zifybot/internal/service/calls Provider,AgentStarter

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/nkiryanov/zifybot/internal/apperrors"
	"github.com/nkiryanov/zifybot/internal/logger"
	"github.com/nkiryanov/zifybot/internal/metrics"
	"github.com/nkiryanov/zifybot/internal/models"
	"github.com/nkiryanov/zifybot/internal/repository"
	"github.com/nkiryanov/zifybot/internal/service/telnyx"
)

// Names of the settings reported when a call feature is not configured
const (
	SettingAPIKey       = "TELNYX_API_KEY"
	SettingConnectionID = "TELNYX_CONNECTION_ID"
	SettingCallerNumber = "TELNYX_PHONE_NUMBER or TELNYX_CALLER_NUMBER"
	SettingWebhookURL   = "TELNYX_WEBHOOK_URL"
	SettingAssistantID  = "AI_ASSISTANT_ID"
)

// Telephony provider
type Provider interface {
	Dial(ctx context.Context, dial telnyx.DialRequest) (models.Call, error)
	StartAIAssistant(ctx context.Context, callControlID string, assistantID string) error
}

type Config struct {
	APIKey       string
	ConnectionID string

	// Caller id. PhoneNumber wins when both set
	PhoneNumber  string
	CallerNumber string

	// Where provider delivers call events
	WebhookURL string

	AssistantID string
}

func (c Config) callerNumber() string {
	if c.PhoneNumber != "" {
		return c.PhoneNumber
	}
	return c.CallerNumber
}

// Orchestrator dials leads and hands answered calls to the voice agent
type Orchestrator struct {
	cfg      Config
	provider Provider
	sessions repository.CallSessionRepo

	logger  logger.Logger
	metrics *metrics.Metrics
}

func NewOrchestrator(cfg Config, provider Provider, sessions repository.CallSessionRepo, l logger.Logger, m *metrics.Metrics) *Orchestrator {
	return &Orchestrator{
		cfg:      cfg,
		provider: provider,
		sessions: sessions,
		logger:   l,
		metrics:  m,
	}
}

// InitiateCall dials destination once, without retries
// Returned error is *apperrors.MisconfiguredError, *apperrors.ProviderError or internal one
func (o *Orchestrator) InitiateCall(ctx context.Context, destination string, initiatedBy uuid.UUID) (models.Call, error) {
	if missing := o.missingForDial(); len(missing) > 0 {
		o.metrics.CallDialed(metrics.ResultMisconfigured)
		return models.Call{}, &apperrors.MisconfiguredError{Missing: missing}
	}

	dial := telnyx.DialRequest{
		ConnectionID: o.cfg.ConnectionID,
		To:           destination,
		From:         o.cfg.callerNumber(),
		WebhookURL:   o.cfg.WebhookURL,
	}

	call, err := o.provider.Dial(ctx, dial)
	if err != nil {
		perr := providerError(err)
		if perr.Unauthorized {
			o.metrics.CallDialed(metrics.ResultUnauthorized)
			o.logger.Error("Provider rejected credentials", "api_key", logger.Mask(o.cfg.APIKey), "error", err)
		} else {
			o.metrics.CallDialed(metrics.ResultFailed)
			o.logger.Error("Failed to initiate call", "to", destination, "error", err)
		}
		return models.Call{}, perr
	}
	o.metrics.CallDialed(metrics.ResultOK)

	session := models.CallSession{
		CallControlID: call.CallControlID,
		CallSessionID: call.CallSessionID,
		CallLegID:     call.CallLegID,
		ConnectionID:  dial.ConnectionID,
		From:          dial.From,
		To:            dial.To,
	}
	if initiatedBy != uuid.Nil {
		session.InitiatedBy = &initiatedBy
	}

	// Call is placed already, losing the record must not fail the request
	if _, err := o.sessions.SaveDialed(ctx, session); err != nil {
		o.logger.Error("Failed to record call session", "call_control_id", call.CallControlID, "error", err)
	}

	o.logger.Info("Call initiated", "call_control_id", call.CallControlID, "to", destination)
	return call, nil
}

// MissingForAgent lists unset settings StartAgent needs
func (o *Orchestrator) MissingForAgent() []string {
	var missing []string
	if o.cfg.APIKey == "" {
		missing = append(missing, SettingAPIKey)
	}
	if o.cfg.AssistantID == "" {
		missing = append(missing, SettingAssistantID)
	}
	return missing
}

// StartAgent engages the voice assistant on an answered call
func (o *Orchestrator) StartAgent(ctx context.Context, callControlID string) error {
	if missing := o.MissingForAgent(); len(missing) > 0 {
		return &apperrors.MisconfiguredError{Missing: missing}
	}

	err := o.provider.StartAIAssistant(ctx, callControlID, o.cfg.AssistantID)
	if err != nil {
		return providerError(err)
	}
	return nil
}

// Session returns the stored lifecycle of one call
func (o *Orchestrator) Session(ctx context.Context, callControlID string) (models.CallSession, error) {
	session, err := o.sessions.GetCallSession(ctx, callControlID)
	if err != nil {
		if errors.Is(err, apperrors.ErrCallSessionNotFound) {
			return session, err
		}
		return session, fmt.Errorf("can't get call session. Err: %w", err)
	}
	return session, nil
}

// Missing lists every unset setting, the assistant id included
func (o *Orchestrator) Missing() []string {
	missing := o.missingForDial()
	if o.cfg.AssistantID == "" {
		missing = append(missing, SettingAssistantID)
	}
	return missing
}

func (o *Orchestrator) missingForDial() []string {
	var missing []string

	if o.cfg.APIKey == "" {
		missing = append(missing, SettingAPIKey)
	}
	if o.cfg.ConnectionID == "" {
		missing = append(missing, SettingConnectionID)
	}
	if o.cfg.callerNumber() == "" {
		missing = append(missing, SettingCallerNumber)
	}
	if o.cfg.WebhookURL == "" {
		missing = append(missing, SettingWebhookURL)
	}

	return missing
}

// providerError converts client failures to the application error
func providerError(err error) *apperrors.ProviderError {
	var apiErr *telnyx.Error
	if !errors.As(err, &apiErr) {
		return &apperrors.ProviderError{Message: err.Error(), Err: err}
	}

	perr := &apperrors.ProviderError{
		Status:       apiErr.Status,
		Message:      apiErr.Message(),
		Unauthorized: apiErr.Code == telnyx.CodeUnauthorized,
		Err:          err,
	}
	if len(apiErr.Errors) > 0 {
		perr.Details = apiErr.Errors
	} else {
		perr.Details = apiErr.Message()
	}
	return perr
}
