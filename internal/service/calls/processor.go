package calls

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nkiryanov/zifybot/internal/apperrors"
	"github.com/nkiryanov/zifybot/internal/logger"
	"github.com/nkiryanov/zifybot/internal/metrics"
	"github.com/nkiryanov/zifybot/internal/repository"
)

var ErrMalformedEvent = errors.New("malformed webhook event")

type AgentStarter interface {
	StartAgent(ctx context.Context, callControlID string) error
	MissingForAgent() []string
}

type ProcessorConfig struct {
	// Start the agent only on the delivery that moved the call from 'dialing' to 'answered'
	// Off: agent is started on every 'call.answered' delivery
	StartAgentOnce bool
}

// Processor applies provider call events
type Processor struct {
	agent    AgentStarter
	sessions repository.CallSessionRepo
	cfg      ProcessorConfig

	logger  logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewProcessor(cfg ProcessorConfig, agent AgentStarter, sessions repository.CallSessionRepo, l logger.Logger, m *metrics.Metrics) *Processor {
	return &Processor{
		agent:    agent,
		sessions: sessions,
		cfg:      cfg,
		logger:   l,
		metrics:  m,
		now:      time.Now,
	}
}

// Handle parses and applies one webhook delivery
func (p *Processor) Handle(ctx context.Context, body []byte) error {
	event, ok := ParseEvent(body)
	if !ok {
		p.metrics.WebhookEvent("malformed")
		return ErrMalformedEvent
	}

	return p.Process(ctx, event)
}

func (p *Processor) Process(ctx context.Context, event Event) error {
	p.metrics.WebhookEvent(event.EventType())

	switch e := event.(type) {
	case CallAnswered:
		return p.answered(ctx, e)
	case CallHangup:
		return p.hangup(ctx, e)
	case OtherEvent:
		p.logger.Info("Other event type", "event_type", e.Data.EventType, "event_id", e.Data.ID)
		return nil
	default:
		return fmt.Errorf("unknown event %T", event)
	}
}

func (p *Processor) answered(ctx context.Context, e CallAnswered) error {
	id, ok := ExtractCallControlID(e.Data)
	if !ok {
		p.logger.Warn("No call_control_id found in answered event", "event_id", e.Data.ID)
		return nil
	}
	log := p.logger.With("call_control_id", id)

	// Not configured: the call stays 'dialing', so a redelivery after the fix may still start the agent
	if missing := p.agent.MissingForAgent(); len(missing) > 0 {
		p.metrics.AgentStart(metrics.ResultMisconfigured)
		return fmt.Errorf("agent not configured: %w", &apperrors.MisconfiguredError{Missing: missing})
	}

	transitioned, err := p.sessions.MarkAnswered(ctx, id, p.now())
	if err != nil {
		log.Error("Failed to record answered call", "error", err)
		transitioned = true
	}

	if p.cfg.StartAgentOnce && !transitioned {
		p.metrics.AgentStart(metrics.ResultSkipped)
		log.Info("Agent start skipped, call was answered before")
		return nil
	}

	err = p.agent.StartAgent(ctx, id)
	switch {
	case errors.Is(err, apperrors.ErrMisconfigured):
		p.metrics.AgentStart(metrics.ResultMisconfigured)
		return fmt.Errorf("agent not configured: %w", err)
	case errors.Is(err, apperrors.ErrProviderAuth):
		p.metrics.AgentStart(metrics.ResultUnauthorized)
		return fmt.Errorf("failed to start agent: %w", err)
	case err != nil:
		p.metrics.AgentStart(metrics.ResultFailed)
		return fmt.Errorf("failed to start agent: %w", err)
	}

	p.metrics.AgentStart(metrics.ResultOK)
	log.Info("AI assistant started")
	return nil
}

func (p *Processor) hangup(ctx context.Context, e CallHangup) error {
	id, ok := ExtractCallControlID(e.Data)
	if !ok {
		p.logger.Warn("Call ended without call_control_id", "cause", e.Cause, "event_id", e.Data.ID)
		return nil
	}

	p.logger.Info("Call ended", "cause", e.Cause, "call_control_id", id)

	err := p.sessions.MarkEnded(ctx, id, e.Cause, p.now())
	if err != nil {
		return fmt.Errorf("failed to record ended call: %w", err)
	}
	return nil
}
