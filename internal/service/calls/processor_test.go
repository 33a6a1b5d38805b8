package calls_test

import (
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/zifybot/internal/apperrors"
	"github.com/nkiryanov/zifybot/internal/logger"
	"github.com/nkiryanov/zifybot/internal/metrics"
	"github.com/nkiryanov/zifybot/internal/mocks"
	"github.com/nkiryanov/zifybot/internal/service/calls"
)

const answeredBody = `{"data":{"id":"ev-1","event_type":"call.answered","payload":{"call_control_id":"ctrl-1"}}}`

func newProcessor(t *testing.T, cfg calls.ProcessorConfig) (*calls.Processor, *mocks.MockAgentStarter, *mocks.MockCallSessionRepo) {
	t.Helper()
	ctrl := gomock.NewController(t)
	agent := mocks.NewMockAgentStarter(ctrl)
	sessions := mocks.NewMockCallSessionRepo(ctrl)

	p := calls.NewProcessor(cfg, agent, sessions, logger.NewNoOpLogger(), metrics.New(prometheus.NewRegistry()))
	return p, agent, sessions
}

func TestProcessor_Handle(t *testing.T) {
	t.Run("malformed body", func(t *testing.T) {
		p, _, _ := newProcessor(t, calls.ProcessorConfig{})

		require.ErrorIs(t, p.Handle(t.Context(), []byte(`{"nodata":true}`)), calls.ErrMalformedEvent)
		require.ErrorIs(t, p.Handle(t.Context(), []byte(`{`)), calls.ErrMalformedEvent)
	})

	t.Run("answered starts agent", func(t *testing.T) {
		p, agent, sessions := newProcessor(t, calls.ProcessorConfig{})

		agent.EXPECT().MissingForAgent().Return(nil)
		sessions.EXPECT().MarkAnswered(gomock.Any(), "ctrl-1", gomock.Any()).Return(true, nil)
		agent.EXPECT().StartAgent(gomock.Any(), "ctrl-1").Return(nil).Times(1)

		require.NoError(t, p.Handle(t.Context(), []byte(answeredBody)))
	})

	t.Run("answered id from session id", func(t *testing.T) {
		p, agent, sessions := newProcessor(t, calls.ProcessorConfig{})

		agent.EXPECT().MissingForAgent().Return(nil)
		sessions.EXPECT().MarkAnswered(gomock.Any(), "sess-1", gomock.Any()).Return(true, nil)
		agent.EXPECT().StartAgent(gomock.Any(), "sess-1").Return(nil)

		err := p.Handle(t.Context(), []byte(`{"data":{"event_type":"call.answered","payload":{"call_session_id":"sess-1"}}}`))

		require.NoError(t, err)
	})

	t.Run("answered without id is acknowledged", func(t *testing.T) {
		// Neither store nor agent may be touched
		p, _, _ := newProcessor(t, calls.ProcessorConfig{})

		err := p.Handle(t.Context(), []byte(`{"data":{"event_type":"call.answered","payload":{}}}`))

		require.NoError(t, err)
	})

	t.Run("duplicate delivery starts agent again by default", func(t *testing.T) {
		p, agent, sessions := newProcessor(t, calls.ProcessorConfig{})

		gomock.InOrder(
			sessions.EXPECT().MarkAnswered(gomock.Any(), "ctrl-1", gomock.Any()).Return(true, nil),
			sessions.EXPECT().MarkAnswered(gomock.Any(), "ctrl-1", gomock.Any()).Return(false, nil),
		)
		agent.EXPECT().MissingForAgent().Return(nil).Times(2)
		agent.EXPECT().StartAgent(gomock.Any(), "ctrl-1").Return(nil).Times(2)

		require.NoError(t, p.Handle(t.Context(), []byte(answeredBody)))
		require.NoError(t, p.Handle(t.Context(), []byte(answeredBody)))
	})

	t.Run("duplicate delivery skipped when start once", func(t *testing.T) {
		p, agent, sessions := newProcessor(t, calls.ProcessorConfig{StartAgentOnce: true})

		agent.EXPECT().MissingForAgent().Return(nil).Times(2)
		gomock.InOrder(
			sessions.EXPECT().MarkAnswered(gomock.Any(), "ctrl-1", gomock.Any()).Return(true, nil),
			sessions.EXPECT().MarkAnswered(gomock.Any(), "ctrl-1", gomock.Any()).Return(false, nil),
		)
		agent.EXPECT().StartAgent(gomock.Any(), "ctrl-1").Return(nil).Times(1)

		require.NoError(t, p.Handle(t.Context(), []byte(answeredBody)))
		require.NoError(t, p.Handle(t.Context(), []byte(answeredBody)))
	})

	t.Run("store failure still starts agent", func(t *testing.T) {
		p, agent, sessions := newProcessor(t, calls.ProcessorConfig{StartAgentOnce: true})

		agent.EXPECT().MissingForAgent().Return(nil)
		sessions.EXPECT().MarkAnswered(gomock.Any(), "ctrl-1", gomock.Any()).Return(false, errors.New("db is down"))
		agent.EXPECT().StartAgent(gomock.Any(), "ctrl-1").Return(nil)

		require.NoError(t, p.Handle(t.Context(), []byte(answeredBody)))
	})

	t.Run("agent not configured", func(t *testing.T) {
		// Call must stay 'dialing': neither store nor provider is touched
		p, agent, _ := newProcessor(t, calls.ProcessorConfig{})

		agent.EXPECT().MissingForAgent().Return([]string{calls.SettingAssistantID})

		err := p.Handle(t.Context(), []byte(answeredBody))

		var misconfigured *apperrors.MisconfiguredError
		require.ErrorAs(t, err, &misconfigured)
		require.Equal(t, []string{calls.SettingAssistantID}, misconfigured.Missing)
	})

	t.Run("redelivery after config fix starts agent when start once", func(t *testing.T) {
		p, agent, sessions := newProcessor(t, calls.ProcessorConfig{StartAgentOnce: true})

		gomock.InOrder(
			agent.EXPECT().MissingForAgent().Return([]string{calls.SettingAssistantID}),
			agent.EXPECT().MissingForAgent().Return(nil),
		)
		sessions.EXPECT().MarkAnswered(gomock.Any(), "ctrl-1", gomock.Any()).Return(true, nil).Times(1)
		agent.EXPECT().StartAgent(gomock.Any(), "ctrl-1").Return(nil).Times(1)

		require.ErrorIs(t, p.Handle(t.Context(), []byte(answeredBody)), apperrors.ErrMisconfigured)
		require.NoError(t, p.Handle(t.Context(), []byte(answeredBody)))
	})

	t.Run("agent misconfigured at start time", func(t *testing.T) {
		p, agent, sessions := newProcessor(t, calls.ProcessorConfig{})

		agent.EXPECT().MissingForAgent().Return(nil)
		sessions.EXPECT().MarkAnswered(gomock.Any(), "ctrl-1", gomock.Any()).Return(true, nil)
		agent.EXPECT().StartAgent(gomock.Any(), "ctrl-1").
			Return(&apperrors.MisconfiguredError{Missing: []string{calls.SettingAPIKey}})

		require.ErrorIs(t, p.Handle(t.Context(), []byte(answeredBody)), apperrors.ErrMisconfigured)
	})

	t.Run("agent start fails", func(t *testing.T) {
		p, agent, sessions := newProcessor(t, calls.ProcessorConfig{})

		agent.EXPECT().MissingForAgent().Return(nil)
		sessions.EXPECT().MarkAnswered(gomock.Any(), "ctrl-1", gomock.Any()).Return(true, nil)
		agent.EXPECT().StartAgent(gomock.Any(), "ctrl-1").Return(&apperrors.ProviderError{Message: "call has ended"})

		err := p.Handle(t.Context(), []byte(answeredBody))

		require.ErrorIs(t, err, apperrors.ErrProvider)
	})

	t.Run("hangup records cause", func(t *testing.T) {
		p, _, sessions := newProcessor(t, calls.ProcessorConfig{})

		sessions.EXPECT().MarkEnded(gomock.Any(), "ctrl-1", "normal_clearing", gomock.Any()).Return(nil)

		err := p.Handle(t.Context(), []byte(`{"data":{"event_type":"call.hangup","payload":{"call_control_id":"ctrl-1","hangup_cause":"normal_clearing"}}}`))

		require.NoError(t, err)
	})

	t.Run("hangup default cause", func(t *testing.T) {
		p, _, sessions := newProcessor(t, calls.ProcessorConfig{})

		sessions.EXPECT().MarkEnded(gomock.Any(), "ctrl-1", "Unknown", gomock.Any()).Return(nil)

		err := p.Handle(t.Context(), []byte(`{"data":{"event_type":"call.hangup","call_control_id":"ctrl-1"}}`))

		require.NoError(t, err)
	})

	t.Run("hangup store failure", func(t *testing.T) {
		p, _, sessions := newProcessor(t, calls.ProcessorConfig{})

		sessions.EXPECT().MarkEnded(gomock.Any(), "ctrl-1", gomock.Any(), gomock.Any()).Return(errors.New("db is down"))

		err := p.Handle(t.Context(), []byte(`{"data":{"event_type":"call.hangup","call_control_id":"ctrl-1"}}`))

		require.Error(t, err)
	})

	t.Run("other events only logged", func(t *testing.T) {
		p, _, _ := newProcessor(t, calls.ProcessorConfig{})

		err := p.Handle(t.Context(), []byte(`{"data":{"event_type":"call.initiated","payload":{"call_control_id":"ctrl-1"}}}`))

		require.NoError(t, err)
	})
}
