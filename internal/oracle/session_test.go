package oracle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FeedSieve/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// stubModel replays a scripted sequence of responses.
type stubModel struct {
	name      string
	responses []response
	calls     int
}

type response struct {
	raw []byte
	err error
}

func (m *stubModel) Name() string { return m.name }

func (m *stubModel) Generate(context.Context, string) ([]byte, error) {
	idx := m.calls
	m.calls++
	if idx >= len(m.responses) {
		idx = len(m.responses) - 1
	}
	return m.responses[idx].raw, m.responses[idx].err
}

const validResponse = `[{"title": "Alpha", "decision": "YES"}, {"title": "Beta", "decision": "NO"}]`

func newTestSession(primary, fallback *stubModel) (*Session, *int) {
	var slept int
	s := NewSession(primary, fallback, Config{MaxAttempts: 3, Backoff: time.Millisecond}, testLogger())
	s.sleep = func(context.Context, time.Duration) error {
		slept++
		return nil
	}
	return s, &slept
}

func TestSession_SuccessShortCircuits(t *testing.T) {
	t.Parallel()

	primary := &stubModel{name: "primary", responses: []response{{raw: []byte(validResponse)}}}
	s, slept := newTestSession(primary, &stubModel{name: "fallback"})

	decisions, err := s.Call(context.Background(), "prompt")
	require.NoError(t, err)

	assert.Equal(t, []domain.OracleDecision{
		{Title: "Alpha", Decision: "YES"},
		{Title: "Beta", Decision: "NO"},
	}, decisions)
	assert.Equal(t, 1, primary.calls)
	assert.Zero(t, *slept)
	assert.True(t, s.OnPrimary())
}

func TestSession_MalformedResponseRetried(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"not JSON":            `the articles look fine`,
		"object not list":     `{"title": "Alpha", "decision": "YES"}`,
		"null":                `null`,
		"non-object elements": `["YES", "NO"]`,
	}

	for name, malformed := range tests {
		t.Run(name, func(t *testing.T) {
			primary := &stubModel{name: "primary", responses: []response{
				{raw: []byte(malformed)},
				{raw: []byte(validResponse)},
			}}
			s, slept := newTestSession(primary, &stubModel{name: "fallback"})

			decisions, err := s.Call(context.Background(), "prompt")
			require.NoError(t, err)
			assert.Len(t, decisions, 2)
			assert.Equal(t, 2, primary.calls)
			assert.Equal(t, 1, *slept)
		})
	}
}

func TestSession_QuotaDowngradeGrantsExtraAttempt(t *testing.T) {
	t.Parallel()

	// Quota error on attempt 1, two fallback failures, success on the
	// final (fourth) attempt: the downgrade grants one extra attempt.
	primary := &stubModel{name: "primary", responses: []response{
		{err: fmt.Errorf("quota: %w", ErrQuotaExhausted)},
	}}
	fallback := &stubModel{name: "fallback", responses: []response{
		{err: errors.New("transient")},
		{err: errors.New("transient")},
		{raw: []byte(validResponse)},
	}}
	s, slept := newTestSession(primary, fallback)

	decisions, err := s.Call(context.Background(), "prompt")
	require.NoError(t, err)

	assert.Len(t, decisions, 2)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 3, fallback.calls)
	assert.Equal(t, 3, *slept)
	assert.False(t, s.OnPrimary())
	assert.Equal(t, "fallback", s.ModelName())
}

func TestSession_DowngradeIsMonotonic(t *testing.T) {
	t.Parallel()

	quota := response{err: fmt.Errorf("quota: %w", ErrQuotaExhausted)}
	primary := &stubModel{name: "primary", responses: []response{quota}}
	fallback := &stubModel{name: "fallback", responses: []response{quota, quota, quota}}
	s, _ := newTestSession(primary, fallback)

	_, err := s.Call(context.Background(), "prompt")
	require.ErrorIs(t, err, ErrExhausted)

	// One downgrade only: further quota errors retry the same fallback.
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 3, fallback.calls)
	assert.Equal(t, "fallback", s.ModelName())
	assert.False(t, s.OnPrimary())
}

func TestSession_ExhaustionAfterBudget(t *testing.T) {
	t.Parallel()

	primary := &stubModel{name: "primary", responses: []response{{err: errors.New("down")}}}
	s, slept := newTestSession(primary, &stubModel{name: "fallback"})

	_, err := s.Call(context.Background(), "prompt")
	require.ErrorIs(t, err, ErrExhausted)

	assert.Equal(t, 3, primary.calls, "non-quota failures never downgrade")
	assert.Equal(t, 2, *slept, "no wait after the final attempt")
	assert.True(t, s.OnPrimary())
}

func TestSession_DowngradePersistsAcrossCalls(t *testing.T) {
	t.Parallel()

	primary := &stubModel{name: "primary", responses: []response{
		{err: fmt.Errorf("quota: %w", ErrQuotaExhausted)},
	}}
	fallback := &stubModel{name: "fallback", responses: []response{{raw: []byte(validResponse)}}}
	s, _ := newTestSession(primary, fallback)

	_, err := s.Call(context.Background(), "prompt")
	require.NoError(t, err)
	require.False(t, s.OnPrimary())

	_, err = s.Call(context.Background(), "prompt")
	require.NoError(t, err)

	assert.Equal(t, 1, primary.calls, "later calls start on the fallback")
	assert.Equal(t, 2, fallback.calls)
}

func TestSession_WaitCancellation(t *testing.T) {
	t.Parallel()

	primary := &stubModel{name: "primary", responses: []response{{err: errors.New("down")}}}
	s := NewSession(primary, nil, Config{MaxAttempts: 3, Backoff: time.Hour}, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Call(ctx, "prompt")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, primary.calls)
}
