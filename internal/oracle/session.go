package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"FeedSieve/internal/domain"
	"FeedSieve/internal/ports"
)

var (
	// ErrQuotaExhausted signals the backend refused a call for quota
	// reasons. Model implementations wrap it so the session can downgrade.
	ErrQuotaExhausted = errors.New("oracle quota exhausted")
	// ErrExhausted reports that the attempt budget ran out.
	ErrExhausted = errors.New("oracle attempts exhausted")
)

const (
	defaultMaxAttempts = 3
	defaultBackoff     = 60 * time.Second
)

// Config holds the retry tunables of a session.
type Config struct {
	// MaxAttempts is the per-call attempt budget before the session
	// reports exhaustion.
	MaxAttempts int
	// Backoff is the fixed delay between attempts. The delay is not
	// exponential; the longer default respects upstream rate limits.
	Backoff time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxAttempts < 1 {
		c.MaxAttempts = defaultMaxAttempts
	}
	if c.Backoff <= 0 {
		c.Backoff = defaultBackoff
	}
	return c
}

// Session wraps a primary and a fallback model with retry and
// quota-exhaustion handling. A quota error while on the primary model
// switches the session to the fallback once, irreversibly, and grants one
// extra attempt in the call that hit the quota. A further quota error on
// the fallback keeps retrying the same fallback identity.
type Session struct {
	primary   ports.Model
	fallback  ports.Model
	current   ports.Model
	onPrimary bool
	cfg       Config
	logger    *slog.Logger
	sleep     func(ctx context.Context, d time.Duration) error
}

var _ ports.Oracle = (*Session)(nil)

// NewSession builds a session starting on the primary model.
func NewSession(primary, fallback ports.Model, cfg Config, logger *slog.Logger) *Session {
	return &Session{
		primary:   primary,
		fallback:  fallback,
		current:   primary,
		onPrimary: true,
		cfg:       cfg.withDefaults(),
		logger:    logger,
		sleep:     sleepContext,
	}
}

// OnPrimary reports whether the session still uses the primary model.
func (s *Session) OnPrimary() bool {
	return s.onPrimary
}

// ModelName returns the identity of the currently active model.
func (s *Session) ModelName() string {
	if s.current == nil {
		return ""
	}
	return s.current.Name()
}

// Call sends the prompt to the active model and returns its structured
// decisions. The first syntactically valid response short-circuits the
// remaining attempts; after the budget is spent it returns ErrExhausted.
func (s *Session) Call(ctx context.Context, prompt string) ([]domain.OracleDecision, error) {
	if s.current == nil {
		return nil, fmt.Errorf("%w: no model configured", ErrExhausted)
	}

	budget := s.cfg.MaxAttempts
	attempts := 0
	var lastErr error

	for attempts < budget {
		s.logger.Info("oracle attempt",
			"attempt", attempts+1, "budget", budget, "model", s.current.Name())

		raw, err := s.current.Generate(ctx, prompt)
		if err == nil {
			decisions, perr := parseDecisions(raw)
			if perr == nil {
				return decisions, nil
			}
			err = perr
		}
		lastErr = err

		s.logger.Warn("oracle attempt failed",
			"attempt", attempts+1, "model", s.current.Name(), "error", err)

		if errors.Is(err, ErrQuotaExhausted) && s.onPrimary && s.fallback != nil {
			s.logger.Warn("quota exceeded, switching to fallback model",
				"fallback", s.fallback.Name())
			s.current = s.fallback
			s.onPrimary = false
			budget++
		}

		attempts++
		if attempts < budget {
			s.logger.Info("retrying oracle call", "backoff", s.cfg.Backoff)
			if werr := s.sleep(ctx, s.cfg.Backoff); werr != nil {
				return nil, fmt.Errorf("oracle retry wait: %w", werr)
			}
		}
	}

	return nil, fmt.Errorf("%w after %d attempts: %v", ErrExhausted, attempts, lastErr)
}

// parseDecisions validates the response shape: anything that is not a JSON
// array of objects is a retryable failure, not a success.
func parseDecisions(raw []byte) ([]domain.OracleDecision, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, fmt.Errorf("oracle response is not a list: %w", err)
	}
	if elems == nil {
		return nil, errors.New("oracle response is not a list")
	}

	decisions := make([]domain.OracleDecision, 0, len(elems))
	for i, elem := range elems {
		var fields map[string]any
		if err := json.Unmarshal(elem, &fields); err != nil {
			return nil, fmt.Errorf("oracle response element %d is not an object: %w", i, err)
		}
		title, _ := fields["title"].(string)
		decision, _ := fields["decision"].(string)
		decisions = append(decisions, domain.OracleDecision{Title: title, Decision: decision})
	}

	return decisions, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
