package ports

import (
	"context"
	"time"

	"FeedSieve/internal/domain"
)

// FeedFetcher pulls one source's raw feed bytes and its parsed entries.
type FeedFetcher interface {
	Fetch(ctx context.Context, url string) (raw []byte, entries []domain.Entry, err error)
}

// Model is one concrete text-classification backend identity (primary or
// fallback). Generate returns the raw structured response text.
type Model interface {
	Name() string
	Generate(ctx context.Context, prompt string) ([]byte, error)
}

// Oracle adjudicates a batch prompt into structured decisions, recovering
// transient failures internally up to its attempt budget.
type Oracle interface {
	Call(ctx context.Context, prompt string) ([]domain.OracleDecision, error)
}

// StateStore persists the run checkpoint token between executions.
type StateStore interface {
	Read(ctx context.Context) (string, error)
	Write(ctx context.Context, token string) error
}

// ReportPublisher stores run artifacts: per-source filtered feeds and the
// human-readable run report.
type ReportPublisher interface {
	PublishFeed(ctx context.Context, source string, xml []byte) error
	PublishRun(ctx context.Context, results []domain.SourceResult, diagnostic string) error
}

// Scheduler controls when runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
