package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"FeedSieve/internal/config"
	"FeedSieve/internal/domain"
	"FeedSieve/internal/infrastructure/state"
	"FeedSieve/internal/oracle"
	"FeedSieve/internal/ports"
	"FeedSieve/internal/rules"
)

// OracleFactory builds a classification session. The runner calls it once
// per run or once per source depending on the configured session scope; a
// nil factory disables the oracle stage (undecided entries are then
// rejected fail-closed).
type OracleFactory func() ports.Oracle

// RunnerDeps wires the orchestration collaborators.
type RunnerDeps struct {
	Pipeline  *Pipeline
	Rules     *rules.Registry
	State     ports.StateStore
	Publisher ports.ReportPublisher
	Oracle    OracleFactory
	Logger    *slog.Logger
}

// Runner processes all configured sources sequentially, resuming from the
// checkpointed source after a failed run and checkpointing again on the
// first fatal failure.
type Runner struct {
	pipeline     *Pipeline
	rules        *rules.Registry
	state        ports.StateStore
	publisher    ports.ReportPublisher
	oracle       OracleFactory
	logger       *slog.Logger
	sources      []config.SourceConfig
	sessionScope string
	onExhaustion string
}

// NewRunner constructs the run orchestrator.
func NewRunner(deps RunnerDeps, sources []config.SourceConfig, sessionScope, onExhaustion string) *Runner {
	return &Runner{
		pipeline:     deps.Pipeline,
		rules:        deps.Rules,
		state:        deps.State,
		publisher:    deps.Publisher,
		oracle:       deps.Oracle,
		logger:       deps.Logger,
		sources:      sources,
		sessionScope: sessionScope,
		onExhaustion: onExhaustion,
	}
}

// Run executes one full pass over the configured sources. The run report
// is published even when the run fails, with a diagnostic block describing
// the failed source appended to the results accumulated so far.
func (r *Runner) Run(ctx context.Context) error {
	start := r.resumeIndex(ctx)

	var shared ports.Oracle
	if r.sessionScope == config.ScopeRun && r.oracle != nil {
		shared = r.oracle()
	}

	var results []domain.SourceResult
	var diagnostic string
	var fatal error

	for _, src := range r.sources[start:] {
		rs, err := r.rules.Resolve(src.Ruleset)
		if err != nil {
			fatal = r.recordFailure(ctx, src.Name, fmt.Errorf("source %s: %w", src.Name, err))
			diagnostic = failureDiagnostic(src.Name, err)
			break
		}

		session := shared
		if r.sessionScope == config.ScopePerSource && r.oracle != nil {
			session = r.oracle()
		}

		result, err := r.pipeline.ProcessSource(ctx, src, rs, session)
		if err != nil {
			if errors.Is(err, oracle.ErrExhausted) && r.onExhaustion == config.ExhaustSkipSource {
				r.logger.Error("oracle exhausted, skipping source", "source", src.Name, "error", err)
				results = append(results, result)
				if perr := r.publisher.PublishFeed(ctx, src.Name, result.FilteredXML); perr != nil {
					fatal = r.recordFailure(ctx, src.Name, perr)
					diagnostic = failureDiagnostic(src.Name, perr)
					break
				}
				continue
			}
			fatal = r.recordFailure(ctx, src.Name, err)
			diagnostic = failureDiagnostic(src.Name, err)
			break
		}

		if err := r.publisher.PublishFeed(ctx, src.Name, result.FilteredXML); err != nil {
			fatal = r.recordFailure(ctx, src.Name, err)
			diagnostic = failureDiagnostic(src.Name, err)
			break
		}
		results = append(results, result)
	}

	if fatal == nil {
		if err := r.state.Write(ctx, state.TokenSuccess); err != nil {
			r.logger.Warn("cannot update state file", "error", err)
		}
	}

	if err := r.publisher.PublishRun(ctx, results, diagnostic); err != nil {
		r.logger.Error("cannot publish run report", "error", err)
		if fatal == nil {
			fatal = err
		}
	}

	return fatal
}

// resumeIndex maps the checkpoint token to the first source to process.
func (r *Runner) resumeIndex(ctx context.Context) int {
	token, err := r.state.Read(ctx)
	if err != nil {
		r.logger.Warn("cannot read state file, starting from the beginning", "error", err)
		return 0
	}

	if token == "" || token == state.TokenSuccess {
		return 0
	}

	for i, src := range r.sources {
		if src.Name == token {
			r.logger.Info("resuming from checkpointed source", "source", token)
			return i
		}
	}

	r.logger.Warn("checkpointed source not configured, starting from the beginning", "source", token)
	return 0
}

func (r *Runner) recordFailure(ctx context.Context, source string, err error) error {
	r.logger.Error("source processing failed", "source", source, "error", err)
	if werr := r.state.Write(ctx, source); werr != nil {
		r.logger.Warn("cannot checkpoint failed source", "source", source, "error", werr)
	}
	return fmt.Errorf("process source %s: %w", source, err)
}

func failureDiagnostic(source string, err error) string {
	return fmt.Sprintf("An error occurred while processing source %q:\n%v", source, err)
}
