package app

import (
	"context"
	"log/slog"

	"FeedSieve/internal/classifier"
	"FeedSieve/internal/config"
	"FeedSieve/internal/feedfilter"
	"FeedSieve/internal/infrastructure/feedio"
	"FeedSieve/internal/infrastructure/gemini"
	"FeedSieve/internal/infrastructure/report"
	"FeedSieve/internal/infrastructure/scheduler"
	"FeedSieve/internal/infrastructure/state"
	"FeedSieve/internal/logging"
	"FeedSieve/internal/oracle"
	"FeedSieve/internal/ports"
	"FeedSieve/internal/rules"
	"FeedSieve/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg    config.Config
	runner *usecase.Runner
	logger *slog.Logger
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	registry := rules.NewRegistry()
	for _, rc := range cfg.Rulesets {
		registry.Register(rules.Ruleset{
			Name:    rc.Name,
			Match:   rules.MatchMode(rc.Match),
			Include: rc.Include,
			Exclude: rc.Exclude,
			Prompt:  rc.Prompt,
		})
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Fetcher: feedio.NewFetcher(nil),
		Keyword: classifier.NewKeywordClassifier(baseLogger.With("component", "classifier.keyword")),
		Batch:   classifier.NewBatchClassifier(baseLogger.With("component", "classifier.batch")),
		Filter:  feedfilter.New(baseLogger.With("component", "feedfilter")),
		Logger:  baseLogger.With("component", "pipeline"),
	})

	var factory usecase.OracleFactory
	if cfg.Oracle.APIKey != "" {
		oracleCfg := oracle.Config{
			MaxAttempts: cfg.Oracle.MaxAttempts,
			Backoff:     cfg.Oracle.Backoff(),
		}
		sessionLogger := baseLogger.With("component", "oracle")
		factory = func() ports.Oracle {
			primary := gemini.NewClient(cfg.Oracle.Endpoint, cfg.Oracle.PrimaryModel, cfg.Oracle.APIKey)
			fallback := gemini.NewClient(cfg.Oracle.Endpoint, cfg.Oracle.FallbackModel, cfg.Oracle.APIKey)
			return oracle.NewSession(primary, fallback, oracleCfg, sessionLogger)
		}
	} else {
		baseLogger.Warn("oracle API key not set, undecided entries will be rejected")
	}

	publisher := report.NewWriter(report.Options{
		Dir:          cfg.Output.Dir,
		BaseFilename: cfg.Output.BaseFilename,
		HTML:         cfg.Output.HTML,
		DisplayZones: cfg.Output.DisplayZones,
		RunLink:      config.RunLink(),
	}, baseLogger.With("component", "report"))

	runner := usecase.NewRunner(usecase.RunnerDeps{
		Pipeline:  pipeline,
		Rules:     registry,
		State:     state.NewFileStore(cfg.State.File),
		Publisher: publisher,
		Oracle:    factory,
		Logger:    baseLogger.With("component", "runner"),
	}, cfg.Sources, cfg.Oracle.SessionScope, cfg.Pipeline.OnOracleExhaustion)

	return &Application{cfg: cfg, runner: runner, logger: baseLogger}
}

// Run executes a single pipeline pass, or blocks on the interval
// scheduler when it is enabled.
func (a *Application) Run(ctx context.Context) error {
	if a.runner == nil {
		return nil
	}

	if !a.cfg.Scheduler.Enabled {
		return a.runner.Run(ctx)
	}

	driver := scheduler.NewIntervalScheduler(a.cfg.Scheduler.Interval())
	loop := usecase.NewScheduler(driver, a.runner)
	if err := loop.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	return loop.Stop(context.Background())
}
