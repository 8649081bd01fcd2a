package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"FeedSieve/internal/classifier"
	"FeedSieve/internal/config"
	"FeedSieve/internal/domain"
	"FeedSieve/internal/feedfilter"
	"FeedSieve/internal/ports"
	"FeedSieve/internal/rules"
)

// PipelineDeps wires the classification stages into the per-source
// pipeline.
type PipelineDeps struct {
	Fetcher ports.FeedFetcher
	Keyword *classifier.KeywordClassifier
	Batch   *classifier.BatchClassifier
	Filter  *feedfilter.Filter
	Logger  *slog.Logger
}

// Pipeline implements the per-source workflow: fetch, keyword stage,
// oracle stage, feed filtering.
type Pipeline struct {
	fetcher ports.FeedFetcher
	keyword *classifier.KeywordClassifier
	batch   *classifier.BatchClassifier
	filter  *feedfilter.Filter
	logger  *slog.Logger
}

// NewPipeline constructs the per-source pipeline.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		fetcher: deps.Fetcher,
		keyword: deps.Keyword,
		batch:   deps.Batch,
		filter:  deps.Filter,
		logger:  deps.Logger,
	}
}

// ProcessSource classifies one source's entries and filters its feed
// document. Every entry holds exactly one verdict before filtering. On
// oracle exhaustion the result is still complete (pending entries
// rejected, document filtered) and the error is returned alongside so the
// caller can apply its exhaustion policy.
func (p *Pipeline) ProcessSource(ctx context.Context, src config.SourceConfig, rs rules.Ruleset, oracle ports.Oracle) (domain.SourceResult, error) {
	result := domain.SourceResult{Source: src.Name}

	p.logger.Info("processing source", "source", src.Name, "url", src.URL)

	raw, entries, err := p.fetcher.Fetch(ctx, src.URL)
	if err != nil {
		return result, fmt.Errorf("fetch source %s: %w", src.Name, err)
	}

	passed := make(map[string]bool, len(entries))
	var pending []domain.Entry
	for _, entry := range entries {
		verdict, _, decided := p.keyword.Classify(entry, rs)
		if !decided {
			pending = append(pending, entry)
			continue
		}
		if verdict.Decision == domain.Pass {
			passed[entry.Link] = true
			result.KeywordPassed = append(result.KeywordPassed, entry)
		} else {
			result.KeywordRemoved = append(result.KeywordRemoved, entry)
		}
	}

	verdicts, oracleErr := p.batch.Classify(ctx, oracle, src.Name, pending, rs)
	for _, entry := range pending {
		verdict := verdicts[entry.Link]
		if verdict.Decision == domain.Pass {
			passed[entry.Link] = true
			result.OraclePassed = append(result.OraclePassed, entry)
		} else {
			result.OracleRemoved = append(result.OracleRemoved, entry)
		}
	}

	p.logger.Info("source classified",
		"source", src.Name,
		"keyword_passed", len(result.KeywordPassed),
		"oracle_passed", len(result.OraclePassed),
		"keyword_removed", len(result.KeywordRemoved),
		"oracle_removed", len(result.OracleRemoved))

	filtered, err := p.filter.Apply(raw, passed)
	if err != nil {
		return result, fmt.Errorf("filter source %s: %w", src.Name, err)
	}
	result.FilteredXML = filtered

	if oracleErr != nil {
		return result, fmt.Errorf("source %s: %w", src.Name, oracleErr)
	}
	return result, nil
}
