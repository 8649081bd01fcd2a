package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"FeedSieve/internal/domain"
	"FeedSieve/internal/ports"
	"FeedSieve/internal/rules"
)

// BatchClassifier is the second filtering stage: all entries the keyword
// stage left undecided are adjudicated in one batched oracle call per feed
// source. The stage is fail-closed: whenever the oracle cannot produce a
// verdict for a pending entry, the entry is rejected with ORACLE origin.
type BatchClassifier struct {
	logger *slog.Logger
}

// NewBatchClassifier builds the oracle stage.
func NewBatchClassifier(logger *slog.Logger) *BatchClassifier {
	return &BatchClassifier{logger: logger}
}

// reviewItem is the serialized shape of one pending entry in the request.
type reviewItem struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

// Classify assigns an ORACLE-origin verdict, keyed by link, to every
// pending entry. A non-nil error reports total oracle exhaustion; the
// returned map is complete even then, with every pending entry rejected.
func (b *BatchClassifier) Classify(ctx context.Context, oracle ports.Oracle, source string, pending []domain.Entry, rs rules.Ruleset) (map[string]domain.Verdict, error) {
	verdicts := make(map[string]domain.Verdict, len(pending))
	if len(pending) == 0 {
		return verdicts, nil
	}

	if oracle == nil {
		b.logger.Warn("oracle not configured, rejecting undecided entries",
			"source", source, "pending", len(pending))
		rejectAll(verdicts, pending)
		return verdicts, nil
	}

	prompt, err := buildPrompt(rs, pending)
	if err != nil {
		rejectAll(verdicts, pending)
		return verdicts, fmt.Errorf("build oracle prompt for %s: %w", source, err)
	}

	b.logger.Info("batch processing undecided entries",
		"source", source, "pending", len(pending))

	decisions, err := oracle.Call(ctx, prompt)
	if err != nil {
		rejectAll(verdicts, pending)
		return verdicts, fmt.Errorf("oracle batch for %s: %w", source, err)
	}

	resolved := make([]bool, len(pending))
	for _, d := range decisions {
		idx := -1
		for i, entry := range pending {
			if !resolved[i] && entry.Title == d.Title {
				idx = i
				break
			}
		}
		if idx < 0 {
			b.logger.Debug("oracle returned unknown title", "source", source, "title", d.Title)
			continue
		}
		resolved[idx] = true

		decision := domain.Reject
		if strings.EqualFold(strings.TrimSpace(d.Decision), "YES") {
			decision = domain.Pass
		}
		verdicts[pending[idx].Link] = domain.Verdict{Decision: decision, Origin: domain.OriginOracle}
	}

	// Entries the oracle omitted from an otherwise valid response are
	// rejected rather than left without a verdict.
	for i, entry := range pending {
		if resolved[i] {
			continue
		}
		b.logger.Warn("oracle response omitted entry, rejecting",
			"source", source, "title", entry.Title)
		verdicts[entry.Link] = domain.Verdict{Decision: domain.Reject, Origin: domain.OriginOracle}
	}

	return verdicts, nil
}

func buildPrompt(rs rules.Ruleset, pending []domain.Entry) (string, error) {
	items := make([]reviewItem, 0, len(pending))
	for _, entry := range pending {
		items = append(items, reviewItem{Title: entry.Title, Summary: entry.Summary})
	}

	serialized, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal review items: %w", err)
	}

	return rs.Prompt + "\nHere is the list of articles:\n" + string(serialized), nil
}

func rejectAll(verdicts map[string]domain.Verdict, pending []domain.Entry) {
	for _, entry := range pending {
		verdicts[entry.Link] = domain.Verdict{Decision: domain.Reject, Origin: domain.OriginOracle}
	}
}
