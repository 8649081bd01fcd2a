package classifier

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FeedSieve/internal/domain"
	"FeedSieve/internal/rules"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

func TestKeywordClassifier_Substring(t *testing.T) {
	t.Parallel()

	rs := rules.Ruleset{
		Match:   rules.MatchSubstring,
		Include: []string{"lattice", "superconductor"},
		Exclude: []string{"cancer", "tumor"},
	}

	tests := map[string]struct {
		entry       domain.Entry
		wantDecided bool
		wantVerdict domain.Verdict
	}{
		"inclusion match passes": {
			entry:       domain.Entry{Title: "Superconductor films", Summary: "growth study"},
			wantDecided: true,
			wantVerdict: domain.Verdict{Decision: domain.Pass, Origin: domain.OriginKeyword},
		},
		"exclusion match rejects": {
			entry:       domain.Entry{Title: "Tumor growth", Summary: "in mice"},
			wantDecided: true,
			wantVerdict: domain.Verdict{Decision: domain.Reject, Origin: domain.OriginKeyword},
		},
		"exclusion takes priority over inclusion": {
			entry:       domain.Entry{Title: "Lattice defects in cancer cells", Summary: ""},
			wantDecided: true,
			wantVerdict: domain.Verdict{Decision: domain.Reject, Origin: domain.OriginKeyword},
		},
		"no match stays undecided": {
			entry:       domain.Entry{Title: "Forest ecology", Summary: "tree rings"},
			wantDecided: false,
		},
		"summary alone can decide": {
			entry:       domain.Entry{Title: "New results", Summary: "a kagome lattice compound"},
			wantDecided: true,
			wantVerdict: domain.Verdict{Decision: domain.Pass, Origin: domain.OriginKeyword},
		},
	}

	c := NewKeywordClassifier(testLogger())
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			verdict, _, decided := c.Classify(tc.entry, rs)
			require.Equal(t, tc.wantDecided, decided)
			if tc.wantDecided {
				assert.Equal(t, tc.wantVerdict, verdict)
			}
		})
	}
}

func TestKeywordClassifier_CaseInsensitive(t *testing.T) {
	t.Parallel()

	rs := rules.Ruleset{
		Match:   rules.MatchSubstring,
		Include: []string{"ARPES"},
	}
	c := NewKeywordClassifier(testLogger())

	upper, _, decidedUpper := c.Classify(domain.Entry{Title: "ARPES study", Summary: "bands"}, rs)
	lower, _, decidedLower := c.Classify(domain.Entry{Title: "arpes study", Summary: "bands"}, rs)

	require.True(t, decidedUpper)
	require.True(t, decidedLower)
	assert.Equal(t, upper, lower)
}

func TestKeywordClassifier_WordBoundary(t *testing.T) {
	t.Parallel()

	rs := rules.Ruleset{
		Match:   rules.MatchWordBoundary,
		Include: []string{"photon"},
		Exclude: []string{"gene"},
	}
	c := NewKeywordClassifier(testLogger())

	t.Run("partial word does not match", func(t *testing.T) {
		_, _, decided := c.Classify(domain.Entry{Title: "A general overview", Summary: ""}, rs)
		assert.False(t, decided, "gene must not match inside general")
	})

	t.Run("whole word matches", func(t *testing.T) {
		verdict, match, decided := c.Classify(domain.Entry{Title: "The gene atlas", Summary: ""}, rs)
		require.True(t, decided)
		assert.Equal(t, domain.Reject, verdict.Decision)
		assert.Equal(t, "gene", match.Phrase)
		assert.Equal(t, "title", match.Field)
	})

	t.Run("title checked before summary", func(t *testing.T) {
		_, match, decided := c.Classify(domain.Entry{Title: "Photon pairs", Summary: "single photon source"}, rs)
		require.True(t, decided)
		assert.Equal(t, "title", match.Field)
	})

	t.Run("summary match reported as such", func(t *testing.T) {
		_, match, decided := c.Classify(domain.Entry{Title: "Pair generation", Summary: "single photon source"}, rs)
		require.True(t, decided)
		assert.Equal(t, "summary", match.Field)
	})
}

func TestKeywordClassifier_SubstringMatchesInsideWords(t *testing.T) {
	t.Parallel()

	rs := rules.Ruleset{
		Match:   rules.MatchSubstring,
		Exclude: []string{"gene"},
	}
	c := NewKeywordClassifier(testLogger())

	verdict, _, decided := c.Classify(domain.Entry{Title: "A general overview", Summary: ""}, rs)
	require.True(t, decided, "substring mode matches inside longer words")
	assert.Equal(t, domain.Reject, verdict.Decision)
}
