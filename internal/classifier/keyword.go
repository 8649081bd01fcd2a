package classifier

import (
	"log/slog"
	"regexp"
	"strings"

	"FeedSieve/internal/domain"
	"FeedSieve/internal/rules"
)

// Match describes which phrase decided a keyword verdict. Field is set in
// word-boundary mode only ("title" or "summary").
type Match struct {
	Phrase string
	List   string
	Field  string
}

// KeywordClassifier is the first filtering stage: case-insensitive phrase
// matching against the inclusion and exclusion term lists. The exclusion
// list always takes priority; an entry matching both lists is rejected.
type KeywordClassifier struct {
	logger   *slog.Logger
	patterns map[string]*regexp.Regexp
}

// NewKeywordClassifier builds the keyword stage. Compiled word-boundary
// patterns are cached across entries.
func NewKeywordClassifier(logger *slog.Logger) *KeywordClassifier {
	return &KeywordClassifier{
		logger:   logger,
		patterns: map[string]*regexp.Regexp{},
	}
}

// Classify decides PASS or REJECT for one entry, or reports decided=false
// when neither list matches and the entry must go to the oracle stage.
func (c *KeywordClassifier) Classify(entry domain.Entry, rs rules.Ruleset) (domain.Verdict, Match, bool) {
	var match Match
	var found bool

	switch rs.Match {
	case rules.MatchWordBoundary:
		match, found = c.matchWords(entry, rs.Exclude, "exclude")
		if !found {
			match, found = c.matchWords(entry, rs.Include, "include")
		}
	default:
		content := strings.ToLower(entry.Title) + " " + strings.ToLower(entry.Summary)
		match, found = matchSubstring(content, rs.Exclude, "exclude")
		if !found {
			match, found = matchSubstring(content, rs.Include, "include")
		}
	}

	if !found {
		return domain.Verdict{}, Match{}, false
	}

	c.observe(entry, match)

	decision := domain.Pass
	if match.List == "exclude" {
		decision = domain.Reject
	}
	return domain.Verdict{Decision: decision, Origin: domain.OriginKeyword}, match, true
}

func matchSubstring(content string, phrases []string, list string) (Match, bool) {
	for _, phrase := range phrases {
		if strings.Contains(content, strings.ToLower(phrase)) {
			return Match{Phrase: phrase, List: list}, true
		}
	}
	return Match{}, false
}

func (c *KeywordClassifier) matchWords(entry domain.Entry, phrases []string, list string) (Match, bool) {
	for _, phrase := range phrases {
		re := c.pattern(phrase)
		if re.MatchString(entry.Title) {
			return Match{Phrase: phrase, List: list, Field: "title"}, true
		}
		if re.MatchString(entry.Summary) {
			return Match{Phrase: phrase, List: list, Field: "summary"}, true
		}
	}
	return Match{}, false
}

func (c *KeywordClassifier) pattern(phrase string) *regexp.Regexp {
	if re, ok := c.patterns[phrase]; ok {
		return re
	}
	re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(phrase) + `\b`)
	c.patterns[phrase] = re
	return re
}

// observe emits the matched phrase for observability; it never changes the
// verdict.
func (c *KeywordClassifier) observe(entry domain.Entry, m Match) {
	if c.logger == nil {
		return
	}
	c.logger.Debug("keyword match",
		"title", entry.Title,
		"phrase", m.Phrase,
		"list", m.List,
		"field", m.Field)
}
