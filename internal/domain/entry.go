package domain

// Entry is a core entity describing one article read from a journal feed.
// Entries are immutable once parsed; the link identifies an entry for
// filtering, the title correlates oracle responses back to entries.
type Entry struct {
	Title   string
	Summary string
	Link    string
}

// Decision is the binary outcome of classification.
type Decision string

const (
	Pass   Decision = "pass"
	Reject Decision = "reject"
)

// Origin records which pipeline stage produced a verdict.
type Origin string

const (
	OriginKeyword Origin = "keyword"
	OriginOracle  Origin = "oracle"
)

// Verdict pairs a decision with the stage that made it. Every entry holds
// exactly one verdict before the feed filter runs.
type Verdict struct {
	Decision Decision
	Origin   Origin
}

// OracleDecision is one element of the oracle's structured response.
type OracleDecision struct {
	Title    string `json:"title"`
	Decision string `json:"decision"`
}

// SourceResult carries everything the pipeline produced for one feed
// source: the filtered document bytes and the classified entries
// partitioned by (pass/reject) x (keyword/oracle) origin.
type SourceResult struct {
	Source         string
	FilteredXML    []byte
	KeywordPassed  []Entry
	OraclePassed   []Entry
	KeywordRemoved []Entry
	OracleRemoved  []Entry
}

// Passed reports whether any entry survived filtering for this source.
func (r SourceResult) Passed() bool {
	return len(r.KeywordPassed)+len(r.OraclePassed) > 0
}

// Removed reports whether any entry was filtered out for this source.
func (r SourceResult) Removed() bool {
	return len(r.KeywordRemoved)+len(r.OracleRemoved) > 0
}
