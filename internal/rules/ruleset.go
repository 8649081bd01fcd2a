package rules

import "fmt"

// MatchMode selects how keyword phrases are matched against entry text.
type MatchMode string

const (
	// MatchSubstring matches a phrase anywhere inside the concatenated
	// title and summary, including inside longer words.
	MatchSubstring MatchMode = "substring"
	// MatchWordBoundary requires the phrase to sit on word boundaries and
	// checks the title before the summary.
	MatchWordBoundary MatchMode = "word-boundary"
)

// Ruleset pairs the keyword term lists with the oracle instruction for a
// class of feed sources. Exactly one ruleset is active per source while it
// is processed.
type Ruleset struct {
	Name    string
	Match   MatchMode
	Include []string
	Exclude []string
	Prompt  string
}

// Registry keeps a mapping from ruleset names to their definitions.
type Registry struct {
	rulesets map[string]Ruleset
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{rulesets: map[string]Ruleset{}}
}

// Register adds or replaces a ruleset definition.
func (r *Registry) Register(rs Ruleset) {
	if r.rulesets == nil {
		r.rulesets = map[string]Ruleset{}
	}
	if rs.Match == "" {
		rs.Match = MatchSubstring
	}
	r.rulesets[rs.Name] = rs
}

// Resolve returns a ruleset by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Ruleset, error) {
	if rs, ok := r.rulesets[name]; ok {
		return rs, nil
	}
	return Ruleset{}, fmt.Errorf("ruleset %s is not registered", name)
}
