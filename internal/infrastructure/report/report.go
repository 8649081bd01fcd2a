package report

import (
	"fmt"
	"strings"

	"FeedSieve/internal/domain"
)

// Origin markers used in the run report, mirroring the email format.
const (
	MarkKeywordPass = "✅"
	MarkOraclePass  = "🤖✅"
	MarkKeywordDrop = "❌"
	MarkOracleDrop  = "🤖❌"
)

// BuildText renders the plain-text run report: PASSED and REMOVED entries
// grouped by source and tagged with their classification origin. A
// diagnostic block for a fatally failed run and an optional workflow run
// link are appended at the end.
func BuildText(results []domain.SourceResult, diagnostic, runLink string) string {
	var b strings.Builder

	for _, res := range results {
		fmt.Fprintf(&b, "--- %s ---\n\n", res.Source)

		b.WriteString("PASSED PAPERS:\n")
		if !res.Passed() {
			b.WriteString("No papers found matching your filters.\n\n")
		} else {
			writeEntries(&b, MarkKeywordPass, res.KeywordPassed)
			writeEntries(&b, MarkOraclePass, res.OraclePassed)
			b.WriteString("\n")
		}

		b.WriteString("REMOVED PAPERS:\n")
		if !res.Removed() {
			b.WriteString("No papers were filtered out.\n\n")
		} else {
			writeEntries(&b, MarkKeywordDrop, res.KeywordRemoved)
			writeEntries(&b, MarkOracleDrop, res.OracleRemoved)
			b.WriteString("\n")
		}
	}

	if diagnostic != "" {
		fmt.Fprintf(&b, "\n\n%s\nPlease check the workflow logs for more details.\n", diagnostic)
	}

	if runLink != "" {
		fmt.Fprintf(&b, "\n\n---\n\nCheck the workflow run for details:\n%s\n", runLink)
	}

	return b.String()
}

func writeEntries(b *strings.Builder, marker string, entries []domain.Entry) {
	for _, entry := range entries {
		title := entry.Title
		if title == "" {
			title = "No title"
		}
		link := entry.Link
		if link == "" {
			link = "No link"
		}
		fmt.Fprintf(b, "  %s %s (%s)\n", marker, title, link)
	}
}

// FeedFileName returns the output file name for one source's filtered
// feed, with path-hostile characters replaced.
func FeedFileName(base, source string) string {
	safe := strings.NewReplacer(" ", "_", "/", "_").Replace(source)
	return fmt.Sprintf("%s_%s.xml", base, safe)
}
