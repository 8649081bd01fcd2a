package report

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"FeedSieve/internal/domain"
)

var resultsTmpl = template.Must(template.New("results").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Filtered article results</title>
</head>
<body>
<h1>Filtered article results</h1>
{{range .Sources}}
<h2>{{.Name}}</h2>
<h3>PASSED PAPERS</h3>
{{if .Passed}}
<ul>
{{range .Passed}}<li class="passed">{{.Marker}} <a href="{{.Link}}" target="_blank">{{.Title}}</a></li>
{{end}}</ul>
{{else}}<p>No papers found matching your filters.</p>
{{end}}
<h3>REMOVED PAPERS</h3>
{{if .Removed}}
<ul>
{{range .Removed}}<li class="removed">{{.Marker}} <a href="{{.Link}}" target="_blank">{{.Title}}</a></li>
{{end}}</ul>
{{else}}<p>No papers were filtered out.</p>
{{end}}
{{end}}
{{if .Diagnostic}}<p class="diagnostic">{{.Diagnostic}}</p>{{end}}
</body>
</html>
`))

var indexTmpl = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Filtered journal feeds</title>
</head>
<body>
<h1>Filtered journal feeds</h1>
<ul>
{{range .Feeds}}<li><a href="{{.File}}" target="_blank">{{.Name}}</a></li>
{{end}}</ul>
<p><a href="filtered_results.html" target="_blank">Filter results</a></p>
{{range .Stamps}}<p class="updated">Last update ({{.Zone}}): {{.Time}}</p>
{{end}}</body>
</html>
`))

type entryView struct {
	Marker string
	Title  string
	Link   string
}

type sourceView struct {
	Name    string
	Passed  []entryView
	Removed []entryView
}

type feedLink struct {
	Name string
	File string
}

type stamp struct {
	Zone string
	Time string
}

// BuildResultsHTML renders the run report as a page with clickable links.
func BuildResultsHTML(results []domain.SourceResult, diagnostic string) ([]byte, error) {
	data := struct {
		Sources    []sourceView
		Diagnostic string
	}{Diagnostic: diagnostic}

	for _, res := range results {
		view := sourceView{Name: res.Source}
		view.Passed = append(view.Passed, entryViews(MarkKeywordPass, res.KeywordPassed)...)
		view.Passed = append(view.Passed, entryViews(MarkOraclePass, res.OraclePassed)...)
		view.Removed = append(view.Removed, entryViews(MarkKeywordDrop, res.KeywordRemoved)...)
		view.Removed = append(view.Removed, entryViews(MarkOracleDrop, res.OracleRemoved)...)
		data.Sources = append(data.Sources, view)
	}

	var buf bytes.Buffer
	if err := resultsTmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render results page: %w", err)
	}
	return buf.Bytes(), nil
}

// BuildIndexHTML renders the subscription index linking each filtered
// feed, stamped with the last-update time in the configured zones.
func BuildIndexHTML(baseName string, sources []string, now time.Time, zones []string) ([]byte, error) {
	data := struct {
		Feeds  []feedLink
		Stamps []stamp
	}{}

	for _, source := range sources {
		data.Feeds = append(data.Feeds, feedLink{
			Name: source,
			File: FeedFileName(baseName, source),
		})
	}

	for _, zone := range zones {
		loc, err := time.LoadLocation(zone)
		if err != nil {
			continue
		}
		data.Stamps = append(data.Stamps, stamp{
			Zone: zone,
			Time: now.In(loc).Format("2006-01-02 15:04:05"),
		})
	}

	var buf bytes.Buffer
	if err := indexTmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render index page: %w", err)
	}
	return buf.Bytes(), nil
}

func entryViews(marker string, entries []domain.Entry) []entryView {
	views := make([]entryView, 0, len(entries))
	for _, entry := range entries {
		views = append(views, entryView{Marker: marker, Title: entry.Title, Link: entry.Link})
	}
	return views
}
