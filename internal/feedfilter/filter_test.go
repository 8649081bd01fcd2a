package feedfilter

import (
	"log/slog"
	"os"
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFilter() *Filter {
	return New(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	})))
}

const rssFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Journal</title>
    <item><title>Alpha</title><link>http://x/a</link></item>
    <item><title>Beta</title><link>http://x/b</link></item>
    <item><title>No link item</title></item>
  </channel>
</rss>`

const atomFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Journal</title>
  <entry><title>Alpha</title><link href="http://x/a"/></entry>
  <entry><title>Beta</title><link href="http://x/b"/></entry>
</feed>`

const rdfFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#" xmlns="http://purl.org/rss/1.0/">
  <channel rdf:about="http://x/">
    <title>Journal</title>
    <items>
      <rdf:Seq>
        <rdf:li rdf:resource="http://x/a"/>
        <rdf:li rdf:resource="http://x/b"/>
      </rdf:Seq>
    </items>
  </channel>
  <item rdf:about="http://x/a"><title>Alpha</title><link>http://x/a</link></item>
  <item rdf:about="http://x/b"><title>Beta</title><link>http://x/b</link></item>
</rdf:RDF>`

func parseDoc(t *testing.T, raw []byte) *etree.Document {
	t.Helper()
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(raw))
	return doc
}

func TestFilter_RSS(t *testing.T) {
	t.Parallel()

	out, err := testFilter().Apply([]byte(rssFeed), map[string]bool{"http://x/a": true})
	require.NoError(t, err)

	doc := parseDoc(t, out)
	items := doc.Root().SelectElement("channel").SelectElements("item")
	require.Len(t, items, 2, "passing item and linkless item survive")

	var links []string
	for _, item := range items {
		if link := item.SelectElement("link"); link != nil {
			links = append(links, link.Text())
		}
	}
	assert.Equal(t, []string{"http://x/a"}, links)
}

func TestFilter_Atom(t *testing.T) {
	t.Parallel()

	out, err := testFilter().Apply([]byte(atomFeed), map[string]bool{"http://x/b": true})
	require.NoError(t, err)

	doc := parseDoc(t, out)
	entries := doc.Root().SelectElements("entry")
	require.Len(t, entries, 1)
	assert.Equal(t, "Beta", entries[0].SelectElement("title").Text())
}

func TestFilter_RDFSequenceConsistency(t *testing.T) {
	t.Parallel()

	out, err := testFilter().Apply([]byte(rdfFeed), map[string]bool{"http://x/a": true})
	require.NoError(t, err)

	doc := parseDoc(t, out)
	root := doc.Root()

	items := childrenByLocal(root, "item")
	require.Len(t, items, 1)
	about, ok := attrByLocal(items[0], "about")
	require.True(t, ok)
	assert.Equal(t, "http://x/a", about)

	channel := childByLocal(root, "channel")
	require.NotNil(t, channel)
	seq := childByLocal(childByLocal(channel, "items"), "Seq")
	require.NotNil(t, seq)

	refs := childrenByLocal(seq, "li")
	require.Len(t, refs, 1, "manifest reference for the removed item must be gone")
	resource, _ := attrByLocal(refs[0], "resource")
	assert.Equal(t, "http://x/a", resource, "surviving item keeps its manifest reference")
}

func TestFilter_UnknownDialectPassesThrough(t *testing.T) {
	t.Parallel()

	raw := []byte(`<?xml version="1.0" encoding="UTF-8"?>
<opml><outline text="Alpha" xmlUrl="http://x/a"/></opml>`)

	out, err := testFilter().Apply(raw, map[string]bool{})
	require.NoError(t, err)

	doc := parseDoc(t, out)
	assert.Equal(t, "opml", doc.Root().Tag)
	assert.Len(t, doc.Root().SelectElements("outline"), 1, "unknown dialects are never filtered")
}

func TestFilter_Idempotent(t *testing.T) {
	t.Parallel()

	passed := map[string]bool{"http://x/a": true}
	f := testFilter()

	for name, feed := range map[string]string{"rss": rssFeed, "atom": atomFeed, "rdf": rdfFeed} {
		t.Run(name, func(t *testing.T) {
			once, err := f.Apply([]byte(feed), passed)
			require.NoError(t, err)
			twice, err := f.Apply(once, passed)
			require.NoError(t, err)
			assert.Equal(t, string(once), string(twice))
		})
	}
}

func TestFilter_AddsDeclarationWhenMissing(t *testing.T) {
	t.Parallel()

	raw := []byte(`<rss version="2.0"><channel><title>J</title></channel></rss>`)
	out, err := testFilter().Apply(raw, map[string]bool{})
	require.NoError(t, err)
	assert.Contains(t, string(out), `<?xml version="1.0" encoding="UTF-8"?>`)
}

func TestFilter_MalformedDocument(t *testing.T) {
	t.Parallel()

	_, err := testFilter().Apply([]byte(`<rss><channel>`), map[string]bool{})
	assert.Error(t, err)
}
