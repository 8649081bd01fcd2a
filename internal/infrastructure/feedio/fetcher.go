package feedio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"FeedSieve/internal/domain"
	"FeedSieve/internal/ports"
)

// Fetcher downloads feed documents over HTTP and extracts their entries.
type Fetcher struct {
	client *http.Client
}

var _ ports.FeedFetcher = (*Fetcher)(nil)

// NewFetcher wires an HTTP client; a nil client gets a 30s timeout default.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Fetcher{client: client}
}

// Fetch downloads one source feed and parses its entries. Configured URLs
// are trimmed of surrounding whitespace and angle brackets before use.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, []domain.Entry, error) {
	target := strings.Trim(rawURL, "<> ")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "FeedSieve/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("request feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("feed returned %s", resp.Status)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("read feed body: %w", err)
	}

	entries, err := ParseEntries(raw)
	if err != nil {
		return nil, nil, err
	}

	return raw, entries, nil
}

// ParseEntries converts raw feed bytes into classification entries. The
// dialect is auto-detected by the parser.
func ParseEntries(raw []byte) ([]domain.Entry, error) {
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	entries := make([]domain.Entry, 0, len(feed.Items))
	for _, item := range feed.Items {
		entries = append(entries, domain.Entry{
			Title:   item.Title,
			Summary: item.Description,
			Link:    item.Link,
		})
	}
	return entries, nil
}
