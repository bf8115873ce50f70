package source

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/jcyag/ai-news-daily/internal/config"
	"github.com/jcyag/ai-news-daily/internal/news"
)

// RSS pulls one RSS/Atom feed and maps its entries to news items.
type RSS struct {
	feed     config.Feed
	client   *http.Client
	maxItems int
}

// NewRSS creates an adapter for a single configured feed.
func NewRSS(feed config.Feed, timeout time.Duration, maxItems int) *RSS {
	return &RSS{feed: feed, client: newHTTPClient(timeout), maxItems: maxItems}
}

func (r *RSS) ID() string   { return r.feed.ID }
func (r *RSS) Name() string { return r.feed.Name }

// Fetch downloads and parses the feed. Malformed entries are dropped, not
// surfaced.
func (r *RSS) Fetch(ctx context.Context) ([]news.Item, error) {
	body, err := fetchBody(ctx, r.client, r.feed.URL)
	if err != nil {
		return nil, err
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing feed %s: %w", r.feed.URL, err)
	}

	var items []news.Item
	for _, entry := range feed.Items {
		if len(items) >= r.maxItems {
			break
		}
		it := news.Item{
			Title:       entry.Title,
			URL:         entry.Link,
			SourceID:    r.feed.ID,
			SourceName:  r.feed.Name,
			PublishedAt: entryTime(entry),
			Summary:     stripHTML(entrySummary(entry)),
		}
		if it.Clean() {
			items = append(items, it)
		}
	}
	return items, nil
}

func entryTime(entry *gofeed.Item) *time.Time {
	if entry.PublishedParsed != nil {
		t := entry.PublishedParsed.UTC()
		return &t
	}
	if entry.UpdatedParsed != nil {
		t := entry.UpdatedParsed.UTC()
		return &t
	}
	return nil
}

func entrySummary(entry *gofeed.Item) string {
	if entry.Description != "" {
		return entry.Description
	}
	return entry.Content
}

// stripHTML removes tags, decodes common entities, and normalizes
// whitespace.
func stripHTML(text string) string {
	var result strings.Builder
	inTag := false
	for _, r := range text {
		if r == '<' {
			inTag = true
			result.WriteRune(' ')
			continue
		}
		if r == '>' {
			inTag = false
			continue
		}
		if !inTag {
			result.WriteRune(r)
		}
	}

	s := result.String()
	s = strings.ReplaceAll(s, "&nbsp;", " ")
	s = strings.ReplaceAll(s, "&amp;", "&")
	s = strings.ReplaceAll(s, "&lt;", "<")
	s = strings.ReplaceAll(s, "&gt;", ">")
	s = strings.ReplaceAll(s, "&quot;", `"`)
	s = strings.ReplaceAll(s, "&#39;", "'")

	return strings.Join(strings.Fields(s), " ")
}
