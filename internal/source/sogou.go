package source

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jcyag/ai-news-daily/internal/config"
	"github.com/jcyag/ai-news-daily/internal/news"
)

const sogouSearchURL = "https://www.sogou.com/web"

// Sogou scrapes web search results for configured queries. The engine has
// aggressive anti-bot measures, so this source is strictly best-effort and
// carries the lowest trust priority.
type Sogou struct {
	searchURL string
	queries   []string
	maxItems  int
	client    *http.Client
}

// NewSogou creates the Sogou search adapter.
func NewSogou(cfg config.SogouConfig, timeout time.Duration, maxItems int) *Sogou {
	return &Sogou{
		searchURL: sogouSearchURL,
		queries:   cfg.Queries,
		maxItems:  maxItems,
		client:    newHTTPClient(timeout),
	}
}

func (s *Sogou) ID() string   { return "sogou" }
func (s *Sogou) Name() string { return "搜狗搜索" }

// Fetch runs each configured query and merges results, deduplicating by
// exact URL across queries.
func (s *Sogou) Fetch(ctx context.Context) ([]news.Item, error) {
	var items []news.Item
	seen := make(map[string]struct{})

	for _, query := range s.queries {
		results, err := s.search(ctx, query)
		if err != nil {
			log.Printf("[sogou] query %q failed: %v", query, err)
			continue
		}
		for _, it := range results {
			if _, dup := seen[it.URL]; dup {
				continue
			}
			seen[it.URL] = struct{}{}
			items = append(items, it)
		}
	}

	if len(items) > s.maxItems {
		items = items[:s.maxItems]
	}
	return items, nil
}

func (s *Sogou) search(ctx context.Context, query string) ([]news.Item, error) {
	q := url.Values{"query": {query}, "ie": {"utf8"}}
	body, err := fetchBody(ctx, s.client, s.searchURL+"?"+q.Encode())
	if err != nil {
		return nil, err
	}
	if bytes.Contains(body, []byte("验证码")) || bytes.Contains(bytes.ToLower(body), []byte("captcha")) {
		return nil, fmt.Errorf("captcha challenge")
	}
	return s.parseResults(body)
}

func (s *Sogou) parseResults(html []byte) ([]news.Item, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing results page: %w", err)
	}

	var items []news.Item
	doc.Find(".vrwrap, .rb").Each(func(_ int, result *goquery.Selection) {
		titleEl := result.Find("h3 a, .vr-title a, .pt a").First()
		if titleEl.Length() == 0 {
			return
		}
		title := strings.TrimSpace(titleEl.Text())
		href := titleEl.AttrOr("href", "")
		if strings.HasPrefix(href, "/link") {
			href = "https://www.sogou.com" + href
		}

		summary := strings.TrimSpace(result.Find(".space-txt, .str-text, .str_info, .ft").First().Text())
		from := strings.TrimSpace(result.Find(".news-from, .citeurl, .fb").First().Text())
		if from != "" {
			if summary != "" {
				summary += " - " + from
			} else {
				summary = from
			}
		}

		it := news.Item{
			Title:      title,
			URL:        href,
			SourceID:   s.ID(),
			SourceName: s.Name(),
			Summary:    summary,
			// Search results carry no usable timestamp or score.
		}
		if it.Clean() {
			items = append(items, it)
		}
	})

	return items, nil
}
