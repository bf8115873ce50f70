package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jcyag/ai-news-daily/internal/config"
	"github.com/jcyag/ai-news-daily/internal/news"
)

const hnAPIBase = "https://hacker-news.firebaseio.com/v0"

// HackerNews reads the top-stories board from the official Firebase API.
type HackerNews struct {
	apiBase    string
	topStories int
	maxItems   int
	client     *http.Client
}

// NewHackerNews creates the Hacker News adapter.
func NewHackerNews(cfg config.HackerNewsConfig, timeout time.Duration, maxItems int) *HackerNews {
	top := cfg.TopStories
	if top <= 0 {
		top = 100
	}
	return &HackerNews{
		apiBase:    hnAPIBase,
		topStories: top,
		maxItems:   maxItems,
		client:     newHTTPClient(timeout),
	}
}

func (h *HackerNews) ID() string   { return "hackernews" }
func (h *HackerNews) Name() string { return "Hacker News" }

// Fetch lists top story IDs and resolves their details concurrently.
// Individual story failures are dropped silently; only a failure to list
// the board is an error.
func (h *HackerNews) Fetch(ctx context.Context) ([]news.Item, error) {
	body, err := fetchBody(ctx, h.client, h.apiBase+"/topstories.json")
	if err != nil {
		return nil, err
	}

	var ids []int64
	if err := json.Unmarshal(body, &ids); err != nil {
		return nil, fmt.Errorf("decoding story list: %w", err)
	}
	if len(ids) > h.topStories {
		ids = ids[:h.topStories]
	}

	var mu sync.Mutex
	var items []news.Item

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(10)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			it, ok := h.fetchStory(gctx, id)
			if !ok {
				return nil
			}
			mu.Lock()
			items = append(items, it)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].RawScore > items[j].RawScore
	})
	if len(items) > h.maxItems {
		items = items[:h.maxItems]
	}
	return items, nil
}

type hnStory struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Time        int64  `json:"time"`
	Text        string `json:"text"`
	Score       float64 `json:"score"`
	Descendants int    `json:"descendants"`
}

func (h *HackerNews) fetchStory(ctx context.Context, id int64) (news.Item, bool) {
	body, err := fetchBody(ctx, h.client, fmt.Sprintf("%s/item/%d.json", h.apiBase, id))
	if err != nil {
		return news.Item{}, false
	}

	var story hnStory
	if err := json.Unmarshal(body, &story); err != nil || story.Type != "story" {
		return news.Item{}, false
	}

	storyURL := story.URL
	if storyURL == "" {
		storyURL = fmt.Sprintf("https://news.ycombinator.com/item?id=%d", id)
	}

	summary := stripHTML(story.Text)
	if story.Descendants > 0 {
		if summary != "" {
			summary += " "
		}
		summary += fmt.Sprintf("(%d comments)", story.Descendants)
	}

	var pub *time.Time
	if story.Time > 0 {
		t := time.Unix(story.Time, 0).UTC()
		pub = &t
	}

	it := news.Item{
		Title:       story.Title,
		URL:         storyURL,
		SourceID:    h.ID(),
		SourceName:  h.Name(),
		PublishedAt: pub,
		Summary:     summary,
		RawScore:    story.Score,
	}
	return it, it.Clean()
}
