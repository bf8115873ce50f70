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

	"github.com/mmcdole/gofeed"

	"github.com/jcyag/ai-news-daily/internal/config"
	"github.com/jcyag/ai-news-daily/internal/news"
)

const (
	tweetsPerUser      = 5
	nitterDefaultScore = 80
)

// Nitter reads Twitter timelines through the RSS gateway of whichever
// mirror instance currently answers. Mirrors die often; failing to find a
// live one is reported as an error and the collector moves on.
type Nitter struct {
	instances []string
	users     []string
	client    *http.Client
}

// NewNitter creates the Nitter adapter.
func NewNitter(cfg config.NitterConfig, timeout time.Duration) *Nitter {
	return &Nitter{
		instances: cfg.Instances,
		users:     cfg.Users,
		client:    newHTTPClient(timeout),
	}
}

func (n *Nitter) ID() string   { return "twitter" }
func (n *Nitter) Name() string { return "Twitter (via Nitter)" }

// Fetch probes for a live instance, then pulls each user's RSS. Per-user
// failures are logged and skipped.
func (n *Nitter) Fetch(ctx context.Context) ([]news.Item, error) {
	if len(n.instances) == 0 || len(n.users) == 0 {
		return nil, nil
	}

	instance := n.findWorkingInstance(ctx)
	if instance == "" {
		return nil, fmt.Errorf("no nitter instance reachable")
	}
	log.Printf("[nitter] using instance %s", instance)

	var items []news.Item
	for _, user := range n.users {
		userItems, err := n.fetchUser(ctx, instance, user)
		if err != nil {
			log.Printf("[nitter] @%s failed: %v", user, err)
			continue
		}
		items = append(items, userItems...)
	}
	return items, nil
}

func (n *Nitter) findWorkingInstance(ctx context.Context) string {
	for _, instance := range n.instances {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, instance, nil)
		if err != nil {
			continue
		}
		req.Header.Set("User-Agent", browserUserAgent)
		resp, err := n.client.Do(req)
		if err != nil {
			continue
		}
		resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			return instance
		}
	}
	return ""
}

func (n *Nitter) fetchUser(ctx context.Context, instance, user string) ([]news.Item, error) {
	body, err := fetchBody(ctx, n.client, fmt.Sprintf("%s/%s/rss", instance, user))
	if err != nil {
		return nil, err
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing rss: %w", err)
	}

	var items []news.Item
	for _, entry := range feed.Items {
		if len(items) >= tweetsPerUser {
			break
		}
		title := strings.Join(strings.Fields(entry.Title), " ")
		if runes := []rune(title); len(runes) > 100 {
			title = string(runes[:97]) + "..."
		}

		it := news.Item{
			Title:       "@" + user + ": " + title,
			URL:         rewriteToTwitter(entry.Link, instance),
			SourceID:    n.ID(),
			SourceName:  "Twitter @" + user,
			PublishedAt: entryTime(entry),
			Summary:     stripHTML(entry.Description),
			RawScore:    nitterDefaultScore,
		}
		if it.Clean() {
			items = append(items, it)
		}
	}
	return items, nil
}

// rewriteToTwitter swaps the mirror host for twitter.com so digest links
// outlive the mirror.
func rewriteToTwitter(link, instance string) string {
	u, err := url.Parse(link)
	if err != nil {
		return link
	}
	iu, err := url.Parse(instance)
	if err != nil {
		return link
	}
	if u.Host == iu.Host {
		u.Host = "twitter.com"
		u.Scheme = "https"
		u.Fragment = ""
	}
	return u.String()
}
