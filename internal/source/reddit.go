package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jcyag/ai-news-daily/internal/config"
	"github.com/jcyag/ai-news-daily/internal/news"
)

// Reddit reads a subreddit's hot listing via the OAuth API using
// client-credentials authentication.
type Reddit struct {
	cfg      config.RedditConfig
	tokenURL string
	apiBase  string
	maxItems int
	client   *http.Client
}

// NewReddit creates the Reddit adapter.
func NewReddit(cfg config.RedditConfig, timeout time.Duration, maxItems int) *Reddit {
	if cfg.Subreddit == "" {
		cfg.Subreddit = "MachineLearning"
	}
	return &Reddit{
		cfg:      cfg,
		tokenURL: "https://www.reddit.com/api/v1/access_token",
		apiBase:  "https://oauth.reddit.com",
		maxItems: maxItems,
		client:   newHTTPClient(timeout),
	}
}

func (r *Reddit) ID() string   { return "reddit" }
func (r *Reddit) Name() string { return "Reddit r/" + r.cfg.Subreddit }

// Fetch authenticates and pulls the hot listing. Missing credentials are
// not an error; the source just yields nothing.
func (r *Reddit) Fetch(ctx context.Context) ([]news.Item, error) {
	if !r.cfg.IsConfigured() {
		return nil, nil
	}

	token, err := r.authenticate(ctx)
	if err != nil {
		return nil, fmt.Errorf("reddit auth: %w", err)
	}
	return r.fetchHot(ctx, token)
}

func (r *Reddit) authenticate(ctx context.Context) (string, error) {
	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.tokenURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(r.cfg.ClientID, r.cfg.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", r.cfg.UserAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token endpoint returned %s", resp.Status)
	}

	var result struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	if result.AccessToken == "" {
		return "", fmt.Errorf("empty access token")
	}
	return result.AccessToken, nil
}

type redditPost struct {
	Title      string  `json:"title"`
	URL        string  `json:"url"`
	Permalink  string  `json:"permalink"`
	IsSelf     bool    `json:"is_self"`
	Stickied   bool    `json:"stickied"`
	Selftext   string  `json:"selftext"`
	FlairText  string  `json:"link_flair_text"`
	Ups        int     `json:"ups"`
	Comments   int     `json:"num_comments"`
	Score      float64 `json:"score"`
	CreatedUTC float64 `json:"created_utc"`
}

func (r *Reddit) fetchHot(ctx context.Context, token string) ([]news.Item, error) {
	endpoint := fmt.Sprintf("%s/r/%s/hot?limit=%d", r.apiBase, r.cfg.Subreddit, r.maxItems)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", r.cfg.UserAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("listing endpoint returned %s", resp.Status)
	}

	var listing struct {
		Data struct {
			Children []struct {
				Data redditPost `json:"data"`
			} `json:"children"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("decoding listing: %w", err)
	}

	var items []news.Item
	for _, child := range listing.Data.Children {
		if it, ok := r.parsePost(child.Data); ok {
			items = append(items, it)
		}
	}
	return items, nil
}

func (r *Reddit) parsePost(post redditPost) (news.Item, bool) {
	if post.Stickied {
		return news.Item{}, false
	}

	postURL := post.URL
	if post.IsSelf || postURL == "" {
		postURL = "https://reddit.com" + post.Permalink
	}

	var parts []string
	if post.FlairText != "" {
		parts = append(parts, "["+post.FlairText+"]")
	}
	if post.Selftext != "" {
		text := post.Selftext
		if runes := []rune(text); len(runes) > 300 {
			text = string(runes[:300])
		}
		parts = append(parts, strings.Join(strings.Fields(text), " "))
	}
	parts = append(parts, fmt.Sprintf("↑%d | %d comments", post.Ups, post.Comments))

	var pub *time.Time
	if post.CreatedUTC > 0 {
		t := time.Unix(int64(post.CreatedUTC), 0).UTC()
		pub = &t
	}

	it := news.Item{
		Title:       post.Title,
		URL:         postURL,
		SourceID:    r.ID(),
		SourceName:  r.Name(),
		PublishedAt: pub,
		Summary:     strings.Join(parts, " "),
		RawScore:    post.Score,
	}
	return it, it.Clean()
}
