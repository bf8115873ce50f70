package enrich

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"

	"github.com/jcyag/ai-news-daily/internal/news"
)

const minExtractedLen = 100

// Result holds the results of an enrichment run.
type Result struct {
	Fetched int
	Skipped int
	Failed  int
}

// Enricher backfills empty summaries on ranked items by fetching the
// article page and extracting readable text. Strictly best-effort; an
// item that cannot be enriched goes out with whatever it had.
type Enricher struct {
	client *http.Client
}

// NewEnricher creates a new summary enricher.
func NewEnricher(timeout time.Duration) *Enricher {
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Enricher{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
	}
}

// Enrich fills in missing summaries in place. Once a domain fails it is
// not tried again within the run; a site rejecting one request will
// reject the rest too.
func (e *Enricher) Enrich(ctx context.Context, items []news.Item) *Result {
	result := &Result{}
	failedDomains := make(map[string]struct{})

	for i := range items {
		if items[i].Summary != "" {
			result.Skipped++
			continue
		}

		domain := ""
		if u, err := url.Parse(items[i].URL); err == nil {
			domain = strings.ToLower(u.Host)
		}
		if _, failed := failedDomains[domain]; failed {
			result.Failed++
			continue
		}

		text, httpErr := e.fetchArticleText(ctx, items[i].URL)
		if httpErr != nil {
			result.Failed++
			if domain != "" {
				failedDomains[domain] = struct{}{}
			}
			log.Printf("[enrich] HTTP error for %s, skipping remaining from %s", items[i].URL, domain)
			continue
		}
		if text == "" {
			result.Failed++
			log.Printf("[enrich] no extractable content from %s", items[i].URL)
			continue
		}

		if runes := []rune(text); len(runes) > news.MaxSummaryLen {
			text = string(runes[:news.MaxSummaryLen-3]) + "..."
		}
		items[i].Summary = text
		result.Fetched++
	}

	log.Printf("Enrichment complete: %d fetched, %d skipped, %d failed", result.Fetched, result.Skipped, result.Failed)
	return result
}

func (e *Enricher) fetchArticleText(ctx context.Context, articleURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, articleURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "AI-News-Daily/1.0 (news aggregator)")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", nil // connection error, not HTTP error
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", &httpError{code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil
	}

	parsedURL, _ := url.Parse(articleURL)
	article, err := readability.FromReader(strings.NewReader(string(body)), parsedURL)
	if err != nil {
		return "", nil
	}

	text := strings.Join(strings.Fields(article.TextContent), " ")
	if len(text) > minExtractedLen {
		return text, nil
	}
	return "", nil
}

type httpError struct {
	code int
}

func (e *httpError) Error() string {
	return http.StatusText(e.code)
}
