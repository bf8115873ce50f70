package source

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/jcyag/ai-news-daily/internal/news"
)

const (
	hfPapersURL   = "https://huggingface.co/papers"
	arxivAPIURL   = "http://export.arxiv.org/api/query"
	hfPapersLimit = 20

	// Trending papers carry no vote counts we can read; a fixed high score
	// reflects the curation behind the board.
	hfDefaultScore = 100
)

var paperIDRe = regexp.MustCompile(`^/papers/(\d+\.\d+)`)

// HuggingFace scrapes the daily trending-papers board and resolves paper
// details from the arXiv Atom API.
type HuggingFace struct {
	papersURL string
	arxivURL  string
	maxItems  int
	client    *http.Client
}

// NewHuggingFace creates the Hugging Face Papers adapter.
func NewHuggingFace(timeout time.Duration, maxItems int) *HuggingFace {
	return &HuggingFace{
		papersURL: hfPapersURL,
		arxivURL:  arxivAPIURL,
		maxItems:  maxItems,
		client:    newHTTPClient(timeout),
	}
}

func (h *HuggingFace) ID() string   { return "huggingface" }
func (h *HuggingFace) Name() string { return "Hugging Face Papers" }

// Fetch scrapes paper IDs from the board page, then batch-queries arXiv.
func (h *HuggingFace) Fetch(ctx context.Context) ([]news.Item, error) {
	body, err := fetchBody(ctx, h.client, h.papersURL)
	if err != nil {
		return nil, err
	}

	ids, err := parsePaperIDs(body)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return h.fetchArxivDetails(ctx, ids)
}

// parsePaperIDs extracts unique arXiv IDs from /papers/NNNN.NNNNN links.
func parsePaperIDs(html []byte) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing papers page: %w", err)
	}

	seen := make(map[string]struct{})
	var ids []string
	doc.Find("a[href^='/papers/']").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		m := paperIDRe.FindStringSubmatch(href)
		if m == nil {
			return
		}
		if _, dup := seen[m[1]]; dup {
			return
		}
		seen[m[1]] = struct{}{}
		ids = append(ids, m[1])
	})

	if len(ids) > hfPapersLimit {
		ids = ids[:hfPapersLimit]
	}
	return ids, nil
}

func (h *HuggingFace) fetchArxivDetails(ctx context.Context, ids []string) ([]news.Item, error) {
	query := fmt.Sprintf("%s?id_list=%s&max_results=%d", h.arxivURL, strings.Join(ids, ","), len(ids))
	body, err := fetchBody(ctx, h.client, query)
	if err != nil {
		return nil, fmt.Errorf("arxiv query: %w", err)
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing arxiv response: %w", err)
	}

	var items []news.Item
	for _, entry := range feed.Items {
		if len(items) >= h.maxItems {
			break
		}
		if it, ok := h.parseArxivEntry(entry); ok {
			items = append(items, it)
		}
	}
	return items, nil
}

func (h *HuggingFace) parseArxivEntry(entry *gofeed.Item) (news.Item, bool) {
	summary := strings.ReplaceAll(entrySummary(entry), "\n", " ")

	if len(entry.Authors) > 0 {
		var names []string
		for _, a := range entry.Authors {
			names = append(names, a.Name)
			if len(names) == 3 {
				break
			}
		}
		author := strings.Join(names, ", ")
		if len(entry.Authors) > 3 {
			author += " et al."
		}
		summary = author + " — " + summary
	}

	// entry.GUID is like http://arxiv.org/abs/2402.12345v1; link to the
	// Hugging Face discussion page instead, which is friendlier.
	arxivID := entry.GUID
	if i := strings.LastIndex(arxivID, "/abs/"); i >= 0 {
		arxivID = arxivID[i+len("/abs/"):]
	}
	if i := strings.LastIndex(arxivID, "v"); i > 0 {
		arxivID = arxivID[:i]
	}

	it := news.Item{
		Title:       strings.ReplaceAll(entry.Title, "\n", " "),
		URL:         "https://huggingface.co/papers/" + arxivID,
		SourceID:    h.ID(),
		SourceName:  h.Name(),
		PublishedAt: entryTime(entry),
		Summary:     summary,
		RawScore:    hfDefaultScore,
	}
	return it, it.Clean()
}
