package source

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jcyag/ai-news-daily/internal/config"
	"github.com/jcyag/ai-news-daily/internal/news"
)

const tophubMaxRows = 50

var heatRe = regexp.MustCompile(`([\d.]+)\s*万?`)

// Tophub scrapes one hot-list board (WeChat articles, Weibo trending) from
// tophub.today. Boards are plain HTML tables of rank / title / heat.
type Tophub struct {
	board  config.TophubBoard
	client *http.Client
}

// NewTophub creates an adapter for one configured board.
func NewTophub(board config.TophubBoard, timeout time.Duration) *Tophub {
	return &Tophub{board: board, client: newHTTPClient(timeout)}
}

func (t *Tophub) ID() string   { return t.board.ID }
func (t *Tophub) Name() string { return t.board.Name }

// Fetch downloads and parses the board page. Boards show live trends, so
// items carry the collection time as their timestamp.
func (t *Tophub) Fetch(ctx context.Context) ([]news.Item, error) {
	body, err := fetchBody(ctx, t.client, t.board.URL)
	if err != nil {
		return nil, err
	}
	return t.parseBoard(body, time.Now().UTC())
}

func (t *Tophub) parseBoard(html []byte, now time.Time) ([]news.Item, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing board page: %w", err)
	}

	var items []news.Item
	doc.Find("table tr").EachWithBreak(func(i int, row *goquery.Selection) bool {
		if i >= tophubMaxRows {
			return false
		}
		link := row.Find("td a").First()
		if link.Length() == 0 {
			return true
		}

		title := strings.TrimSpace(link.Text())
		if len([]rune(title)) < 2 {
			return true
		}
		// Board pages mix in promoted rows.
		if strings.Contains(title, "广告") || strings.Contains(title, "推荐") {
			return true
		}

		href := link.AttrOr("href", "")
		switch {
		case strings.HasPrefix(href, "http"):
		case strings.HasPrefix(href, "/"):
			href = "https://tophub.today" + href
		default:
			return true
		}

		heat := parseHeat(row.Find("td").Last().Text())

		collected := now
		it := news.Item{
			Title:       title,
			URL:         href,
			SourceID:    t.board.ID,
			SourceName:  t.board.Name,
			PublishedAt: &collected,
			Summary:     t.board.Name + "热榜",
			RawScore:    heat,
		}
		if it.Clean() {
			items = append(items, it)
		}
		return true
	})

	return items, nil
}

// parseHeat reads heat values like "1234", "123.4万", "1,234".
func parseHeat(text string) float64 {
	text = strings.ReplaceAll(strings.TrimSpace(text), ",", "")
	m := heatRe.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	val, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	if strings.Contains(text, "万") {
		val *= 10000
	}
	return val
}
