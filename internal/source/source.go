// Package source contains one adapter per upstream news source. Every
// adapter owns its own parsing behind the same narrow contract, so upstream
// format drift stays contained and sources are swappable without touching
// the pipeline.
package source

import (
	"context"
	"time"

	"github.com/jcyag/ai-news-daily/internal/config"
	"github.com/jcyag/ai-news-daily/internal/news"
)

// Source fetches and normalizes one upstream into news items. Fetch returns
// an error instead of panicking; the collector decides uniformly to log and
// continue, so one failing source never aborts a run.
type Source interface {
	ID() string
	Name() string
	Fetch(ctx context.Context) ([]news.Item, error)
}

// BuildAll constructs every enabled source from config, highest-trust first.
func BuildAll(cfg *config.Config) []Source {
	timeout := time.Duration(cfg.Collect.TimeoutSeconds) * time.Second
	maxItems := cfg.Collect.MaxPerSource

	var sources []Source

	if cfg.Sources.HuggingFace.Enabled {
		sources = append(sources, NewHuggingFace(timeout, maxItems))
	}
	for _, feed := range cfg.Sources.Feeds {
		sources = append(sources, NewRSS(feed, timeout, maxItems))
	}
	if cfg.Sources.HackerNews.Enabled {
		sources = append(sources, NewHackerNews(cfg.Sources.HackerNews, timeout, maxItems))
	}
	if cfg.Sources.Reddit.Enabled {
		sources = append(sources, NewReddit(cfg.Sources.Reddit, timeout, maxItems))
	}
	if cfg.Sources.Nitter.Enabled {
		sources = append(sources, NewNitter(cfg.Sources.Nitter, timeout))
	}
	if cfg.Sources.Tophub.Enabled {
		for _, board := range cfg.Sources.Tophub.Boards {
			sources = append(sources, NewTophub(board, timeout))
		}
	}
	if cfg.Sources.Sogou.Enabled {
		sources = append(sources, NewSogou(cfg.Sources.Sogou, timeout, maxItems))
	}

	return sources
}
