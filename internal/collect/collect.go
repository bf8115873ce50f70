package collect

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jcyag/ai-news-daily/internal/config"
	"github.com/jcyag/ai-news-daily/internal/news"
	"github.com/jcyag/ai-news-daily/internal/source"
)

// Result holds the results of a collection run.
type Result struct {
	Items      []news.Item
	TotalFound int
	TooOld     int
	Failed     []string
	Sources    map[string]int
}

// Collector fans out over all configured sources concurrently and merges
// their items into one list, dropping anything older than the recency
// window. A failing source is logged and skipped, never fatal.
type Collector struct {
	sources     []source.Source
	window      time.Duration
	concurrency int
	now         func() time.Time
}

// NewCollector creates a collector over the given sources.
func NewCollector(sources []source.Source, cfg config.Collect) *Collector {
	window := time.Duration(cfg.WindowHours) * time.Hour
	if window <= 0 {
		window = 48 * time.Hour
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Collector{
		sources:     sources,
		window:      window,
		concurrency: concurrency,
		now:         time.Now,
	}
}

// Collect runs every source and merges the results. Items without a
// timestamp are kept; search scrapers cannot provide one.
func (c *Collector) Collect(ctx context.Context) *Result {
	r := &Result{Sources: make(map[string]int)}
	now := c.now().UTC()

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for _, src := range c.sources {
		src := src
		g.Go(func() error {
			items, err := src.Fetch(gctx)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Printf("[collect] source %s failed: %v", src.ID(), err)
				r.Failed = append(r.Failed, src.ID())
				return nil
			}
			r.TotalFound += len(items)
			for _, it := range items {
				if age, ok := it.Age(now); ok && age > c.window {
					r.TooOld++
					continue
				}
				r.Items = append(r.Items, it)
				r.Sources[it.SourceID]++
			}
			log.Printf("[collect] %s: %d items", src.ID(), len(items))
			return nil
		})
	}
	g.Wait()

	sort.Strings(r.Failed)
	log.Printf("Collection complete: %d found, %d kept, %d too old, %d sources failed",
		r.TotalFound, len(r.Items), r.TooOld, len(r.Failed))
	return r
}
