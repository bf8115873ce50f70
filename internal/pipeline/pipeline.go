package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jcyag/ai-news-daily/internal/collect"
	"github.com/jcyag/ai-news-daily/internal/config"
	"github.com/jcyag/ai-news-daily/internal/digest"
	"github.com/jcyag/ai-news-daily/internal/enrich"
	"github.com/jcyag/ai-news-daily/internal/mail"
	"github.com/jcyag/ai-news-daily/internal/news"
	"github.com/jcyag/ai-news-daily/internal/process"
	"github.com/jcyag/ai-news-daily/internal/source"
	"github.com/jcyag/ai-news-daily/internal/subscribe"
	"github.com/jcyag/ai-news-daily/internal/translate"
)

// StepResult holds the result of a single pipeline step.
type StepResult struct {
	Name    string
	Summary string
	Err     error
}

// Result holds the results of a full pipeline run.
type Result struct {
	Steps []StepResult
	Items []news.Item
	Sent  bool
}

// Sender delivers a rendered digest.
type Sender interface {
	Send(d *digest.Digest) error
}

// Pipeline orchestrates the daily digest run: collect, filter,
// deduplicate, rank, enrich, translate, render, send.
type Pipeline struct {
	cfg        *config.Config
	collector  *collect.Collector
	filter     *process.KeywordFilter
	dedup      *process.Deduplicator
	ranker     *process.Ranker
	enricher   *enrich.Enricher
	translator translate.Translator
	builder    *digest.Builder
	sender     Sender
}

// New wires the full pipeline from config. The sender may be nil for
// runs that stop short of delivery.
func New(cfg *config.Config, sender Sender) (*Pipeline, error) {
	builder, err := digest.NewBuilder(cfg.Email.SubjectPrefix, cfg.Subscribe.UnsubscribeToken)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		cfg:        cfg,
		collector:  collect.NewCollector(source.BuildAll(cfg), cfg.Collect),
		filter:     process.NewKeywordFilter(cfg.Keywords),
		dedup:      process.NewDeduplicator(cfg.Dedup.SimilarityThreshold),
		ranker: process.NewRanker(process.RankerOptions{
			TopN:             cfg.Rank.TopN,
			RecencyWeight:    cfg.Rank.RecencyWeight,
			PopularityWeight: cfg.Rank.PopularityWeight,
			SourceWeight:     cfg.Rank.SourceWeight,
			SourcePriority:   cfg.Rank.SourcePriority,
		}),
		translator: translate.New(cfg.Translate),
		builder:    builder,
		sender:     sender,
	}
	if cfg.Enrich.Enabled {
		p.enricher = enrich.NewEnricher(time.Duration(cfg.Enrich.TimeoutSeconds) * time.Second)
	}
	return p, nil
}

// Run executes the full pipeline. An empty stage is a clean exit, not
// an error; quiet days happen.
func (p *Pipeline) Run(ctx context.Context, dryRun bool) *Result {
	r := &Result{}

	log.Println("Step 1/5: Collecting...")
	collected := p.collector.Collect(ctx)
	r.Steps = append(r.Steps, StepResult{
		Name: "Collect",
		Summary: fmt.Sprintf("%d items from %d sources (%d failed)",
			len(collected.Items), len(collected.Sources), len(collected.Failed)),
	})
	if len(collected.Items) == 0 {
		return r
	}

	log.Println("Step 2/5: Filtering and deduplicating...")
	items := p.filter.Filter(collected.Items)
	matched := len(items)
	items = p.dedup.Deduplicate(items)
	r.Steps = append(r.Steps, StepResult{
		Name:    "Process",
		Summary: fmt.Sprintf("%d matched keywords, %d after dedup", matched, len(items)),
	})
	if len(items) == 0 {
		return r
	}

	log.Println("Step 3/5: Ranking...")
	items = p.ranker.Rank(items)
	r.Steps = append(r.Steps, StepResult{
		Name:    "Rank",
		Summary: fmt.Sprintf("selected top %d", len(items)),
	})

	log.Println("Step 4/5: Enriching and translating...")
	if p.enricher != nil {
		enriched := p.enricher.Enrich(ctx, items)
		r.Steps = append(r.Steps, StepResult{
			Name:    "Enrich",
			Summary: fmt.Sprintf("%d summaries fetched, %d failed", enriched.Fetched, enriched.Failed),
		})
	}
	items = p.translator.TranslateBatch(ctx, items)
	r.Items = items

	log.Println("Step 5/5: Rendering and sending...")
	d, err := p.builder.Build(items)
	if err != nil {
		r.Steps = append(r.Steps, StepResult{Name: "Render", Err: err})
		return r
	}
	r.Steps = append(r.Steps, StepResult{
		Name:    "Render",
		Summary: fmt.Sprintf("%q with %d items", d.Subject, d.ItemCount),
	})

	if dryRun || p.sender == nil {
		r.Steps = append(r.Steps, StepResult{Name: "Send", Summary: "skipped"})
		return r
	}
	if err := p.sender.Send(d); err != nil {
		r.Steps = append(r.Steps, StepResult{Name: "Send", Err: err})
		return r
	}
	r.Sent = true
	r.Steps = append(r.Steps, StepResult{Name: "Send", Summary: "delivered"})
	return r
}

// NewSender builds the SMTP sender for the configured recipients,
// preferring the synced subscriber list when one exists.
func NewSender(cfg *config.Config) (Sender, error) {
	email := cfg.Email

	mgr := subscribe.NewManager(cfg.GetDataDir(), cfg.Subscribe, cfg.Email)
	if subs, err := mgr.Load(); err == nil && len(subs) > 0 {
		email.Recipients = subs
	}
	return mail.NewSender(email)
}
