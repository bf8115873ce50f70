package process

import (
	"log"
	"sort"
	"time"

	"github.com/jcyag/ai-news-daily/internal/news"
)

// Ranker weights. Defaults sum to 1.0; the split is policy, not contract.
const (
	defaultRecencyWeight    = 0.4
	defaultPopularityWeight = 0.3
	defaultSourceWeight     = 0.3

	// neutralPriority is assigned to sources missing from the priority table.
	neutralPriority = 0.5

	// unknownAgeScore reflects "no timestamp, presumed current".
	unknownAgeScore = 0.4
)

// Ranker computes a composite relevance score per item and selects the top N.
type Ranker struct {
	topN             int
	recencyWeight    float64
	popularityWeight float64
	sourceWeight     float64
	sourcePriority   map[string]float64
	now              func() time.Time
}

// RankerOptions configures a Ranker; zero values select defaults.
type RankerOptions struct {
	TopN             int
	RecencyWeight    float64
	PopularityWeight float64
	SourceWeight     float64
	SourcePriority   map[string]float64
}

// NewRanker creates a ranker. A non-positive TopN falls back to 10; weights
// default to 0.4/0.3/0.3 when all are zero.
func NewRanker(opts RankerOptions) *Ranker {
	r := &Ranker{
		topN:             opts.TopN,
		recencyWeight:    opts.RecencyWeight,
		popularityWeight: opts.PopularityWeight,
		sourceWeight:     opts.SourceWeight,
		sourcePriority:   opts.SourcePriority,
		now:              time.Now,
	}
	if r.topN <= 0 {
		r.topN = 10
	}
	if r.recencyWeight == 0 && r.popularityWeight == 0 && r.sourceWeight == 0 {
		r.recencyWeight = defaultRecencyWeight
		r.popularityWeight = defaultPopularityWeight
		r.sourceWeight = defaultSourceWeight
	}
	return r
}

// Rank returns a new slice of at most topN items in descending composite
// score. The sort is stable, so equal scores preserve arrival order. Input
// is never mutated.
func (r *Ranker) Rank(items []news.Item) []news.Item {
	if len(items) == 0 {
		return nil
	}

	now := r.now()
	maxScore := maxRawScore(items)

	ranked := make([]news.Item, len(items))
	copy(ranked, items)
	scores := make([]float64, len(ranked))
	for i := range ranked {
		scores[i] = r.composite(ranked[i], maxScore, now)
	}

	idx := make([]int, len(ranked))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return scores[idx[a]] > scores[idx[b]]
	})

	n := r.topN
	if n > len(ranked) {
		n = len(ranked)
	}
	out := make([]news.Item, 0, n)
	for _, i := range idx[:n] {
		out = append(out, ranked[i])
	}

	log.Printf("Rank: selected top %d of %d items", len(out), len(items))
	return out
}

func (r *Ranker) composite(it news.Item, maxScore float64, now time.Time) float64 {
	return r.recencyWeight*recencyScore(it.PublishedAt, now) +
		r.popularityWeight*normalizeScore(it.RawScore, maxScore) +
		r.sourceWeight*r.priority(it.SourceID)
}

func (r *Ranker) priority(sourceID string) float64 {
	if p, ok := r.sourcePriority[sourceID]; ok {
		return p
	}
	return neutralPriority
}

// recencyScore is a step function of age. Future timestamps (clock skew)
// clamp to the maximum score.
func recencyScore(publishedAt *time.Time, now time.Time) float64 {
	if publishedAt == nil {
		return unknownAgeScore
	}
	age := now.Sub(*publishedAt)
	switch {
	case age < time.Hour: // includes negative ages
		return 1.0
	case age < 6*time.Hour:
		return 0.9
	case age < 12*time.Hour:
		return 0.8
	case age < 24*time.Hour:
		return 0.7
	case age < 48*time.Hour:
		return 0.4
	default:
		return 0.1
	}
}

// normalizeScore maps a raw score into [0,1] against the batch maximum.
// Non-positive scores, or a batch with no positive score, yield 0.
func normalizeScore(score, maxScore float64) float64 {
	if score <= 0 || maxScore <= 0 {
		return 0
	}
	if score >= maxScore {
		return 1
	}
	return score / maxScore
}

func maxRawScore(items []news.Item) float64 {
	var max float64
	for _, it := range items {
		if it.RawScore > max {
			max = it.RawScore
		}
	}
	return max
}
