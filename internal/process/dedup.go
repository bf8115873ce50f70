package process

import (
	"log"
	"regexp"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/jcyag/ai-news-daily/internal/news"
)

// DefaultSimilarityThreshold is the title-similarity ratio above which two
// items are considered the same story.
const DefaultSimilarityThreshold = 0.7

var (
	urlSchemeRe = regexp.MustCompile(`^https?://`)
	punctRe     = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
	spaceRe     = regexp.MustCompile(`\s+`)
)

// Deduplicator collapses items that point at the same URL or carry
// near-identical titles.
type Deduplicator struct {
	threshold float64
}

// NewDeduplicator creates a deduplicator with the given similarity
// threshold; values outside (0, 1] fall back to the default.
func NewDeduplicator(threshold float64) *Deduplicator {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultSimilarityThreshold
	}
	return &Deduplicator{threshold: threshold}
}

// Deduplicate removes duplicates in two phases. Phase 1 drops items whose
// normalized URL has been seen before (first occurrence wins). Phase 2 walks
// the remainder in order against the growing accepted list: a candidate
// whose normalized-title similarity to an accepted item reaches the
// threshold replaces that item if its raw score is higher, and is dropped
// otherwise. Deterministic for a fixed input order.
func (d *Deduplicator) Deduplicate(items []news.Item) []news.Item {
	if len(items) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(items))
	urlUnique := make([]news.Item, 0, len(items))
	for _, it := range items {
		key := NormalizeURL(it.URL)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		urlUnique = append(urlUnique, it)
	}

	result := make([]news.Item, 0, len(urlUnique))
	titles := make([]string, 0, len(urlUnique))
	for _, it := range urlUnique {
		title := NormalizeTitle(it.Title)
		duplicate := false
		for i, existing := range titles {
			if similarity(title, existing) >= d.threshold {
				duplicate = true
				if it.RawScore > result[i].RawScore {
					result[i] = it
					titles[i] = title
				}
				break
			}
		}
		if !duplicate {
			result = append(result, it)
			titles = append(titles, title)
		}
	}

	log.Printf("Dedup: %d -> %d items (%d removed)", len(items), len(result), len(items)-len(result))
	return result
}

// NormalizeURL strips scheme, a leading www. label, and any trailing slash,
// and lowercases the rest. Idempotent.
func NormalizeURL(rawURL string) string {
	u := urlSchemeRe.ReplaceAllString(strings.TrimSpace(rawURL), "")
	u = strings.TrimRight(u, "/")
	u = strings.TrimPrefix(u, "www.")
	return strings.ToLower(u)
}

// NormalizeTitle lowercases, strips punctuation (keeping letters, digits,
// and whitespace in any script), and collapses whitespace runs. Idempotent.
func NormalizeTitle(title string) string {
	t := strings.ToLower(title)
	t = punctRe.ReplaceAllString(t, " ")
	t = spaceRe.ReplaceAllString(t, " ")
	return strings.TrimSpace(t)
}

// similarity is the difflib sequence-match ratio over runes: symmetric,
// in [0,1], and 1.0 for identical strings.
func similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	// Canonical argument order keeps the ratio exactly symmetric.
	if a > b {
		a, b = b, a
	}
	m := difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, ""))
	return m.Ratio()
}
