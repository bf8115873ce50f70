// Package process holds the in-memory stages of the pipeline: topic
// filtering, deduplication, and ranking. Every stage is a pure
// transformation over a slice of news items.
package process

import (
	"log"
	"regexp"
	"strings"

	"github.com/jcyag/ai-news-daily/internal/news"
)

// KeywordFilter keeps only items relevant to a configured keyword set.
// ASCII keywords match on word boundaries so that "AI" does not hit inside
// "said"; CJK keywords have no word boundaries and match as substrings.
type KeywordFilter struct {
	patterns   []*regexp.Regexp
	substrings []string
}

// NewKeywordFilter compiles the keyword set. Keywords that fail to compile
// are skipped; an empty set matches nothing.
func NewKeywordFilter(keywords []string) *KeywordFilter {
	f := &KeywordFilter{}
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		if isASCII(kw) {
			re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(kw) + `\b`)
			if err != nil {
				log.Printf("Skipping keyword %q: %v", kw, err)
				continue
			}
			f.patterns = append(f.patterns, re)
		} else {
			f.substrings = append(f.substrings, strings.ToLower(kw))
		}
	}
	return f
}

// Matches reports whether any keyword occurs in the item's title or summary.
func (f *KeywordFilter) Matches(it news.Item) bool {
	text := it.Title + " " + it.Summary
	lower := strings.ToLower(text)

	for _, sub := range f.substrings {
		if strings.Contains(lower, sub) {
			return true
		}
	}
	for _, re := range f.patterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// Filter returns the matching subset, preserving input order. An empty
// result is a valid "nothing to report" state, not an error.
func (f *KeywordFilter) Filter(items []news.Item) []news.Item {
	kept := make([]news.Item, 0, len(items))
	for _, it := range items {
		if f.Matches(it) {
			kept = append(kept, it)
		}
	}
	log.Printf("Keyword filter: %d -> %d items", len(items), len(kept))
	return kept
}

func isASCII(s string) bool {
	for _, r := range s {
		if r >= 128 {
			return false
		}
	}
	return true
}
