package news

import (
	"strings"
	"time"
	"unicode"
)

// MaxSummaryLen bounds summary length to keep memory and email size in check.
const MaxSummaryLen = 500

// Item is the normalized unit of news flowing through the pipeline. Source
// adapters produce Items; every later stage is a transformation over a slice
// of them. Items are treated as immutable values after collection, except for
// the translation fields, which the translator fills in exactly once.
type Item struct {
	Title       string
	URL         string
	SourceID    string
	SourceName  string
	PublishedAt *time.Time // nil means "age unknown, presumed current"
	Summary     string
	RawScore    float64 // source-native popularity; comparable only within one run

	TranslatedTitle   string
	TranslatedSummary string
	NativeLanguage    bool
}

// Clean trims the text fields and bounds the summary length. It reports
// whether the item still carries a usable title and URL; adapters drop items
// for which Clean returns false rather than emit malformed records.
func (it *Item) Clean() bool {
	it.Title = collapseSpace(it.Title)
	it.URL = strings.TrimSpace(it.URL)
	it.Summary = strings.TrimSpace(it.Summary)
	if r := []rune(it.Summary); len(r) > MaxSummaryLen {
		it.Summary = string(r[:MaxSummaryLen-3]) + "..."
	}
	return it.Title != "" && it.URL != ""
}

// DisplayTitle prefers the translated title when one exists.
func (it Item) DisplayTitle() string {
	if it.TranslatedTitle != "" {
		return it.TranslatedTitle
	}
	return it.Title
}

// DisplaySummary prefers the translated summary when one exists.
func (it Item) DisplaySummary() string {
	if it.TranslatedSummary != "" {
		return it.TranslatedSummary
	}
	return it.Summary
}

// Age returns the item age relative to now, and whether a timestamp exists.
func (it Item) Age(now time.Time) (time.Duration, bool) {
	if it.PublishedAt == nil {
		return 0, false
	}
	return now.Sub(*it.PublishedAt), true
}

// MostlyHan reports whether more than half of the word characters in s are
// Han ideographs. Used to skip translation of text already in the target
// script.
func MostlyHan(s string) bool {
	var han, word int
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			han++
			word++
		} else if unicode.IsLetter(r) || unicode.IsDigit(r) {
			word++
		}
	}
	if word == 0 {
		return false
	}
	return float64(han)/float64(word) > 0.5
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
