package news

import (
	"strings"
	"testing"
	"time"
)

func TestCleanTrimsAndReports(t *testing.T) {
	it := Item{Title: "  Hello\n World ", URL: " https://example.com/a ", Summary: "  s  "}
	if !it.Clean() {
		t.Fatal("expected item to survive Clean")
	}
	if it.Title != "Hello World" {
		t.Errorf("unexpected title %q", it.Title)
	}
	if it.URL != "https://example.com/a" {
		t.Errorf("unexpected url %q", it.URL)
	}
	if it.Summary != "s" {
		t.Errorf("unexpected summary %q", it.Summary)
	}
}

func TestCleanDropsMalformed(t *testing.T) {
	it := Item{Title: "   ", URL: "https://example.com"}
	if it.Clean() {
		t.Error("expected empty title to be rejected")
	}
	it = Item{Title: "t", URL: ""}
	if it.Clean() {
		t.Error("expected empty url to be rejected")
	}
}

func TestCleanTruncatesSummary(t *testing.T) {
	it := Item{Title: "t", URL: "u", Summary: strings.Repeat("x", 900)}
	it.Clean()
	if got := len([]rune(it.Summary)); got != MaxSummaryLen {
		t.Errorf("expected summary length %d, got %d", MaxSummaryLen, got)
	}
	if !strings.HasSuffix(it.Summary, "...") {
		t.Error("expected truncated summary to end with ellipsis")
	}

	// Truncation must handle multi-byte runes without splitting them.
	it = Item{Title: "t", URL: "u", Summary: strings.Repeat("模", 600)}
	it.Clean()
	if got := len([]rune(it.Summary)); got != MaxSummaryLen {
		t.Errorf("expected summary length %d, got %d", MaxSummaryLen, got)
	}
}

func TestDisplayPrefersTranslation(t *testing.T) {
	it := Item{Title: "original", Summary: "sum"}
	if it.DisplayTitle() != "original" {
		t.Errorf("unexpected display title %q", it.DisplayTitle())
	}
	it.TranslatedTitle = "译文"
	it.TranslatedSummary = "摘要"
	if it.DisplayTitle() != "译文" || it.DisplaySummary() != "摘要" {
		t.Error("expected translated fields to win")
	}
}

func TestAge(t *testing.T) {
	now := time.Now()
	it := Item{}
	if _, ok := it.Age(now); ok {
		t.Error("expected no age without timestamp")
	}
	pub := now.Add(-2 * time.Hour)
	it.PublishedAt = &pub
	age, ok := it.Age(now)
	if !ok || age != 2*time.Hour {
		t.Errorf("expected 2h age, got %v (%v)", age, ok)
	}
}

func TestMostlyHan(t *testing.T) {
	cases := []struct {
		text string
		want bool
	}{
		{"OpenAI launches new model", false},
		{"大模型发布重磅更新", true},
		{"GPT-5 性能评测：全面超越", true},
		{"", false},
		{"!!! ...", false},
	}
	for _, c := range cases {
		if got := MostlyHan(c.text); got != c.want {
			t.Errorf("MostlyHan(%q) = %v, want %v", c.text, got, c.want)
		}
	}
}
