package digest

import (
	"strings"
	"testing"
	"time"

	"github.com/jcyag/ai-news-daily/internal/news"
)

func testBuilder(t *testing.T) *Builder {
	t.Helper()
	b, err := NewBuilder("AI资讯日报", "退订AI资讯日报")
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}
	b.now = func() time.Time {
		return time.Date(2026, 8, 29, 8, 0, 0, 0, time.UTC)
	}
	return b
}

func TestBuildSubject(t *testing.T) {
	b := testBuilder(t)
	d, err := b.Build(nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if d.Subject != "AI资讯日报 - 2026-08-29" {
		t.Errorf("unexpected subject %q", d.Subject)
	}
	if d.ItemCount != 0 {
		t.Errorf("ItemCount = %d, want 0", d.ItemCount)
	}
}

func TestBuildBody(t *testing.T) {
	published := time.Date(2026, 8, 29, 6, 30, 0, 0, time.UTC)
	items := []news.Item{
		{
			Title:           "Model release",
			TranslatedTitle: "模型发布",
			URL:             "https://example.com/release",
			SourceName:      "Hacker News",
			PublishedAt:     &published,
			Summary:         "Details about the release.",
		},
		{
			Title:      "无摘要条目",
			URL:        "https://example.com/bare",
			SourceName: "微信",
		},
	}

	b := testBuilder(t)
	d, err := b.Build(items)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if !strings.Contains(d.Markdown, "## 1. [模型发布](https://example.com/release)") {
		t.Errorf("translated title not used in markdown:\n%s", d.Markdown)
	}
	if !strings.Contains(d.Markdown, "Hacker News | 08-29 06:30") {
		t.Errorf("source and time metadata missing:\n%s", d.Markdown)
	}
	if !strings.Contains(d.Markdown, "## 2. [无摘要条目](https://example.com/bare)") {
		t.Errorf("second item missing:\n%s", d.Markdown)
	}
	if !strings.Contains(d.Markdown, "共 2 条") {
		t.Errorf("item count missing from header:\n%s", d.Markdown)
	}
	if !strings.Contains(d.Markdown, "退订AI资讯日报") {
		t.Errorf("unsubscribe hint missing:\n%s", d.Markdown)
	}

	if !strings.Contains(d.HTML, `<a href="https://example.com/release">模型发布</a>`) {
		t.Errorf("markdown link not rendered to HTML:\n%s", d.HTML)
	}
	if !strings.Contains(d.HTML, "<title>AI资讯日报 - 2026-08-29</title>") {
		t.Errorf("subject missing from HTML shell:\n%s", d.HTML)
	}
}

func TestBuildDefaultPrefix(t *testing.T) {
	b, err := NewBuilder("", "")
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}
	b.now = func() time.Time { return time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC) }

	d, err := b.Build(nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if d.Subject != "AI资讯日报 - 2026-01-02" {
		t.Errorf("unexpected subject %q", d.Subject)
	}
	if strings.Contains(d.Markdown, "退订") {
		t.Errorf("no unsubscribe hint expected without a token:\n%s", d.Markdown)
	}
}
