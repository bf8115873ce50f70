package translate

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jcyag/ai-news-daily/internal/config"
	"github.com/jcyag/ai-news-daily/internal/news"
)

func TestNewUnconfiguredIsNoop(t *testing.T) {
	tr := New(config.Translate{Enabled: true})
	items := []news.Item{{Title: "Some English headline", URL: "https://example.com"}}

	out := tr.TranslateBatch(context.Background(), items)
	if len(out) != 1 {
		t.Fatalf("expected 1 item, got %d", len(out))
	}
	if out[0].TranslatedTitle != "" || out[0].NativeLanguage {
		t.Errorf("noop must leave items untouched, got %+v", out[0])
	}

	// The returned slice is a copy.
	out[0].Title = "mutated"
	if items[0].Title == "mutated" {
		t.Error("input slice must not be aliased")
	}
}

func newTestTranslator(apiURL string, native []string) *googleTranslator {
	tr := New(config.Translate{
		Enabled:        true,
		TargetLanguage: "zh-CN",
		NativeSources:  native,
		APIKey:         "test-key",
	}).(*googleTranslator)
	tr.apiURL = apiURL
	return tr
}

func TestTranslateBatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if r.URL.Query().Get("key") != "test-key" {
			http.Error(w, "bad key", http.StatusForbidden)
			return
		}
		fmt.Fprint(w, `{"data":{"translations":[`)
		for i, q := range r.Form["q"] {
			if i > 0 {
				fmt.Fprint(w, ",")
			}
			fmt.Fprintf(w, `{"translatedText":"译文: %s"}`, q)
		}
		fmt.Fprint(w, `]}}`)
	}))
	defer srv.Close()

	tr := newTestTranslator(srv.URL, []string{"36kr"})
	items := []news.Item{
		{Title: "New model released", Summary: "Details inside", SourceID: "hackernews"},
		{Title: "国产模型再突破", SourceID: "36kr"},
		{Title: "重磅消息：大模型评测结果公布", SourceID: "hackernews"},
		{Title: "No summary here", SourceID: "techcrunch"},
	}

	out := tr.TranslateBatch(context.Background(), items)
	if len(out) != len(items) {
		t.Fatalf("length changed: %d != %d", len(out), len(items))
	}

	if out[0].TranslatedTitle != "译文: New model released" {
		t.Errorf("unexpected translated title %q", out[0].TranslatedTitle)
	}
	if out[0].TranslatedSummary != "译文: Details inside" {
		t.Errorf("unexpected translated summary %q", out[0].TranslatedSummary)
	}
	if !out[1].NativeLanguage || out[1].TranslatedTitle != "" {
		t.Errorf("native source must be skipped, got %+v", out[1])
	}
	if !out[2].NativeLanguage {
		t.Error("mostly-Han title must be marked native and skipped")
	}
	if out[3].TranslatedTitle != "译文: No summary here" || out[3].TranslatedSummary != "" {
		t.Errorf("unexpected result for summary-less item: %+v", out[3])
	}

	// Originals stay in place for rendering fallbacks.
	if out[0].Title != "New model released" {
		t.Errorf("original title must be preserved, got %q", out[0].Title)
	}
}

func TestTranslateBatchAPIFailureKeepsOriginals(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	tr := newTestTranslator(srv.URL, nil)
	items := []news.Item{{Title: "Some headline", SourceID: "hackernews"}}

	out := tr.TranslateBatch(context.Background(), items)
	if len(out) != 1 {
		t.Fatalf("expected 1 item, got %d", len(out))
	}
	if out[0].TranslatedTitle != "" {
		t.Errorf("failed batch must keep originals, got %q", out[0].TranslatedTitle)
	}
	if out[0].Title != "Some headline" {
		t.Errorf("original title lost: %q", out[0].Title)
	}
}

func TestTranslateBatchHTMLEntities(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"translations":[{"translatedText":"A &amp; B 的对比"}]}}`)
	}))
	defer srv.Close()

	tr := newTestTranslator(srv.URL, nil)
	items := []news.Item{{Title: "A & B compared", SourceID: "hackernews"}}

	out := tr.TranslateBatch(context.Background(), items)
	if out[0].TranslatedTitle != "A & B 的对比" {
		t.Errorf("entities not unescaped: %q", out[0].TranslatedTitle)
	}
}
