package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jcyag/ai-news-daily/internal/config"
)

func TestHackerNewsFetch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/topstories.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[1, 2, 3]`)
	})
	mux.HandleFunc("/item/1.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"type":"story","title":"Low score story","url":"https://example.com/low","time":1700000000,"score":10,"descendants":2}`)
	})
	mux.HandleFunc("/item/2.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"type":"story","title":"Ask HN: self post","time":1700000100,"score":250,"descendants":40}`)
	})
	mux.HandleFunc("/item/3.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"type":"job","title":"Hiring","score":1}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	hn := NewHackerNews(config.HackerNewsConfig{TopStories: 10}, 5*time.Second, 50)
	hn.apiBase = srv.URL

	items, err := hn.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 stories (job entries skipped), got %d", len(items))
	}

	// Results are ordered by score, highest first.
	if items[0].Title != "Ask HN: self post" {
		t.Errorf("expected highest-scored story first, got %q", items[0].Title)
	}
	if items[0].URL != "https://news.ycombinator.com/item?id=2" {
		t.Errorf("self post should link to the HN thread, got %q", items[0].URL)
	}
	if items[0].Summary != "(40 comments)" {
		t.Errorf("unexpected summary %q", items[0].Summary)
	}
	if items[1].URL != "https://example.com/low" {
		t.Errorf("unexpected url %q", items[1].URL)
	}
	if items[1].PublishedAt == nil || items[1].PublishedAt.Unix() != 1700000000 {
		t.Errorf("unexpected timestamp %v", items[1].PublishedAt)
	}
}

func TestHackerNewsFetchListingError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	hn := NewHackerNews(config.HackerNewsConfig{}, 5*time.Second, 50)
	hn.apiBase = srv.URL
	if _, err := hn.Fetch(context.Background()); err == nil {
		t.Error("expected error when the story list cannot be fetched")
	}
}

func TestHackerNewsMaxItems(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/topstories.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[1, 2, 3, 4, 5]`)
	})
	mux.HandleFunc("/item/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"type":"story","title":"Story","url":"https://example.com/s","score":5}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	hn := NewHackerNews(config.HackerNewsConfig{TopStories: 5}, 5*time.Second, 2)
	hn.apiBase = srv.URL

	items, err := hn.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("expected cap at 2 items, got %d", len(items))
	}
}
