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

func TestRedditFetchUnconfigured(t *testing.T) {
	rd := NewReddit(config.RedditConfig{Enabled: true}, 5*time.Second, 50)
	items, err := rd.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if items != nil {
		t.Errorf("expected no items without credentials, got %v", items)
	}
}

func TestRedditFetch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/access_token", func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "id" || pass != "secret" {
			http.Error(w, "bad credentials", http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, `{"access_token":"tok"}`)
	})
	mux.HandleFunc("/r/MachineLearning/hot", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			http.Error(w, "no token", http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, `{"data":{"children":[
			{"data":{"title":"Sticky announcement","url":"https://example.com/a","stickied":true,"score":900}},
			{"data":{"title":"[R] New attention variant","url":"https://example.com/paper","link_flair_text":"Research","ups":120,"num_comments":30,"score":118,"created_utc":1700000000}},
			{"data":{"title":"Discussion thread","permalink":"/r/MachineLearning/comments/x/y/","is_self":true,"selftext":"What do you all think?","ups":10,"num_comments":5,"score":9}}
		]}}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	rd := NewReddit(config.RedditConfig{
		Enabled:      true,
		Subreddit:    "MachineLearning",
		UserAgent:    "test/1.0",
		ClientID:     "id",
		ClientSecret: "secret",
	}, 5*time.Second, 50)
	rd.tokenURL = srv.URL + "/api/v1/access_token"
	rd.apiBase = srv.URL

	items, err := rd.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items (stickied skipped), got %d", len(items))
	}

	first := items[0]
	if first.Summary != "[Research] ↑120 | 30 comments" {
		t.Errorf("unexpected summary %q", first.Summary)
	}
	if first.RawScore != 118 {
		t.Errorf("unexpected score %v", first.RawScore)
	}
	if first.PublishedAt == nil || first.PublishedAt.Unix() != 1700000000 {
		t.Errorf("unexpected timestamp %v", first.PublishedAt)
	}

	second := items[1]
	if second.URL != "https://reddit.com/r/MachineLearning/comments/x/y/" {
		t.Errorf("self post should link to its permalink, got %q", second.URL)
	}
	if second.Summary != "What do you all think? ↑10 | 5 comments" {
		t.Errorf("unexpected summary %q", second.Summary)
	}
}

func TestRedditAuthFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "denied", http.StatusUnauthorized)
	}))
	defer srv.Close()

	rd := NewReddit(config.RedditConfig{
		Enabled: true, ClientID: "id", ClientSecret: "bad", UserAgent: "test/1.0",
	}, 5*time.Second, 50)
	rd.tokenURL = srv.URL

	if _, err := rd.Fetch(context.Background()); err == nil {
		t.Error("expected error on rejected credentials")
	}
}
