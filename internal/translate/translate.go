package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/jcyag/ai-news-daily/internal/config"
	"github.com/jcyag/ai-news-daily/internal/news"
)

const translateAPIURL = "https://translation.googleapis.com/language/translate/v2"

// Translator fills in translated titles and summaries for items not
// already in the target language.
type Translator interface {
	TranslateBatch(ctx context.Context, items []news.Item) []news.Item
}

// New returns the Google Cloud Translation client when an API key is
// configured, otherwise a pass-through that leaves items untouched.
func New(cfg config.Translate) Translator {
	if !cfg.Enabled || !cfg.IsConfigured() {
		return noop{}
	}

	native := make(map[string]struct{}, len(cfg.NativeSources))
	for _, id := range cfg.NativeSources {
		native[id] = struct{}{}
	}
	target := cfg.TargetLanguage
	if target == "" {
		target = "zh-CN"
	}
	return &googleTranslator{
		apiURL: translateAPIURL,
		apiKey: cfg.APIKey,
		target: target,
		native: native,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

type noop struct{}

func (noop) TranslateBatch(_ context.Context, items []news.Item) []news.Item {
	out := make([]news.Item, len(items))
	copy(out, items)
	return out
}

// googleTranslator calls the Cloud Translation v2 REST API.
type googleTranslator struct {
	apiURL string
	apiKey string
	target string
	native map[string]struct{}
	client *http.Client
}

// TranslateBatch returns a new slice with the same length and order.
// Items from native-language sources, and items whose title is already
// mostly Han text, are marked native and skipped. Any failure keeps the
// original text; a digest with untranslated entries beats no digest.
func (g *googleTranslator) TranslateBatch(ctx context.Context, items []news.Item) []news.Item {
	out := make([]news.Item, len(items))
	copy(out, items)

	// Gather the texts that actually need translating so the whole
	// batch goes out as one API call.
	type ref struct {
		item    int
		summary bool
	}
	var texts []string
	var refs []ref
	translated := 0

	for i := range out {
		if _, ok := g.native[out[i].SourceID]; ok {
			out[i].NativeLanguage = true
			continue
		}
		if news.MostlyHan(out[i].Title) {
			out[i].NativeLanguage = true
			continue
		}
		texts = append(texts, out[i].Title)
		refs = append(refs, ref{item: i})
		if out[i].Summary != "" {
			texts = append(texts, out[i].Summary)
			refs = append(refs, ref{item: i, summary: true})
		}
	}
	if len(texts) == 0 {
		return out
	}

	results, err := g.translateTexts(ctx, texts)
	if err != nil {
		log.Printf("[translate] batch failed, keeping originals: %v", err)
		return out
	}

	for i, r := range refs {
		if i >= len(results) || results[i] == "" {
			continue
		}
		if r.summary {
			out[r.item].TranslatedSummary = results[i]
		} else {
			out[r.item].TranslatedTitle = results[i]
			translated++
		}
	}
	log.Printf("[translate] translated %d of %d items", translated, len(out))
	return out
}

func (g *googleTranslator) translateTexts(ctx context.Context, texts []string) ([]string, error) {
	form := url.Values{
		"target": {g.target},
		"format": {"text"},
	}
	for _, t := range texts {
		form.Add("q", t)
	}

	endpoint := g.apiURL + "?key=" + url.QueryEscape(g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint,
		bytes.NewReader([]byte(form.Encode())))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("translate API error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("translate API returned %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		Data struct {
			Translations []struct {
				TranslatedText string `json:"translatedText"`
			} `json:"translations"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	out := make([]string, len(result.Data.Translations))
	for i, tr := range result.Data.Translations {
		out[i] = html.UnescapeString(tr.TranslatedText)
	}
	return out, nil
}
