package digest

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/yuin/goldmark"

	"github.com/jcyag/ai-news-daily/internal/news"
)

//go:embed templates/*.html
var templateFS embed.FS

var md = goldmark.New()

// Digest is a fully rendered daily issue, ready to hand to the mailer.
type Digest struct {
	Subject   string
	Markdown  string
	HTML      string
	ItemCount int
}

// Builder renders ranked items into the email digest.
type Builder struct {
	subjectPrefix    string
	unsubscribeToken string
	tmpl             *template.Template
	now              func() time.Time
}

// NewBuilder creates a digest builder.
func NewBuilder(subjectPrefix, unsubscribeToken string) (*Builder, error) {
	if subjectPrefix == "" {
		subjectPrefix = "AI资讯日报"
	}
	tmpl, err := template.ParseFS(templateFS, "templates/email.html")
	if err != nil {
		return nil, fmt.Errorf("parsing email template: %w", err)
	}
	return &Builder{
		subjectPrefix:    subjectPrefix,
		unsubscribeToken: unsubscribeToken,
		tmpl:             tmpl,
		now:              time.Now,
	}, nil
}

// Build assembles the digest for today's items. The markdown body doubles
// as the plain-text alternative for clients that refuse HTML.
func (b *Builder) Build(items []news.Item) (*Digest, error) {
	now := b.now()
	subject := fmt.Sprintf("%s - %s", b.subjectPrefix, now.Format("2006-01-02"))
	body := b.assembleBody(items, now)

	html, err := b.renderHTML(subject, body)
	if err != nil {
		return nil, err
	}

	return &Digest{
		Subject:   subject,
		Markdown:  body,
		HTML:      html,
		ItemCount: len(items),
	}, nil
}

func (b *Builder) assembleBody(items []news.Item, now time.Time) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", b.subjectPrefix)
	fmt.Fprintf(&sb, "%s · 共 %d 条\n\n---\n\n", now.Format("2006年01月02日"), len(items))

	for i, it := range items {
		fmt.Fprintf(&sb, "## %d. [%s](%s)\n\n", i+1, it.DisplayTitle(), it.URL)

		var meta []string
		if it.SourceName != "" {
			meta = append(meta, it.SourceName)
		}
		if it.PublishedAt != nil {
			meta = append(meta, it.PublishedAt.Format("01-02 15:04"))
		}
		if len(meta) > 0 {
			fmt.Fprintf(&sb, "*%s*\n\n", strings.Join(meta, " | "))
		}

		if summary := it.DisplaySummary(); summary != "" {
			fmt.Fprintf(&sb, "%s\n\n", summary)
		}
	}

	sb.WriteString("---\n\n")
	if b.unsubscribeToken != "" {
		fmt.Fprintf(&sb, "如需退订，请回复“%s”。\n", b.unsubscribeToken)
	}
	return sb.String()
}

func (b *Builder) renderHTML(subject, body string) (string, error) {
	var content bytes.Buffer
	if err := md.Convert([]byte(body), &content); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}

	var out bytes.Buffer
	err := b.tmpl.Execute(&out, map[string]any{
		"Subject": subject,
		"Content": template.HTML(content.String()), //nolint: gosec
	})
	if err != nil {
		return "", fmt.Errorf("rendering email template: %w", err)
	}
	return out.String(), nil
}
