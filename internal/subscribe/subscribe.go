package subscribe

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"

	"github.com/jcyag/ai-news-daily/internal/config"
)

const (
	subscribersFile = "subscribers.txt"
	scanWindow      = 7 * 24 * time.Hour
)

var emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

// SyncResult holds the results of an inbox scan.
type SyncResult struct {
	Scanned      int
	Subscribed   []string
	Unsubscribed []string
}

// Manager maintains the recipient list from subscription mails. Readers
// subscribe or unsubscribe by sending a mail whose subject or body
// carries the matching token; the list itself is a plain text file, one
// address per line.
type Manager struct {
	path  string
	cfg   config.Subscribe
	email config.Email
}

// NewManager creates a subscriber manager storing its list under dataDir.
func NewManager(dataDir string, cfg config.Subscribe, email config.Email) *Manager {
	return &Manager{
		path:  filepath.Join(dataDir, subscribersFile),
		cfg:   cfg,
		email: email,
	}
}

// Path returns the location of the subscriber file.
func (m *Manager) Path() string { return m.path }

// Load reads the subscriber list. A missing file is an empty list.
func (m *Manager) Load() ([]string, error) {
	data, err := os.ReadFile(m.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading subscriber list: %w", err)
	}

	seen := make(map[string]struct{})
	var subs []string
	for _, line := range strings.Split(string(data), "\n") {
		addr := strings.ToLower(strings.TrimSpace(line))
		if addr == "" || !emailRe.MatchString(addr) {
			continue
		}
		if _, dup := seen[addr]; dup {
			continue
		}
		seen[addr] = struct{}{}
		subs = append(subs, addr)
	}
	sort.Strings(subs)
	return subs, nil
}

// Save writes the subscriber list, sorted and deduplicated.
func (m *Manager) Save(subs []string) error {
	seen := make(map[string]struct{})
	var clean []string
	for _, addr := range subs {
		addr = strings.ToLower(strings.TrimSpace(addr))
		if addr == "" {
			continue
		}
		if _, dup := seen[addr]; dup {
			continue
		}
		seen[addr] = struct{}{}
		clean = append(clean, addr)
	}
	sort.Strings(clean)

	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}
	content := strings.Join(clean, "\n")
	if content != "" {
		content += "\n"
	}
	if err := os.WriteFile(m.path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing subscriber list: %w", err)
	}
	return nil
}

// Apply merges subscribe and unsubscribe requests into the stored list
// and saves it. Unsubscribes win over subscribes in the same batch.
func (m *Manager) Apply(subscribed, unsubscribed []string) ([]string, error) {
	current, err := m.Load()
	if err != nil {
		return nil, err
	}

	set := make(map[string]struct{}, len(current))
	for _, addr := range current {
		set[addr] = struct{}{}
	}
	for _, addr := range subscribed {
		set[strings.ToLower(addr)] = struct{}{}
	}
	for _, addr := range unsubscribed {
		delete(set, strings.ToLower(addr))
	}

	merged := make([]string, 0, len(set))
	for addr := range set {
		merged = append(merged, addr)
	}
	sort.Strings(merged)

	if err := m.Save(merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// Sync scans the inbox for recent subscription mails and applies them.
func (m *Manager) Sync() (*SyncResult, error) {
	if m.email.Username == "" || m.email.Password == "" {
		return nil, fmt.Errorf("imap credentials are required (set EMAIL_USER and EMAIL_PASSWORD)")
	}
	host := m.cfg.IMAPHost
	if host == "" {
		host = "imap.gmail.com:993"
	}
	if !strings.Contains(host, ":") {
		host += ":993"
	}

	c, err := client.DialTLS(host, nil)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", host, err)
	}
	defer c.Logout()

	if err := c.Login(m.email.Username, m.email.Password); err != nil {
		return nil, fmt.Errorf("imap login: %w", err)
	}
	if _, err := c.Select("INBOX", true); err != nil {
		return nil, fmt.Errorf("selecting inbox: %w", err)
	}

	criteria := imap.NewSearchCriteria()
	criteria.Since = time.Now().Add(-scanWindow)
	ids, err := c.Search(criteria)
	if err != nil {
		return nil, fmt.Errorf("searching inbox: %w", err)
	}

	result := &SyncResult{}
	if len(ids) > 0 {
		seqset := new(imap.SeqSet)
		seqset.AddNum(ids...)

		messages := make(chan *imap.Message, 16)
		done := make(chan error, 1)
		go func() {
			done <- c.Fetch(seqset, []imap.FetchItem{imap.FetchEnvelope}, messages)
		}()

		for msg := range messages {
			result.Scanned++
			m.classify(msg.Envelope, result)
		}
		if err := <-done; err != nil {
			return nil, fmt.Errorf("fetching envelopes: %w", err)
		}
	}

	if _, err := m.Apply(result.Subscribed, result.Unsubscribed); err != nil {
		return nil, err
	}
	log.Printf("Subscriber sync: %d mails scanned, %d subscribed, %d unsubscribed",
		result.Scanned, len(result.Subscribed), len(result.Unsubscribed))
	return result, nil
}

func (m *Manager) classify(env *imap.Envelope, result *SyncResult) {
	if env == nil || len(env.From) == 0 {
		return
	}
	sender := senderAddress(env.From[0])
	if sender == "" {
		return
	}

	switch {
	case m.cfg.UnsubscribeToken != "" && strings.Contains(env.Subject, m.cfg.UnsubscribeToken):
		result.Unsubscribed = append(result.Unsubscribed, sender)
	case m.cfg.SubscribeToken != "" && strings.Contains(env.Subject, m.cfg.SubscribeToken):
		result.Subscribed = append(result.Subscribed, sender)
	}
}

func senderAddress(addr *imap.Address) string {
	if addr == nil || addr.MailboxName == "" || addr.HostName == "" {
		return ""
	}
	candidate := strings.ToLower(addr.MailboxName + "@" + addr.HostName)
	return emailRe.FindString(candidate)
}
