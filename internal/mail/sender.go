package mail

import (
	"encoding/base64"
	"fmt"
	"log"
	"mime"
	"net/smtp"
	"strings"
	"time"

	"github.com/jcyag/ai-news-daily/internal/config"
	"github.com/jcyag/ai-news-daily/internal/digest"
)

const maxSendAttempts = 3

// Sender delivers rendered digests over SMTP with STARTTLS.
type Sender struct {
	cfg config.Email

	// Swappable for tests; net/smtp offers no interface.
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
	sleep    func(time.Duration)
}

// NewSender creates an SMTP sender. Credentials and recipients must be
// present; everything else has defaults.
func NewSender(cfg config.Email) (*Sender, error) {
	if cfg.Username == "" || cfg.Password == "" {
		return nil, fmt.Errorf("smtp credentials are required (set EMAIL_USER and EMAIL_PASSWORD)")
	}
	if len(cfg.Recipients) == 0 {
		return nil, fmt.Errorf("no recipients configured (set EMAIL_TO)")
	}
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	if cfg.SMTPHost == "" {
		cfg.SMTPHost = "smtp.gmail.com"
	}
	if cfg.SMTPPort == 0 {
		cfg.SMTPPort = 587
	}
	return &Sender{
		cfg:      cfg,
		sendMail: smtp.SendMail,
		sleep:    time.Sleep,
	}, nil
}

// Send delivers the digest to all recipients, retrying transient SMTP
// failures with exponential backoff.
func (s *Sender) Send(d *digest.Digest) error {
	msg := s.buildMessage(d)
	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.SMTPHost)

	var lastErr error
	for attempt := 1; attempt <= maxSendAttempts; attempt++ {
		if attempt > 1 {
			wait := time.Duration(1<<(attempt-1)) * time.Second
			log.Printf("[mail] retrying in %v", wait)
			s.sleep(wait)
		}
		if err := s.sendMail(addr, auth, s.cfg.From, s.cfg.Recipients, msg); err != nil {
			lastErr = err
			log.Printf("[mail] send failed (attempt %d/%d): %v", attempt, maxSendAttempts, err)
			continue
		}
		log.Printf("Digest sent to %d recipients: %s", len(s.cfg.Recipients), d.Subject)
		return nil
	}
	return fmt.Errorf("sending digest after %d attempts: %w", maxSendAttempts, lastErr)
}

// buildMessage assembles a multipart/alternative message carrying the
// markdown body as plain text next to the HTML rendering.
func (s *Sender) buildMessage(d *digest.Digest) []byte {
	const boundary = "=_ainews_digest_boundary"

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", s.cfg.From)
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(s.cfg.Recipients, ", "))
	fmt.Fprintf(&msg, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", d.Subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&msg, "Content-Type: multipart/alternative; boundary=%q\r\n", boundary)
	msg.WriteString("\r\n")

	writePart(&msg, boundary, "text/plain", d.Markdown)
	writePart(&msg, boundary, "text/html", d.HTML)
	fmt.Fprintf(&msg, "--%s--\r\n", boundary)

	return []byte(msg.String())
}

func writePart(msg *strings.Builder, boundary, contentType, body string) {
	fmt.Fprintf(msg, "--%s\r\n", boundary)
	fmt.Fprintf(msg, "Content-Type: %s; charset=utf-8\r\n", contentType)
	msg.WriteString("Content-Transfer-Encoding: base64\r\n")
	msg.WriteString("\r\n")

	encoded := base64.StdEncoding.EncodeToString([]byte(body))
	for len(encoded) > 76 {
		msg.WriteString(encoded[:76])
		msg.WriteString("\r\n")
		encoded = encoded[76:]
	}
	msg.WriteString(encoded)
	msg.WriteString("\r\n")
}
