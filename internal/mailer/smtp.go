package mailer

import (
	"context"
	"fmt"
	"mime"
	"strings"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
)

// SMTP sends mail through an SMTP relay with STARTTLS and optional
// PLAIN authentication.
type SMTP struct {
	addr     string
	username string
	password string
}

// NewSMTP creates an SMTP mailer from the given configuration.
func NewSMTP(cfg Config) *SMTP {
	return &SMTP{
		addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		username: cfg.Username,
		password: cfg.Password,
	}
}

func (s *SMTP) Name() string { return "smtp" }

// Send delivers the message via the relay. The send itself cannot be
// interrupted mid-transaction; ctx cancellation abandons the wait.
func (s *SMTP) Send(ctx context.Context, msg *Message) error {
	var auth sasl.Client
	if s.username != "" {
		auth = sasl.NewPlainClient("", s.username, s.password)
	}

	r := strings.NewReader(encode(msg))

	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(s.addr, auth, msg.From, msg.To, r)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send to %s: %w", strings.Join(msg.To, ", "), err)
		}
		return nil
	}
}

// encode renders the message as an RFC 5322 text/plain email. The subject is
// Q-encoded so non-ASCII subjects survive the transport.
func encode(msg *Message) string {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", msg.From)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(msg.To, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	fmt.Fprintf(&b, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("Content-Transfer-Encoding: 8bit\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.Body)
	return b.String()
}
