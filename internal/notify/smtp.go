package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// SMTPSender delivers email through a plain SMTP relay. Auth may be nil for
// unauthenticated local relays.
type SMTPSender struct {
	Addr string
	Auth smtp.Auth
}

// SendMail implements EmailSender. net/smtp offers no context support; the
// call is bounded only by the relay's own timeouts, so point Addr at a
// nearby relay rather than a remote provider.
func (s *SMTPSender) SendMail(_ context.Context, from, to, subject, body string) error {
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	if err := smtp.SendMail(s.Addr, s.Auth, from, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}
	return nil
}
