package notify

import (
	"context"
	"fmt"
	"strings"

	"cropwatch/internal/types"
)

// EmailSender abstracts the mail provider (SMTP relay, transactional API).
type EmailSender interface {
	SendMail(ctx context.Context, from, to, subject, body string) error
}

// EmailChannel renders alerts into plain-text mail and hands them to the
// configured sender.
type EmailChannel struct {
	sender EmailSender
	from   string
}

// NewEmailChannel creates an email delivery channel.
func NewEmailChannel(sender EmailSender, from string) *EmailChannel {
	return &EmailChannel{sender: sender, from: from}
}

func (c *EmailChannel) Name() string { return "email" }

// Send renders the alert and delivers it via the sender.
func (c *EmailChannel) Send(ctx context.Context, recipient string, kind types.AlertKind, msg types.AlertMessage) error {
	if err := c.sender.SendMail(ctx, c.from, recipient, msg.Title, renderEmailBody(kind, msg)); err != nil {
		return types.NewAppError(types.ErrCodeUpstreamChannel, "email delivery failed", err)
	}
	return nil
}

// renderEmailBody builds the plain-text mail body. Equipment and materials
// lists appear only when the alert carries them.
func renderEmailBody(kind types.AlertKind, msg types.AlertMessage) string {
	var b strings.Builder
	b.WriteString(msg.Body)
	b.WriteString("\n")

	if len(msg.EquipmentNeeded) > 0 {
		fmt.Fprintf(&b, "\nEquipment needed: %s\n", strings.Join(msg.EquipmentNeeded, ", "))
	}
	if len(msg.MaterialsNeeded) > 0 {
		fmt.Fprintf(&b, "Materials needed: %s\n", strings.Join(msg.MaterialsNeeded, ", "))
	}
	if len(msg.Actions) > 0 {
		b.WriteString("\nAvailable actions:\n")
		for _, a := range msg.Actions {
			fmt.Fprintf(&b, "  - %s\n", a.Text)
		}
	}

	fmt.Fprintf(&b, "\nAlert type: %s\nTask: %s\n", kind, msg.TaskID)
	return b.String()
}
