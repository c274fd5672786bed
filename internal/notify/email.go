package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nkyriakou/themis/internal/models"
	"github.com/nkyriakou/themis/pkg/mail"
)

// EmailSender delivers notifications via the SMTP mailer.
type EmailSender struct {
	mailer mail.Mailer
}

// NewEmailSender wraps a Mailer as a channel sender.
func NewEmailSender(mailer mail.Mailer) *EmailSender {
	return &EmailSender{mailer: mailer}
}

// Channel implements Sender.
func (s *EmailSender) Channel() models.Channel { return models.ChannelEmail }

// Send implements Sender. A missing address is reported as an error so the
// attempt shows up as failed in the audit trail instead of vanishing.
func (s *EmailSender) Send(ctx context.Context, recipient *models.User, n *models.Notification) error {
	if s.mailer == nil {
		return errors.New("email transport unavailable")
	}
	if recipient == nil {
		return errors.New("recipient not found")
	}
	if strings.TrimSpace(recipient.Email) == "" {
		return errors.New("recipient has no email address")
	}

	body := n.Message
	if n.ActionURL != "" {
		label := n.ActionText
		if label == "" {
			label = n.ActionURL
		}
		body = fmt.Sprintf("%s\r\n\r\n%s: %s", body, label, n.ActionURL)
	}

	return s.mailer.Send(ctx, mail.Message{
		To:      recipient.Email,
		Subject: n.Title,
		Body:    body,
	})
}
