package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nkyriakou/themis/internal/models"
	"github.com/nkyriakou/themis/pkg/sms"
)

// smsBodyLimit caps the message portion of a text; the title rides in front.
const smsBodyLimit = 140

// SMSSender delivers notifications via the HTTP SMS gateway.
type SMSSender struct {
	client sms.Sender
}

// NewSMSSender wraps an sms.Sender as a channel sender.
func NewSMSSender(client sms.Sender) *SMSSender {
	return &SMSSender{client: client}
}

// Channel implements Sender.
func (s *SMSSender) Channel() models.Channel { return models.ChannelSMS }

// Send implements Sender. The body is the title, a ": " separator, then the
// message truncated to 140 runes; the separator is a readability choice on
// top of the title-plus-truncated-message format. Missing numbers follow the
// same failed-with-reason policy as email.
func (s *SMSSender) Send(ctx context.Context, recipient *models.User, n *models.Notification) error {
	if s.client == nil {
		return errors.New("sms transport unavailable")
	}
	if recipient == nil {
		return errors.New("recipient not found")
	}
	if strings.TrimSpace(recipient.Mobile) == "" {
		return errors.New("recipient has no mobile number")
	}

	return s.client.Send(ctx, sms.Message{
		To:   recipient.Mobile,
		Body: fmt.Sprintf("%s: %s", n.Title, truncateRunes(n.Message, smsBodyLimit)),
	})
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
