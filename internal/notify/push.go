package notify

import (
	"context"
	"errors"

	"github.com/nkyriakou/themis/internal/models"
)

// ErrPushNotImplemented is recorded for every push attempt until a mobile
// provider is wired in. Keeping the channel registered (instead of silently
// succeeding) makes the gap visible in each notification's audit trail.
var ErrPushNotImplemented = errors.New("push channel not implemented")

// PushSender is a placeholder for a future mobile push integration.
type PushSender struct{}

// NewPushSender constructs the placeholder sender.
func NewPushSender() *PushSender { return &PushSender{} }

// Channel implements Sender.
func (s *PushSender) Channel() models.Channel { return models.ChannelPush }

// Send implements Sender and always fails with ErrPushNotImplemented.
func (s *PushSender) Send(ctx context.Context, recipient *models.User, n *models.Notification) error {
	return ErrPushNotImplemented
}
