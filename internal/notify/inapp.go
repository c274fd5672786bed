package notify

import (
	"context"
	"errors"

	"github.com/nkyriakou/themis/internal/models"
)

// Broadcaster pushes a payload to the live sessions of a user. Satisfied by
// *realtime.Hub; kept narrow so tests can substitute a recorder.
type Broadcaster interface {
	PushNotification(userID string, payload any) error
}

// InAppSender delivers notifications over the realtime websocket transport.
type InAppSender struct {
	hub Broadcaster
}

// NewInAppSender wraps the realtime transport as a channel sender.
func NewInAppSender(hub Broadcaster) *InAppSender {
	return &InAppSender{hub: hub}
}

// Channel implements Sender.
func (s *InAppSender) Channel() models.Channel { return models.ChannelInApp }

// Send implements Sender. Delivery fails when the transport is missing or the
// user has no connected session.
func (s *InAppSender) Send(ctx context.Context, recipient *models.User, n *models.Notification) error {
	if s.hub == nil {
		return errors.New("realtime transport unavailable")
	}
	return s.hub.PushNotification(n.UserID, n)
}
