package notify

import (
	"context"

	"github.com/nkyriakou/themis/internal/models"
)

// Sender delivers one notification over a single channel. Implementations
// own their failure domain: they return an error instead of panicking, and
// the dispatcher records the outcome without aborting remaining channels.
type Sender interface {
	// Channel identifies the transport this sender serves.
	Channel() models.Channel

	// Send attempts delivery to the recipient. The recipient may be nil when
	// the user record could not be resolved; senders that need contact
	// details must report that as an error so the attempt is auditable.
	Send(ctx context.Context, recipient *models.User, n *models.Notification) error
}
