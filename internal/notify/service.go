package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/nkyriakou/themis/internal/models"
	apperrors "github.com/nkyriakou/themis/pkg/errors"
	"github.com/nkyriakou/themis/pkg/logger"
	"github.com/nkyriakou/themis/pkg/metrics"
)

// DefaultRetentionDays is how long read notifications are kept before the
// retention sweep removes them.
const DefaultRetentionDays = 90

// DefaultSendTimeout bounds each channel dispatch so one stalled transport
// cannot hold up the rest of the fan-out.
const DefaultSendTimeout = 10 * time.Second

const (
	defaultListLimit = 25
	maxListLimit     = 100
)

// Service orchestrates notification persistence, per-channel delivery, and
// the read/cleanup lifecycle. Delivery is best-effort: channel failures are
// recorded in the attempt log and never escalate; only a failure to persist
// the log itself is returned to the caller.
type Service struct {
	db          *gorm.DB
	senders     map[models.Channel]Sender
	sendTimeout time.Duration
	now         func() time.Time
	log         *zap.Logger
}

// Option customises the Service.
type Option func(*Service)

// WithSendTimeout overrides the per-channel dispatch timeout.
func WithSendTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.sendTimeout = d
		}
	}
}

// WithClock overrides the clock, primarily for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService constructs the dispatcher over the given channel senders.
func NewService(db *gorm.DB, senders []Sender, opts ...Option) (*Service, error) {
	if db == nil {
		return nil, errors.New("notify: db is required")
	}

	indexed := make(map[models.Channel]Sender, len(senders))
	for _, sender := range senders {
		if sender == nil {
			continue
		}
		indexed[sender.Channel()] = sender
	}

	svc := &Service{
		db:          db,
		senders:     indexed,
		sendTimeout: DefaultSendTimeout,
		now:         time.Now,
		log:         logger.WithModule("notify"),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// CreateInput defines the attributes required to persist a notification.
type CreateInput struct {
	UserID       string
	Type         string
	Title        string
	Message      string
	Priority     string
	ActionURL    string
	ActionText   string
	Metadata     map[string]any
	RelatedModel string
	RelatedID    string
	ExpiresAt    *time.Time
	Channels     []models.Channel
}

// Create validates and persists a notification without dispatching it.
func (s *Service) Create(ctx context.Context, input CreateInput) (*models.Notification, error) {
	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return nil, apperrors.NewBadRequest("user id is required")
	}
	if !models.ValidType(input.Type) {
		return nil, apperrors.NewBadRequest(fmt.Sprintf("unknown notification type %q", input.Type))
	}

	title := strings.TrimSpace(input.Title)
	switch {
	case title == "":
		return nil, apperrors.NewBadRequest("title is required")
	case len([]rune(title)) > models.MaxTitleLength:
		return nil, apperrors.NewBadRequest(fmt.Sprintf("title exceeds %d characters", models.MaxTitleLength))
	}

	message := strings.TrimSpace(input.Message)
	switch {
	case message == "":
		return nil, apperrors.NewBadRequest("message is required")
	case len([]rune(message)) > models.MaxMessageLength:
		return nil, apperrors.NewBadRequest(fmt.Sprintf("message exceeds %d characters", models.MaxMessageLength))
	}

	priority := input.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !models.ValidPriority(priority) {
		return nil, apperrors.NewBadRequest(fmt.Sprintf("unknown priority %q", input.Priority))
	}

	channels, err := normalizeChannels(input.Channels)
	if err != nil {
		return nil, err
	}

	n := models.Notification{
		UserID:       userID,
		Type:         input.Type,
		Title:        title,
		Message:      message,
		Priority:     priority,
		ActionURL:    strings.TrimSpace(input.ActionURL),
		ActionText:   strings.TrimSpace(input.ActionText),
		RelatedModel: strings.TrimSpace(input.RelatedModel),
		RelatedID:    strings.TrimSpace(input.RelatedID),
		ExpiresAt:    input.ExpiresAt,
		Channels:     channels,
	}
	if input.Metadata != nil {
		n.Metadata = input.Metadata
	}

	if err := s.db.WithContext(ctx).Create(&n).Error; err != nil {
		return nil, fmt.Errorf("notify: create notification: %w", err)
	}

	metrics.NotificationsCreated.WithLabelValues(n.Type).Inc()
	return &n, nil
}

// Send walks the notification's channel list in order, dispatching each to
// its sender under a bounded timeout and appending one attempt per channel
// to the audit trail. All attempts from this call are persisted with a
// single batch insert once the fan-out completes, so concurrent Send calls
// on the same record can only ever add history, never lose it.
func (s *Service) Send(ctx context.Context, n *models.Notification) error {
	if n == nil || n.ID == "" {
		return errors.New("notify: notification must be persisted before sending")
	}
	if len(n.Channels) == 0 {
		return nil
	}

	recipient, err := s.resolveRecipient(ctx, n.UserID)
	if err != nil {
		return err
	}

	// Attempts are numbered after the existing history so the dispatch order
	// stays reconstructible across re-sends.
	var prior int64
	if err := s.db.WithContext(ctx).
		Model(&models.DeliveryAttempt{}).
		Where("notification_id = ?", n.ID).
		Count(&prior).Error; err != nil {
		return fmt.Errorf("notify: count prior attempts: %w", err)
	}

	attempts := make([]models.DeliveryAttempt, 0, len(n.Channels))
	for i, channel := range n.Channels {
		attempt := models.DeliveryAttempt{
			NotificationID: n.ID,
			Seq:            int(prior) + i,
			Channel:        channel,
			SentAt:         s.now().UTC(),
			Status:         models.DeliveryPending,
		}

		if sendErr := s.dispatch(ctx, channel, recipient, n); sendErr != nil {
			attempt.Status = models.DeliveryFailed
			attempt.Error = sendErr.Error()
			s.log.Warn("channel delivery failed",
				zap.String("notification_id", n.ID),
				zap.String("channel", string(channel)),
				zap.Error(sendErr),
			)
		} else {
			attempt.Status = models.DeliverySent
		}

		metrics.DeliveryAttempts.WithLabelValues(string(channel), string(attempt.Status)).Inc()
		attempts = append(attempts, attempt)
	}

	if err := s.db.WithContext(ctx).Create(&attempts).Error; err != nil {
		return fmt.Errorf("notify: record delivery attempts: %w", err)
	}

	n.Attempts = append(n.Attempts, attempts...)
	return nil
}

// CreateAndSend persists a notification and immediately dispatches it.
// Channel failures do not roll back creation; the returned error reflects
// creation or attempt-log persistence problems only.
func (s *Service) CreateAndSend(ctx context.Context, input CreateInput) (*models.Notification, error) {
	n, err := s.Create(ctx, input)
	if err != nil {
		return nil, err
	}
	if err := s.Send(ctx, n); err != nil {
		return n, err
	}
	return n, nil
}

func (s *Service) dispatch(ctx context.Context, channel models.Channel, recipient *models.User, n *models.Notification) error {
	sender, ok := s.senders[channel]
	if !ok {
		return fmt.Errorf("no sender registered for channel %q", channel)
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.sendTimeout)
	defer cancel()
	return sender.Send(sendCtx, recipient, n)
}

func (s *Service) resolveRecipient(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error
	switch {
	case err == nil:
		return &user, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		// Senders that need contact details will record the failure.
		return nil, nil
	default:
		return nil, fmt.Errorf("notify: load recipient: %w", err)
	}
}

func normalizeChannels(channels []models.Channel) ([]models.Channel, error) {
	if len(channels) == 0 {
		return []models.Channel{models.ChannelInApp}, nil
	}

	seen := make(map[models.Channel]struct{}, len(channels))
	out := make([]models.Channel, 0, len(channels))
	for _, ch := range channels {
		if !ch.Valid() {
			return nil, apperrors.NewBadRequest(fmt.Sprintf("unknown channel %q", ch))
		}
		if _, dup := seen[ch]; dup {
			continue
		}
		seen[ch] = struct{}{}
		out = append(out, ch)
	}
	return out, nil
}
