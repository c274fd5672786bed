package models

import "time"

// DeliveryStatus tracks the outcome of one channel dispatch.
type DeliveryStatus string

const (
	DeliveryPending DeliveryStatus = "pending"
	DeliverySent    DeliveryStatus = "sent"
	DeliveryFailed  DeliveryStatus = "failed"
)

// DeliveryAttempt is one entry in a notification's delivery audit trail.
// Rows are append-only: a re-dispatch inserts new attempts rather than
// rewriting old ones, and a batch insert per dispatch keeps concurrent
// sends from clobbering each other's history.
type DeliveryAttempt struct {
	BaseModel

	NotificationID string         `gorm:"type:uuid;index;not null" json:"notification_id"`
	// Seq numbers attempts per notification in dispatch order. Timestamps
	// alone cannot reconstruct the fan-out order: every attempt of one
	// dispatch shares the same batch-insert created_at, so the read path
	// orders by seq instead.
	Seq     int            `gorm:"not null" json:"seq"`
	Channel Channel        `gorm:"type:varchar(16);not null" json:"channel"`
	SentAt  time.Time      `gorm:"not null" json:"sent_at"`
	Status  DeliveryStatus `gorm:"type:varchar(16);not null;default:'pending'" json:"status"`
	Error   string         `gorm:"type:text" json:"error,omitempty"`
}
