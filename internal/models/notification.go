package models

import (
	"time"

	"gorm.io/datatypes"
)

// Channel identifies a delivery transport for a notification.
type Channel string

// Supported delivery channels, in the order clients usually request them.
const (
	ChannelInApp Channel = "in_app"
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
	ChannelPush  Channel = "push"
)

// KnownChannels lists every channel the dispatcher understands.
var KnownChannels = []Channel{ChannelInApp, ChannelEmail, ChannelSMS, ChannelPush}

// Valid reports whether the channel belongs to the supported set.
func (c Channel) Valid() bool {
	switch c {
	case ChannelInApp, ChannelEmail, ChannelSMS, ChannelPush:
		return true
	}
	return false
}

// Notification categories, a closed set driven by CRM events.
const (
	TypeCourtReminder      = "court_reminder"
	TypeDeadlineReminder   = "deadline_reminder"
	TypePaymentDue         = "payment_due"
	TypeDocumentUploaded   = "document_uploaded"
	TypeSystemAnnouncement = "system_announcement"
	TypeTaskAssigned       = "task_assigned"
	TypeBirthdayReminder   = "birthday_reminder"
)

// KnownTypes lists the valid notification categories.
var KnownTypes = []string{
	TypeCourtReminder,
	TypeDeadlineReminder,
	TypePaymentDue,
	TypeDocumentUploaded,
	TypeSystemAnnouncement,
	TypeTaskAssigned,
	TypeBirthdayReminder,
}

// ValidType reports whether t is one of the closed notification categories.
func ValidType(t string) bool {
	for _, known := range KnownTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Priority levels.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// ValidPriority reports whether p is a recognised priority level.
func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Entity kinds a notification may weakly reference via RelatedModel/RelatedID.
const (
	RelatedCourt       = "Court"
	RelatedDeadline    = "Deadline"
	RelatedAppointment = "Appointment"
	RelatedClient      = "Client"
	RelatedDocument    = "Document"
	RelatedFinancial   = "Financial"
)

// Content length limits enforced on creation.
const (
	MaxTitleLength   = 200
	MaxMessageLength = 1000
)

// Notification is a message addressed to a single recipient, delivered
// best-effort across the channels it requests. The per-channel delivery
// history lives in DeliveryAttempt rows so that concurrent dispatches
// append instead of overwriting each other.
type Notification struct {
	BaseModel

	UserID string `gorm:"type:uuid;index;not null" json:"user_id"`
	Type   string `gorm:"type:varchar(64);not null" json:"type"`

	Title   string `gorm:"type:varchar(200);not null" json:"title"`
	Message string `gorm:"type:varchar(1000);not null" json:"message"`

	Priority string `gorm:"type:varchar(16);default:'medium'" json:"priority"`

	Read   bool       `gorm:"column:is_read;default:false;index" json:"read"`
	ReadAt *time.Time `gorm:"index" json:"read_at,omitempty"`

	ActionURL  string `gorm:"type:text" json:"action_url,omitempty"`
	ActionText string `gorm:"type:varchar(100)" json:"action_text,omitempty"`

	Metadata datatypes.JSONMap `json:"metadata,omitempty"`

	RelatedModel string `gorm:"type:varchar(32)" json:"related_model,omitempty"`
	RelatedID    string `gorm:"type:uuid" json:"related_id,omitempty"`

	ExpiresAt *time.Time `gorm:"index" json:"expires_at,omitempty"`

	Channels datatypes.JSONSlice[Channel] `json:"channels"`

	Attempts []DeliveryAttempt `gorm:"foreignKey:NotificationID;constraint:OnDelete:CASCADE" json:"attempts,omitempty"`
}

// Expired reports whether the notification is past its expiry instant.
func (n *Notification) Expired(now time.Time) bool {
	return n.ExpiresAt != nil && !n.ExpiresAt.After(now)
}
