package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/nkyriakou/themis/internal/models"
	apperrors "github.com/nkyriakou/themis/pkg/errors"
	"github.com/nkyriakou/themis/pkg/metrics"
)

// ListInput defines filters for querying a user's notifications.
type ListInput struct {
	UserID     string
	Limit      int
	Offset     int
	UnreadOnly bool
}

// List returns the user's notifications ordered by recency, excluding rows
// past their expiry.
func (s *Service) List(ctx context.Context, input ListInput) ([]models.Notification, error) {
	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return nil, apperrors.NewBadRequest("user id is required")
	}

	limit := input.Limit
	if limit <= 0 || limit > maxListLimit {
		limit = defaultListLimit
	}
	offset := input.Offset
	if offset < 0 {
		offset = 0
	}

	query := s.scopeLive(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset)
	if input.UnreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var rows []models.Notification
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("notify: list notifications: %w", err)
	}
	return rows, nil
}

// Get loads a single notification owned by the user, including its delivery
// history.
func (s *Service) Get(ctx context.Context, userID, id string) (*models.Notification, error) {
	var n models.Notification
	err := s.db.WithContext(ctx).
		Preload("Attempts", orderAttempts).
		Where("id = ? AND user_id = ?", id, userID).
		First(&n).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("notify: load notification: %w", err)
	}
	return &n, nil
}

// GetByID loads a notification regardless of owner. Reserved for staff
// surfaces such as re-dispatch; owner-facing reads go through Get.
func (s *Service) GetByID(ctx context.Context, id string) (*models.Notification, error) {
	var n models.Notification
	err := s.db.WithContext(ctx).
		Preload("Attempts", orderAttempts).
		Where("id = ?", id).
		First(&n).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("notify: load notification: %w", err)
	}
	return &n, nil
}

// orderAttempts presents delivery history in dispatch order. Seq is the only
// reliable key: one dispatch's attempts share a batch-insert created_at and
// a single clock reading for sent_at.
func orderAttempts(db *gorm.DB) *gorm.DB {
	return db.Order("seq ASC")
}

// UnreadCount returns the number of live unread notifications for a user.
func (s *Service) UnreadCount(ctx context.Context, userID string) (int64, error) {
	if strings.TrimSpace(userID) == "" {
		return 0, apperrors.NewBadRequest("user id is required")
	}

	var count int64
	err := s.scopeLive(ctx).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("notify: unread count: %w", err)
	}
	return count, nil
}

// MarkRead transitions a notification to read exactly once; repeated calls
// leave read_at untouched. Foreign or absent ids yield ErrNotFound.
func (s *Service) MarkRead(ctx context.Context, userID, id string) (*models.Notification, error) {
	now := s.now().UTC()
	result := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND user_id = ? AND is_read = ?", id, userID, false).
		Updates(map[string]any{"is_read": true, "read_at": now})
	if result.Error != nil {
		return nil, fmt.Errorf("notify: mark read: %w", result.Error)
	}

	// Zero rows means either already read (idempotent success) or not owned.
	var n models.Notification
	if err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&n).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("notify: load notification: %w", err)
	}
	return &n, nil
}

// MarkManyRead marks the given notifications read for the owning user.
// Ids owned by other users, or unknown ids, are silently excluded.
func (s *Service) MarkManyRead(ctx context.Context, userID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	result := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id IN ? AND user_id = ? AND is_read = ?", ids, userID, false).
		Updates(map[string]any{"is_read": true, "read_at": s.now().UTC()})
	if result.Error != nil {
		return 0, fmt.Errorf("notify: mark many read: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// MarkAllRead marks every unread notification of the user as read.
func (s *Service) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	result := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]any{"is_read": true, "read_at": s.now().UTC()})
	if result.Error != nil {
		return 0, fmt.Errorf("notify: mark all read: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// Delete removes a notification owned by the user.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Notification{})
	if result.Error != nil {
		return fmt.Errorf("notify: delete notification: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// CleanupRead deletes read notifications whose read_at is older than the
// retention window. Returns the number of rows removed; repeated calls with
// no newly eligible rows remove zero.
func (s *Service) CleanupRead(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		retentionDays = DefaultRetentionDays
	}
	cutoff := s.now().UTC().AddDate(0, 0, -retentionDays)

	result := s.db.WithContext(ctx).
		Where("is_read = ? AND read_at < ?", true, cutoff).
		Delete(&models.Notification{})
	if result.Error != nil {
		return 0, fmt.Errorf("notify: retention cleanup: %w", result.Error)
	}

	if result.RowsAffected > 0 {
		metrics.NotificationsCleaned.WithLabelValues("retention").Add(float64(result.RowsAffected))
	}
	return result.RowsAffected, nil
}

// CleanupExpired deletes notifications whose expires_at has passed. This
// sweep is independent of CleanupRead; the two may race harmlessly since
// deleting an absent row is a no-op.
func (s *Service) CleanupExpired(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at <= ?", s.now().UTC()).
		Delete(&models.Notification{})
	if result.Error != nil {
		return 0, fmt.Errorf("notify: expiry cleanup: %w", result.Error)
	}

	if result.RowsAffected > 0 {
		metrics.NotificationsCleaned.WithLabelValues("expiry").Add(float64(result.RowsAffected))
	}
	return result.RowsAffected, nil
}

// scopeLive restricts a query to notifications that have not expired.
func (s *Service) scopeLive(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("expires_at IS NULL OR expires_at > ?", s.now().UTC())
}
