package maintenance

import (
	"context"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	testutil "github.com/nkyriakou/themis/internal/database/testutil"
	"github.com/nkyriakou/themis/internal/models"
	"github.com/nkyriakou/themis/internal/notify"
)

func TestCleanerRunOnce(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	user := seedUser(t, db)

	svc, err := notify.NewService(db, nil)
	require.NoError(t, err)

	seedNotification := func(mutate func(*models.Notification)) string {
		n := models.Notification{
			UserID:   user.ID,
			Type:     models.TypeSystemAnnouncement,
			Title:    "t",
			Message:  "m",
			Channels: []models.Channel{models.ChannelInApp},
		}
		mutate(&n)
		require.NoError(t, db.Create(&n).Error)
		return n.ID
	}

	staleRead := seedNotification(func(n *models.Notification) {
		readAt := time.Now().UTC().AddDate(0, 0, -100)
		n.Read = true
		n.ReadAt = &readAt
	})
	recentRead := seedNotification(func(n *models.Notification) {
		readAt := time.Now().UTC().AddDate(0, 0, -3)
		n.Read = true
		n.ReadAt = &readAt
	})
	expired := seedNotification(func(n *models.Notification) {
		past := time.Now().UTC().Add(-time.Minute)
		n.ExpiresAt = &past
	})
	unread := seedNotification(func(n *models.Notification) {})

	c := NewCleaner(svc,
		WithRetentionDays(30),
		WithCron(cron.New(cron.WithLogger(cron.DiscardLogger))),
	)

	require.NoError(t, c.RunOnce(context.Background()))

	assertGone := func(id string) {
		var n models.Notification
		err := db.First(&n, "id = ?", id).Error
		require.ErrorIs(t, err, gorm.ErrRecordNotFound)
	}

	assertGone(staleRead)
	assertGone(expired)

	var kept models.Notification
	require.NoError(t, db.First(&kept, "id = ?", recentRead).Error)
	kept = models.Notification{}
	require.NoError(t, db.First(&kept, "id = ?", unread).Error)
}

func TestCleanerRunOnceIdempotent(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	svc, err := notify.NewService(db, nil)
	require.NoError(t, err)

	c := NewCleaner(svc)
	require.NoError(t, c.RunOnce(context.Background()))
	require.NoError(t, c.RunOnce(context.Background()))
}

func TestCleanerStartRejectsBadSchedule(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	svc, err := notify.NewService(db, nil)
	require.NoError(t, err)

	c := NewCleaner(svc, WithRetentionSchedule("not-a-spec"))
	require.Error(t, c.Start())
}

func TestCleanerNilServiceIsNoop(t *testing.T) {
	c := NewCleaner(nil)
	require.NoError(t, c.Start())
	require.NoError(t, c.RunOnce(context.Background()))
	<-c.Stop().Done()
}

func seedUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	user := &models.User{
		FirstName: "Eleni",
		LastName:  "Katsarou",
		Email:     "e.katsarou@example.gr",
		Role:      models.RoleSecretary,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}
