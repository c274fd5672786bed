package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openModelTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&User{}, &Notification{}, &DeliveryAttempt{}))
	return db
}

func TestNotificationPersistsChannelsAndMetadata(t *testing.T) {
	db := openModelTestDB(t)

	user := User{Email: "m.papadopoulou@example.gr", Role: RoleClient}
	require.NoError(t, db.Create(&user).Error)
	require.NotEmpty(t, user.ID)

	n := Notification{
		UserID:   user.ID,
		Type:     TypeCourtReminder,
		Title:    "Court hearing tomorrow",
		Message:  "Hearing at the Athens Court of First Instance, 09:30.",
		Channels: []Channel{ChannelInApp, ChannelEmail},
		Metadata: map[string]any{"court_room": "B12"},
	}
	require.NoError(t, db.Create(&n).Error)
	require.NotEmpty(t, n.ID)

	var got Notification
	require.NoError(t, db.First(&got, "id = ?", n.ID).Error)
	require.Equal(t, []Channel{ChannelInApp, ChannelEmail}, []Channel(got.Channels))
	require.Equal(t, "B12", got.Metadata["court_room"])
	require.False(t, got.Read)
	require.Nil(t, got.ReadAt)
}

func TestChannelAndEnumValidation(t *testing.T) {
	require.True(t, Channel("sms").Valid())
	require.False(t, Channel("pigeon").Valid())

	require.True(t, ValidType(TypePaymentDue))
	require.False(t, ValidType("lottery_win"))

	require.True(t, ValidPriority(PriorityUrgent))
	require.False(t, ValidPriority("extreme"))
}

func TestNotificationExpired(t *testing.T) {
	now := time.Now()

	n := Notification{}
	require.False(t, n.Expired(now))

	past := now.Add(-time.Minute)
	n.ExpiresAt = &past
	require.True(t, n.Expired(now))

	future := now.Add(time.Minute)
	n.ExpiresAt = &future
	require.False(t, n.Expired(now))
}

func TestUserFullName(t *testing.T) {
	u := User{FirstName: "Eleni", LastName: "Papadaki", Email: "e.papadaki@example.gr"}
	require.Equal(t, "Eleni Papadaki", u.FullName())

	u = User{Email: "office@example.gr"}
	require.Equal(t, "office@example.gr", u.FullName())
}
