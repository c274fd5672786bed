package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nkyriakou/themis/internal/models"
	"github.com/nkyriakou/themis/pkg/mail"
	"github.com/nkyriakou/themis/pkg/sms"
)

type recordingMailer struct {
	sent []mail.Message
	err  error
}

func (m *recordingMailer) Send(ctx context.Context, msg mail.Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

type recordingSMSClient struct {
	sent []sms.Message
	err  error
}

func (c *recordingSMSClient) Send(ctx context.Context, msg sms.Message) error {
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, msg)
	return nil
}

type recordingBroadcaster struct {
	userIDs  []string
	payloads []any
	err      error
}

func (b *recordingBroadcaster) PushNotification(userID string, payload any) error {
	if b.err != nil {
		return b.err
	}
	b.userIDs = append(b.userIDs, userID)
	b.payloads = append(b.payloads, payload)
	return nil
}

func TestEmailSenderBuildsMessage(t *testing.T) {
	mailer := &recordingMailer{}
	sender := NewEmailSender(mailer)
	recipient := &models.User{Email: "m.papadopoulou@example.gr"}

	n := &models.Notification{
		Title:      "Hearing reminder",
		Message:    "Court hearing at 09:30.",
		ActionText: "Open case",
		ActionURL:  "https://crm.example.gr/cases/42",
	}
	require.NoError(t, sender.Send(context.Background(), recipient, n))
	require.Len(t, mailer.sent, 1)

	msg := mailer.sent[0]
	require.Equal(t, recipient.Email, msg.To)
	require.Equal(t, "Hearing reminder", msg.Subject)
	require.Contains(t, msg.Body, "Court hearing at 09:30.")
	require.Contains(t, msg.Body, "Open case: https://crm.example.gr/cases/42")
}

func TestEmailSenderMissingContact(t *testing.T) {
	sender := NewEmailSender(&recordingMailer{})
	n := &models.Notification{Title: "t", Message: "m"}

	err := sender.Send(context.Background(), nil, n)
	require.ErrorContains(t, err, "recipient not found")

	err = sender.Send(context.Background(), &models.User{Email: "  "}, n)
	require.ErrorContains(t, err, "no email address")
}

func TestSMSSenderTruncatesBody(t *testing.T) {
	client := &recordingSMSClient{}
	sender := NewSMSSender(client)
	recipient := &models.User{Mobile: "+306912345678"}

	long := strings.Repeat("α", 200) // alpha, multi-byte in UTF-8
	n := &models.Notification{Title: "Deadline", Message: long}
	require.NoError(t, sender.Send(context.Background(), recipient, n))
	require.Len(t, client.sent, 1)

	msg := client.sent[0]
	require.Equal(t, recipient.Mobile, msg.To)
	require.True(t, strings.HasPrefix(msg.Body, "Deadline: "))
	require.Equal(t, 140, len([]rune(strings.TrimPrefix(msg.Body, "Deadline: "))))
}

func TestSMSSenderShortBodyUntouched(t *testing.T) {
	client := &recordingSMSClient{}
	sender := NewSMSSender(client)

	n := &models.Notification{Title: "Invoice", Message: "Invoice 17 is due."}
	require.NoError(t, sender.Send(context.Background(), &models.User{Mobile: "+306900000000"}, n))
	require.Equal(t, "Invoice: Invoice 17 is due.", client.sent[0].Body)
}

func TestSMSSenderMissingContact(t *testing.T) {
	sender := NewSMSSender(&recordingSMSClient{})
	n := &models.Notification{Title: "t", Message: "m"}

	err := sender.Send(context.Background(), nil, n)
	require.ErrorContains(t, err, "recipient not found")

	err = sender.Send(context.Background(), &models.User{}, n)
	require.ErrorContains(t, err, "no mobile number")
}

func TestInAppSenderTargetsNotificationOwner(t *testing.T) {
	hub := &recordingBroadcaster{}
	sender := NewInAppSender(hub)

	n := &models.Notification{UserID: "user-1", Title: "t", Message: "m"}
	require.NoError(t, sender.Send(context.Background(), nil, n))
	require.Equal(t, []string{"user-1"}, hub.userIDs)
	require.Same(t, n, hub.payloads[0])
}

func TestInAppSenderPropagatesNoSubscribers(t *testing.T) {
	sentinel := errors.New("no connected sessions")
	sender := NewInAppSender(&recordingBroadcaster{err: sentinel})

	err := sender.Send(context.Background(), nil, &models.Notification{UserID: "user-1"})
	require.ErrorIs(t, err, sentinel)
}

func TestPushSenderAlwaysFails(t *testing.T) {
	sender := NewPushSender()
	err := sender.Send(context.Background(), &models.User{}, &models.Notification{})
	require.ErrorIs(t, err, ErrPushNotImplemented)
	require.Equal(t, models.ChannelPush, sender.Channel())
}

func TestMissingContactEndToEnd(t *testing.T) {
	db := openNotifyTestDB(t)
	user := createTestUser(t, db, func(u *models.User) {
		u.Email = ""
		u.Mobile = ""
	})

	hub := &recordingBroadcaster{}
	svc := newTestService(t, db,
		NewInAppSender(hub),
		NewEmailSender(&recordingMailer{}),
	)

	n, err := svc.CreateAndSend(context.Background(), CreateInput{
		UserID:   user.ID,
		Type:     models.TypeCourtReminder,
		Title:    "Hearing",
		Message:  "Tomorrow at 09:30.",
		Channels: []models.Channel{models.ChannelInApp, models.ChannelEmail},
	})
	require.NoError(t, err)
	require.Len(t, n.Attempts, 2)

	require.Equal(t, models.ChannelInApp, n.Attempts[0].Channel)
	require.Equal(t, models.DeliverySent, n.Attempts[0].Status)
	require.Equal(t, models.ChannelEmail, n.Attempts[1].Channel)
	require.Equal(t, models.DeliveryFailed, n.Attempts[1].Status)
	require.Contains(t, n.Attempts[1].Error, "no email address")
}
