package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"io"
	"net"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewSMTPMailerValidatesConfig(t *testing.T) {
	_, err := NewSMTPMailer(SMTPSettings{Enabled: true})
	require.ErrorContains(t, err, "host is required")

	mailer, err := NewSMTPMailer(SMTPSettings{Enabled: false})
	require.NoError(t, err)
	require.NotNil(t, mailer)
}

func TestSendDisabled(t *testing.T) {
	mailer, err := NewSMTPMailer(SMTPSettings{Enabled: false})
	require.NoError(t, err)

	err = mailer.Send(context.Background(), Message{To: "a@example.gr", Subject: "x", Body: "y"})
	require.ErrorIs(t, err, ErrSMTPDisabled)
}

func TestSendValidatesAddresses(t *testing.T) {
	mailer, err := NewSMTPMailer(SMTPSettings{
		Enabled: true,
		Host:    "smtp.example.gr",
		Port:    587,
		From:    "no-reply@example.gr",
	})
	require.NoError(t, err)

	err = mailer.Send(context.Background(), Message{To: "   ", Subject: "x"})
	require.ErrorContains(t, err, "recipient is required")

	err = mailer.Send(context.Background(), Message{To: "not-an-address", Subject: "x"})
	require.ErrorContains(t, err, "invalid recipient")
}

func TestDefaultTimeoutAssigned(t *testing.T) {
	mailer, err := NewSMTPMailer(SMTPSettings{
		Enabled: true,
		Host:    "smtp.example.gr",
		Port:    587,
	})
	require.NoError(t, err)

	sm, ok := mailer.(*smtpMailer)
	require.True(t, ok)
	require.Equal(t, 10*time.Second, sm.cfg.Timeout)
}

func TestFormatMessageSanitisesSubject(t *testing.T) {
	content := formatMessage("from@example.gr", "to@example.gr", "Subject\r\nBreak", "Body")
	require.Contains(t, content, "From: from@example.gr")
	require.Contains(t, content, "Subject: Subject  Break")
	require.True(t, strings.HasSuffix(content, "Body"))
}

type fakeSMTPClient struct {
	mailFrom string
	rcptTo   string
	data     bytes.Buffer
	quit     bool
}

func (f *fakeSMTPClient) Mail(from string) error { f.mailFrom = from; return nil }
func (f *fakeSMTPClient) Rcpt(to string) error   { f.rcptTo = to; return nil }
func (f *fakeSMTPClient) Data() (io.WriteCloser, error) {
	return nopWriteCloser{&f.data}, nil
}
func (f *fakeSMTPClient) Quit() error                   { f.quit = true; return nil }
func (f *fakeSMTPClient) Close() error                  { return nil }
func (f *fakeSMTPClient) StartTLS(*tls.Config) error    { return nil }
func (f *fakeSMTPClient) Auth(smtp.Auth) error          { return nil }
func (f *fakeSMTPClient) Extension(string) (bool, string) { return false, "" }

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func TestSendWritesEnvelopeAndBody(t *testing.T) {
	fake := &fakeSMTPClient{}
	server, client := net.Pipe()
	t.Cleanup(func() { _ = server.Close() })

	mailer := &smtpMailer{
		cfg: SMTPSettings{
			Enabled: true,
			Host:    "smtp.example.gr",
			Port:    587,
			From:    "no-reply@example.gr",
			Timeout: time.Second,
		},
		dialFn: func(ctx context.Context, cfg SMTPSettings) (net.Conn, smtpClient, error) {
			return client, fake, nil
		},
		authFn: func(smtpClient, SMTPSettings) error { return nil },
	}

	err := mailer.Send(context.Background(), Message{
		To:      "k.papadakis@example.gr",
		Subject: "Deadline approaching",
		Body:    "Filing deadline is in 3 days.",
	})
	require.NoError(t, err)
	require.Equal(t, "no-reply@example.gr", fake.mailFrom)
	require.Equal(t, "k.papadakis@example.gr", fake.rcptTo)
	require.Contains(t, fake.data.String(), "Deadline approaching")
	require.True(t, fake.quit)
}
