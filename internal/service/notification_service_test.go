package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pushmasterhq/pushmaster-api/pkg/config"
	"github.com/pushmasterhq/pushmaster-api/pkg/notify"
)

type captureMailSender struct {
	mails chan notify.Mail
}

func (s *captureMailSender) SendMail(mail notify.Mail) error {
	s.mails <- mail
	return nil
}

type captureIMSender struct {
	ims chan notify.IM
}

func (s *captureIMSender) SendIM(im notify.IM) error {
	s.ims <- im
	return nil
}

func TestRenderIMEscapesParameters(t *testing.T) {
	message := RenderIM(`{pushmaster} accepted your request "{subject}" into {push}. {url}`, map[string]string{
		"pushmaster": "alice",
		"subject":    `<script>alert("x")</script>`,
		"push":       "the push",
		"url":        "http://pushmaster.test/pushes/p1",
	})
	require.Contains(t, message, "alice accepted your request")
	require.NotContains(t, message, "<script>")
	require.Contains(t, message, "&lt;script&gt;")
}

func TestRenderIMLeavesUnknownPlaceholders(t *testing.T) {
	message := RenderIM("Please verify your changes on {stage}. {url}", map[string]string{"stage": "stagea"})
	require.Contains(t, message, "stagea")
	require.Contains(t, message, "{url}", "unmatched placeholders pass through")
}

func TestNotificationServiceDelivers(t *testing.T) {
	mailSender := &captureMailSender{mails: make(chan notify.Mail, 4)}
	imSender := &captureIMSender{ims: make(chan notify.IM, 4)}

	svc := NewNotificationService(mailSender, imSender, nil, config.NotificationsConfig{
		Enabled:    true,
		Workers:    1,
		BufferSize: 4,
		MaxRetries: 1,
		RetryDelay: 10 * time.Millisecond,
	}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)
	defer svc.Stop()

	svc.SendMail([]string{"dev@example.com"}, "dev: Ship feature", "Changes are checked in.", "push-requests@example.com")
	svc.SendIM("dev@example.com", "Please verify your changes on {stage}.", map[string]string{"stage": "stagea"})

	select {
	case mail := <-mailSender.mails:
		require.Equal(t, []string{"dev@example.com"}, mail.To)
		require.Equal(t, "dev: Ship feature", mail.Subject)
	case <-time.After(2 * time.Second):
		t.Fatal("mail was not delivered")
	}

	select {
	case im := <-imSender.ims:
		require.Equal(t, "dev@example.com", im.To)
		require.Equal(t, "Please verify your changes on stagea.", im.Message)
	case <-time.After(2 * time.Second):
		t.Fatal("im was not delivered")
	}
}

func TestNotificationServiceDisabledDropsSilently(t *testing.T) {
	mailSender := &captureMailSender{mails: make(chan notify.Mail, 1)}
	svc := NewNotificationService(mailSender, &captureIMSender{ims: make(chan notify.IM, 1)}, nil, config.NotificationsConfig{
		Enabled: false,
	}, zap.NewNop())

	svc.Start(context.Background())
	defer svc.Stop()

	svc.SendMail([]string{"dev@example.com"}, "subject", "body", "")
	select {
	case <-mailSender.mails:
		t.Fatal("disabled service must not deliver")
	case <-time.After(50 * time.Millisecond):
	}
}
