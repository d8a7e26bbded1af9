package service

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pushmasterhq/pushmaster-api/pkg/config"
	"github.com/pushmasterhq/pushmaster-api/pkg/jobs"
	"github.com/pushmasterhq/pushmaster-api/pkg/notify"
)

const (
	jobTypeMail = "mail"
	jobTypeIM   = "im"
)

// NotificationService dispatches workflow notifications through the
// background queue. Callers fire and forget; delivery failures are
// retried by the queue and then logged and dropped. A notification
// must never fail or delay the transition that produced it.
type NotificationService struct {
	mail    notify.MailSender
	im      notify.IMSender
	metrics *MetricsService
	logger  *zap.Logger
	queue   *jobs.Queue
	enabled bool
}

// NewNotificationService constructs the service and its queue.
func NewNotificationService(mail notify.MailSender, im notify.IMSender, metrics *MetricsService, cfg config.NotificationsConfig, logger *zap.Logger) *NotificationService {
	s := &NotificationService{
		mail:    mail,
		im:      im,
		metrics: metrics,
		logger:  logger,
		enabled: cfg.Enabled,
	}
	s.queue = jobs.NewQueue("notifications", s.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: cfg.BufferSize,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	return s
}

// Start begins background delivery.
func (s *NotificationService) Start(ctx context.Context) {
	if s.enabled {
		s.queue.Start(ctx)
	}
}

// Stop drains the workers.
func (s *NotificationService) Stop() {
	if s.enabled {
		s.queue.Stop()
	}
}

// SendMail enqueues a mail for delivery.
func (s *NotificationService) SendMail(to []string, subject, body, replyTo string) {
	if !s.enabled || len(to) == 0 {
		return
	}
	s.enqueue(jobTypeMail, notify.Mail{To: to, Subject: subject, Body: body, ReplyTo: replyTo})
}

// SendIM renders the template and enqueues an instant message. Template
// parameters appear as {name} placeholders; values are HTML-escaped
// before substitution since the transport speaks markup.
func (s *NotificationService) SendIM(to, template string, params map[string]string) {
	if !s.enabled || to == "" {
		return
	}
	s.enqueue(jobTypeIM, notify.IM{To: to, Message: RenderIM(template, params)})
}

// RenderIM substitutes {name} placeholders with escaped values.
func RenderIM(template string, params map[string]string) string {
	message := template
	for name, value := range params {
		message = strings.ReplaceAll(message, "{"+name+"}", html.EscapeString(value))
	}
	return message
}

func (s *NotificationService) enqueue(jobType string, payload interface{}) {
	job := jobs.Job{ID: uuid.NewString(), Type: jobType, Payload: payload}
	if err := s.queue.Enqueue(job); err != nil {
		s.logger.Warn("dropping notification, queue unavailable",
			zap.String("type", jobType), zap.Error(err))
	}
}

func (s *NotificationService) handle(ctx context.Context, job jobs.Job) error {
	switch job.Type {
	case jobTypeMail:
		mail, ok := job.Payload.(notify.Mail)
		if !ok {
			return fmt.Errorf("unexpected mail payload %T", job.Payload)
		}
		err := s.mail.SendMail(mail)
		s.metrics.RecordNotification(jobTypeMail, err == nil)
		return err
	case jobTypeIM:
		im, ok := job.Payload.(notify.IM)
		if !ok {
			return fmt.Errorf("unexpected im payload %T", job.Payload)
		}
		err := s.im.SendIM(im)
		s.metrics.RecordNotification(jobTypeIM, err == nil)
		return err
	default:
		return fmt.Errorf("unknown notification job type %q", job.Type)
	}
}
