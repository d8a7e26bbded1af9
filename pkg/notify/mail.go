package notify

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/pushmasterhq/pushmaster-api/pkg/config"
)

// Mail is a single outbound message.
type Mail struct {
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
	ReplyTo string   `json:"reply_to,omitempty"`
}

// MailSender delivers a mail. Implementations are fire-and-forget from
// the engine's point of view; failures are retried by the dispatch
// queue and then dropped.
type MailSender interface {
	SendMail(mail Mail) error
}

// SMTPSender delivers mail through a plain SMTP relay.
type SMTPSender struct {
	addr   string
	sender string
}

// NewSMTPSender builds a sender from mail configuration.
func NewSMTPSender(cfg config.MailConfig) *SMTPSender {
	return &SMTPSender{
		addr:   fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		sender: cfg.Sender,
	}
}

// SendMail implements MailSender.
func (s *SMTPSender) SendMail(mail Mail) error {
	if len(mail.To) == 0 {
		return fmt.Errorf("mail requires at least one recipient")
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", s.sender)
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(mail.To, ", "))
	if mail.ReplyTo != "" {
		fmt.Fprintf(&msg, "Reply-To: %s\r\n", mail.ReplyTo)
	}
	fmt.Fprintf(&msg, "Subject: %s\r\n", mail.Subject)
	msg.WriteString("\r\n")
	msg.WriteString(mail.Body)

	if err := smtp.SendMail(s.addr, nil, s.sender, mail.To, []byte(msg.String())); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
