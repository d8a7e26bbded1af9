package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pushmasterhq/pushmaster-api/pkg/config"
)

// IM is a single outbound instant message. The message is HTML-ish
// markup with parameters already substituted and escaped.
type IM struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

// IMSender delivers an instant message.
type IMSender interface {
	SendIM(im IM) error
}

// WebhookSender posts messages to an IM relay webhook. When no webhook
// is configured it silently drops messages, which keeps development
// environments quiet.
type WebhookSender struct {
	url    string
	client *http.Client
}

// NewWebhookSender builds a sender from IM configuration.
func NewWebhookSender(cfg config.IMConfig) *WebhookSender {
	return &WebhookSender{
		url:    cfg.WebhookURL,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// SendIM implements IMSender.
func (s *WebhookSender) SendIM(im IM) error {
	if s.url == "" {
		return nil
	}

	payload, err := json.Marshal(im)
	if err != nil {
		return fmt.Errorf("marshal im payload: %w", err)
	}

	resp, err := s.client.Post(s.url, "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("post im webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("im webhook returned status %d", resp.StatusCode)
	}
	return nil
}
