package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

// EventAppointmentCreated is sent when a user books an appointment.
const EventAppointmentCreated = "appointment.created"

// WebhookConfig holds webhook configuration.
type WebhookConfig struct {
	URL     string
	Secret  string
	Timeout time.Duration
	Headers map[string]string
}

// WebhookPayload represents the webhook request body.
type WebhookPayload struct {
	Event     string         `json:"event"`
	UserID    int64          `json:"user_id"`
	Message   string         `json:"message"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// WebhookSender posts notifications to an HTTP endpoint.
type WebhookSender struct {
	config WebhookConfig
	client *resty.Client
	logger *slog.Logger
	now    func() time.Time
}

// NewWebhookSender creates a new webhook sender.
func NewWebhookSender(config WebhookConfig, logger *slog.Logger) *WebhookSender {
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	client := resty.New().
		SetTimeout(config.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeaders(config.Headers)
	if config.Secret != "" {
		client.SetHeader("X-Webhook-Secret", config.Secret)
	}

	return &WebhookSender{
		config: config,
		client: client,
		logger: logger,
		now:    time.Now,
	}
}

// Send sends a webhook notification.
func (s *WebhookSender) Send(ctx context.Context, userID int64, msg Message) error {
	event := msg.Event
	if event == "" {
		event = EventAppointmentCreated
	}
	payload := WebhookPayload{
		Event:     event,
		UserID:    userID,
		Message:   msg.Text,
		Timestamp: s.now().UTC(),
		Metadata:  msg.Metadata,
	}

	res, err := s.client.R().
		SetContext(ctx).
		SetBody(payload).
		Post(s.config.URL)
	if err != nil {
		s.logger.Error("webhook request failed", "url", s.config.URL, "error", err)
		return errors.Wrap(err, "webhook request failed")
	}

	if res.IsError() {
		s.logger.Error("webhook returned error",
			"url", s.config.URL,
			"status", res.StatusCode(),
			"response", res.String(),
		)
		return errors.Errorf("webhook returned status %d", res.StatusCode())
	}

	s.logger.Debug("webhook notification sent",
		"user_id", userID,
		"url", s.config.URL,
		"status", res.StatusCode(),
	)
	return nil
}

// Name returns the sender name.
func (s *WebhookSender) Name() string {
	return string(ChannelWebhook)
}
