// Package notify centralises outbound email notifications. Every caller goes
// through Service so recipient, subject and body are validated in one place
// and delivery outcomes are observable.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/logiscontrol/logiscontrol/internal/observability"
	"github.com/logiscontrol/logiscontrol/internal/platform/mail"
)

// Service sends email notifications through the configured sender.
type Service struct {
	sender  mail.Sender
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewService constructs the notification service. metrics may be nil.
func NewService(sender mail.Sender, logger *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{sender: sender, logger: logger, metrics: metrics}
}

// Notify validates the message and delivers it. An error means the message
// was not handed to the transport.
func (s *Service) Notify(ctx context.Context, recipient, subject, body string) error {
	if strings.TrimSpace(recipient) == "" {
		return fmt.Errorf("notify: recipient is required")
	}
	if strings.TrimSpace(subject) == "" {
		return fmt.Errorf("notify: subject is required")
	}
	if strings.TrimSpace(body) == "" {
		return fmt.Errorf("notify: body is required")
	}

	err := s.sender.Send(ctx, recipient, subject, body)
	if s.metrics != nil {
		s.metrics.RecordNotification("email", err == nil)
	}
	if err != nil {
		return fmt.Errorf("notify: deliver to %s: %w", recipient, err)
	}
	return nil
}

// TryNotify delivers best-effort: failures are logged, never returned. State
// transitions that must not roll back on notification failure use this.
func (s *Service) TryNotify(ctx context.Context, recipient, subject, body string) bool {
	if err := s.Notify(ctx, recipient, subject, body); err != nil {
		if s.logger != nil {
			s.logger.Warn("notification failed", slog.String("recipient", recipient), slog.Any("error", err))
		}
		return false
	}
	return true
}
