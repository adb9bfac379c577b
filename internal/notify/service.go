package notify

import (
	"context"

	"github.com/surabicare/clinic-scheduler/internal/observability/metrics"
	"github.com/surabicare/clinic-scheduler/pkg/logging"
)

// Service routes notifications to the configured transport and records the
// outcome. It is the single implementation of Notifier used in production.
type Service struct {
	sender  EmailSender
	metrics *metrics.SchedulerMetrics
	logger  *logging.Logger
}

// NewService creates a notification service over a transport.
func NewService(sender EmailSender, m *metrics.SchedulerMetrics, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{sender: sender, metrics: m, logger: logger}
}

// Send delivers a message. Failures are returned as *DeliveryError so callers
// can report them as a secondary outcome without unwinding committed state.
func (s *Service) Send(ctx context.Context, msg Message) error {
	if err := s.sender.Send(ctx, msg); err != nil {
		s.metrics.ObserveNotification(string(msg.Kind), "failed")
		s.logger.Error("notification delivery failed",
			"message_id", msg.ID,
			"kind", msg.Kind,
			"to_email", msg.To.Email,
			"error", err,
		)
		return &DeliveryError{Kind: msg.Kind, Err: err}
	}

	s.metrics.ObserveNotification(string(msg.Kind), "sent")
	s.logger.Info("notification sent",
		"message_id", msg.ID,
		"kind", msg.Kind,
		"to_email", msg.To.Email,
	)
	return nil
}
