package booking

import (
	"context"
	"fmt"
	"net/url"

	"github.com/surabicare/clinic-scheduler/internal/notify"
)

// allowed lists the legal status moves. A non-terminal self-transition is an
// idempotent no-op handled before this table is consulted.
var allowed = map[Status][]Status{
	StatusPending:  {StatusAccepted, StatusRejected, StatusCompleted, StatusCancelled},
	StatusAccepted: {StatusCompleted, StatusCancelled},
}

func transitionAllowed(from, to Status) bool {
	for _, s := range allowed[from] {
		if s == to {
			return true
		}
	}
	return false
}

// TransitionResult is the partial-success report for a staff action. The
// status change and the notification are independent outcomes: NotifyErr set
// with StatusChanged true means the state is durable but the email failed.
type TransitionResult struct {
	Booking       *Booking
	StatusChanged bool
	NotifyErr     error
}

// Accept moves a pending booking to accepted and sends the confirmation
// with the QR artifact.
func (s *Service) Accept(ctx context.Context, id int64) (*TransitionResult, error) {
	return s.transition(ctx, id, StatusAccepted, "")
}

// Reject moves a pending booking to rejected, with an optional reason
// included in the notification.
func (s *Service) Reject(ctx context.Context, id int64, reason string) (*TransitionResult, error) {
	return s.transition(ctx, id, StatusRejected, reason)
}

// Cancel moves a pending or accepted booking to cancelled.
func (s *Service) Cancel(ctx context.Context, id int64) (*TransitionResult, error) {
	return s.transition(ctx, id, StatusCancelled, "")
}

// Complete moves a pending or accepted booking to completed.
func (s *Service) Complete(ctx context.Context, id int64) (*TransitionResult, error) {
	return s.transition(ctx, id, StatusCompleted, "")
}

func (s *Service) transition(ctx context.Context, id int64, to Status, reason string) (*TransitionResult, error) {
	b, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if b.Status == to && !b.Status.Terminal() {
		// Repeating an already-applied action sends nothing.
		return &TransitionResult{Booking: b, StatusChanged: false}, nil
	}
	if !transitionAllowed(b.Status, to) {
		return nil, &TransitionError{From: b.Status, To: to}
	}

	ok, err := s.store.UpdateStatusCAS(ctx, id, b.Status, to)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Lost a race with another staff action on the same booking.
		return nil, ErrStaleStatus
	}
	s.metrics.ObserveTransition(string(b.Status), string(to))
	from := b.Status
	b.Status = to
	s.logger.Info("booking transition", "id", id, "from", string(from), "to", string(to))

	res := &TransitionResult{Booking: b, StatusChanged: true}
	switch to {
	case StatusAccepted:
		res.NotifyErr = s.sendConfirmation(ctx, b)
	case StatusRejected:
		res.NotifyErr = s.sendRejection(ctx, b, reason)
	}
	if res.NotifyErr != nil {
		s.logger.Warn("transition notification failed", "id", id, "to", string(to), "error", res.NotifyErr)
	}
	return res, nil
}

func (s *Service) sendConfirmation(ctx context.Context, b *Booking) error {
	link := ""
	var qrPNG []byte
	if s.tokens != nil {
		tok, err := s.tokens.Issue(b.ID)
		if err != nil {
			return fmt.Errorf("booking: issue token: %w", err)
		}
		link = s.GreetingURL(b.ID, tok)
		qrPNG, err = notify.ConfirmationQR(link)
		if err != nil {
			return fmt.Errorf("booking: render qr: %w", err)
		}
	}
	appt := s.AppointmentView(ctx, b)
	return s.notifier.Send(ctx, notify.ConfirmationMessage(s.clinic, appt, qrPNG, link))
}

func (s *Service) sendRejection(ctx context.Context, b *Booking, reason string) error {
	appt := s.AppointmentView(ctx, b)
	return s.notifier.Send(ctx, notify.RejectionMessage(s.clinic, appt, reason))
}

// GreetingURL builds the absolute signed confirmation link.
func (s *Service) GreetingURL(id int64, tok string) string {
	return fmt.Sprintf("%s/bookings/%d/greeting?token=%s", s.baseURL, id, url.QueryEscape(tok))
}

// BulkResult aggregates a multi-booking staff action. Skipped counts ids
// whose transition was a no-op or not permitted.
type BulkResult struct {
	Changed      int `json:"changed"`
	Skipped      int `json:"skipped"`
	NotifySent   int `json:"notify_sent"`
	NotifyFailed int `json:"notify_failed"`
}

// BulkAccept accepts each id in turn. One bad id never aborts the batch.
func (s *Service) BulkAccept(ctx context.Context, ids []int64) BulkResult {
	return s.bulk(ctx, ids, func(ctx context.Context, id int64) (*TransitionResult, error) {
		return s.Accept(ctx, id)
	})
}

// BulkReject rejects each id in turn with a shared reason.
func (s *Service) BulkReject(ctx context.Context, ids []int64, reason string) BulkResult {
	return s.bulk(ctx, ids, func(ctx context.Context, id int64) (*TransitionResult, error) {
		return s.Reject(ctx, id, reason)
	})
}

func (s *Service) bulk(ctx context.Context, ids []int64, apply func(context.Context, int64) (*TransitionResult, error)) BulkResult {
	var res BulkResult
	for _, id := range ids {
		tr, err := apply(ctx, id)
		if err != nil || !tr.StatusChanged {
			res.Skipped++
			if err != nil {
				s.logger.Warn("bulk transition skipped", "id", id, "error", err)
			}
			continue
		}
		res.Changed++
		if tr.NotifyErr != nil {
			res.NotifyFailed++
		} else {
			res.NotifySent++
		}
	}
	return res
}

// ResendNotification re-sends the status email for an accepted or rejected
// booking without touching its status.
func (s *Service) ResendNotification(ctx context.Context, id int64) error {
	b, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	switch b.Status {
	case StatusAccepted:
		return s.sendConfirmation(ctx, b)
	case StatusRejected:
		return s.sendRejection(ctx, b, "")
	default:
		return &TransitionError{From: b.Status, To: b.Status}
	}
}
