// Package notify is the outbound notification port. The engine only depends
// on the Send contract; transports (SendGrid, console, stubs) are
// interchangeable behind it, and a delivery failure never corrupts state that
// was already committed.
package notify

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Kind classifies a notification.
type Kind string

const (
	KindAdminAlert Kind = "admin_alert"
	KindConfirmed  Kind = "confirmed"
	KindRejected   Kind = "rejected"
	KindReminder   Kind = "reminder"
	KindOTPCode    Kind = "otp_code"
)

// Recipient addresses a notification. Email is the primary channel; Phone is
// carried for transports that can use it.
type Recipient struct {
	Name  string
	Email string
	Phone string
}

// Attachment is an optional binary part (the confirmation QR PNG).
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Message is one outbound notification.
type Message struct {
	ID         string
	Kind       Kind
	To         Recipient
	Subject    string
	Body       string
	Attachment *Attachment
}

// NewMessage creates a message with a fresh id.
func NewMessage(kind Kind, to Recipient, subject, body string) Message {
	return Message{
		ID:      uuid.New().String(),
		Kind:    kind,
		To:      to,
		Subject: subject,
		Body:    body,
	}
}

// Notifier sends notifications.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// DeliveryError reports a transport failure. Callers treat it as a secondary
// outcome alongside an otherwise successful state change.
type DeliveryError struct {
	Kind Kind
	Err  error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("notify: deliver %s: %v", e.Kind, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }
