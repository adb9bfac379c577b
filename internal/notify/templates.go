package notify

import (
	"fmt"
	"time"
)

// Appointment carries the booking fields the templates render. The booking
// package builds it so this package stays free of storage concerns.
type Appointment struct {
	BookingID   int64
	PatientName string
	Email       string
	Phone       string
	Date        time.Time
	TimeDisplay string
	DoctorName  string
}

// ClinicInfo is the sender identity rendered into message bodies.
type ClinicInfo struct {
	Name     string
	Location string
}

// ConfirmationMessage builds the acceptance email. qrPNG, when present, is
// attached; link is the signed greeting URL included in the body.
func ConfirmationMessage(clinic ClinicInfo, appt Appointment, qrPNG []byte, link string) Message {
	subject := fmt.Sprintf("Your appointment is confirmed — %s", clinic.Name)
	body := fmt.Sprintf(
		"Hello %s,\n\nYour appointment on %s at %s has been accepted. Attached is a QR code for your appointment.\n",
		appt.PatientName, appt.Date.Format("2006-01-02"), appt.TimeDisplay,
	)
	if appt.DoctorName != "" {
		body += fmt.Sprintf("You will be seen by %s.\n", appt.DoctorName)
	}
	if link != "" {
		body += fmt.Sprintf("\nView your appointment card: %s\n", link)
	}
	body += fmt.Sprintf("\nThank you,\n%s Team", clinic.Name)

	msg := NewMessage(KindConfirmed, Recipient{Name: appt.PatientName, Email: appt.Email, Phone: appt.Phone}, subject, body)
	if len(qrPNG) > 0 {
		msg.Attachment = &Attachment{
			Filename:    fmt.Sprintf("appointment_%d.png", appt.BookingID),
			ContentType: "image/png",
			Data:        qrPNG,
		}
	}
	return msg
}

// RejectionMessage builds the rejection email with an optional reason.
func RejectionMessage(clinic ClinicInfo, appt Appointment, reason string) Message {
	subject := fmt.Sprintf("Your appointment request — %s", clinic.Name)
	reasonText := ""
	if reason != "" {
		reasonText = fmt.Sprintf(" Reason: %s", reason)
	}
	body := fmt.Sprintf(
		"Hello %s,\n\nWe regret to inform you that your appointment on %s has been rejected.%s\n\nIf you would like to reschedule, please contact us or submit a new request.\n\nThank you,\n%s Team",
		appt.PatientName, appt.Date.Format("2006-01-02"), reasonText, clinic.Name,
	)
	return NewMessage(KindRejected, Recipient{Name: appt.PatientName, Email: appt.Email, Phone: appt.Phone}, subject, body)
}

// ReminderMessage builds the day-before reminder.
func ReminderMessage(clinic ClinicInfo, appt Appointment) Message {
	subject := fmt.Sprintf("Appointment reminder — %s", clinic.Name)
	body := fmt.Sprintf(
		"Hello %s,\n\nThis is a reminder that your appointment is tomorrow, %s at %s.",
		appt.PatientName, appt.Date.Format("2006-01-02"), appt.TimeDisplay,
	)
	if clinic.Location != "" {
		body += fmt.Sprintf(" We are located at %s.", clinic.Location)
	}
	body += fmt.Sprintf("\n\nSee you soon,\n%s Team", clinic.Name)
	return NewMessage(KindReminder, Recipient{Name: appt.PatientName, Email: appt.Email, Phone: appt.Phone}, subject, body)
}

// AdminAlertMessage builds the new-booking alert for clinic staff.
func AdminAlertMessage(clinic ClinicInfo, appt Appointment, adminEmail string) Message {
	subject := fmt.Sprintf("New Appointment Request - %s on %s", appt.PatientName, appt.Date.Format("2006-01-02"))
	body := fmt.Sprintf(
		"New Appointment Booking Received:\n\nPatient Name: %s\nEmail: %s\nPhone: %s\nAppointment Date: %s\nAppointment Time: %s\n",
		appt.PatientName, appt.Email, appt.Phone, appt.Date.Format("2006-01-02"), appt.TimeDisplay,
	)
	if appt.DoctorName != "" {
		body += fmt.Sprintf("Doctor: %s\n", appt.DoctorName)
	}
	body += fmt.Sprintf("\nPlease review and accept/reject this booking in the admin panel.\n\n%s Admin", clinic.Name)
	return NewMessage(KindAdminAlert, Recipient{Email: adminEmail}, subject, body)
}

// OTPMessage builds the one-time-code delivery message. The contact id is
// either an email address or a phone number depending on the configured
// channel.
func OTPMessage(clinic ClinicInfo, contact, code string, ttl time.Duration) Message {
	subject := fmt.Sprintf("Your verification code — %s", clinic.Name)
	body := fmt.Sprintf(
		"Your verification code is %s. It expires in %d minutes.\n\n%s",
		code, int(ttl.Minutes()), clinic.Name,
	)
	to := Recipient{}
	if isEmail(contact) {
		to.Email = contact
	} else {
		to.Phone = contact
	}
	return NewMessage(KindOTPCode, to, subject, body)
}

func isEmail(contact string) bool {
	for _, r := range contact {
		if r == '@' {
			return true
		}
	}
	return false
}
