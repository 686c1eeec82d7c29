package notification

import (
	"fmt"
	"html"
	"time"

	"genzhealth/models"
)

const appointmentLayout = "Monday, January 2 2006 at 15:04 MST"

// localTime renders t on the clinic's wall clock; a nil loc keeps UTC.
func localTime(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(appointmentLayout)
}

func confirmationContent(b models.BookingRecord, loc *time.Location) (subject, text, htmlBody string) {
	when := localTime(b.AppointmentTime, loc)
	subject = "Your GenZ Health appointment is confirmed"
	text = fmt.Sprintf(
		"Hi %s,\n\nYour %s appointment is booked for %s.\nReason: %s\nBooking reference: %s\n\nThis service provides general information only and is not a substitute for professional medical advice.",
		b.Name, b.CommunicationPreference, when, b.Reason, b.ID)
	htmlBody = fmt.Sprintf(
		"<p>Hi %s,</p><p>Your <strong>%s</strong> appointment is booked for <strong>%s</strong>.</p><p>Reason: %s<br>Booking reference: %s</p>",
		html.EscapeString(b.Name), html.EscapeString(string(b.CommunicationPreference)), when,
		html.EscapeString(b.Reason), html.EscapeString(b.ID))
	return subject, text, htmlBody
}

func reminderContent(r models.ReminderPayload, loc *time.Location) (subject, text, htmlBody string) {
	when := localTime(r.AppointmentTime, loc)
	in := time.Until(r.AppointmentTime).Round(time.Minute)
	subject = "Reminder: your GenZ Health appointment is coming up"
	text = fmt.Sprintf("Hi %s,\n\nYour %s appointment starts %s (in about %s).\nBooking reference: %s",
		r.Name, r.Preference, when, in, r.BookingID)
	htmlBody = fmt.Sprintf("<p>Hi %s,</p><p>Your <strong>%s</strong> appointment starts <strong>%s</strong>.</p><p>Booking reference: %s</p>",
		html.EscapeString(r.Name), html.EscapeString(r.Preference), when, html.EscapeString(r.BookingID))
	return subject, text, htmlBody
}
