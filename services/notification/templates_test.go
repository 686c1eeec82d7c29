package notification

import (
	"context"
	"testing"
	"time"

	"genzhealth/models"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestConfirmationContent(t *testing.T) {
	b := models.BookingRecord{
		ID:                      "booking_1",
		Name:                    "Ada <script>",
		Reason:                  "follow-up",
		CommunicationPreference: models.PreferenceVideo,
		AppointmentTime:         time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
	}
	subject, text, body := confirmationContent(b, nil)
	assert.Contains(t, subject, "confirmed")
	assert.Contains(t, text, "Monday, March 2 2026 at 10:00 UTC")
	assert.Contains(t, text, "booking_1")
	assert.Contains(t, body, "Ada &lt;script&gt;")
	assert.NotContains(t, body, "<script>")
}

func TestContent_UsesClinicZone(t *testing.T) {
	nairobi := time.FixedZone("EAT", 3*60*60)
	at := time.Date(2026, 3, 2, 7, 0, 0, 0, time.UTC)

	_, text, body := confirmationContent(models.BookingRecord{ID: "booking_1", AppointmentTime: at}, nairobi)
	assert.Contains(t, text, "Monday, March 2 2026 at 10:00 EAT")
	assert.Contains(t, body, "Monday, March 2 2026 at 10:00 EAT")
	assert.NotContains(t, text, "07:00")

	_, text, _ = reminderContent(models.ReminderPayload{BookingID: "booking_1", AppointmentTime: at}, nairobi)
	assert.Contains(t, text, "Monday, March 2 2026 at 10:00 EAT")
}

func TestLogMailer(t *testing.T) {
	m := NewLogMailer(time.UTC, zap.NewNop())
	assert.NoError(t, m.SendBookingConfirmation(context.Background(), models.BookingRecord{ID: "b"}))
	assert.NoError(t, m.SendReminder(context.Background(), models.ReminderPayload{BookingID: "b"}))
}
