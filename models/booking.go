package models

import "time"

// CommunicationPreference is how the patient wants to meet the doctor.
type CommunicationPreference string

const (
	PreferenceChat  CommunicationPreference = "chat"
	PreferenceCall  CommunicationPreference = "call"
	PreferenceVideo CommunicationPreference = "video"
)

func (p CommunicationPreference) Valid() bool {
	switch p {
	case PreferenceChat, PreferenceCall, PreferenceVideo:
		return true
	}
	return false
}

const BookingStatusConfirmed = "confirmed"

// BookingInput is the appointment form payload.
type BookingInput struct {
	Name                    string                  `json:"name" binding:"required"`
	Email                   string                  `json:"email" binding:"required"`
	Phone                   string                  `json:"phone" binding:"required"`
	Reason                  string                  `json:"reason" binding:"required"`
	CommunicationPreference CommunicationPreference `json:"communicationPreference"`
	AppointmentTime         time.Time               `json:"appointmentTime" binding:"required"`
}

// BookingRecord is a stored appointment.
type BookingRecord struct {
	ID                      string                  `bson:"id" json:"id"`
	UserID                  string                  `bson:"user_id" json:"userId"`
	Name                    string                  `bson:"name" json:"name"`
	Email                   string                  `bson:"email" json:"email"`
	Phone                   string                  `bson:"phone" json:"phone"`
	Reason                  string                  `bson:"reason" json:"reason"`
	CommunicationPreference CommunicationPreference `bson:"communication_preference" json:"communicationPreference"`
	AppointmentTime         time.Time               `bson:"appointment_time" json:"appointmentTime"`
	Status                  string                  `bson:"status" json:"status"`
	CreatedAt               time.Time               `bson:"created_at" json:"createdAt"`
}

// AvailableSlot is one bookable hour on the slot grid.
type AvailableSlot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Title string    `json:"title"`
}

// ReminderPayload is queued for delivery shortly before an appointment.
type ReminderPayload struct {
	BookingID       string    `json:"bookingId"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	AppointmentTime time.Time `json:"appointmentTime"`
	Preference      string    `json:"communicationPreference"`
}
