package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/pinewood/booking-api/internal/schedule"
)

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

// CancelActor identifies who cancelled an appointment.
type CancelActor string

const (
	CancelActorPatient CancelActor = "patient"
	CancelActorDoctor  CancelActor = "doctor"
)

type Appointment struct {
	Base
	DoctorID          uuid.UUID         `db:"doctor_id" json:"doctor_id"`
	AppointmentTypeID uuid.UUID         `db:"appointment_type_id" json:"appointment_type_id"`
	StartTime         time.Time         `db:"start_time" json:"start_time"`
	EndTime           time.Time         `db:"end_time" json:"end_time"`
	Status            AppointmentStatus `db:"status" json:"status"`
	PatientName       string            `db:"patient_name" json:"patient_name"`
	PatientEmail      string            `db:"patient_email" json:"patient_email"`
	PatientPhone      string            `db:"patient_phone" json:"patient_phone,omitempty"`
	Notes             string            `db:"notes" json:"notes,omitempty"`
	BookingToken      uuid.UUID         `db:"booking_token" json:"booking_token"`
	CancelledAt       *time.Time        `db:"cancelled_at" json:"cancelled_at,omitempty"`
	CancelledBy       *CancelActor      `db:"cancelled_by" json:"cancelled_by,omitempty"`
	CancelReason      *string           `db:"cancel_reason" json:"cancel_reason,omitempty"`
	ReminderSentAt    *time.Time        `db:"reminder_sent_at" json:"-"`
}

// IsActive reports whether the appointment still reserves its time. Only
// pending and confirmed appointments participate in conflict checks.
func (a *Appointment) IsActive() bool {
	return a.Status == AppointmentStatusPending || a.Status == AppointmentStatusConfirmed
}

// Interval returns the appointment's reserved time range.
func (a *Appointment) Interval() schedule.Interval {
	return schedule.Interval{Start: a.StartTime, End: a.EndTime}
}

type BookAppointmentRequest struct {
	DoctorID          uuid.UUID `json:"doctor_id" binding:"required"`
	AppointmentTypeID uuid.UUID `json:"appointment_type_id" binding:"required"`
	StartTime         time.Time `json:"start_time" binding:"required"`
	PatientName       string    `json:"patient_name" binding:"required,max=200"`
	PatientEmail      string    `json:"patient_email" binding:"required,email"`
	PatientPhone      string    `json:"patient_phone" binding:"max=40"`
	Notes             string    `json:"notes" binding:"max=1000"`
}

type RescheduleAppointmentRequest struct {
	StartTime time.Time `json:"start_time" binding:"required"`
}

type CancelAppointmentRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

type AppointmentFilters struct {
	DoctorID  uuid.UUID
	Status    AppointmentStatus
	StartDate time.Time
	EndDate   time.Time
}
