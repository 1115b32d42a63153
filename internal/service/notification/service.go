package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/pinewood/booking-api/internal/email"
	"github.com/pinewood/booking-api/internal/model"
	"github.com/pinewood/booking-api/pkg/logger"
)

// Notifier delivers patient-facing emails for booking lifecycle events.
// All sends are best effort: failures are logged and never surfaced to the
// booking flow, a committed appointment stands regardless.
type Notifier interface {
	AppointmentBooked(ctx context.Context, appt *model.Appointment) error
	AppointmentConfirmed(ctx context.Context, appt *model.Appointment) error
	AppointmentCancelled(ctx context.Context, appt *model.Appointment) error
	AppointmentRescheduled(ctx context.Context, appt *model.Appointment, oldStart time.Time) error
	AppointmentReminder(ctx context.Context, appt *model.Appointment) error
}

type service struct {
	mailer email.Mailer
	log    *logger.Logger
	loc    *time.Location
}

func NewService(mailer email.Mailer, log *logger.Logger, loc *time.Location) Notifier {
	return &service{mailer: mailer, log: log, loc: loc}
}

func (s *service) when(t time.Time) string {
	return t.In(s.loc).Format("Monday, 2 January 2006 at 15:04")
}

func (s *service) send(appt *model.Appointment, subject, body string) error {
	if appt.PatientEmail == "" {
		return nil
	}
	if err := s.mailer.Send(appt.PatientEmail, subject, body); err != nil {
		s.log.Error(err, "failed to send appointment email", "appointment_id", appt.ID, "subject", subject)
		return err
	}
	return nil
}

func (s *service) AppointmentBooked(_ context.Context, appt *model.Appointment) error {
	body := fmt.Sprintf(
		"Dear %s,\n\nyour appointment request for %s has been received.\n\n"+
			"You can view or cancel it at any time using your personal link:\n"+
			"/bookings/%s\n\nBest regards,\nyour practice team\n",
		appt.PatientName, s.when(appt.StartTime), appt.BookingToken)
	return s.send(appt, "Your appointment request", body)
}

func (s *service) AppointmentConfirmed(_ context.Context, appt *model.Appointment) error {
	body := fmt.Sprintf(
		"Dear %s,\n\nyour appointment on %s is confirmed.\n\n"+
			"If you cannot attend, please cancel in time:\n/bookings/%s\n\n"+
			"Best regards,\nyour practice team\n",
		appt.PatientName, s.when(appt.StartTime), appt.BookingToken)
	return s.send(appt, "Your appointment is confirmed", body)
}

func (s *service) AppointmentCancelled(_ context.Context, appt *model.Appointment) error {
	body := fmt.Sprintf(
		"Dear %s,\n\nyour appointment on %s has been cancelled.\n\n"+
			"You are welcome to book a new appointment at any time.\n\n"+
			"Best regards,\nyour practice team\n",
		appt.PatientName, s.when(appt.StartTime))
	return s.send(appt, "Your appointment was cancelled", body)
}

func (s *service) AppointmentRescheduled(_ context.Context, appt *model.Appointment, oldStart time.Time) error {
	body := fmt.Sprintf(
		"Dear %s,\n\nyour appointment has been moved from %s to %s.\n\n"+
			"View or cancel: /bookings/%s\n\nBest regards,\nyour practice team\n",
		appt.PatientName, s.when(oldStart), s.when(appt.StartTime), appt.BookingToken)
	return s.send(appt, "Your appointment was rescheduled", body)
}

func (s *service) AppointmentReminder(_ context.Context, appt *model.Appointment) error {
	body := fmt.Sprintf(
		"Dear %s,\n\nthis is a reminder of your appointment on %s.\n\n"+
			"Best regards,\nyour practice team\n",
		appt.PatientName, s.when(appt.StartTime))
	return s.send(appt, "Appointment reminder", body)
}
