package worker

import (
	"context"
	"time"

	"github.com/pinewood/booking-api/internal/config"
	"github.com/pinewood/booking-api/internal/repository"
	"github.com/pinewood/booking-api/internal/service/notification"
	"github.com/pinewood/booking-api/pkg/logger"
)

// ReminderWorker periodically emails patients about upcoming confirmed
// appointments. Each appointment is reminded at most once; a failed send
// is retried on the next tick because the sent marker is only written
// after a successful delivery.
type ReminderWorker struct {
	appointments repository.AppointmentRepository
	notifier     notification.Notifier
	cfg          config.WorkerConfig
	log          *logger.Logger
}

func NewReminderWorker(
	appointments repository.AppointmentRepository,
	notifier notification.Notifier,
	cfg config.WorkerConfig,
	log *logger.Logger,
) *ReminderWorker {
	return &ReminderWorker{
		appointments: appointments,
		notifier:     notifier,
		cfg:          cfg,
		log:          log,
	}
}

func (w *ReminderWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	w.log.Info("reminder worker started",
		"lead_time", w.cfg.ReminderLeadTime.String(),
		"poll_interval", w.cfg.PollInterval.String())

	for {
		select {
		case <-ctx.Done():
			w.log.Info("reminder worker stopped")
			return
		case <-ticker.C:
			if err := w.runOnce(ctx); err != nil {
				w.log.Error(err, "reminder pass failed")
			}
		}
	}
}

func (w *ReminderWorker) runOnce(ctx context.Context) error {
	due, err := w.appointments.ListDueReminders(ctx, time.Now().Add(w.cfg.ReminderLeadTime))
	if err != nil {
		return err
	}

	for _, appt := range due {
		if err := w.notifier.AppointmentReminder(ctx, appt); err != nil {
			// Already logged by the notifier; retry next tick.
			continue
		}
		if err := w.appointments.MarkReminderSent(ctx, appt.ID, time.Now()); err != nil {
			w.log.Error(err, "failed to mark reminder sent", "appointment_id", appt.ID)
		}
	}
	return nil
}
