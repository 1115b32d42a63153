package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/pinewood/booking-api/internal/config"
	"github.com/pinewood/booking-api/internal/email"
	"github.com/pinewood/booking-api/internal/repository/postgres"
	notificationService "github.com/pinewood/booking-api/internal/service/notification"
	"github.com/pinewood/booking-api/internal/worker"
	"github.com/pinewood/booking-api/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	mailer := email.NewSMTPMailer(cfg.SMTP)
	defer mailer.Close()

	loc, err := cfg.Booking.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid practice timezone")
	}

	notifier := notificationService.NewService(mailer, appLogger, loc)
	appointmentRepo := postgres.NewAppointmentRepository(db)

	reminder := worker.NewReminderWorker(appointmentRepo, notifier, cfg.Worker, appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	go reminder.Start(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	cancel()
	log.Info().Msg("worker shut down")
}
