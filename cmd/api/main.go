package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/pinewood/booking-api/internal/config"
	"github.com/pinewood/booking-api/internal/email"
	"github.com/pinewood/booking-api/internal/handler"
	availabilityHandler "github.com/pinewood/booking-api/internal/handler/availability"
	bookingHandler "github.com/pinewood/booking-api/internal/handler/booking"
	catalogHandler "github.com/pinewood/booking-api/internal/handler/catalog"
	"github.com/pinewood/booking-api/internal/middleware"
	"github.com/pinewood/booking-api/internal/repository/postgres"
	"github.com/pinewood/booking-api/internal/router"
	availabilityService "github.com/pinewood/booking-api/internal/service/availability"
	bookingService "github.com/pinewood/booking-api/internal/service/booking"
	catalogService "github.com/pinewood/booking-api/internal/service/catalog"
	notificationService "github.com/pinewood/booking-api/internal/service/notification"
	"github.com/pinewood/booking-api/pkg/lock"
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

	// Repositories
	appointmentRepo := postgres.NewAppointmentRepository(db)
	ruleRepo := postgres.NewAvailabilityRuleRepository(db)
	typeRepo := postgres.NewAppointmentTypeRepository(db)

	// Mailer owns the SMTP connection lifecycle; it is injected into the
	// notification service rather than shared as a global.
	mailer := email.NewSMTPMailer(cfg.SMTP)
	defer mailer.Close()
	if err := mailer.Verify(); err != nil {
		log.Warn().Err(err).Msg("SMTP verification failed, emails will be retried lazily")
	}

	loc, err := cfg.Booking.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid practice timezone")
	}

	notifier := notificationService.NewService(mailer, appLogger, loc)

	// Booking lock: advisory serialization per doctor. Without Redis the
	// database exclusion constraint alone carries correctness.
	var locker lock.Locker = lock.NoopLocker{}
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid redis URL")
		}
		locker = lock.NewRedisLocker(redis.NewClient(opts), cfg.Redis.LockTTL)
	}

	ruleCache := gocache.New(gocache.NoExpiration, 10*time.Minute)

	// Services
	bookingSvc := bookingService.NewService(
		appointmentRepo, ruleRepo, typeRepo, notifier, locker, appLogger, cfg.Booking, ruleCache)
	availabilitySvc := availabilityService.NewService(ruleRepo, appointmentRepo, cfg.Booking, ruleCache)
	catalogSvc := catalogService.NewService(typeRepo, ruleCache)

	// Handlers
	healthH := handler.NewHealthHandler(db)
	bookingH := bookingHandler.NewHandler(bookingSvc)
	availabilityH := availabilityHandler.NewHandler(availabilitySvc)
	catalogH := catalogHandler.NewHandler(catalogSvc)

	adminAuth := middleware.NewAdminAuth(cfg.Admin)

	r := router.NewRouter(cfg, adminAuth, healthH, bookingH, availabilityH, catalogH)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
}
