package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/medcore/clinic-api/internal/config"
	"github.com/medcore/clinic-api/internal/email"
	"github.com/medcore/clinic-api/internal/repository/postgres"
	appointmentService "github.com/medcore/clinic-api/internal/service/appointment"
	notificationService "github.com/medcore/clinic-api/internal/service/notification"
	"github.com/medcore/clinic-api/internal/worker"
	"github.com/medcore/clinic-api/pkg/logger"
	"github.com/medcore/clinic-api/pkg/messaging/redis"
	"github.com/medcore/clinic-api/pkg/metrics"
)

func setupHealthCheck(appLogger *logger.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		if err := http.ListenAndServe(":8081", mux); err != nil {
			appLogger.ZL.Error().Err(err).Msg("health check server failed")
			os.Exit(1)
		}
	}()
}

func main() {
	cfg, err := config.LoadWorkerConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	appLogger := logger.FromZerolog(log.Logger)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		appLogger.ZL.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	broker, err := redis.NewRedisBroker(redis.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		RetryBackoff: cfg.Redis.RetryBackoff,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, &log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create Redis broker")
	}
	defer broker.Close()

	userRepo := postgres.NewUserRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	clinicianRepo := postgres.NewClinicianRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)
	taskRepo := postgres.NewTaskRepository(db)

	emailSvc := email.NewService(cfg.SMTP)
	notificationSvc := notificationService.NewService(notificationRepo, userRepo, broker, emailSvc, appLogger)
	appointmentSvc := appointmentService.NewService(appointmentRepo, patientRepo, clinicianRepo,
		userRepo, taskRepo, notificationSvc, appLogger)

	autoConfirm := worker.NewAutoConfirmWorker(
		appointmentSvc,
		cfg.Scheduler.TickInterval,
		cfg.Scheduler.MaturationWindow,
		cfg.Scheduler.ItemTimeout,
		appLogger,
		metrics.New("clinic_scheduler"),
	)

	setupHealthCheck(appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		appLogger.ZL.Info().Msg("shutting down...")
		cancel()
	}()

	autoConfirm.Start(ctx)
}
