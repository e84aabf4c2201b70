package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/medcore/clinic-api/internal/config"
	"github.com/medcore/clinic-api/internal/email"
	"github.com/medcore/clinic-api/internal/handler"
	appointmentHandler "github.com/medcore/clinic-api/internal/handler/appointment"
	medicalHandler "github.com/medcore/clinic-api/internal/handler/medical"
	notificationHandler "github.com/medcore/clinic-api/internal/handler/notification"
	patientHandler "github.com/medcore/clinic-api/internal/handler/patient"
	"github.com/medcore/clinic-api/internal/middleware"
	"github.com/medcore/clinic-api/internal/repository/postgres"
	"github.com/medcore/clinic-api/internal/router"
	"github.com/medcore/clinic-api/internal/service/access"
	appointmentService "github.com/medcore/clinic-api/internal/service/appointment"
	medicalService "github.com/medcore/clinic-api/internal/service/medical"
	notificationService "github.com/medcore/clinic-api/internal/service/notification"
	patientService "github.com/medcore/clinic-api/internal/service/patient"
	"github.com/medcore/clinic-api/pkg/auth"
	"github.com/medcore/clinic-api/pkg/logger"
	"github.com/medcore/clinic-api/pkg/messaging/redis"
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

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	clinicianRepo := postgres.NewClinicianRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	recordRepo := postgres.NewMedicalRecordRepository(db)
	labTestRepo := postgres.NewLabTestRepository(db)
	prescriptionRepo := postgres.NewPrescriptionRepository(db)
	paymentRepo := postgres.NewPaymentRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)
	taskRepo := postgres.NewTaskRepository(db)

	// Services
	resolver := access.NewResolver(userRepo, patientRepo, clinicianRepo,
		cfg.AccessCache.TTL, cfg.AccessCache.CleanupInterval)
	emailSvc := email.NewService(cfg.SMTP)
	notificationSvc := notificationService.NewService(notificationRepo, userRepo, broker, emailSvc, appLogger)
	appointmentSvc := appointmentService.NewService(appointmentRepo, patientRepo, clinicianRepo,
		userRepo, taskRepo, notificationSvc, appLogger)
	medicalSvc := medicalService.NewService(recordRepo, labTestRepo, prescriptionRepo, paymentRepo, appointmentRepo)
	patientSvc := patientService.NewService(patientRepo)

	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)
	authMiddleware := middleware.NewAuthMiddleware(jwtSvc, resolver)

	// Handlers
	h := handler.NewHandler()
	r := router.NewRouter(
		authMiddleware,
		appointmentHandler.NewHandler(appointmentSvc),
		patientHandler.NewHandler(patientSvc),
		medicalHandler.NewHandler(medicalSvc),
		notificationHandler.NewHandler(notificationSvc),
		h,
		router.Config{RateLimit: 50, RateBurst: 100},
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
		os.Exit(1)
	}
}
