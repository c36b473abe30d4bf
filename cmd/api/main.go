package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-tutor-api/internal/attempt"
	"github.com/noah-isme/gema-tutor-api/internal/config"
	"github.com/noah-isme/gema-tutor-api/internal/database"
	"github.com/noah-isme/gema-tutor-api/internal/events"
	"github.com/noah-isme/gema-tutor-api/internal/handler"
	"github.com/noah-isme/gema-tutor-api/internal/middleware"
	"github.com/noah-isme/gema-tutor-api/internal/repository"
	"github.com/noah-isme/gema-tutor-api/internal/router"
	"github.com/noah-isme/gema-tutor-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Str("service", cfg.AppName).Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()

	natsConn, err := database.ConnectNATS(cfg.NATSURL, cfg.AppName)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to nats")
	}
	if natsConn != nil {
		defer natsConn.Drain()
	} else {
		logger.Warn().Msg("nats url not configured, submission events are disabled")
	}

	attemptStore, err := newAttemptStore(cfg, redisClient)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create attempt store")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	assignmentRepo := repository.NewAssignmentRepository(db)
	templateRepo := repository.NewTemplateRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	classRepo := repository.NewClassRepository(db)
	rosterRepo := repository.NewRosterRepository(db)

	dashboardService := service.NewStudentDashboardService(assignmentRepo, submissionRepo, classRepo, redisClient, cfg.DashboardCacheTTL, logger)
	assignmentService := service.NewAssignmentService(assignmentRepo, classRepo, dashboardService, validate, logger)
	templateService := service.NewTemplateService(templateRepo, assignmentRepo, validate, logger)
	attemptService := service.NewAttemptService(service.AttemptServiceConfig{
		Assignments: assignmentRepo,
		Submissions: submissionRepo,
		Classes:     classRepo,
		Store:       attemptStore,
		Publisher:   events.NewNATSPublisher(natsConn, cfg.NATSSubject, logger),
		Dashboard:   dashboardService,
		Validator:   validate,
		Logger:      logger,
	})
	submissionService := service.NewSubmissionService(submissionRepo, logger)
	trackingService := service.NewTrackingService(classRepo, assignmentRepo, submissionRepo, logger)
	seedService := service.NewSeedService(rosterRepo, dashboardService, validate, cfg.SeedEnabled, cfg.SeedToken, logger)

	submitLimiter := middleware.RateLimit("submit", cfg.SubmissionRateLimit, time.Minute)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger, AllowOrigins: cfg.AllowOrigins})
	router.Register(app, cfg, router.Dependencies{
		AssignmentHandler:       handler.NewAssignmentHandler(assignmentService, logger),
		TemplateHandler:         handler.NewTemplateHandler(templateService, logger),
		AttemptHandler:          handler.NewAttemptHandler(attemptService, submitLimiter, logger),
		SubmissionHandler:       handler.NewSubmissionHandler(submissionService, logger),
		StudentDashboardHandler: handler.NewStudentDashboardHandler(dashboardService, logger),
		TrackingHandler:         handler.NewTrackingHandler(trackingService, logger),
		SeedHandler:             handler.NewSeedHandler(seedService, logger),
		JWTMiddleware:           middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		logger.Info().Str("addr", cfg.HTTPAddress()).Str("attempt_store", cfg.AttemptStore).Msg("starting server")
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	waitForShutdown(app, logger)
}

func newAttemptStore(cfg config.Config, client *redis.Client) (attempt.Store, error) {
	if cfg.AttemptStore == config.AttemptStoreToken {
		store, err := attempt.NewTokenStore(cfg.AttemptSecret, cfg.AttemptTTL)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	return attempt.NewRedisStore(client, "attempt", cfg.AttemptTTL), nil
}

func waitForShutdown(app *fiber.App, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}
