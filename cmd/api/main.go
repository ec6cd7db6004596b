package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"podapi/docs"
	"podapi/internal/auth"
	"podapi/internal/config"
	"podapi/internal/database"
	"podapi/internal/database/migration"
	handlers "podapi/internal/http/handler"
	"podapi/internal/http/middleware"
	"podapi/internal/logging"
	"podapi/internal/mail"
	"podapi/internal/otel"
	"podapi/internal/repository/postgres"
	"podapi/internal/scheduler"
	"podapi/internal/service"
	"podapi/internal/storage"
)

const shutdownTimeout = 15 * time.Second

// @title POD API
// @version 1.0
// @description Proof of delivery documents, recognition jobs and notifications.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()
	logger := logging.New(os.Stdout, logging.LoadLocation(cfg.LogTimezone))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server_exit", logging.Err(err))
		os.Exit(1)
	}
}

func run(cfg *config.AppConfig, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, logger)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	db, err := database.NewPostgres(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, logger, cfg.Database.Host); err != nil {
		return err
	}

	objStore, err := storage.New(cfg.MinIO)
	if err != nil {
		return err
	}
	if _, disabled := objStore.(storage.Disabled); disabled {
		logger.Warn("object_storage_disabled")
	}

	tokens, err := auth.NewTokenManager(cfg.Auth.SecretKey, cfg.Auth.AccessTokenTTL, cfg.Auth.OTPTTL)
	if err != nil {
		return err
	}

	var mailer mail.Mailer = mail.NewLogMailer(logger)
	if cfg.SMTP.Host != "" {
		if mailer, err = mail.NewSMTP(cfg.SMTP); err != nil {
			return err
		}
	}

	userRepo := postgres.NewUserPostgres(db)
	fileRepo := postgres.NewFilePostgres(db)
	jobRepo := postgres.NewJobPostgres(db)
	notificationRepo := postgres.NewNotificationPostgres(db)

	notificationSvc := service.NewNotificationService(notificationRepo)
	services := handlers.Services{
		Auth: service.NewAuthService(userRepo, tokens, mailer, service.AuthOptions{
			PublicURL:  cfg.PublicURL,
			OTPTTL:     cfg.Auth.OTPTTL,
			BcryptCost: cfg.Auth.BcryptCost,
		}),
		Files:         service.NewFileService(fileRepo, objStore, logger),
		Jobs:          service.NewJobService(jobRepo),
		Notifications: notificationSvc,
		DBConnections: service.NewDatabaseConnectionService(postgres.NewDatabaseConnectionPostgres(db)),
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(db, cfg.Database.Name),
	)

	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		recognition := service.NewRecognitionService(jobRepo, fileRepo, notificationSvc, service.NewRandomRecognizer(nil), logger)
		if sched, err = scheduler.New(recognition, cfg.Scheduler.Interval, reg, logger); err != nil {
			return err
		}
	}

	httpMetrics, err := middleware.NewHTTPMetrics(reg, "/metrics", "/healthz")
	if err != nil {
		return err
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler(),
		DisableStartupMessage: true,
		BodyLimit:             25 * 1024 * 1024,
	})

	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(logging.Component(logger, "http")))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.AllowOrigins, ","),
		AllowCredentials: !slices.Contains(cfg.AllowOrigins, "*"),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, " + middleware.RequestIDHeader,
		ExposeHeaders:    middleware.RequestIDHeader + ", " + handlers.TotalCountHeader,
	}))
	app.Use(otelfiber.Middleware(otelfiber.WithNext(func(c *fiber.Ctx) bool {
		return c.Path() == "/metrics" || c.Path() == "/healthz"
	})))
	app.Use(httpMetrics.Handler())

	app.Get("/metrics", handlers.Metrics(reg))
	handlers.RegisterRoutes(app, db, services)

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	if sched != nil {
		sched.Start()
	}

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		logger.Info("server_listening", slog.String("addr", addr))
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		logger.Info("server_shutting_down")
	}

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	if sched != nil {
		errs = append(errs, sched.Stop(sctx))
	}
	errs = append(errs, app.ShutdownWithContext(sctx))
	return errors.Join(errs...)
}
