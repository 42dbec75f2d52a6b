package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"membership-portal/internal/adapters/http/middleware"
	"membership-portal/internal/adapters/http/routes"
	"membership-portal/internal/adapters/persistence/memstore"
	"membership-portal/internal/adapters/persistence/models"
	"membership-portal/internal/adapters/persistence/repositories"
	"membership-portal/internal/config"
	"membership-portal/internal/core/services"
	"membership-portal/internal/pkg/logger"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	_ "membership-portal/docs" // Swagger docs
)

// @title Membership Portal API
// @version 1.0
// @description Member registration, approval, yearly payments, benefits and messaging for a regional association.

// @contact.name API Support
// @contact.email support@members.example.org

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}

	logger.Setup(logger.Options{
		File:  cfg.Log.File,
		Level: cfg.Log.Level,
		JSON:  cfg.Log.JSON,
	})

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppMode,
		}); err != nil {
			logrus.WithError(err).Error("sentry init failed")
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	store, err := openStore(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("failed to open store")
	}
	defer config.CloseDatabase()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := config.NewSeeder(store, cfg).Run(ctx); err != nil {
		logrus.WithError(err).Warn("seeding failed")
	}
	cancel()

	// Nightly refresh token purge
	cronService := services.NewCronService(store, cfg.CronPurge)
	if err := cronService.Start(); err != nil {
		logrus.WithError(err).Fatal("failed to start cron service")
	}
	defer cronService.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Membership Portal API v1.0",
		BodyLimit:    4 * 1024 * 1024,
		ErrorHandler: middleware.CustomErrorHandler,
	})

	middleware.Setup(app, cfg)
	routes.Setup(app, store, cfg)

	go func() {
		logrus.WithFields(logrus.Fields{
			"port": cfg.Port,
			"mode": cfg.AppMode,
		}).Info("server starting")
		if err := app.Listen(":" + cfg.Port); err != nil {
			logrus.WithError(err).Fatal("failed to start server")
		}
	}()

	gracefulShutdown(app)
}

// openStore connects the configured database and migrates it. The memory
// driver keeps everything in process and loses it on exit.
func openStore(cfg *config.Config) (repositories.Store, error) {
	if cfg.Database.Driver == config.DriverMemory {
		logrus.Warn("using in-memory store; data is lost on restart")
		return memstore.New(), nil
	}

	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		return nil, err
	}
	if err := models.AutoMigrate(db); err != nil {
		return nil, err
	}
	logrus.Info("database migration completed")
	return repositories.NewStore(db), nil
}

// gracefulShutdown blocks until SIGINT or SIGTERM and stops the server
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logrus.WithError(err).Error("error during shutdown")
	}
	logrus.Info("server stopped")
}
