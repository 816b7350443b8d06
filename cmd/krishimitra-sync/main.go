package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"

	httpapi "github.com/i474232898/krishimitra-sync/internal/api/http"
	"github.com/i474232898/krishimitra-sync/internal/common"
	"github.com/i474232898/krishimitra-sync/internal/config"
	"github.com/i474232898/krishimitra-sync/internal/gateway"
	"github.com/i474232898/krishimitra-sync/internal/geocoding"
	"github.com/i474232898/krishimitra-sync/internal/location"
	"github.com/i474232898/krishimitra-sync/internal/scheduler"
	"github.com/i474232898/krishimitra-sync/internal/screens"
	"github.com/i474232898/krishimitra-sync/internal/store"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	appLogger := common.NewLogger("krishimitra-sync", cfg.Env)

	// Shared HTTP client for outbound backend and geocoder calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	gw := gateway.New(cfg.APIBaseURL, httpClient, appLogger)
	resolver := location.NewResolver(geocoding.New(cfg, httpClient, appLogger), appLogger)

	svc := screens.NewService(screens.Deps{
		Store:             store.New(appLogger),
		Gateway:           gw,
		Resolver:          resolver,
		Device:            geocoding.NewStaticDevice(cfg.DeviceLatitude, cfg.DeviceLongitude),
		Logger:            appLogger,
		BackgroundTimeout: cfg.BackgroundRefreshTimeout,
	})

	// Periodic revalidation of cached weather and recommendations.
	sched := scheduler.New(svc, cfg.RefreshInterval, cfg.BackgroundRefreshTimeout, appLogger)
	if err := sched.Start(); err != nil {
		appLogger.WithError(err).Fatal("failed to start scheduler")
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "krishimitra-sync",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          2 * cfg.HTTPTimeout,
		ErrorHandler:          httpapi.ErrorHandler(appLogger),
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(httpapi.Recover(appLogger))

	// API routes.
	httpapi.RegisterRoutes(app, svc)

	go func() {
		appLogger.WithField("port", cfg.Port).Info("listening")
		if err := app.Listen(":" + cfg.Port); err != nil {
			appLogger.WithError(err).Warn("fiber server stopped")
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		appLogger.WithError(err).Error("error during shutdown")
	}
	svc.Wait()
}
