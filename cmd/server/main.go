package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	httpadapter "github.com/caretrack/caretrack/internal/adapter/http"
	"github.com/caretrack/caretrack/internal/config"
	"github.com/caretrack/caretrack/internal/persistence"
	"github.com/caretrack/caretrack/internal/service/logger"
	"github.com/caretrack/caretrack/internal/service/password"
	"github.com/caretrack/caretrack/internal/service/ratelimit"
	"github.com/caretrack/caretrack/internal/usecase"
)

func main() {
	ctx := context.Background()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	appLogger := logger.New(cfg.Logging)
	appLogger.WithField("env", cfg.Server.Environment).Info("application starting")

	driver := cfg.Database.Driver
	store, err := persistence.Open(ctx, driver, cfg.DSN(), appLogger)
	if err != nil {
		appLogger.WithError(err).Fatal("failed to connect to database")
	}
	defer store.Close()
	appLogger.Info("database connection established")

	limiter, err := ratelimit.New(cfg.RateLimit, cfg.Redis, cfg.RedisAddr(), appLogger)
	if err != nil {
		appLogger.WithError(err).Fatal("failed to initialize rate limiter")
	}
	defer limiter.Close()

	hasher := password.NewBcryptHasher(0)

	managers := httpadapter.Managers{
		Patients:    usecase.NewPatientManager(store, appLogger),
		Exams:       usecase.NewExamManager(store, appLogger),
		ClinicSites: usecase.NewClinicSiteManager(store, appLogger),
		Users:       usecase.NewUserManager(store, hasher, appLogger),
		Notes:       usecase.NewPatientNoteManager(store, appLogger),
		Reports:     usecase.NewPatientReportManager(store, appLogger),
		AuditTrail:  usecase.NewAuditTrailManager(store),
	}

	server := httpadapter.NewServer(cfg.Server, managers, limiter, appLogger)

	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			appLogger.WithError(err).Fatal("server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Error("server forced to shutdown")
	}
	appLogger.Info("server exited")
}
