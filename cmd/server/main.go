package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/hostwatch/hostwatch/internal/api/handlers"
	"github.com/hostwatch/hostwatch/internal/api/router"
	"github.com/hostwatch/hostwatch/internal/config"
	"github.com/hostwatch/hostwatch/internal/pkg/logger"
	"github.com/hostwatch/hostwatch/internal/pkg/validator"
	"github.com/hostwatch/hostwatch/internal/repository/postgres"
	"github.com/hostwatch/hostwatch/internal/services"
	"github.com/hostwatch/hostwatch/internal/worker"
	"github.com/hostwatch/hostwatch/migrations"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	log := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	db, err := postgres.New(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := postgres.RunMigrations(db, migrations.GetFS()); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info("Database ready")

	// Repositories
	hostRepo := postgres.NewHostRepository(db)
	sampleRepo := postgres.NewSampleRepository(db)
	checkRepo := postgres.NewCheckRepository(db)
	alertRepo := postgres.NewAlertRepository(db)

	// Services
	hostService := services.NewHostService(hostRepo, log)
	ingestService := services.NewIngestService(hostRepo, sampleRepo, log)
	checkService := services.NewCheckService(checkRepo, log)
	evaluationService := services.NewEvaluationService(
		hostRepo, sampleRepo, checkService, alertRepo,
		cfg.Evaluation.HostConcurrency, log,
	)

	// HTTP surface
	val := validator.New()
	handler := router.New(cfg, log, &router.Handlers{
		Health:     handlers.NewHealthHandler(db, log),
		Report:     handlers.NewReportHandler(ingestService, log, val),
		Host:       handlers.NewHostHandler(hostService, sampleRepo, log, val),
		Alert:      handlers.NewAlertHandler(alertRepo, log),
		Check:      handlers.NewCheckHandler(checkService, log, val),
		Evaluation: handlers.NewEvaluationHandler(evaluationService, log),
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Evaluation worker
	var evalWorker *worker.Evaluator
	if cfg.Evaluation.Enabled {
		evalWorker = worker.NewEvaluator(evaluationService, cfg.Evaluation.Schedule, log)
		if err := evalWorker.Start(ctx); err != nil {
			return fmt.Errorf("failed to start evaluation worker: %w", err)
		}
	} else {
		log.Warn("Evaluation worker disabled")
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(map[string]interface{}{
			"addr": srv.Addr,
		}).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info("Shutting down")

	if evalWorker != nil {
		evalWorker.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
