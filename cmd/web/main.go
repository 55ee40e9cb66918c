package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"lvrcli/internal/config"
	apierrors "lvrcli/internal/errors"
	"lvrcli/internal/infrastructure"
	custommw "lvrcli/internal/middleware"
	"lvrcli/internal/services"
	transporthttp "lvrcli/internal/transport/http"
	"lvrcli/pkg/contracts"
)

func main() {
	os.Exit(run())
}

func run() int {
	port := flag.Int("port", 0, "listen port (overrides configuration)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Warn("Failed to load config, using defaults", "error", err)
		cfg = config.Default()
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	paths, err := config.GetPaths()
	if err != nil {
		slog.Error("Failed to initialize paths", "error", err)
		return 1
	}
	if err := paths.EnsureDirectories(); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		return 1
	}

	if cfg.Logging.FilePath == "" {
		cfg.Logging.FilePath = paths.GetLogPath("web.log")
	}
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var otelMiddleware *custommw.OTelMiddleware
	otelProviders, err := infrastructure.InitializeOTel(infrastructure.DefaultOTelConfig(), logger)
	if err != nil {
		logger.Warn("OpenTelemetry initialization failed, continuing without tracing",
			slog.String("error", err.Error()))
	} else {
		otelMiddleware = custommw.NewOTelMiddleware(otelProviders)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := otelProviders.Shutdown(shutdownCtx); err != nil {
				logger.Warn("OpenTelemetry shutdown failed", slog.String("error", err.Error()))
			}
		}()
	}

	metrics := infrastructure.NewMetrics()
	errorHandler := apierrors.NewErrorHandler(logger, cfg.Logging.Development)

	reportService := services.NewReportService(paths, logger)
	healthService := services.NewHealthService(contracts.Version, contracts.BuildTime, paths, logger)

	router := transporthttp.NewRouter(transporthttp.RouterDeps{
		Config:       cfg,
		Logger:       logger,
		Metrics:      metrics,
		ErrorHandler: errorHandler,
		Reports:      transporthttp.NewReportHandler(reportService, logger, errorHandler),
		Health:       transporthttp.NewHealthHandler(healthService, logger),
		OTel:         otelMiddleware,
	})

	server := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        router,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Starting report API server",
			slog.String("addr", server.Addr),
			slog.String("version", contracts.Version),
			slog.String("reports_dir", paths.ReportsDir))
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", slog.String("error", err.Error()))
			return 1
		}
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Graceful shutdown failed", slog.String("error", err.Error()))
			return 1
		}
	}

	logger.Info("Server stopped")
	return 0
}
