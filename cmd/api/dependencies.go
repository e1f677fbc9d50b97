package api

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/FACorreiaa/statement-parser/internal/domain/statement/document"
	"github.com/FACorreiaa/statement-parser/internal/domain/statement/handler"
	"github.com/FACorreiaa/statement-parser/internal/domain/statement/service"
	"github.com/FACorreiaa/statement-parser/pkg/config"
	"github.com/FACorreiaa/statement-parser/pkg/metrics"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config  *config.Config
	Logger  *slog.Logger
	Version string

	// Infrastructure
	Extractor document.Extractor
	Metrics   *metrics.Metrics

	// Services
	ParseService *service.ParseService

	// Handlers
	ParseHandler *handler.ParseHandler
	RateLimiter  *handler.RateLimiter
}

// InitDependencies initializes all application dependencies
func InitDependencies(cfg *config.Config, logger *slog.Logger, version string) (*Dependencies, error) {
	deps := &Dependencies{
		Config:  cfg,
		Logger:  logger,
		Version: version,
	}

	if err := deps.initInfrastructure(); err != nil {
		return nil, fmt.Errorf("failed to init infrastructure: %w", err)
	}

	if err := deps.initServices(); err != nil {
		return nil, fmt.Errorf("failed to init services: %w", err)
	}

	if err := deps.initHandlers(); err != nil {
		return nil, fmt.Errorf("failed to init handlers: %w", err)
	}

	logger.Info("all dependencies initialized successfully")

	return deps, nil
}

// initInfrastructure sets up the PDF extractor and the metrics registry
func (d *Dependencies) initInfrastructure() error {
	d.Extractor = document.NewPDFExtractor(document.WithValidation(d.Config.Parse.ValidatePDF))

	if d.Config.Observability.MetricsEnabled {
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		d.Metrics = metrics.New(registry)
	}

	d.Logger.Info("infrastructure initialized",
		slog.Bool("pdf_validation", d.Config.Parse.ValidatePDF),
		slog.Bool("metrics", d.Metrics != nil))
	return nil
}

// initServices initializes all service layer dependencies
func (d *Dependencies) initServices() error {
	d.ParseService = service.NewParseService(d.Extractor, service.Config{
		MaxUploadBytes: d.Config.Parse.MaxUploadBytes,
		Timeout:        d.Config.Parse.Timeout,
		Workers:        d.Config.Parse.Workers,
	}, d.Logger).WithMetrics(d.Metrics)

	d.Logger.Info("services initialized")
	return nil
}

// initHandlers initializes all handler dependencies
func (d *Dependencies) initHandlers() error {
	d.ParseHandler = handler.NewParseHandler(d.ParseService, d.Config.Parse.MaxUploadBytes, d.Version, d.Logger)
	d.RateLimiter = handler.NewRateLimiter(d.Config.Server.RateLimitPerSecond, d.Config.Server.RateLimitBurst)

	d.Logger.Info("handlers initialized")
	return nil
}

// Cleanup releases resources held by the dependencies
func (d *Dependencies) Cleanup() {
	d.Logger.Info("cleanup completed")
}
