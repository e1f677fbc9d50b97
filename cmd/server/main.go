// Command server runs the statement parser HTTP API.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/FACorreiaa/statement-parser/cmd/api"
	"github.com/FACorreiaa/statement-parser/pkg/config"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Observability.LogLevel}))
	slog.SetDefault(logger)
	if cfg.Observability.LogLevel > slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	deps, err := api.InitDependencies(cfg, logger, version)
	if err != nil {
		return err
	}
	defer deps.Cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return api.Run(ctx, deps)
}
