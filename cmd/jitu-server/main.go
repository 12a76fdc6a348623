package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"jitu/internal/app"
	"jitu/internal/config"
	"jitu/internal/infrastructure"
	"jitu/pkg/contracts"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML configuration file (defaults to jitu.yaml or config.yaml when present)")
	port := flag.Int("port", 0, "override the listen port")
	showVersion := flag.Bool("version", false, "print version information and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(contracts.GetFullVersionString())
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("Failed to initialize logger", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer infrastructure.CloseLogFile()

	ctx := infrastructure.EnsureTraceID(context.Background())
	infrastructure.LoggerWithContext(ctx).Info("Configuration loaded",
		slog.String("version", contracts.GetVersionString()),
		slog.String("addr", cfg.Server.Addr()),
		slog.String("log_level", cfg.Logging.Level))

	// Create application instance
	application, err := app.NewApplication(cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start application
	if err := application.Run(ctx); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
