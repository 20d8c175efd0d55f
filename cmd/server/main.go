package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/tabkit/internal/config"
	"github.com/JonMunkholm/tabkit/internal/core"
	_ "github.com/JonMunkholm/tabkit/internal/core/contracts" // Register builtin contracts
	"github.com/JonMunkholm/tabkit/internal/logging"
	"github.com/JonMunkholm/tabkit/internal/web"
	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"max_file_size", humanize.IBytes(uint64(cfg.Engine.MaxFileSize)),
		"max_concurrent_jobs", cfg.Engine.MaxConcurrentJobs,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	contracts := core.DefaultContracts()
	if cfg.Contracts.File != "" {
		if err := contracts.LoadFile(cfg.Contracts.File); err != nil {
			slog.Error("failed to load contracts file", "path", cfg.Contracts.File, "error", err)
			os.Exit(1)
		}
	}
	if _, err := contracts.Lookup(cfg.Contracts.Default); err != nil {
		slog.Error("default contract is not registered", "contract", cfg.Contracts.Default, "error", err)
		os.Exit(1)
	}

	all := contracts.All()
	slog.Info("contracts registered", "count", len(all), "default", cfg.Contracts.Default)
	for _, c := range all {
		slog.Debug("contract", "key", c.Key, "columns", len(c.Columns))
	}

	service := core.NewService(cfg.ServiceConfig(), contracts)
	server := web.NewServer(service, cfg)

	// Graceful shutdown
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if status := service.Limiter().Status(); status.Active > 0 {
			slog.Info("waiting for jobs to complete", "active", status.Active)
		}
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	<-stopped
	slog.Info("server stopped")
}
