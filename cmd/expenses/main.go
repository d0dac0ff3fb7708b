package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"time"

	"expenses/internal/cli"
	"expenses/internal/config"
	apphttp "expenses/internal/http"
	"expenses/internal/ledger"
	"expenses/internal/services"
)

func main() {
	seed := flag.Bool("seed", false, "seed the document store with sample data when empty")
	flag.Parse()

	logger := cli.SetupLogger()
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig(logger)

	primary := cli.InitDocumentStore(cfg.DocumentPath)
	relational := cli.InitRelationalStore(logger, cfg.SQLiteDBPath)

	if *seed {
		if err := primary.SeedSample(context.Background()); err != nil {
			logger.Error("Failed to seed sample data", "error", err)
			os.Exit(1)
		}
	}

	var mirror services.Mirror
	if cfg.MirrorWrites {
		mirror = relational
	}

	// Queries and analytics are served from the configured backend;
	// writes always commit to the document store first.
	var reader ledger.ReadStore
	if cfg.DataBackend == config.BackendSQLite {
		reader = relational
	}

	svc := services.NewExpenseService(primary, mirror, reader)

	srv := apphttp.NewServer(":"+cfg.Port, svc)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		if err := svc.Close(); err != nil {
			logger.Error("Store close error", "error", err)
		}
	})

	logger.Info("Starting expenses server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"mirror_writes", cfg.MirrorWrites,
	)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
