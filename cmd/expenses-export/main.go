package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"expenses/internal/analytics"
	"expenses/internal/cli"
	"expenses/internal/config"
	"expenses/internal/export"
	"expenses/internal/ledger"
)

func main() {
	outDir := flag.String("out", "", "output directory (defaults to EXPORT_DIR)")
	flag.Parse()

	logger := cli.SetupLogger()
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig(logger)

	dir := *outDir
	if dir == "" {
		dir = cfg.ExportDir
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		logger.Error("Failed to create export directory", "error", err, "path", dir)
		os.Exit(1)
	}

	var reader ledger.ReadStore
	if cfg.DataBackend == config.BackendSQLite {
		store := cli.InitRelationalStore(logger, cfg.SQLiteDBPath)
		defer store.Close()
		reader = store
	} else {
		reader = cli.InitDocumentStore(cfg.DocumentPath)
	}

	ctx := context.Background()
	expenses, err := reader.List(ctx)
	if err != nil {
		logger.Error("Failed to load expenses", "error", err)
		os.Exit(1)
	}
	stats := analytics.Compute(expenses)
	now := time.Now()

	// The three renderings share the same snapshot, so they can run
	// concurrently.
	g := new(errgroup.Group)
	g.Go(func() error {
		return writeFile(filepath.Join(dir, "expenses.csv"), func(f *os.File) error {
			return export.WriteCSV(f, expenses)
		})
	})
	g.Go(func() error {
		return writeFile(filepath.Join(dir, "expenses.json"), func(f *os.File) error {
			return export.WriteWireList(f, expenses)
		})
	})
	g.Go(func() error {
		return writeFile(filepath.Join(dir, "report.html"), func(f *os.File) error {
			return export.WriteReport(f, expenses, stats, now)
		})
	})
	if err := g.Wait(); err != nil {
		logger.Error("Export failed", "error", err)
		os.Exit(1)
	}

	logger.Info("Export finished",
		"directory", dir,
		"records", len(expenses),
		"backend", cfg.DataBackend,
	)
}

func writeFile(path string, render func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := render(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
