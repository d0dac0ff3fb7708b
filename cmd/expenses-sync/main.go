package main

import (
	"context"
	"flag"
	"os"
	"time"

	"expenses/internal/cli"
	"expenses/internal/services"
)

const (
	directionToRelational = "document-to-sqlite"
	directionToDocument   = "sqlite-to-document"
)

func main() {
	direction := flag.String("direction", directionToRelational,
		"sync direction: document-to-sqlite or sqlite-to-document")
	timeout := flag.Duration("timeout", 60*time.Second, "overall run timeout")
	flag.Parse()

	logger := cli.SetupLogger()
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig(logger)

	document := cli.InitDocumentStore(cfg.DocumentPath)
	relational := cli.InitRelationalStore(logger, cfg.SQLiteDBPath)
	defer relational.Close()

	bridge := services.NewSyncBridge(document, relational)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	var (
		result services.SyncResult
		err    error
	)
	switch *direction {
	case directionToRelational:
		result, err = bridge.ToRelational(ctx)
	case directionToDocument:
		result, err = bridge.ToDocument(ctx)
	default:
		logger.Error("Unknown sync direction", "direction", *direction)
		os.Exit(2)
	}
	if err != nil {
		logger.Error("Sync failed", "direction", *direction, "error", err)
		os.Exit(1)
	}

	logger.Info("Sync finished",
		"direction", *direction,
		"upserted", result.Upserted,
		"deleted", result.Deleted,
	)
}
