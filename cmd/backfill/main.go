// Command backfill runs the legacy-disk migration job once and exits. It is
// the same job the privileged HTTP trigger invokes, packaged for operators
// who prefer running it out of band.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/devotionhub/media-service/internal/config"
	"github.com/devotionhub/media-service/internal/logger"
	"github.com/devotionhub/media-service/internal/media"
	"github.com/devotionhub/media-service/internal/storage"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	reconcileFile := flag.String("reconcile", "", "path to a JSON file of {filename, url} provenance pairs to reconcile after the disk scan")
	flag.Parse()

	_ = godotenv.Load()

	log, err := logger.Init()
	if err != nil {
		panic("init logger: " + err.Error())
	}
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("load config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbPool, err := storage.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		log.Fatal("connect postgres", zap.Error(err))
	}
	defer dbPool.Close()

	migrator := media.NewMigrator(media.NewRepository(dbPool), cfg.Media.UploadsRoot, log)

	report, err := migrator.Run(ctx)
	if err != nil {
		log.Fatal("migration run", zap.Error(err))
	}
	log.Info("disk backfill complete",
		zap.Int("migrated", report.Migrated),
		zap.Int("skipped", report.Skipped),
		zap.Int("errors", report.Errors),
	)

	if *reconcileFile == "" {
		return
	}

	entries, err := loadReconcileEntries(*reconcileFile)
	if err != nil {
		log.Fatal("load reconcile file", zap.String("path", *reconcileFile), zap.Error(err))
	}

	report, err = migrator.Reconcile(ctx, entries)
	if err != nil {
		log.Fatal("reconcile run", zap.Error(err))
	}
	log.Info("provenance reconcile complete",
		zap.Int("migrated", report.Migrated),
		zap.Int("skipped", report.Skipped),
		zap.Int("errors", report.Errors),
	)
}

func loadReconcileEntries(path string) ([]media.ReconcileEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entries []media.ReconcileEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
