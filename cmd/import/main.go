// Command import converts a Google Takeout semantic segments export into the SQLite store
// the server reads when DATASET_PATH is unset.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/jengzang/location-heatmap/internal/config"
	"github.com/jengzang/location-heatmap/internal/database"
	"github.com/jengzang/location-heatmap/internal/dataset"
	"github.com/jengzang/location-heatmap/internal/logging"
	"github.com/jengzang/location-heatmap/internal/repository"
)

func main() {
	input := flag.String("input", "", "path to the Takeout JSON export")
	dbPath := flag.String("db", "", "SQLite store to write (default DB_PATH)")
	logLevel := flag.String("log-level", "info", "log level")
	flag.Parse()

	if *input == "" {
		flag.Usage()
		os.Exit(2)
	}

	logger, err := logging.New(*logLevel, "console")
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	if *dbPath == "" {
		cfg, err := config.Load()
		if err != nil {
			logger.Fatal("failed to load configuration", zap.Error(err))
		}
		*dbPath = cfg.Dataset.DBPath
	}

	ds, err := dataset.LoadFile(*input)
	if err != nil {
		logger.Fatal("failed to read export", zap.Error(err))
	}
	summary := ds.Summary()
	if summary.InvalidTimestamps > 0 {
		logger.Warn("export contains malformed timestamps; they are stored as-is",
			zap.Int("count", summary.InvalidTimestamps))
	}

	ctx := context.Background()
	db, err := database.Open(ctx, database.Config{Path: *dbPath}, logger.Named("database"))
	if err != nil {
		logger.Fatal("failed to open store", zap.Error(err))
	}
	defer db.Close()

	repo := repository.NewSegmentRepository(db)
	if err := repo.ReplaceAll(ctx, ds.Segments()); err != nil {
		logger.Fatal("failed to import segments", zap.Error(err))
	}
	stored, err := repo.Count(ctx)
	if err != nil {
		logger.Fatal("failed to count stored segments", zap.Error(err))
	}

	logger.Info("import complete",
		zap.String("db", *dbPath),
		zap.Int64("segments", stored),
		zap.Int("visits", summary.VisitCount),
		zap.Int("path_points", summary.PathPointCount),
		zap.String("first_date", summary.FirstDate),
		zap.String("last_date", summary.LastDate),
	)
}
