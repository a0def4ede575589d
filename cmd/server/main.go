package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jengzang/location-heatmap/internal/api"
	"github.com/jengzang/location-heatmap/internal/config"
	"github.com/jengzang/location-heatmap/internal/database"
	"github.com/jengzang/location-heatmap/internal/dataset"
	"github.com/jengzang/location-heatmap/internal/handler"
	"github.com/jengzang/location-heatmap/internal/logging"
	"github.com/jengzang/location-heatmap/internal/middleware"
	"github.com/jengzang/location-heatmap/internal/repository"
	"github.com/jengzang/location-heatmap/internal/service"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	logger.Info("location heatmap starting",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit),
	)

	gin.SetMode(cfg.Server.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 加载数据集
	ds, err := loadDataset(ctx, cfg.Dataset, logger)
	if err != nil {
		logger.Fatal("failed to load dataset", zap.Error(err))
	}
	summary := ds.Summary()
	logger.Info("dataset loaded",
		zap.Int("segments", summary.SegmentCount),
		zap.Int("visits", summary.VisitCount),
		zap.Int("paths", summary.PathCount),
		zap.String("first_date", summary.FirstDate),
		zap.String("last_date", summary.LastDate),
	)
	if summary.InvalidTimestamps > 0 {
		logger.Warn("dataset contains malformed timestamps; heatmap queries will fail",
			zap.Int("count", summary.InvalidTimestamps))
	}

	heatmapService, err := service.NewHeatmapService(ds, cfg.Heatmap, logger)
	if err != nil {
		logger.Fatal("failed to create heatmap service", zap.Error(err))
	}

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.RPS > 0 {
		limiter = middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, 10*time.Minute)
		go limiter.Run(ctx.Done())
	}
	if cfg.Auth.JWTSecret == "" {
		logger.Warn("JWT_SECRET not set; API is unauthenticated")
	}

	// 初始化路由
	router := api.SetupRouter(cfg, api.Dependencies{
		Heatmap:     handler.NewHeatmapHandler(heatmapService),
		RateLimiter: limiter,
		Logger:      logger,
		Build:       api.BuildInfo{Version: Version, BuildTime: BuildTime, GitCommit: GitCommit},
	})

	srv := &http.Server{
		Addr:              cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 启动服务器
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
	logger.Info("server stopped")
}

// loadDataset reads the JSON export when configured, otherwise the SQLite store
func loadDataset(ctx context.Context, cfg config.DatasetConfig, logger *zap.Logger) (*dataset.Dataset, error) {
	if cfg.Path != "" {
		logger.Info("loading dataset from JSON export", zap.String("path", cfg.Path))
		return dataset.LoadFile(cfg.Path)
	}

	logger.Info("loading dataset from SQLite store", zap.String("path", cfg.DBPath))
	db, err := database.Open(ctx, database.Config{Path: cfg.DBPath}, logger.Named("database"))
	if err != nil {
		return nil, err
	}
	defer db.Close()

	segments, err := repository.NewSegmentRepository(db).LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load segments: %w", err)
	}
	return dataset.FromSegments(segments), nil
}
