package api

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jengzang/location-heatmap/internal/config"
	"github.com/jengzang/location-heatmap/internal/handler"
	"github.com/jengzang/location-heatmap/internal/middleware"
)

// BuildInfo is reported by /health and /version
type BuildInfo struct {
	Version   string `json:"version"`
	BuildTime string `json:"build_time"`
	GitCommit string `json:"git_commit"`
}

// Dependencies are the components the router dispatches to
type Dependencies struct {
	Heatmap     *handler.HeatmapHandler
	RateLimiter *middleware.RateLimiter // nil disables rate limiting
	Logger      *zap.Logger
	Build       BuildInfo
}

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config, deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger(deps.Logger.Named("http")))

	corsConfig := cors.DefaultConfig()
	if len(cfg.Server.AllowedOrigins) == 1 && cfg.Server.AllowedOrigins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.Server.AllowedOrigins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization", middleware.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{middleware.RequestIDHeader}
	r.Use(cors.New(corsConfig))

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Location heatmap API is running",
			"version": deps.Build.Version,
		})
	})

	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, deps.Build)
	})

	// API 路由组
	api := r.Group("/api/v1")
	if deps.RateLimiter != nil {
		api.Use(middleware.RateLimit(deps.RateLimiter))
	}
	if cfg.Auth.JWTSecret != "" {
		api.Use(middleware.Auth(cfg.Auth.JWTSecret))
	}
	{
		api.GET("/heatmap", deps.Heatmap.GetHeatmap)
		api.POST("/heatmap", deps.Heatmap.GetHeatmap)
		api.GET("/dataset", deps.Heatmap.GetDatasetSummary)
		api.GET("/filters", deps.Heatmap.GetFilterOptions)
	}

	return r
}
