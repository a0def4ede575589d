package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config 应用配置
type Config struct {
	Server    ServerConfig
	Dataset   DatasetConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Logging   LoggingConfig
	Heatmap   HeatmapConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port           string
	GinMode        string
	AllowedOrigins []string
}

// DatasetConfig says where the timeline is loaded from.
// A JSON export takes precedence over the SQLite store.
type DatasetConfig struct {
	Path   string // Takeout JSON export
	DBPath string // SQLite store written by cmd/import
}

// AuthConfig holds bearer token settings; an empty secret disables auth
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// RateLimitConfig holds per-client rate limiting; RPS <= 0 disables it
type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string // json, console
}

// HeatmapConfig holds query and rendering defaults
type HeatmapConfig struct {
	GapPolicy        string
	DefaultStartDate string
	DefaultEndDate   string
	Radius           int
	Blur             int
	Opacity          float64
	CenterLat        float64
	CenterLng        float64
	Zoom             int
	CellMeters       float64 // geohash cell size for weighted heatmap points
}

// Load 加载配置
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:           normalizePort(getEnv("PORT", getEnv("SERVER_PORT", ":8080"))),
			GinMode:        getEnv("GIN_MODE", "release"),
			AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		},
		Dataset: DatasetConfig{
			Path:   getEnv("DATASET_PATH", ""),
			DBPath: getEnv("DB_PATH", "./data/timeline/timeline.db"),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
			TokenTTL:  getEnvAsDuration("JWT_TTL", 24*time.Hour),
		},
		RateLimit: RateLimitConfig{
			RPS:   getEnvAsFloat("RATE_LIMIT_RPS", 10),
			Burst: getEnvAsInt("RATE_LIMIT_BURST", 20),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Heatmap: HeatmapConfig{
			GapPolicy:        getEnv("PATH_GAP_POLICY", "bridge"),
			DefaultStartDate: getEnv("DEFAULT_START_DATE", "2013-11-01"),
			DefaultEndDate:   getEnv("DEFAULT_END_DATE", "2014-11-30"),
			Radius:           getEnvAsInt("HEATMAP_RADIUS", 8),
			Blur:             getEnvAsInt("HEATMAP_BLUR", 12),
			Opacity:          getEnvAsFloat("HEATMAP_OPACITY", 0.7),
			CenterLat:        getEnvAsFloat("MAP_CENTER_LAT", 41.4039482),
			CenterLng:        getEnvAsFloat("MAP_CENTER_LNG", 2.1791428),
			Zoom:             getEnvAsInt("MAP_ZOOM", 13),
			CellMeters:       getEnvAsFloat("HEATMAP_CELL_METERS", 20),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that cannot be defaulted silently
func (c *Config) Validate() error {
	switch strings.ToLower(c.Heatmap.GapPolicy) {
	case "bridge", "break":
	default:
		return fmt.Errorf("invalid PATH_GAP_POLICY %q: want bridge or break", c.Heatmap.GapPolicy)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("invalid LOG_FORMAT %q: want json or console", c.Logging.Format)
	}
	if c.Dataset.Path == "" && c.Dataset.DBPath == "" {
		return fmt.Errorf("either DATASET_PATH or DB_PATH must be set")
	}
	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	value, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// normalizePort accepts "8080" as well as ":8080" or "host:8080"
func normalizePort(port string) string {
	if strings.Contains(port, ":") {
		return port
	}
	return ":" + port
}
