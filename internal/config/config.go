package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/hitoshi/quillboard/internal/logger"
)

// ストレージ種別
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// defaultDotEnvPath はENV_PATH未指定時に読み込む.envファイルのパス。
const defaultDotEnvPath = ".env"

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Storage
	StorageType string
	DatabaseURL string

	// Session
	SessionMaxAge          int
	SessionCleanupInterval time.Duration

	// Enrichment
	EnrichmentLatency        time.Duration
	EnrichmentTimeout        time.Duration
	EnrichmentVocabularyPath string

	// Featured image
	FeaturedImageProbe        bool
	FeaturedImageProbeTimeout time.Duration

	// Rate Limit (req/min)
	RateLimitGeneral    int
	RateLimitSubmission int

	// Admin bootstrap
	AdminName     string
	AdminEmail    string
	AdminPassword string

	// Server
	ServerPort string

	// Cookie
	CookieSecure bool
	CookieDomain string

	// CORS
	CORSAllowedOrigin string

	// Logging
	LogLevel slog.Level
}

// UsePostgres はPostgresをストレージとして使うかを返す。
func (c *Config) UsePostgres() bool {
	return c.StorageType == StoragePostgres
}

// BootstrapAdmin は起動時に管理者を作成する設定があるかを返す。
func (c *Config) BootstrapAdmin() bool {
	return c.AdminEmail != ""
}

// LoadDotEnv は.envファイルがあれば環境変数に読み込む。
// パスはENV_PATHで変更できる。既に設定済みの環境変数は上書きしない。
// ファイルが存在しない場合は何もしない。
func LoadDotEnv() error {
	path := getEnvString("ENV_PATH", defaultDotEnvPath)
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	slog.Info("loaded environment file", slog.String("path", path))
	return nil
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合や値が不正な場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.StorageType = getEnvString("STORAGE_TYPE", StorageMemory)
	switch cfg.StorageType {
	case StorageMemory, StoragePostgres:
	default:
		return nil, fmt.Errorf("invalid STORAGE_TYPE %q: must be %q or %q", cfg.StorageType, StorageMemory, StoragePostgres)
	}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.UsePostgres() && cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.AdminName = os.Getenv("ADMIN_NAME")
	cfg.AdminEmail = os.Getenv("ADMIN_EMAIL")
	cfg.AdminPassword = os.Getenv("ADMIN_PASSWORD")
	if cfg.AdminEmail != "" && cfg.AdminPassword == "" {
		missing = append(missing, "ADMIN_PASSWORD")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.SessionMaxAge = getEnvInt("SESSION_MAX_AGE", 86400)
	cfg.SessionCleanupInterval = getEnvDuration("SESSION_CLEANUP_INTERVAL", time.Hour)
	cfg.EnrichmentLatency = getEnvDuration("ENRICHMENT_LATENCY", time.Second)
	cfg.EnrichmentTimeout = getEnvDuration("ENRICHMENT_TIMEOUT", 5*time.Second)
	cfg.EnrichmentVocabularyPath = getEnvString("ENRICHMENT_VOCABULARY_PATH", "")
	cfg.FeaturedImageProbe = getEnvBool("FEATURED_IMAGE_PROBE", false)
	cfg.FeaturedImageProbeTimeout = getEnvDuration("FEATURED_IMAGE_PROBE_TIMEOUT", 5*time.Second)
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitSubmission = getEnvInt("RATE_LIMIT_SUBMISSION", 10)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.CookieSecure = getEnvBool("COOKIE_SECURE", false)
	cfg.CookieDomain = getEnvString("COOKIE_DOMAIN", "")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

	level, err := logger.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	if cfg.RateLimitGeneral <= 0 || cfg.RateLimitSubmission <= 0 {
		return nil, fmt.Errorf("rate limits must be positive: general=%d submission=%d", cfg.RateLimitGeneral, cfg.RateLimitSubmission)
	}
	if cfg.SessionCleanupInterval <= 0 {
		return nil, fmt.Errorf("SESSION_CLEANUP_INTERVAL must be positive: %v", cfg.SessionCleanupInterval)
	}

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
