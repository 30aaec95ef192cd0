package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// Cron認証
	CronSecret string

	// 翻訳プロバイダ
	// GeminiAPIKeyが空の場合はエラーではなく、辞書フォールバックのみで動作する。
	GeminiAPIKey   string
	GeminiModel    string
	TranslateDelay time.Duration // AI翻訳の呼び出し間隔
	TranslateBatch int           // 1サイクルあたりの翻訳対象上限

	// 翻訳キャッシュ
	CacheTTL      time.Duration
	CacheCapacity int
	RedisURL      string // 空の場合はインメモリのみで動作する

	// クロール
	FetchTimeout       time.Duration
	FetchMaxSize       int64
	PerSourceLimit     int
	CrawlMaxConcurrent int
	RunDeadline        time.Duration // 1ランの実行時間上限
	CrawlInterval      time.Duration // ワーカーモードでのティッカー間隔

	// Rate Limit（公開APIのIP単位制限、req/min）
	RateLimitGeneral int

	// Server
	ServerPort string

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.CronSecret = os.Getenv("CRON_SECRET")
	if cfg.CronSecret == "" {
		missing = append(missing, "CRON_SECRET")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.GeminiModel = getEnvString("GEMINI_MODEL", "gemini-2.0-flash")
	cfg.TranslateDelay = getEnvDuration("TRANSLATE_DELAY", 2*time.Second)
	cfg.TranslateBatch = getEnvInt("TRANSLATE_BATCH", 10)
	cfg.CacheTTL = getEnvDuration("TRANSLATION_CACHE_TTL", 24*time.Hour)
	cfg.CacheCapacity = getEnvInt("TRANSLATION_CACHE_CAPACITY", 100)
	cfg.RedisURL = os.Getenv("REDIS_URL")
	cfg.FetchTimeout = getEnvDuration("FETCH_TIMEOUT", 10*time.Second)
	cfg.FetchMaxSize = getEnvInt64("FETCH_MAX_SIZE", 5242880)
	cfg.PerSourceLimit = getEnvInt("PER_SOURCE_LIMIT", 10)
	cfg.CrawlMaxConcurrent = getEnvInt("CRAWL_MAX_CONCURRENT", 4)
	cfg.RunDeadline = getEnvDuration("RUN_DEADLINE", 120*time.Second)
	cfg.CrawlInterval = getEnvDuration("CRAWL_INTERVAL", 5*time.Minute)
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

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

func getEnvInt64(key string, defaultVal int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return defaultVal
	}
	return i
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
