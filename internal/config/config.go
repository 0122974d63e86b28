package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	RateLimitStoreMemory = "memory"
	RateLimitStoreRedis  = "redis"
)

type Config struct {
	Server    ServerConfig
	AI        AIConfig
	RateLimit RateLimitConfig
	Redis     RedisConfig
	Database  DatabaseConfig
	Qdrant    QdrantConfig
	Storage   StorageConfig
	Worker    WorkerConfig
	Log       LogConfig
}

type ServerConfig struct {
	Port      string
	Env       string
	BodyLimit int
}

type AIConfig struct {
	BaseURL        string
	APIKey         string
	Model          string
	EmbedModel     string
	ForceMock      bool
	Timeout        time.Duration
	RetryBaseDelay time.Duration
}

// MockMode reports whether the canned provider should be used instead of a live one.
// Missing credentials fall back to mock mode rather than failing startup.
func (a AIConfig) MockMode() bool {
	return a.ForceMock || strings.TrimSpace(a.APIKey) == "" || strings.TrimSpace(a.BaseURL) == ""
}

type RateLimitConfig struct {
	Store         string
	DefaultLimit  int
	FixLimit      int
	Window        time.Duration
	SweepInterval time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type QdrantConfig struct {
	Enabled    bool
	URL        string
	APIKey     string
	Collection string
}

type StorageConfig struct {
	UploadPath  string
	MaxFileSize int64
}

type WorkerConfig struct {
	Concurrency int
	QueueSize   int
}

type LogConfig struct {
	JSON  bool
	Debug bool
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using default values.")
	}

	return &Config{
		Server: ServerConfig{
			Port:      getEnv("PORT", "3000"),
			Env:       getEnv("ENV", "development"),
			BodyLimit: getEnvAsInt("BODY_LIMIT", 1048576),
		},
		AI: AIConfig{
			BaseURL:        getEnv("AI_BASE_URL", "https://generativelanguage.googleapis.com/"),
			APIKey:         getEnv("GEMINI_API_KEY", ""),
			Model:          getEnv("AI_MODEL", "gemini-2.5-flash"),
			EmbedModel:     getEnv("AI_EMBED_MODEL", "text-embedding-004"),
			ForceMock:      getEnvAsBool("AI_MOCK_MODE", false),
			Timeout:        getEnvAsDuration("AI_TIMEOUT", "20s"),
			RetryBaseDelay: getEnvAsDuration("AI_RETRY_BASE_DELAY", "1s"),
		},
		RateLimit: RateLimitConfig{
			Store:         strings.ToLower(getEnv("RATE_LIMIT_STORE", RateLimitStoreMemory)),
			DefaultLimit:  getEnvAsInt("RATE_LIMIT_DEFAULT", 10),
			FixLimit:      getEnvAsInt("RATE_LIMIT_FIX", 5),
			Window:        getEnvAsDuration("RATE_LIMIT_WINDOW", "60s"),
			SweepInterval: getEnvAsDuration("RATE_LIMIT_SWEEP_INTERVAL", "5m"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Database: DatabaseConfig{
			Enabled:  getEnvAsBool("DB_ENABLED", false),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "resume_roast"),
		},
		Qdrant: QdrantConfig{
			Enabled:    getEnvAsBool("QDRANT_ENABLED", false),
			URL:        getEnv("QDRANT_URL", "http://localhost:6333"),
			APIKey:     getEnv("QDRANT_API_KEY", ""),
			Collection: getEnv("QDRANT_COLLECTION", "ats_guidance"),
		},
		Storage: StorageConfig{
			UploadPath:  getEnv("UPLOAD_PATH", "./uploads"),
			MaxFileSize: getEnvAsInt64("MAX_FILE_SIZE", 10485760),
		},
		Worker: WorkerConfig{
			Concurrency: getEnvAsInt("WORKER_CONCURRENCY", 2),
			QueueSize:   getEnvAsInt("WORKER_QUEUE_SIZE", 100),
		},
		Log: LogConfig{
			JSON:  getEnvAsBool("LOG_JSON", false),
			Debug: getEnvAsBool("LOG_DEBUG", false),
		},
	}
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
