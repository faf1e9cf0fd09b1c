package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App     AppConfig
	Form    FormConfig
	Session SessionConfig
	Sync    SyncConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	RedisURL           string
}

type FormConfig struct {
	MaxFields      int
	MaxValueLength int
	MaxUploadSize  int
}

type SessionConfig struct {
	IdleTimeout   time.Duration
	SweepInterval time.Duration
	ReadyGrace    time.Duration
}

type SyncConfig struct {
	// InstanceAddr is this instance's address as other instances reach it,
	// registered in the route table for every session it owns.
	InstanceAddr    string
	FallbackTimeout time.Duration
	// UseRedisRoutes switches the route table from in-memory to Redis for
	// multi-instance deployments.
	UseRedisRoutes bool
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	port := getEnv("APP_PORT", "8000")

	return &Config{
		App: AppConfig{
			Port:               port,
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:"+port),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Form: FormConfig{
			MaxFields:      getEnvAsInt("MAX_PDF_FIELDS", 300),
			MaxValueLength: getEnvAsInt("MAX_FIELD_VALUE_LENGTH", 500),
			MaxUploadSize:  getEnvAsInt("MAX_FILE_SIZE", 5*1024*1024),
		},
		Session: SessionConfig{
			IdleTimeout:   getEnvAsDuration("FORM_SESSION_TIMEOUT", 10*time.Minute),
			SweepInterval: getEnvAsDuration("SESSION_SWEEP_INTERVAL", 60*time.Second),
			ReadyGrace:    getEnvAsDuration("SESSION_READY_GRACE", 60*time.Second),
		},
		Sync: SyncConfig{
			InstanceAddr:    getEnv("INSTANCE_ADDR", "http://localhost:"+port),
			FallbackTimeout: getEnvAsDuration("SYNC_FALLBACK_TIMEOUT", 3*time.Second),
			UseRedisRoutes:  getEnv("SYNC_ROUTE_STORE", "memory") == "redis",
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
