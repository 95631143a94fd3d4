package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Env Environment

	// Server configuration
	ServerPort  string
	ServerHost  string
	MaxUploadMB int64
	CORSOrigins []string
	RateLimit   int
	AppTimezone string
	LogLevel    string
	DatasetPath string

	// Database configuration
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	// Redis configuration
	RedisURL      string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// JWT configuration
	JWTSecret string
	TokenTTL  time.Duration

	// External identity
	GoogleClientID string

	// Structured generation
	GeminiAPIKey string
	GeminiModel  string
	GeminiAPIURL string

	// Food detection
	DetectorBackend string
	DetectorURL     string
	DetectorTimeout time.Duration

	// Image storage
	StorageBackend    string
	MediaRoot         string
	MediaURL          string
	AWSRegion         string
	S3BucketName      string
	S3BaseEndpoint    string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3PublicURL       string
}

// LoadConfig creates a new Config instance from the environment, a local
// .env file and Docker secrets.
func LoadConfig() (*Config, error) {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	env := GetEnvironment()
	cfg := &Config{Env: env}

	switch env {
	case CI:
		loadFromEnv(cfg)
	case Development, Test, Production:
		loadFromEnv(cfg)
		loadSecrets(cfg)
	default:
		return nil, fmt.Errorf("unknown environment: %s", env)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func loadFromEnv(cfg *Config) {
	cfg.ServerPort = getEnv("SERVER_PORT", "8080")
	cfg.ServerHost = getEnv("SERVER_HOST", "0.0.0.0")
	cfg.MaxUploadMB = int64(getEnvInt("MAX_UPLOAD_MB", 10))
	cfg.CORSOrigins = splitList(getEnv("CORS_ALLOWED_ORIGINS", "*"))
	cfg.RateLimit = getEnvInt("RATE_LIMIT_PER_HOUR", 60)
	cfg.AppTimezone = getEnv("APP_TIMEZONE", "UTC")
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.DatasetPath = getEnv("NUTRITION_DATASET_PATH", "data/calorie_database.json")

	cfg.DBDriver = getEnv("DB_DRIVER", "postgres")
	cfg.DBHost = getEnv("DB_HOST", "localhost")
	cfg.DBPort = getEnv("DB_PORT", "5432")
	cfg.DBUser = getEnv("DB_USER", "postgres")
	cfg.DBPassword = os.Getenv("DB_PASSWORD")
	cfg.DBName = getEnv("DB_NAME", "platewise")
	cfg.DBSSLMode = getEnv("DB_SSL_MODE", "disable")
	cfg.SQLitePath = getEnv("SQLITE_PATH", "platewise.db")

	cfg.RedisURL = os.Getenv("REDIS_URL")
	cfg.RedisHost = getEnv("REDIS_HOST", "localhost")
	cfg.RedisPort = getEnv("REDIS_PORT", "6379")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	cfg.RedisDB = getEnvInt("REDIS_DB", 0)

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	cfg.TokenTTL = getEnvDuration("TOKEN_TTL", 24*time.Hour)

	cfg.GoogleClientID = os.Getenv("GOOGLE_CLIENT_ID")

	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.GeminiModel = getEnv("GEMINI_MODEL", "gemini-2.0-flash")
	cfg.GeminiAPIURL = getEnv("GEMINI_API_URL", "https://generativelanguage.googleapis.com/v1beta")

	cfg.DetectorBackend = getEnv("DETECTOR_BACKEND", "http")
	cfg.DetectorURL = getEnv("DETECTOR_URL", "http://localhost:8001/detect")
	cfg.DetectorTimeout = getEnvDuration("DETECTOR_TIMEOUT", 30*time.Second)

	cfg.StorageBackend = getEnv("STORAGE_BACKEND", "local")
	cfg.MediaRoot = getEnv("MEDIA_ROOT", "media")
	cfg.MediaURL = getEnv("MEDIA_URL", "/media")
	cfg.AWSRegion = getEnv("AWS_REGION", "us-east-1")
	cfg.S3BucketName = os.Getenv("S3_BUCKET_NAME")
	cfg.S3BaseEndpoint = os.Getenv("S3_BASE_ENDPOINT")
	cfg.S3AccessKeyID = os.Getenv("S3_ACCESS_KEY_ID")
	cfg.S3SecretAccessKey = os.Getenv("S3_SECRET_ACCESS_KEY")
	cfg.S3PublicURL = os.Getenv("S3_PUBLIC_URL")
}

// loadSecrets overrides sensitive values with Docker secrets when present.
func loadSecrets(cfg *Config) {
	overrides := map[string]*string{
		"db_password":          &cfg.DBPassword,
		"jwt_secret":           &cfg.JWTSecret,
		"redis_password":       &cfg.RedisPassword,
		"redis_url":            &cfg.RedisURL,
		"gemini_api_key":       &cfg.GeminiAPIKey,
		"google_client_id":     &cfg.GoogleClientID,
		"s3_secret_access_key": &cfg.S3SecretAccessKey,
	}
	for name, dst := range overrides {
		if v := readSecret(name); v != "" {
			*dst = v
		}
	}
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

// DSN returns the postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// Location resolves AppTimezone. ValidateConfig rejects unknown zones, so
// the UTC fallback only applies to hand-built configs.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.AppTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
