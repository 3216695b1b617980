package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Environment Environment

	// Server configuration
	ServerPort string
	ServerHost string

	// Database configuration
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBSSLMode     string
	DatabaseURL   string
	MigrationsDir string

	// Redis configuration
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// JWT configuration
	JWTSecret string

	// Plan archive and events. Both are optional.
	S3Bucket     string
	AWSRegion    string
	KafkaBrokers string
	KafkaTopic   string

	// Meal plan generation
	MealplanSeed      int64
	CandidateLimit    int
	CandidateCacheTTL time.Duration

	// Rate limiting for generation routes
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// Defaults for optional settings.
const (
	DefaultServerPort        = "8080"
	DefaultCandidateLimit    = 60
	DefaultCandidateCacheTTL = 10 * time.Minute
	DefaultRateLimitRequests = 30
	DefaultRateLimitWindow   = time.Minute
	DefaultKafkaTopic        = "meal-plan-events"
	DefaultMigrationsDir     = "migrations"
)

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	env := GetEnvironment()
	cfg := &Config{Environment: env}

	switch env {
	case CI:
		loadCIConfig(cfg)
	case Development, Test:
		if env == Development {
			if err := godotenv.Load(); err == nil {
				log.Printf("[Config] Loaded .env file")
			}
		}
		loadSecretConfig(cfg)
	case Production:
		loadSecretConfig(cfg)
	default:
		return nil, fmt.Errorf("unknown environment: %s", env)
	}

	if err := loadSettings(cfg); err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadCIConfig reads credentials from the CI runner's environment.
func loadCIConfig(cfg *Config) {
	cfg.DBUser = getEnv("DB_USER", "postgres")
	cfg.DBPassword = firstNonEmpty(os.Getenv("TEST_DB_PASSWORD"), os.Getenv("DB_PASSWORD"))
	cfg.JWTSecret = firstNonEmpty(os.Getenv("TEST_JWT_SECRET"), os.Getenv("JWT_SECRET"))
	cfg.RedisPassword = firstNonEmpty(os.Getenv("TEST_REDIS_PASSWORD"), os.Getenv("REDIS_PASSWORD"))
	cfg.RedisURL = firstNonEmpty(os.Getenv("TEST_REDIS_URL"), os.Getenv("REDIS_URL"))
}

// loadSecretConfig reads credentials from Docker secrets, falling back to
// environment variables of the same name.
func loadSecretConfig(cfg *Config) {
	cfg.DBUser = secretOrEnv("db_user", "DB_USER")
	cfg.DBPassword = secretOrEnv("db_password", "DB_PASSWORD")
	cfg.JWTSecret = secretOrEnv("jwt_secret", "JWT_SECRET")
	cfg.RedisPassword = secretOrEnv("redis_password", "REDIS_PASSWORD")
	cfg.RedisURL = secretOrEnv("redis_url", "REDIS_URL")
	cfg.DatabaseURL = secretOrEnv("database_url", "DATABASE_URL")
}

// loadSettings reads the non-secret settings shared by every environment.
func loadSettings(cfg *Config) error {
	cfg.ServerPort = getEnv("SERVER_PORT", DefaultServerPort)
	cfg.ServerHost = getEnv("SERVER_HOST", "0.0.0.0")
	cfg.DBHost = getEnv("DB_HOST", "localhost")
	cfg.DBPort = getEnv("DB_PORT", "5432")
	cfg.DBName = getEnv("DB_NAME", "mealplan")
	cfg.DBSSLMode = getEnv("DB_SSL_MODE", "disable")
	cfg.MigrationsDir = getEnv("MIGRATIONS_DIR", DefaultMigrationsDir)
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DBUser == "" {
		cfg.DBUser = "postgres"
	}

	cfg.RedisHost = getEnv("REDIS_HOST", "localhost")
	cfg.RedisPort = getEnv("REDIS_PORT", "6379")

	cfg.S3Bucket = os.Getenv("S3_BUCKET_NAME")
	cfg.AWSRegion = os.Getenv("AWS_REGION")
	cfg.KafkaBrokers = os.Getenv("KAFKA_BROKERS")
	cfg.KafkaTopic = getEnv("KAFKA_TOPIC", DefaultKafkaTopic)

	var err error
	if cfg.RedisDB, err = getEnvInt("REDIS_DB", 0); err != nil {
		return err
	}
	if cfg.MealplanSeed, err = getEnvInt64("MEALPLAN_SEED", 0); err != nil {
		return err
	}
	if cfg.CandidateLimit, err = getEnvInt("MEALPLAN_CANDIDATE_LIMIT", DefaultCandidateLimit); err != nil {
		return err
	}
	if cfg.CandidateCacheTTL, err = getEnvDuration("CANDIDATE_CACHE_TTL", DefaultCandidateCacheTTL); err != nil {
		return err
	}
	if cfg.RateLimitRequests, err = getEnvInt("RATE_LIMIT_REQUESTS", DefaultRateLimitRequests); err != nil {
		return err
	}
	if cfg.RateLimitWindow, err = getEnvDuration("RATE_LIMIT_WINDOW", DefaultRateLimitWindow); err != nil {
		return err
	}
	return nil
}

// DSN returns the Postgres connection string, preferring DATABASE_URL.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
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

func secretOrEnv(secret, envVar string) string {
	if v := readSecret(secret); v != "" {
		return v
	}
	return os.Getenv(envVar)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func getEnvInt64(key string, fallback int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
