package config

import (
	"errors"
	"fmt"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks the configuration against what its environment
// needs, falling back to the process environment when cfg has none. All
// problems are reported together.
func ValidateConfig(cfg *Config) error {
	env := cfg.Environment
	if env == "" {
		env = GetEnvironment()
	}
	var errs []error

	if cfg.JWTSecret == "" {
		errs = append(errs, ValidationError{Field: "jwt_secret", Message: "is required"})
	}
	if cfg.DatabaseURL == "" && cfg.DBPassword == "" && env.RequiresDBPassword() {
		errs = append(errs, ValidationError{Field: "db_password", Message: "is required unless DATABASE_URL is set"})
	}
	if env.IsProduction() {
		if cfg.RedisURL == "" && cfg.RedisPassword == "" {
			errs = append(errs, ValidationError{Field: "redis_password", Message: "is required in production"})
		}
		if cfg.S3Bucket != "" && cfg.AWSRegion == "" {
			errs = append(errs, ValidationError{Field: "AWS_REGION", Message: "is required when S3_BUCKET_NAME is set"})
		}
	}
	if cfg.CandidateLimit <= 0 {
		errs = append(errs, ValidationError{Field: "MEALPLAN_CANDIDATE_LIMIT", Message: "must be positive"})
	}
	if cfg.CandidateCacheTTL < 0 {
		errs = append(errs, ValidationError{Field: "CANDIDATE_CACHE_TTL", Message: "must not be negative"})
	}
	if cfg.RateLimitRequests <= 0 {
		errs = append(errs, ValidationError{Field: "RATE_LIMIT_REQUESTS", Message: "must be positive"})
	}
	if cfg.RateLimitWindow <= 0 {
		errs = append(errs, ValidationError{Field: "RATE_LIMIT_WINDOW", Message: "must be positive"})
	}

	return errors.Join(errs...)
}
