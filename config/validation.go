package config

import (
	"fmt"
	"strings"
	"time"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every failed requirement.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, e := range v {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "\n")
}

// ValidateConfig checks the configuration against the requirements of its environment
func ValidateConfig(cfg *Config) error {
	var errs ValidationErrors

	if cfg.JWTSecret == "" {
		errs = append(errs, ValidationError{"JWT_SECRET", "is required"})
	}

	switch cfg.DBDriver {
	case "postgres":
		if cfg.Env == Production || cfg.Env == CI {
			if cfg.DBPassword == "" {
				errs = append(errs, ValidationError{"DB_PASSWORD", "is required"})
			}
		}
	case "sqlite":
		if cfg.Env == Production {
			errs = append(errs, ValidationError{"DB_DRIVER", "sqlite is not allowed in production"})
		}
	default:
		errs = append(errs, ValidationError{"DB_DRIVER", fmt.Sprintf("unsupported driver %q", cfg.DBDriver)})
	}

	switch cfg.DetectorBackend {
	case "http":
		if cfg.DetectorURL == "" {
			errs = append(errs, ValidationError{"DETECTOR_URL", "is required for the http detector"})
		}
	case "rekognition", "static":
	default:
		errs = append(errs, ValidationError{"DETECTOR_BACKEND", fmt.Sprintf("unsupported backend %q", cfg.DetectorBackend)})
	}

	switch cfg.StorageBackend {
	case "local":
		if cfg.MediaRoot == "" {
			errs = append(errs, ValidationError{"MEDIA_ROOT", "is required for local storage"})
		}
	case "s3":
		if cfg.S3BucketName == "" {
			errs = append(errs, ValidationError{"S3_BUCKET_NAME", "is required for s3 storage"})
		}
	default:
		errs = append(errs, ValidationError{"STORAGE_BACKEND", fmt.Sprintf("unsupported backend %q", cfg.StorageBackend)})
	}

	if cfg.Env == Production && cfg.GoogleClientID == "" {
		errs = append(errs, ValidationError{"GOOGLE_CLIENT_ID", "is required in production"})
	}

	if _, err := time.LoadLocation(cfg.AppTimezone); err != nil {
		errs = append(errs, ValidationError{"APP_TIMEZONE", fmt.Sprintf("unknown time zone %q", cfg.AppTimezone)})
	}

	if cfg.TokenTTL <= 0 {
		errs = append(errs, ValidationError{"TOKEN_TTL", "must be positive"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
