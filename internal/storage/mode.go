package storage

import (
	"fmt"
	"net/url"
	"os"
	"strings"
)

type Mode string

const (
	ModeLocal Mode = "local"
	ModeGCS   Mode = "gcs"
	ModeS3    Mode = "s3"
)

func IsSupportedMode(mode Mode) bool {
	switch mode {
	case ModeLocal, ModeGCS, ModeS3:
		return true
	default:
		return false
	}
}

type Config struct {
	Mode Mode

	LocalRootDir string
	LocalBaseURL string

	GCSBucket string

	S3Endpoint  string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3UseSSL    bool
}

type ConfigErrorCode string

const (
	ConfigErrorInvalidMode     ConfigErrorCode = "invalid_mode"
	ConfigErrorMissingRootDir  ConfigErrorCode = "missing_local_root_dir"
	ConfigErrorInvalidBaseURL  ConfigErrorCode = "invalid_local_base_url"
	ConfigErrorMissingBucket   ConfigErrorCode = "missing_bucket"
	ConfigErrorMissingEndpoint ConfigErrorCode = "missing_s3_endpoint"
)

type ConfigError struct {
	Code  ConfigErrorCode
	Mode  string
	Value string
	Cause error
}

func (e *ConfigError) Error() string {
	if e == nil {
		return "invalid object storage config"
	}
	switch e.Code {
	case ConfigErrorInvalidMode:
		return fmt.Sprintf(
			"invalid OBJECT_STORAGE_MODE=%q (allowed: %q, %q, %q)",
			e.Mode, ModeLocal, ModeGCS, ModeS3,
		)
	case ConfigErrorMissingRootDir:
		return fmt.Sprintf("OBJECT_STORAGE_MODE=%q requires LOCAL_STORAGE_ROOT_DIR to be set", e.Mode)
	case ConfigErrorInvalidBaseURL:
		return fmt.Sprintf("invalid LOCAL_STORAGE_BASE_URL=%q; expected absolute URL like http://localhost:8080/media", e.Value)
	case ConfigErrorMissingBucket:
		return fmt.Sprintf("OBJECT_STORAGE_MODE=%q requires a bucket name to be set", e.Mode)
	case ConfigErrorMissingEndpoint:
		return fmt.Sprintf("OBJECT_STORAGE_MODE=%q requires S3_ENDPOINT to be set", e.Mode)
	default:
		return "invalid object storage config"
	}
}

func (e *ConfigError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// ResolveConfigFromEnv reads the storage deployment profile once at startup.
// Default is local-disk under ./data/media served from the API's own origin.
func ResolveConfigFromEnv() (Config, error) {
	cfg := Config{
		LocalRootDir: strings.TrimSpace(os.Getenv("LOCAL_STORAGE_ROOT_DIR")),
		LocalBaseURL: strings.TrimSpace(os.Getenv("LOCAL_STORAGE_BASE_URL")),
		GCSBucket:    strings.TrimSpace(os.Getenv("MEDIA_GCS_BUCKET_NAME")),
		S3Endpoint:   strings.TrimSpace(os.Getenv("S3_ENDPOINT")),
		S3Bucket:     strings.TrimSpace(os.Getenv("S3_BUCKET_NAME")),
		S3AccessKey:  strings.TrimSpace(os.Getenv("S3_ACCESS_KEY")),
		S3SecretKey:  strings.TrimSpace(os.Getenv("S3_SECRET_KEY")),
		S3UseSSL:     strings.EqualFold(strings.TrimSpace(os.Getenv("S3_USE_SSL")), "true"),
	}

	rawMode := strings.TrimSpace(os.Getenv("OBJECT_STORAGE_MODE"))
	mode := Mode(strings.ToLower(rawMode))
	switch mode {
	case "":
		cfg.Mode = ModeLocal
	case ModeLocal, ModeGCS, ModeS3:
		cfg.Mode = mode
	default:
		return cfg, &ConfigError{Code: ConfigErrorInvalidMode, Mode: rawMode}
	}

	if cfg.Mode == ModeLocal && cfg.LocalRootDir == "" {
		cfg.LocalRootDir = "data/media"
	}
	if cfg.Mode == ModeLocal && cfg.LocalBaseURL == "" {
		cfg.LocalBaseURL = "http://localhost:8080/media"
	}

	if err := ValidateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func ValidateConfig(cfg Config) error {
	switch cfg.Mode {
	case ModeLocal:
		if cfg.LocalRootDir == "" {
			return &ConfigError{Code: ConfigErrorMissingRootDir, Mode: string(cfg.Mode)}
		}
		u, err := url.Parse(cfg.LocalBaseURL)
		if err != nil || strings.TrimSpace(u.Scheme) == "" || strings.TrimSpace(u.Host) == "" {
			return &ConfigError{Code: ConfigErrorInvalidBaseURL, Mode: string(cfg.Mode), Value: cfg.LocalBaseURL, Cause: err}
		}
		return nil
	case ModeGCS:
		if cfg.GCSBucket == "" {
			return &ConfigError{Code: ConfigErrorMissingBucket, Mode: string(cfg.Mode)}
		}
		return nil
	case ModeS3:
		if cfg.S3Endpoint == "" {
			return &ConfigError{Code: ConfigErrorMissingEndpoint, Mode: string(cfg.Mode)}
		}
		if cfg.S3Bucket == "" {
			return &ConfigError{Code: ConfigErrorMissingBucket, Mode: string(cfg.Mode)}
		}
		return nil
	default:
		return &ConfigError{Code: ConfigErrorInvalidMode, Mode: string(cfg.Mode)}
	}
}
