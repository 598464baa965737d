package storage

import (
	"context"
	"fmt"

	"github.com/scenelingo/scenelingo-backend/internal/logger"
)

// ObjectStore uploads opaque blobs under a key and maps keys to durable
// public URLs. Implementations are interchangeable; the mode is chosen once
// at process startup.
type ObjectStore interface {
	// Upload creates any needed key-prefix structure, writes the object so
	// readers never see a partial write, and returns a stable public URL.
	// Overwriting an existing key is permitted.
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	// Delete removes the object if present; absence is not an error.
	Delete(ctx context.Context, key string) error
	// GetPublicURL is a pure mapping from key to URL, no I/O.
	GetPublicURL(key string) string
}

// New selects the ObjectStore implementation for the resolved mode.
func New(log *logger.Logger, cfg Config) (ObjectStore, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("validate object storage config: %w", err)
	}
	switch cfg.Mode {
	case ModeLocal:
		return NewLocalStore(log, cfg.LocalRootDir, cfg.LocalBaseURL)
	case ModeGCS:
		return NewGCSStore(log, cfg.GCSBucket)
	case ModeS3:
		return NewS3Store(log, cfg)
	default:
		return nil, &ConfigError{Code: ConfigErrorInvalidMode, Mode: string(cfg.Mode)}
	}
}
