package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/scenelingo/scenelingo-backend/internal/logger"
	apperrors "github.com/scenelingo/scenelingo-backend/internal/pkg/errors"
)

type localStore struct {
	log     *logger.Logger
	rootDir string
	baseURL string
}

// NewLocalStore maps keys under rootDir and serves them through baseURL.
func NewLocalStore(log *logger.Logger, rootDir, baseURL string) (ObjectStore, error) {
	if rootDir == "" {
		return nil, &ConfigError{Code: ConfigErrorMissingRootDir, Mode: string(ModeLocal)}
	}
	if err := os.MkdirAll(rootDir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root %q: %w", rootDir, err)
	}
	return &localStore{
		log:     log.With("service", "LocalObjectStore"),
		rootDir: rootDir,
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
	}, nil
}

func (s *localStore) pathForKey(key string) (string, error) {
	clean := filepath.Clean("/" + strings.TrimLeft(key, "/"))
	if clean == "/" {
		return "", fmt.Errorf("empty storage key")
	}
	return filepath.Join(s.rootDir, filepath.FromSlash(clean)), nil
}

func (s *localStore) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &apperrors.StorageError{Op: "upload", Key: key, Err: err}
	}
	path, err := s.pathForKey(key)
	if err != nil {
		return "", &apperrors.StorageError{Op: "upload", Key: key, Err: err}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", &apperrors.StorageError{Op: "upload", Key: key, Err: err}
	}

	// Write-then-rename so a concurrent reader never sees a partial object.
	tmp, err := os.CreateTemp(filepath.Dir(path), ".upload-*")
	if err != nil {
		return "", &apperrors.StorageError{Op: "upload", Key: key, Err: err}
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", &apperrors.StorageError{Op: "upload", Key: key, Err: err}
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", &apperrors.StorageError{Op: "upload", Key: key, Err: err}
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return "", &apperrors.StorageError{Op: "upload", Key: key, Err: err}
	}

	s.log.Debug("Stored object", "key", key, "bytes", len(data), "content_type", contentType)
	return s.GetPublicURL(key), nil
}

func (s *localStore) Delete(ctx context.Context, key string) error {
	path, err := s.pathForKey(key)
	if err != nil {
		return &apperrors.StorageError{Op: "delete", Key: key, Err: err}
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return &apperrors.StorageError{Op: "delete", Key: key, Err: err}
	}
	return nil
}

func (s *localStore) GetPublicURL(key string) string {
	return fmt.Sprintf("%s/%s", s.baseURL, strings.TrimLeft(strings.TrimSpace(key), "/"))
}
