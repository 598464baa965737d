package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	gcstorage "cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/scenelingo/scenelingo-backend/internal/clients/gcp"
	"github.com/scenelingo/scenelingo-backend/internal/logger"
	apperrors "github.com/scenelingo/scenelingo-backend/internal/pkg/errors"
)

type gcsStore struct {
	log    *logger.Logger
	client *gcstorage.Client
	bucket string
}

// NewGCSStore maps keys under a GCS bucket's public object URL scheme.
func NewGCSStore(log *logger.Logger, bucket string) (ObjectStore, error) {
	if bucket == "" {
		return nil, &ConfigError{Code: ConfigErrorMissingBucket, Mode: string(ModeGCS)}
	}
	opts := gcp.ClientOptionsFromEnv()
	opts = append(opts, option.WithScopes(gcstorage.ScopeReadWrite))
	client, err := gcstorage.NewClient(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}
	return &gcsStore{
		log:    log.With("service", "GCSObjectStore"),
		client: client,
		bucket: bucket,
	}, nil
}

func (s *gcsStore) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	if contentType != "" {
		w.ContentType = contentType
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", &apperrors.StorageError{Op: "upload", Key: key, Err: err}
	}
	if err := w.Close(); err != nil {
		return "", &apperrors.StorageError{Op: "upload", Key: key, Err: err}
	}
	return s.GetPublicURL(key), nil
}

func (s *gcsStore) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	err := s.client.Bucket(s.bucket).Object(key).Delete(ctx)
	if err != nil && !errors.Is(err, gcstorage.ErrObjectNotExist) {
		return &apperrors.StorageError{Op: "delete", Key: key, Err: err}
	}
	return nil
}

func (s *gcsStore) GetPublicURL(key string) string {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, key)
}
