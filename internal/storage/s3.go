package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/scenelingo/scenelingo-backend/internal/logger"
	apperrors "github.com/scenelingo/scenelingo-backend/internal/pkg/errors"
)

type s3Store struct {
	log    *logger.Logger
	client *minio.Client
	bucket string
	useSSL bool
	host   string
}

// NewS3Store talks to any S3-compatible endpoint (MinIO, AWS) through the
// minio client.
func NewS3Store(log *logger.Logger, cfg Config) (ObjectStore, error) {
	if cfg.S3Endpoint == "" {
		return nil, &ConfigError{Code: ConfigErrorMissingEndpoint, Mode: string(ModeS3)}
	}
	if cfg.S3Bucket == "" {
		return nil, &ConfigError{Code: ConfigErrorMissingBucket, Mode: string(ModeS3)}
	}
	client, err := minio.New(cfg.S3Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		Secure: cfg.S3UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("s3 connection: %w", err)
	}
	return &s3Store{
		log:    log.With("service", "S3ObjectStore"),
		client: client,
		bucket: cfg.S3Bucket,
		useSSL: cfg.S3UseSSL,
		host:   cfg.S3Endpoint,
	}, nil
}

func (s *s3Store) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", &apperrors.StorageError{Op: "upload", Key: key, Err: err}
	}
	return s.GetPublicURL(key), nil
}

func (s *s3Store) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	// RemoveObject on a missing key succeeds, matching the port contract.
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return &apperrors.StorageError{Op: "delete", Key: key, Err: err}
	}
	return nil
}

func (s *s3Store) GetPublicURL(key string) string {
	scheme := "http"
	if s.useSSL {
		scheme = "https"
	}
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.host, s.bucket, key)
}
