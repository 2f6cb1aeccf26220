package blobstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/hookview/hookview/internal/model"
)

// Config holds connection parameters for an S3-compatible object store.
type Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Configured reports whether enough credentials are present to build a
// client. Bucket has a fixed default upstream, so only the connection
// parameters decide.
func (c Config) Configured() bool {
	return strings.TrimSpace(c.Endpoint) != "" &&
		strings.TrimSpace(c.AccessKey) != "" &&
		strings.TrimSpace(c.SecretKey) != ""
}

// NewFromConfig builds the production Store. With missing credentials it
// returns an Unconfigured store rather than an error, so the caller can still
// serve HTTP and report the configuration problem per request.
func NewFromConfig(cfg Config) (Store, error) {
	if !cfg.Configured() {
		return Unconfigured{}, nil
	}
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("blobstore: bucket name is required")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("blobstore: creating client: %w", err)
	}

	return &minioStore{client: client, bucket: cfg.Bucket}, nil
}

// minioStore is the S3-compatible Store implementation. The client is built
// once at startup and reused across requests; it holds no request state.
type minioStore struct {
	client *minio.Client
	bucket string
}

func (s *minioStore) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	objects := s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})
	for obj := range objects {
		if obj.Err != nil {
			return nil, fmt.Errorf("blobstore: listing %q: %w", prefix, obj.Err)
		}
		keys = append(keys, obj.Key)
	}
	return keys, nil
}

func (s *minioStore) ReadBytes(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, s.mapErr("reading", key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, s.mapErr("reading", key, err)
	}
	return data, nil
}

func (s *minioStore) WriteBytes(ctx context.Context, key string, data []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return fmt.Errorf("blobstore: writing %q: %w", key, err)
	}
	return nil
}

func (s *minioStore) DeleteKey(ctx context.Context, key string) error {
	// S3 deletes are idempotent, so probe first to honor the NotFound
	// contract for keys that are already gone.
	if _, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{}); err != nil {
		return s.mapErr("deleting", key, err)
	}
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("blobstore: deleting %q: %w", key, err)
	}
	return nil
}

func (s *minioStore) mapErr(op, key string, err error) error {
	resp := minio.ToErrorResponse(err)
	if resp.Code == "NoSuchKey" || errors.Is(err, model.ErrNotFound) {
		return fmt.Errorf("blobstore: %s %q: %w", op, key, model.ErrNotFound)
	}
	return fmt.Errorf("blobstore: %s %q: %w", op, key, err)
}
