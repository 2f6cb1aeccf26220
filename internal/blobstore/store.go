// Package blobstore abstracts flat object storage holding webhook records as
// individual JSON blobs keyed "{yyyy-MM-dd}/{name}.json". The engine only
// ever lists keys, reads bytes, and deletes keys; it never assumes any
// listing order.
package blobstore

import (
	"context"
	"fmt"

	"github.com/hookview/hookview/internal/model"
)

// Store is the narrow storage contract required by the query engine and the
// seeder. ReadBytes and DeleteKey return model.ErrNotFound when the key
// disappeared between listing and access; callers tolerate that per-key.
type Store interface {
	ListKeys(ctx context.Context, prefix string) ([]string, error)
	ReadBytes(ctx context.Context, key string) ([]byte, error)
	WriteBytes(ctx context.Context, key string, data []byte) error
	DeleteKey(ctx context.Context, key string) error
}

// Unconfigured is a Store whose every operation fails with
// model.ErrNotConfigured. It is installed when store credentials are absent
// so that the process starts normally and data operations fail with a
// descriptive configuration error instead of crashing at boot.
type Unconfigured struct{}

func (Unconfigured) ListKeys(context.Context, string) ([]string, error) {
	return nil, fmt.Errorf("list: %w", model.ErrNotConfigured)
}

func (Unconfigured) ReadBytes(context.Context, string) ([]byte, error) {
	return nil, fmt.Errorf("read: %w", model.ErrNotConfigured)
}

func (Unconfigured) WriteBytes(context.Context, string, []byte) error {
	return fmt.Errorf("write: %w", model.ErrNotConfigured)
}

func (Unconfigured) DeleteKey(context.Context, string) error {
	return fmt.Errorf("delete: %w", model.ErrNotConfigured)
}
