package blobstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/hookview/hookview/internal/model"
)

// Memory is an in-process Store used by tests and local development. Listing
// returns keys in sorted order, which also makes duplicate-id lookups
// deterministic in tests.
type Memory struct {
	mu       sync.RWMutex
	blobs    map[string][]byte
	readErrs map[string]error
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		blobs:    make(map[string][]byte),
		readErrs: make(map[string]error),
	}
}

func (m *Memory) ListKeys(_ context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var keys []string
	for key := range m.blobs {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *Memory) ReadBytes(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err, ok := m.readErrs[key]; ok {
		return nil, err
	}
	data, ok := m.blobs[key]
	if !ok {
		return nil, fmt.Errorf("memory: reading %q: %w", key, model.ErrNotFound)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (m *Memory) WriteBytes(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := make([]byte, len(data))
	copy(stored, data)
	m.blobs[key] = stored
	return nil
}

func (m *Memory) DeleteKey(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.blobs[key]; !ok {
		return fmt.Errorf("memory: deleting %q: %w", key, model.ErrNotFound)
	}
	delete(m.blobs, key)
	return nil
}

// FailReads makes subsequent reads of key return err, simulating a transient
// store failure for a single blob.
func (m *Memory) FailReads(key string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readErrs[key] = err
}

// Len returns the number of stored blobs.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blobs)
}
