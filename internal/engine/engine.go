// Package engine implements listing, filtering, pagination, statistics, and
// point lookup over the flat webhook blob namespace. There is no index: every
// operation enumerates keys and loads candidate blobs, skipping any blob that
// fails to read or parse.
package engine

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hookview/hookview/internal/blobstore"
	"github.com/hookview/hookview/internal/metric"
	"github.com/hookview/hookview/internal/model"
	"github.com/hookview/hookview/internal/record"
)

// DefaultPageSize is the page size used when a query supplies none.
const DefaultPageSize = 10

const defaultMaxConcurrentReads = 8

// Engine runs scan-filter-sort-paginate queries against a blob store. It
// holds no request-scoped state; the store handle is constructed once and
// reused across requests.
type Engine struct {
	store              blobstore.Store
	maxConcurrentReads int
	metrics            *metric.Metrics
}

// New creates an engine over the given store.
func New(store blobstore.Store) *Engine {
	return &Engine{
		store:              store,
		maxConcurrentReads: defaultMaxConcurrentReads,
	}
}

// SetMaxConcurrentReads bounds parallel blob reads during a scan.
func (e *Engine) SetMaxConcurrentReads(n int) {
	if n > 0 {
		e.maxConcurrentReads = n
	}
}

// SetMetrics attaches Prometheus collectors. A nil Metrics is valid.
func (e *Engine) SetMetrics(m *metric.Metrics) {
	e.metrics = m
}

// loaded pairs a decoded record with the blob key it came from. The key is
// needed for delete-by-id, which removes the underlying blob.
type loaded struct {
	key string
	rec model.WebhookRecord
}

// scan lists candidate ".json" keys under prefix and loads them in parallel.
// Reads are independent and unordered; callers sort afterwards. A failure to
// read or parse a single blob is logged and skipped, never surfaced. A
// failure of the listing call itself fails the whole operation.
func (e *Engine) scan(ctx context.Context, prefix, op string) ([]loaded, error) {
	start := time.Now()

	keys, err := e.store.ListKeys(ctx, prefix)
	if err != nil {
		return nil, err
	}

	var (
		mu  sync.Mutex
		out []loaded
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.maxConcurrentReads)

	for _, key := range keys {
		if !strings.HasSuffix(key, ".json") {
			continue
		}
		key := key
		g.Go(func() error {
			data, err := e.store.ReadBytes(gctx, key)
			if err != nil {
				log.Printf("engine: skipping %s: read failed: %v", key, err)
				e.metrics.RecordSkipped("read")
				return nil
			}
			rec, err := record.Load(key, data)
			if err != nil {
				log.Printf("engine: skipping %s: %v", key, err)
				e.metrics.RecordSkipped("parse")
				return nil
			}
			e.metrics.RecordLoaded()
			mu.Lock()
			out = append(out, loaded{key: key, rec: rec})
			mu.Unlock()
			return nil
		})
	}

	// Goroutines always return nil; Wait only fails on context cancellation
	// propagated through gctx, which the reads already observed.
	_ = g.Wait()

	e.metrics.ObserveScan(op, time.Since(start))
	return out, nil
}
