package engine

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/hookview/hookview/internal/model"
	"github.com/hookview/hookview/internal/record"
)

// FindByID scans the full namespace for the record whose id field equals id.
// Record identity lives in blob content, not in the key, so there is no
// shortcut through the key structure. If duplicate ids exist, the first match
// in the store's listing order wins.
func (e *Engine) FindByID(ctx context.Context, id string) (model.WebhookRecord, error) {
	rec, _, err := e.findByID(ctx, id)
	return rec, err
}

// DeleteByID locates the record by the same scan and removes its underlying
// blob. A concurrent delete of the same id may legitimately surface as
// NotFound here.
func (e *Engine) DeleteByID(ctx context.Context, id string) error {
	_, key, err := e.findByID(ctx, id)
	if err != nil {
		return err
	}
	return e.store.DeleteKey(ctx, key)
}

// findByID reads candidates sequentially and stops at the first match, so a
// point lookup does not load the whole namespace when the record sits early
// in the listing.
func (e *Engine) findByID(ctx context.Context, id string) (model.WebhookRecord, string, error) {
	keys, err := e.store.ListKeys(ctx, "")
	if err != nil {
		return model.WebhookRecord{}, "", err
	}

	for _, key := range keys {
		if !strings.HasSuffix(key, ".json") {
			continue
		}
		data, err := e.store.ReadBytes(ctx, key)
		if err != nil {
			log.Printf("engine: lookup skipping %s: read failed: %v", key, err)
			e.metrics.RecordSkipped("read")
			continue
		}
		rec, err := record.Load(key, data)
		if err != nil {
			log.Printf("engine: lookup skipping %s: %v", key, err)
			e.metrics.RecordSkipped("parse")
			continue
		}
		if rec.ID == id {
			return rec, key, nil
		}
	}

	return model.WebhookRecord{}, "", fmt.Errorf("engine: webhook %q: %w", id, model.ErrNotFound)
}
