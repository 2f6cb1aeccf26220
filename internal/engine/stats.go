package engine

import (
	"context"

	"github.com/hookview/hookview/internal/model"
)

// Stats scans the entire namespace, ignoring any date scoping, and counts
// records by method and by date. Blobs that fail to load are excluded from
// every count without aborting the aggregation.
func (e *Engine) Stats(ctx context.Context) (model.Stats, error) {
	batch, err := e.scan(ctx, "", "stats")
	if err != nil {
		return model.Stats{}, err
	}

	stats := model.Stats{
		ByMethod: make(map[string]int),
		ByDate:   make(map[string]int),
	}
	for _, item := range batch {
		stats.Total++
		stats.ByMethod[item.rec.Method]++
		stats.ByDate[item.rec.ReceivedDate()]++
	}
	return stats, nil
}
