package engine

import (
	"context"
	"sort"
	"strings"
)

// ListDates derives the distinct date prefixes present in the namespace from
// key names alone, sorted descending. Lexicographic order is correct because
// the prefixes are yyyy-MM-dd strings.
func (e *Engine) ListDates(ctx context.Context) ([]string, error) {
	keys, err := e.store.ListKeys(ctx, "")
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	for _, key := range keys {
		if idx := strings.Index(key, "/"); idx > 0 {
			seen[key[:idx]] = struct{}{}
		}
	}

	dates := make([]string, 0, len(seen))
	for date := range seen {
		dates = append(dates, date)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	return dates, nil
}
