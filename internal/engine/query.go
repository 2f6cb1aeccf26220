package engine

import (
	"context"
	"sort"
	"strings"

	"github.com/hookview/hookview/internal/model"
	"github.com/hookview/hookview/internal/record"
)

// predicate is a pure filter on a loaded record. A record must satisfy every
// supplied predicate to remain a candidate.
type predicate func(model.WebhookRecord) bool

// Query enumerates candidate blobs, applies the spec's filters, sorts by
// receivedAt descending, and paginates. Total always reflects the full
// filtered set regardless of page and limit.
func (e *Engine) Query(ctx context.Context, spec model.QuerySpec) (model.QueryResult, error) {
	if spec.Page < 1 {
		spec.Page = 1
	}
	if spec.Limit < 1 {
		spec.Limit = DefaultPageSize
	}

	prefix := ""
	if spec.DatePrefix != "" {
		prefix = spec.DatePrefix + "/"
	}

	batch, err := e.scan(ctx, prefix, "query")
	if err != nil {
		return model.QueryResult{}, err
	}

	preds := buildPredicates(spec)
	records := make([]model.WebhookRecord, 0, len(batch))
	for _, item := range batch {
		if matchesAll(item.rec, preds) {
			records = append(records, item.rec)
		}
	}

	sortNewestFirst(records)
	total := len(records)

	return model.QueryResult{
		Records: pageSlice(records, spec.Page, spec.Limit),
		Total:   total,
		Page:    spec.Page,
		Limit:   spec.Limit,
	}, nil
}

func buildPredicates(spec model.QuerySpec) []predicate {
	var preds []predicate

	if spec.Method != "" {
		want := strings.ToUpper(spec.Method)
		preds = append(preds, func(r model.WebhookRecord) bool {
			return r.Method == want
		})
	}

	if spec.SourceIP != "" {
		preds = append(preds, func(r model.WebhookRecord) bool {
			return r.SourceIP == spec.SourceIP
		})
	}

	if spec.Search != "" {
		needle := strings.ToLower(spec.Search)
		preds = append(preds, func(r model.WebhookRecord) bool {
			return searchMatches(r, needle)
		})
	}

	if spec.ConversationID != "" {
		needle := strings.ToLower(spec.ConversationID)
		preds = append(preds, func(r model.WebhookRecord) bool {
			id, ok := record.ConversationID(r.RawBody)
			return ok && strings.Contains(strings.ToLower(id), needle)
		})
	}

	return preds
}

func matchesAll(r model.WebhookRecord, preds []predicate) bool {
	for _, pred := range preds {
		if !pred(r) {
			return false
		}
	}
	return true
}

// searchMatches tests a lower-cased needle against id, path, rawBody,
// contentType, and every header and query parameter value.
func searchMatches(r model.WebhookRecord, needle string) bool {
	for _, field := range []string{r.ID, r.Path, r.RawBody, r.ContentType} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	for _, value := range r.Headers {
		if strings.Contains(strings.ToLower(value), needle) {
			return true
		}
	}
	for _, value := range r.QueryParams {
		if strings.Contains(strings.ToLower(value), needle) {
			return true
		}
	}
	return false
}

// sortNewestFirst orders records by receivedAt descending. Timestamps are
// parsed once up front; unparseable values get the zero time and sort last.
func sortNewestFirst(records []model.WebhookRecord) {
	type keyed struct {
		at  int64
		rec model.WebhookRecord
	}
	byTime := make([]keyed, len(records))
	for i, r := range records {
		byTime[i] = keyed{at: r.ReceivedTime().UnixNano(), rec: r}
	}
	sort.SliceStable(byTime, func(a, b int) bool {
		return byTime[a].at > byTime[b].at
	})
	for i, k := range byTime {
		records[i] = k.rec
	}
}

// pageSlice returns the 1-based page of size limit. Out-of-range pages yield
// an empty slice.
func pageSlice(records []model.WebhookRecord, page, limit int) []model.WebhookRecord {
	start := (page - 1) * limit
	if start >= len(records) {
		return []model.WebhookRecord{}
	}
	end := start + limit
	if end > len(records) {
		end = len(records)
	}
	return records[start:end]
}
