package model

import "time"

// WebhookRecord represents a single received webhook request as stored in the
// blob namespace. It is the canonical type for the query engine, the HTTP API,
// and the dashboard. Records are immutable once read; the only mutation this
// system performs is deleting the underlying blob.
type WebhookRecord struct {
	ID          string            `json:"id"`
	ReceivedAt  string            `json:"receivedAt"` // ISO 8601, sole sort key
	Method      string            `json:"method"`     // normalized to upper-case at load
	Path        string            `json:"path"`
	Headers     map[string]string `json:"headers"`
	QueryParams map[string]string `json:"queryParameters"`
	RawBody     string            `json:"rawBody"`
	ContentType string            `json:"contentType"`
	SourceIP    string            `json:"sourceIp"`
}

// ReceivedTime parses ReceivedAt for sorting. Records with an unparseable
// timestamp get the zero time so they sort older than every valid record.
func (r WebhookRecord) ReceivedTime() time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, r.ReceivedAt); err == nil {
			return t
		}
	}
	return time.Time{}
}

// ReceivedDate returns the date component of ReceivedAt, i.e. the first ten
// characters of the ISO string ("2026-01-15").
func (r WebhookRecord) ReceivedDate() string {
	if len(r.ReceivedAt) >= 10 {
		return r.ReceivedAt[:10]
	}
	return r.ReceivedAt
}

// QuerySpec holds the filters and pagination options for a webhook query.
// Zero values mean "not supplied".
type QuerySpec struct {
	DatePrefix     string // scopes listing to "{DatePrefix}/"
	Page           int    // 1-based, default 1
	Limit          int    // default 10
	Method         string // exact match, case-insensitive
	SourceIP       string // exact match
	Search         string // case-insensitive substring across record fields
	ConversationID string // substring match against conversation.id inside RawBody
}

// QueryResult is one page of filtered records. Total counts the full filtered
// set, independent of pagination.
type QueryResult struct {
	Records []WebhookRecord
	Total   int
	Page    int
	Limit   int
}

// Stats holds full-namespace aggregate counts.
type Stats struct {
	Total    int            `json:"total"`
	ByMethod map[string]int `json:"byMethod"`
	ByDate   map[string]int `json:"byDate"`
}
