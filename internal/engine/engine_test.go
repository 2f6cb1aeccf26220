package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/hookview/hookview/internal/blobstore"
	"github.com/hookview/hookview/internal/model"
)

func newTestEngine(t *testing.T) (*Engine, *blobstore.Memory) {
	t.Helper()
	store := blobstore.NewMemory()
	e := New(store)
	e.SetMaxConcurrentReads(4)
	return e, store
}

func seed(t *testing.T, store *blobstore.Memory, key string, fields map[string]any) {
	t.Helper()
	data, err := json.Marshal(fields)
	if err != nil {
		t.Fatalf("marshal seed record: %v", err)
	}
	if err := store.WriteBytes(context.Background(), key, data); err != nil {
		t.Fatalf("seed %s: %v", key, err)
	}
}

func webhook(id, receivedAt, method string) map[string]any {
	return map[string]any{
		"id":         id,
		"receivedAt": receivedAt,
		"method":     method,
		"path":       "/hooks/" + id,
	}
}

func TestQuerySortsNewestFirst(t *testing.T) {
	e, store := newTestEngine(t)
	seed(t, store, "2026-01-15/a.json", webhook("a", "2026-01-15T08:00:00Z", "GET"))
	seed(t, store, "2026-01-15/b.json", webhook("b", "2026-01-15T12:00:00Z", "GET"))
	seed(t, store, "2026-01-16/c.json", webhook("c", "2026-01-16T09:00:00Z", "GET"))

	res, err := e.Query(context.Background(), model.QuerySpec{})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if res.Total != 3 {
		t.Errorf("Total = %d, want 3", res.Total)
	}
	got := ids(res.Records)
	want := []string{"c", "b", "a"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestQueryMethodFilterEndToEnd(t *testing.T) {
	e, store := newTestEngine(t)
	seed(t, store, "2026-01-15/a.json", webhook("a", "2026-01-15T08:00:00Z", "GET"))
	seed(t, store, "2026-01-15/b.json", webhook("b", "2026-01-15T12:00:00Z", "POST"))
	seed(t, store, "2026-01-16/c.json", webhook("c", "2026-01-16T09:00:00Z", "get"))

	// Filter value is case-insensitive.
	res, err := e.Query(context.Background(), model.QuerySpec{Method: "get"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if res.Total != 2 {
		t.Fatalf("Total = %d, want 2", res.Total)
	}
	got := ids(res.Records)
	if got[0] != "c" || got[1] != "a" {
		t.Errorf("records = %v, want [c a]", got)
	}
}

func TestQuerySourceIPFilter(t *testing.T) {
	e, store := newTestEngine(t)
	a := webhook("a", "2026-01-15T08:00:00Z", "GET")
	a["sourceIp"] = "10.0.0.1"
	b := webhook("b", "2026-01-15T09:00:00Z", "GET")
	b["sourceIp"] = "10.0.0.2"
	seed(t, store, "2026-01-15/a.json", a)
	seed(t, store, "2026-01-15/b.json", b)

	res, err := e.Query(context.Background(), model.QuerySpec{SourceIP: "10.0.0.2"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if res.Total != 1 || res.Records[0].ID != "b" {
		t.Errorf("sourceIp filter: total=%d records=%v", res.Total, ids(res.Records))
	}
}

func TestQueryFreeTextSearch(t *testing.T) {
	e, store := newTestEngine(t)

	a := webhook("order-created", "2026-01-15T08:00:00Z", "POST")
	a["headers"] = map[string]string{"X-Foo": "AbcDef"}
	seed(t, store, "2026-01-15/a.json", a)

	b := webhook("b", "2026-01-15T09:00:00Z", "POST")
	b["rawBody"] = `{"customer":"Globex"}`
	seed(t, store, "2026-01-15/b.json", b)

	c := webhook("c", "2026-01-15T10:00:00Z", "POST")
	c["queryParameters"] = map[string]string{"token": "SeCrEt99"}
	seed(t, store, "2026-01-15/c.json", c)

	tests := []struct {
		search string
		want   []string
	}{
		{"bcd", []string{"a"}},         // header value substring, case-insensitive
		{"GLOBEX", []string{"b"}},      // rawBody
		{"secret99", []string{"c"}},    // query parameter value
		{"order-cre", []string{"a"}},   // id
		{"/hooks/b", []string{"b"}},    // path
		{"no-such-text", []string{}},   // no match
	}
	for _, tt := range tests {
		res, err := e.Query(context.Background(), model.QuerySpec{Search: tt.search})
		if err != nil {
			t.Fatalf("Query(search=%q): %v", tt.search, err)
		}
		got := ids(res.Records)
		if len(got) != len(tt.want) {
			t.Errorf("search %q = %v, want %v", tt.search, got, tt.want)
			continue
		}
		for i := range tt.want {
			if got[i] != tt.want[i] {
				t.Errorf("search %q = %v, want %v", tt.search, got, tt.want)
			}
		}
	}
}

func TestQueryConversationIDFilter(t *testing.T) {
	e, store := newTestEngine(t)

	a := webhook("a", "2026-01-15T08:00:00Z", "POST")
	a["rawBody"] = `{"conversation":{"id":"conv-123"}}`
	seed(t, store, "2026-01-15/a.json", a)

	b := webhook("b", "2026-01-15T09:00:00Z", "POST")
	b["rawBody"] = "not json at all"
	seed(t, store, "2026-01-15/b.json", b)

	c := webhook("c", "2026-01-15T10:00:00Z", "POST")
	c["rawBody"] = `{"conversation":{"id":"other-9"}}`
	seed(t, store, "2026-01-15/c.json", c)

	// Substring, case-insensitive.
	res, err := e.Query(context.Background(), model.QuerySpec{ConversationID: "CONV-1"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if res.Total != 1 || res.Records[0].ID != "a" {
		t.Errorf("conversationId filter: total=%d records=%v", res.Total, ids(res.Records))
	}

	// A non-JSON body never matches, even with an empty-ish needle.
	res, err = e.Query(context.Background(), model.QuerySpec{ConversationID: "o"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	for _, r := range res.Records {
		if r.ID == "b" {
			t.Error("record with non-JSON body matched a conversationId filter")
		}
	}
}

func TestQueryConjunction(t *testing.T) {
	e, store := newTestEngine(t)

	a := webhook("a", "2026-01-15T08:00:00Z", "POST")
	a["rawBody"] = "alpha payload"
	seed(t, store, "2026-01-15/a.json", a)

	b := webhook("b", "2026-01-15T09:00:00Z", "GET")
	b["rawBody"] = "alpha payload"
	seed(t, store, "2026-01-15/b.json", b)

	res, err := e.Query(context.Background(), model.QuerySpec{Method: "POST", Search: "alpha"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if res.Total != 1 || res.Records[0].ID != "a" {
		t.Errorf("conjunction: total=%d records=%v", res.Total, ids(res.Records))
	}
}

func TestQueryPagination(t *testing.T) {
	e, store := newTestEngine(t)
	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("r%d", i)
		at := fmt.Sprintf("2026-01-15T0%d:00:00Z", i)
		seed(t, store, "2026-01-15/"+id+".json", webhook(id, at, "GET"))
	}

	// limit 2, total 5: pages 1-3 populated, page 4 empty, total constant.
	counts := []int{2, 2, 1, 0}
	for page := 1; page <= 4; page++ {
		res, err := e.Query(context.Background(), model.QuerySpec{Page: page, Limit: 2})
		if err != nil {
			t.Fatalf("Query page %d: %v", page, err)
		}
		if res.Total != 5 {
			t.Errorf("page %d Total = %d, want 5", page, res.Total)
		}
		if len(res.Records) != counts[page-1] {
			t.Errorf("page %d returned %d records, want %d", page, len(res.Records), counts[page-1])
		}
		if res.Records == nil {
			t.Errorf("page %d Records is nil, want empty slice", page)
		}
	}
}

func TestQueryDefaults(t *testing.T) {
	e, store := newTestEngine(t)
	seed(t, store, "2026-01-15/a.json", webhook("a", "2026-01-15T08:00:00Z", "GET"))

	res, err := e.Query(context.Background(), model.QuerySpec{Page: 0, Limit: -3})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if res.Page != 1 || res.Limit != DefaultPageSize {
		t.Errorf("defaults: page=%d limit=%d, want 1/%d", res.Page, res.Limit, DefaultPageSize)
	}
}

func TestQueryDatePrefixScoping(t *testing.T) {
	e, store := newTestEngine(t)
	seed(t, store, "2026-01-15/a.json", webhook("a", "2026-01-15T08:00:00Z", "GET"))
	seed(t, store, "2026-01-16/b.json", webhook("b", "2026-01-16T08:00:00Z", "GET"))

	res, err := e.Query(context.Background(), model.QuerySpec{DatePrefix: "2026-01-15"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if res.Total != 1 || res.Records[0].ID != "a" {
		t.Errorf("date scope: total=%d records=%v", res.Total, ids(res.Records))
	}
}

func TestQuerySkipsBrokenBlobs(t *testing.T) {
	e, store := newTestEngine(t)
	seed(t, store, "2026-01-15/good.json", webhook("good", "2026-01-15T08:00:00Z", "GET"))
	if err := store.WriteBytes(context.Background(), "2026-01-15/broken.json", []byte("{{{")); err != nil {
		t.Fatalf("write broken blob: %v", err)
	}
	seed(t, store, "2026-01-15/unreadable.json", webhook("gone", "2026-01-15T09:00:00Z", "GET"))
	store.FailReads("2026-01-15/unreadable.json", errors.New("connection reset"))
	// Keys not ending in .json are never candidates.
	if err := store.WriteBytes(context.Background(), "2026-01-15/notes.txt", []byte("ignore")); err != nil {
		t.Fatalf("write txt blob: %v", err)
	}

	res, err := e.Query(context.Background(), model.QuerySpec{})
	if err != nil {
		t.Fatalf("Query with broken blobs: %v", err)
	}
	if res.Total != 1 || res.Records[0].ID != "good" {
		t.Errorf("broken blobs not skipped: total=%d records=%v", res.Total, ids(res.Records))
	}
}

func TestQueryUnparseableTimestampSortsLast(t *testing.T) {
	e, store := newTestEngine(t)
	seed(t, store, "2026-01-15/a.json", webhook("a", "garbage-timestamp", "GET"))
	seed(t, store, "2026-01-15/b.json", webhook("b", "2026-01-15T08:00:00Z", "GET"))

	res, err := e.Query(context.Background(), model.QuerySpec{})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if res.Total != 2 {
		t.Fatalf("Total = %d, want 2", res.Total)
	}
	if res.Records[1].ID != "a" {
		t.Errorf("unparseable timestamp should sort last, got order %v", ids(res.Records))
	}
}

func TestStats(t *testing.T) {
	e, store := newTestEngine(t)
	seed(t, store, "2026-01-15/a.json", webhook("a", "2026-01-15T08:00:00Z", "get"))
	seed(t, store, "2026-01-15/b.json", webhook("b", "2026-01-15T09:00:00Z", "POST"))
	seed(t, store, "2026-01-16/c.json", webhook("c", "2026-01-16T10:00:00Z", "GET"))
	if err := store.WriteBytes(context.Background(), "2026-01-16/broken.json", []byte("not json")); err != nil {
		t.Fatalf("write broken blob: %v", err)
	}

	stats, err := e.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Total != 3 {
		t.Errorf("Total = %d, want 3", stats.Total)
	}
	if stats.ByMethod["GET"] != 2 || stats.ByMethod["POST"] != 1 {
		t.Errorf("ByMethod = %v", stats.ByMethod)
	}
	if stats.ByDate["2026-01-15"] != 2 || stats.ByDate["2026-01-16"] != 1 {
		t.Errorf("ByDate = %v", stats.ByDate)
	}
}

func TestListDatesDescending(t *testing.T) {
	e, store := newTestEngine(t)
	seed(t, store, "2026-01-15/a.json", webhook("a", "2026-01-15T08:00:00Z", "GET"))
	seed(t, store, "2026-01-16/b.json", webhook("b", "2026-01-16T08:00:00Z", "GET"))
	seed(t, store, "2026-01-14/c.json", webhook("c", "2026-01-14T08:00:00Z", "GET"))
	// A key without a path separator contributes no date.
	if err := store.WriteBytes(context.Background(), "stray.json", []byte("{}")); err != nil {
		t.Fatalf("write stray blob: %v", err)
	}

	dates, err := e.ListDates(context.Background())
	if err != nil {
		t.Fatalf("ListDates: %v", err)
	}
	want := []string{"2026-01-16", "2026-01-15", "2026-01-14"}
	if len(dates) != len(want) {
		t.Fatalf("ListDates = %v, want %v", dates, want)
	}
	for i := range want {
		if dates[i] != want[i] {
			t.Fatalf("ListDates = %v, want %v", dates, want)
		}
	}
}

func TestFindByID(t *testing.T) {
	e, store := newTestEngine(t)
	seed(t, store, "2026-01-15/blob-name-differs.json", webhook("wh-42", "2026-01-15T08:00:00Z", "GET"))

	rec, err := e.FindByID(context.Background(), "wh-42")
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if rec.ID != "wh-42" {
		t.Errorf("FindByID returned %q", rec.ID)
	}

	_, err = e.FindByID(context.Background(), "missing")
	if !errors.Is(err, model.ErrNotFound) {
		t.Errorf("FindByID missing = %v, want ErrNotFound", err)
	}
}

func TestDeleteByID(t *testing.T) {
	e, store := newTestEngine(t)
	seed(t, store, "2026-01-15/a.json", webhook("wh-1", "2026-01-15T08:00:00Z", "GET"))

	if err := e.DeleteByID(context.Background(), "wh-1"); err != nil {
		t.Fatalf("DeleteByID: %v", err)
	}
	if _, err := e.FindByID(context.Background(), "wh-1"); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("FindByID after delete = %v, want ErrNotFound", err)
	}
	if err := e.DeleteByID(context.Background(), "wh-1"); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("second DeleteByID = %v, want ErrNotFound", err)
	}
	if store.Len() != 0 {
		t.Errorf("store still holds %d blobs after delete", store.Len())
	}
}

func TestUnconfiguredStoreFailsOperations(t *testing.T) {
	e := New(blobstore.Unconfigured{})
	ctx := context.Background()

	if _, err := e.Query(ctx, model.QuerySpec{}); !errors.Is(err, model.ErrNotConfigured) {
		t.Errorf("Query = %v, want ErrNotConfigured", err)
	}
	if _, err := e.Stats(ctx); !errors.Is(err, model.ErrNotConfigured) {
		t.Errorf("Stats = %v, want ErrNotConfigured", err)
	}
	if _, err := e.ListDates(ctx); !errors.Is(err, model.ErrNotConfigured) {
		t.Errorf("ListDates = %v, want ErrNotConfigured", err)
	}
	if _, err := e.FindByID(ctx, "x"); !errors.Is(err, model.ErrNotConfigured) {
		t.Errorf("FindByID = %v, want ErrNotConfigured", err)
	}
}

func ids(records []model.WebhookRecord) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID)
	}
	return out
}
