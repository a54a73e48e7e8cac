package store_test

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jacentio/strata/store"
)

func mustPut(t *testing.T, s *store.Store, e store.Entity) {
	t.Helper()
	if _, err := s.Put(context.Background(), e); err != nil {
		t.Fatalf("put %s/%s: %v", e.Model, e.ID, err)
	}
}

func pageIDs(p *store.Page) []string {
	ids := make([]string, 0, len(p.Items))
	for _, e := range p.Items {
		ids = append(ids, e.ID)
	}
	return ids
}

func TestQueryVisibility(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	mustPut(t, s, store.Entity{Model: "record", ID: "r1", Sequence: 1})

	page, err := s.QueryByOU(ctx, "@", "record", store.QueryOptions{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].ID != "r1" {
		t.Fatalf("expected fresh entity visible, got %v", pageIDs(page))
	}

	if _, err := s.Delete(ctx, "record", "r1"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	page, err = s.QueryByOU(ctx, "@", "record", store.QueryOptions{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(page.Items) != 0 {
		t.Errorf("expected deleted entity hidden by default, got %v", pageIDs(page))
	}

	page, err = s.QueryByOU(ctx, "@", "record", store.QueryOptions{Deleted: true})
	if err != nil {
		t.Fatalf("query deleted: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].ID != "r1" {
		t.Errorf("expected deleted entity via Deleted flag, got %v", pageIDs(page))
	}
}

func TestQuerySuffixExact(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	mustPut(t, s, store.Entity{Model: "record", ID: "archived-only", Sequence: 1})
	mustPut(t, s, store.Entity{Model: "record", ID: "deleted-only", Sequence: 2})

	if _, err := s.Archive(ctx, "record", "archived-only"); err != nil {
		t.Fatalf("archive: %v", err)
	}
	if _, err := s.Delete(ctx, "record", "deleted-only"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	page, err := s.QueryByOU(ctx, "@", "record", store.QueryOptions{Archived: true})
	if err != nil {
		t.Fatalf("query archived: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].ID != "archived-only" {
		t.Errorf("archived query must not see deleted-only entities, got %v", pageIDs(page))
	}
}

func TestQueryOrdering(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	mustPut(t, s, store.Entity{Model: "record", ID: "oldest", Sequence: 1})
	mustPut(t, s, store.Entity{Model: "record", ID: "middle", Sequence: 2})
	mustPut(t, s, store.Entity{Model: "record", ID: "newest", Sequence: 3})

	page, err := s.QueryByOU(ctx, "@", "record", store.QueryOptions{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	got := pageIDs(page)
	if len(got) != 3 {
		t.Fatalf("expected 3 items, got %v", got)
	}
	if got[0] != "newest" || got[2] != "oldest" {
		t.Errorf("expected most-recent-first by default, got %v", got)
	}

	page, err = s.QueryByOU(ctx, "@", "record", store.QueryOptions{Ascending: true})
	if err != nil {
		t.Fatalf("query ascending: %v", err)
	}
	got = pageIDs(page)
	if len(got) != 3 {
		t.Fatalf("expected 3 items, got %v", got)
	}
	if got[0] != "oldest" || got[2] != "newest" {
		t.Errorf("expected ascending order, got %v", got)
	}
}

func TestQueryPaginationStability(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	const n = 5
	ids := []string{"e1", "e2", "e3", "e4", "e5"}
	for i, id := range ids {
		mustPut(t, s, store.Entity{Model: "record", ID: id, Sequence: int64(i + 1)})
	}

	seen := map[string]bool{}
	opts := store.QueryOptions{Ascending: true, Limit: 2}
	pages := 0
	for {
		page, err := s.QueryByOU(ctx, "@", "record", opts)
		if err != nil {
			t.Fatalf("page %d: %v", pages, err)
		}
		for _, e := range page.Items {
			if seen[e.ID] {
				t.Errorf("duplicate item %q across pages", e.ID)
			}
			seen[e.ID] = true
		}
		pages++
		if page.Cursor == "" {
			break
		}
		opts.StartKey = page.Cursor
	}

	if len(seen) != n {
		t.Errorf("expected %d distinct items, got %d", n, len(seen))
	}
	if pages != 3 {
		t.Errorf("expected 3 pages for 5 items at limit 2, got %d", pages)
	}
}

func TestQueryByClassAndType(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	mustPut(t, s, store.Entity{Model: "record", ID: "n1", Class: "news", Type: "draft", Sequence: 1})
	mustPut(t, s, store.Entity{Model: "record", ID: "n2", Class: "news", Sequence: 2})
	mustPut(t, s, store.Entity{Model: "record", ID: "b1", Class: "blog", Sequence: 3})
	mustPut(t, s, store.Entity{Model: "record", ID: "plain", Sequence: 4})

	page, err := s.QueryByClass(ctx, "@", "record", "news", store.QueryOptions{Ascending: true})
	if err != nil {
		t.Fatalf("query class: %v", err)
	}
	if got := pageIDs(page); len(got) != 2 || got[0] != "n1" || got[1] != "n2" {
		t.Errorf("unexpected class page %v", got)
	}

	page, err = s.QueryByType(ctx, "@", "record", "draft", store.QueryOptions{})
	if err != nil {
		t.Fatalf("query type: %v", err)
	}
	if got := pageIDs(page); len(got) != 1 || got[0] != "n1" {
		t.Errorf("unexpected type page %v", got)
	}
}

func TestQueryByAlias(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	mustPut(t, s, store.Entity{Model: "record", ID: "r1", Alias: "welcome", Sequence: 1})

	got, err := s.QueryByAlias(ctx, "@", "record", "welcome", store.QueryOptions{})
	if err != nil {
		t.Fatalf("alias lookup: %v", err)
	}
	if got.ID != "r1" {
		t.Errorf("expected r1, got %q", got.ID)
	}

	if _, err := s.QueryByAlias(ctx, "@", "record", "absent", store.QueryOptions{}); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestQueryByXID(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	mustPut(t, s, store.Entity{Model: "record", ID: "r1", XID: "ext-42", Sequence: 1})

	got, err := s.QueryByXID(ctx, "@", "record", "ext-42", store.QueryOptions{})
	if err != nil {
		t.Fatalf("xid lookup: %v", err)
	}
	if got.ID != "r1" {
		t.Errorf("expected r1, got %q", got.ID)
	}
}

func TestPointLookupAnomalyLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	db := &fakeDB{}
	s := store.New(db, store.DefaultConfig(), zap.New(core))
	ctx := context.Background()

	// Two entities sharing one alias violate the uniqueness expectation.
	mustPut(t, s, store.Entity{Model: "record", ID: "older", Alias: "dup", Sequence: 1})
	mustPut(t, s, store.Entity{Model: "record", ID: "newer", Alias: "dup", Sequence: 2})

	got, err := s.QueryByAlias(ctx, "@", "record", "dup", store.QueryOptions{})
	if err != nil {
		t.Fatalf("alias lookup: %v", err)
	}
	if got.ID != "newer" {
		t.Errorf("expected best-effort first match 'newer', got %q", got.ID)
	}

	if logs.FilterMessage("point-lookup index returned multiple matches").Len() != 1 {
		t.Errorf("expected one anomaly log entry, got %d entries", logs.Len())
	}
}

func TestHierarchyScenario(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	mustPut(t, s, store.Entity{Model: "chat", ID: "c1", OU: "@", Sequence: 1})
	mustPut(t, s, store.Entity{
		Model:    "message",
		ID:       "m1",
		OU:       store.CalculateOU(&store.ParentRef{Model: "chat", ID: "c1"}),
		Sequence: 2,
	})

	page, err := s.QueryByOU(ctx, "chat#c1", "message", store.QueryOptions{})
	if err != nil {
		t.Fatalf("query children: %v", err)
	}
	if got := pageIDs(page); len(got) != 1 || got[0] != "m1" {
		t.Errorf("expected [m1], got %v", got)
	}

	page, err = s.QueryByOU(ctx, "@", "message", store.QueryOptions{})
	if err != nil {
		t.Fatalf("query root: %v", err)
	}
	if len(page.Items) != 0 {
		t.Errorf("expected no root-level messages, got %v", pageIDs(page))
	}
}
