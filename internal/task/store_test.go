// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package task

import (
	"context"
	"errors"
	"testing"

	"github.com/pdiddy/deep-research/pkg/types"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(types.TaskStoreConfig{DataDir: t.TempDir()})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestCreateAndGet(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	id, err := store.Create(ctx, "effects of ketogenic diets on epilepsy")
	if err != nil {
		t.Fatal(err)
	}
	if id == "" {
		t.Fatal("expected non-empty id")
	}

	rec, err := store.Get(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if rec.Query != "effects of ketogenic diets on epilepsy" {
		t.Errorf("query = %q", rec.Query)
	}
	if rec.Status != StatusRunning {
		t.Errorf("status = %q, want %q", rec.Status, StatusRunning)
	}
	if rec.Result != nil {
		t.Error("expected nil result for running task")
	}
	if rec.CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}
}

func TestGetUnknownID(t *testing.T) {
	store := testStore(t)

	_, err := store.Get(context.Background(), "no-such-id")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateProgress(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	id, err := store.Create(ctx, "query")
	if err != nil {
		t.Fatal(err)
	}

	if err := store.UpdateProgress(ctx, id, "task-list 2/3 processing"); err != nil {
		t.Fatal(err)
	}

	rec, err := store.Get(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if rec.Progress != "task-list 2/3 processing" {
		t.Errorf("progress = %q", rec.Progress)
	}

	if err := store.UpdateProgress(ctx, "missing", "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestCompleteRoundTripsResult(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	id, err := store.Create(ctx, "query")
	if err != nil {
		t.Fatal(err)
	}

	result := &types.FinalReportResult{
		Title:       "CRISPR Off-Target Effects",
		FinalReport: "# CRISPR Off-Target Effects\n\nBody text [1].\n\n[1]: https://example.org/a \"Paper A\"",
		Learnings:   []string{"learning one", "learning two"},
		Sources: []types.Source{
			{URL: "https://example.org/a", Title: "Paper A"},
		},
		Images: []types.ImageSource{
			{URL: "https://example.org/fig1.png", Description: "Figure 1"},
		},
	}

	if err := store.Complete(ctx, id, result); err != nil {
		t.Fatal(err)
	}

	rec, err := store.Get(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if rec.Status != StatusCompleted {
		t.Errorf("status = %q, want %q", rec.Status, StatusCompleted)
	}
	if rec.Result == nil {
		t.Fatal("expected decoded result")
	}
	if rec.Result.Title != result.Title {
		t.Errorf("title = %q", rec.Result.Title)
	}
	if len(rec.Result.Learnings) != 2 || len(rec.Result.Sources) != 1 || len(rec.Result.Images) != 1 {
		t.Errorf("unexpected result shape: %+v", rec.Result)
	}
}

func TestFailRecordsError(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	id, err := store.Create(ctx, "query")
	if err != nil {
		t.Fatal(err)
	}

	if err := store.Fail(ctx, id, errors.New("provider unavailable")); err != nil {
		t.Fatal(err)
	}

	rec, err := store.Get(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if rec.Status != StatusFailed {
		t.Errorf("status = %q, want %q", rec.Status, StatusFailed)
	}
	if rec.Error != "provider unavailable" {
		t.Errorf("error = %q", rec.Error)
	}
}

func TestListNewestFirst(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	for _, q := range []string{"first", "second", "third"} {
		if _, err := store.Create(ctx, q); err != nil {
			t.Fatal(err)
		}
	}

	records, err := store.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 {
		t.Fatalf("len = %d, want 3", len(records))
	}
	// Creation timestamps may collide at nanosecond resolution, so just
	// verify all three queries are present.
	seen := map[string]bool{}
	for _, rec := range records {
		seen[rec.Query] = true
	}
	for _, q := range []string{"first", "second", "third"} {
		if !seen[q] {
			t.Errorf("missing record for %q", q)
		}
	}
}
