package eventlog

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenStore(filepath.Join(t.TempDir(), "events.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_AppendAndRead(t *testing.T) {
	_, log := scenario(t)
	events := log.Events()

	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Append(ctx, events...); err != nil {
		t.Fatalf("append: %v", err)
	}

	n, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != int64(len(events)) {
		t.Errorf("expected %d stored events, got %d", len(events), n)
	}

	got, err := store.Read(ctx, 0)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != len(events) {
		t.Fatalf("expected %d events, got %d", len(events), len(got))
	}
	for i, e := range events {
		g := got[i]
		if g.Seq != e.Seq || g.ID != e.ID || g.Kind != e.Kind ||
			g.From != e.From || g.To != e.To || g.TokenID != e.TokenID ||
			g.Approved != e.Approved || g.URI != e.URI {
			t.Errorf("event %d: expected %+v, got %+v", i, e, g)
		}
	}
}

func TestStore_ReadAfterSeq(t *testing.T) {
	_, log := scenario(t)
	events := log.Events()

	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Append(ctx, events...); err != nil {
		t.Fatalf("append: %v", err)
	}

	got, err := store.Read(ctx, 3)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != len(events)-3 {
		t.Fatalf("expected %d events after seq 3, got %d", len(events)-3, len(got))
	}
	if got[0].Seq != 4 {
		t.Errorf("expected first seq 4, got %d", got[0].Seq)
	}
}

func TestStore_AppendEmpty(t *testing.T) {
	store := openTestStore(t)

	if err := store.Append(context.Background()); err != nil {
		t.Fatalf("append empty batch: %v", err)
	}
	n, err := store.Count(context.Background())
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Errorf("expected empty store, got %d events", n)
	}
}

func TestStore_DuplicateSeqRejected(t *testing.T) {
	_, log := scenario(t)
	events := log.Events()

	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Append(ctx, events[0]); err != nil {
		t.Fatalf("append: %v", err)
	}
	// seq is the primary key; re-appending the same record must fail and
	// leave the store unchanged.
	if err := store.Append(ctx, events[0], events[1]); err == nil {
		t.Fatal("expected duplicate seq to be rejected")
	}
	n, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 stored event after failed batch, got %d", n)
	}
}
