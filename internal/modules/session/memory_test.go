package session

import (
	"context"
	"testing"
	"time"

	"github.com/ssorelay/core/internal/models"
)

func testRecord(identity, token string) *models.SessionRecord {
	return &models.SessionRecord{
		Identity:      identity,
		SessionToken:  token,
		EstablishedAt: time.Now(),
		Profile:       models.Profile{Subject: identity, Username: identity},
	}
}

func TestMemoryStorePutGetRemove(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	rec := testRecord("alice", "sid-1")
	if err := store.Put(ctx, rec); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := store.Get(ctx, "alice")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.SessionToken != "sid-1" {
		t.Fatalf("expected record with token sid-1, got %+v", got)
	}

	removed, err := store.Remove(ctx, "alice")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if !removed {
		t.Fatal("expected remove to report a removed record")
	}

	got, err = store.Get(ctx, "alice")
	if err != nil {
		t.Fatalf("get after remove: %v", err)
	}
	if got != nil {
		t.Fatalf("expected absence after remove, got %+v", got)
	}
}

func TestMemoryStoreRemoveAbsentIsNoOp(t *testing.T) {
	store := NewMemoryStore()

	removed, err := store.Remove(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("remove absent: %v", err)
	}
	if removed {
		t.Fatal("expected remove of absent identity to report false")
	}
}

func TestMemoryStoreReplaceKeepsSingleRecord(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Put(ctx, testRecord("alice", "sid-1")); err != nil {
		t.Fatalf("first put: %v", err)
	}
	if err := store.Put(ctx, testRecord("alice", "sid-2")); err != nil {
		t.Fatalf("second put: %v", err)
	}

	records, err := store.ListAll(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected exactly one record after replace, got %d", len(records))
	}
	if records[0].SessionToken != "sid-2" {
		t.Fatalf("expected replacement record sid-2, got %s", records[0].SessionToken)
	}
}

func TestMemoryStoreListAllPreservesInsertionOrder(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	for _, id := range []string{"alice", "bob", "carol"} {
		if err := store.Put(ctx, testRecord(id, "sid-"+id)); err != nil {
			t.Fatalf("put %s: %v", id, err)
		}
	}

	// Replacing bob keeps his original position.
	if err := store.Put(ctx, testRecord("bob", "sid-bob-2")); err != nil {
		t.Fatalf("replace bob: %v", err)
	}
	if removed, _ := store.Remove(ctx, "alice"); !removed {
		t.Fatal("expected alice removed")
	}

	records, err := store.ListAll(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"bob", "carol"}
	if len(records) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(records))
	}
	for i, id := range want {
		if records[i].Identity != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, records[i].Identity)
		}
	}
}
