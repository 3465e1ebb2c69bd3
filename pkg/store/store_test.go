package store

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestKeyDeterminism(t *testing.T) {
	k1 := Key("mode_selective", "LP11", 80000.0)
	k2 := Key("mode_selective", "LP11", 80000.0)
	if k1 != k2 {
		t.Error("equal parts should produce equal keys")
	}
	if k3 := Key("mode_selective", "LP21", 80000.0); k3 == k1 {
		t.Error("different parts should produce different keys")
	}
	if len(k1) != 64 {
		t.Errorf("key length = %d, want 64", len(k1))
	}
}

func TestPutGetDelete(t *testing.T) {
	ctx := context.Background()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	key := Key("photonic", "1,6")
	if _, hit, err := s.Get(ctx, key); err != nil || hit {
		t.Fatalf("Get before Put: hit=%v err=%v", hit, err)
	}

	rec := Record{
		RunID:    "run-1",
		Kind:     "photonic",
		Path:     "/tmp/pl.ind",
		Filename: "pl.ind",
		Cores:    7,
		Params:   map[string]any{"layers": "1,6"},
	}
	if err := s.Put(ctx, key, rec); err != nil {
		t.Fatal(err)
	}

	got, hit, err := s.Get(ctx, key)
	if err != nil || !hit {
		t.Fatalf("Get after Put: hit=%v err=%v", hit, err)
	}
	if got.RunID != "run-1" || got.Cores != 7 {
		t.Errorf("record = %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Error("Put should stamp CreatedAt")
	}

	if err := s.Delete(ctx, key); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := s.Get(ctx, key); hit {
		t.Error("record survived Delete")
	}
	// Deleting a missing record is not an error.
	if err := s.Delete(ctx, key); err != nil {
		t.Errorf("second delete: %v", err)
	}
}

func TestCorruptRecordIsAMiss(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	key := Key("broken")
	if err := s.Put(ctx, key, Record{RunID: "x"}); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(s.path(key), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := s.Get(ctx, key); err != nil || hit {
		t.Errorf("corrupt record: hit=%v err=%v", hit, err)
	}
	if _, err := os.Stat(s.path(key)); !os.IsNotExist(err) {
		t.Error("corrupt record file should be removed")
	}
}

func TestListNewestFirst(t *testing.T) {
	ctx := context.Background()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	old := Record{RunID: "old", CreatedAt: time.Now().Add(-time.Hour)}
	recent := Record{RunID: "recent", CreatedAt: time.Now()}
	if err := s.Put(ctx, Key("a"), old); err != nil {
		t.Fatal(err)
	}
	if err := s.Put(ctx, Key("b"), recent); err != nil {
		t.Fatal(err)
	}

	records, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].RunID != "recent" || records[1].RunID != "old" {
		t.Errorf("order = [%s %s], want newest first", records[0].RunID, records[1].RunID)
	}
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Put(ctx, Key("a"), Record{RunID: "a"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Clear(); err != nil {
		t.Fatal(err)
	}
	records, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 0 {
		t.Errorf("got %d records after Clear, want 0", len(records))
	}
}

func TestContextCancellation(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Put(ctx, Key("a"), Record{}); err == nil {
		t.Error("Put with cancelled context should fail")
	}
	if _, _, err := s.Get(ctx, Key("a")); err == nil {
		t.Error("Get with cancelled context should fail")
	}
}
