package store

import (
	"context"
	"errors"
	"testing"
)

func TestFileKV_RoundTrip(t *testing.T) {
	ctx := context.Background()
	kv, err := NewFileKV(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileKV: %v", err)
	}

	if err := kv.Put(ctx, "ENG-1", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("Put: %v", err)
	}

	data, err := kv.Get(ctx, "ENG-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(data) != `{"a":1}` {
		t.Errorf("data = %q", data)
	}
}

func TestFileKV_Replace(t *testing.T) {
	ctx := context.Background()
	kv, err := NewFileKV(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileKV: %v", err)
	}

	kv.Put(ctx, "ENG-1", []byte("old"))
	if err := kv.Put(ctx, "ENG-1", []byte("new")); err != nil {
		t.Fatalf("Put replace: %v", err)
	}

	data, _ := kv.Get(ctx, "ENG-1")
	if string(data) != "new" {
		t.Errorf("data = %q, want replaced value", data)
	}
}

func TestFileKV_MissingKey(t *testing.T) {
	ctx := context.Background()
	kv, err := NewFileKV(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileKV: %v", err)
	}

	_, err = kv.Get(ctx, "ENG-404")
	if !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("error = %v, want ErrKeyNotFound", err)
	}
}

func TestFileKV_DeleteMissing(t *testing.T) {
	ctx := context.Background()
	kv, err := NewFileKV(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileKV: %v", err)
	}

	if err := kv.Delete(ctx, "ENG-404"); err != nil {
		t.Errorf("Delete of missing key should not error, got %v", err)
	}
}

func TestFileKV_Keys(t *testing.T) {
	ctx := context.Background()
	kv, err := NewFileKV(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileKV: %v", err)
	}

	kv.Put(ctx, "ENG-1", []byte("{}"))
	kv.Put(ctx, "PROJ-2", []byte("{}"))
	kv.Delete(ctx, "ENG-1")

	keys, err := kv.Keys(ctx)
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	if len(keys) != 1 || keys[0] != "PROJ-2" {
		t.Errorf("keys = %v, want [PROJ-2]", keys)
	}
}

func TestFileKV_KeyEscaping(t *testing.T) {
	ctx := context.Background()
	kv, err := NewFileKV(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileKV: %v", err)
	}

	// Ticket IDs from custom grammars may carry path-hostile characters.
	key := "TEAM/SUB-9"
	if err := kv.Put(ctx, key, []byte("{}")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	if _, err := kv.Get(ctx, key); err != nil {
		t.Fatalf("Get: %v", err)
	}

	keys, _ := kv.Keys(ctx)
	if len(keys) != 1 || keys[0] != key {
		t.Errorf("keys = %v, want [%s]", keys, key)
	}
}
