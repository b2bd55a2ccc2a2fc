package kv

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryStoreSetGetDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}
	if err := s.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := s.Get(ctx, "k")
	if err != nil || string(got) != "v" {
		t.Fatalf("get: %q %v", got, err)
	}
	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, "k"); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("deleted key still readable: %v", err)
	}
}

func TestMemoryStoreSetNX(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	ok, err := s.SetNX(ctx, "lock", []byte("a"), time.Minute)
	if err != nil || !ok {
		t.Fatalf("first SetNX must succeed: %v %v", ok, err)
	}
	ok, err = s.SetNX(ctx, "lock", []byte("b"), time.Minute)
	if err != nil || ok {
		t.Fatalf("second SetNX must fail: %v %v", ok, err)
	}
	got, _ := s.Get(ctx, "lock")
	if string(got) != "a" {
		t.Fatalf("lock value overwritten: %q", got)
	}
}

func TestMemoryStoreListOps(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	for _, v := range []string{"1", "2", "3"} {
		if err := s.LPush(ctx, "list", []byte(v)); err != nil {
			t.Fatalf("lpush: %v", err)
		}
	}
	if n, _ := s.LLen(ctx, "list"); n != 3 {
		t.Fatalf("llen = %d", n)
	}
	// LPush prepends, so index 0 is the newest element.
	head, _ := s.LIndex(ctx, "list", 0)
	if string(head) != "3" {
		t.Fatalf("lindex 0 = %q", head)
	}
	tail, _ := s.LIndex(ctx, "list", -1)
	if string(tail) != "1" {
		t.Fatalf("lindex -1 = %q", tail)
	}
	popped, err := s.RPop(ctx, "list")
	if err != nil || string(popped) != "1" {
		t.Fatalf("rpop = %q %v", popped, err)
	}
	if n, _ := s.LLen(ctx, "list"); n != 2 {
		t.Fatalf("llen after rpop = %d", n)
	}
	if _, err := s.RPop(ctx, "empty"); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("rpop empty list: %v", err)
	}
}

func TestMemoryStoreScan(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_ = s.Set(ctx, "task:a", []byte("1"), 0)
	_ = s.Set(ctx, "task:b", []byte("2"), 0)
	_ = s.Set(ctx, "other:c", []byte("3"), 0)
	var keys []string
	err := s.Scan(ctx, "task:", func(key string, _ []byte) error {
		keys = append(keys, key)
		return nil
	})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(keys) != 2 || keys[0] != "task:a" || keys[1] != "task:b" {
		t.Fatalf("unexpected keys: %v", keys)
	}
}
