package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryProviderRoundtrip(t *testing.T) {
	p := NewMemoryProvider()
	ctx := context.Background()

	if _, err := p.Get(ctx, "missing"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("err = %v, want ErrCacheMiss", err)
	}

	if err := p.Set(ctx, "k", []byte("value"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := p.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "value" {
		t.Fatalf("got %q", got)
	}

	if err := p.Del(ctx, "k"); err != nil {
		t.Fatalf("Del: %v", err)
	}
	if _, err := p.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("err after Del = %v, want ErrCacheMiss", err)
	}
}

func TestMemoryProviderExpiry(t *testing.T) {
	p := NewMemoryProvider()
	ctx := context.Background()

	if err := p.Set(ctx, "k", []byte("v"), 10*time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(30 * time.Millisecond)
	if _, err := p.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("err after ttl = %v, want ErrCacheMiss", err)
	}
}

func TestMemoryProviderCopiesValue(t *testing.T) {
	p := NewMemoryProvider()
	ctx := context.Background()

	value := []byte("original")
	if err := p.Set(ctx, "k", value, 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	value[0] = 'X'

	got, _ := p.Get(ctx, "k")
	if string(got) != "original" {
		t.Fatalf("cached value aliased caller buffer: %q", got)
	}
}
