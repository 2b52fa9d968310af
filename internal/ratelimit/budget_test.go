package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestBurstAcquiresImmediately(t *testing.T) {
	b := New(60, 3)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	for i := 0; i < 3; i++ {
		if err := b.Acquire(ctx); err != nil {
			t.Fatalf("acquire %d: %v", i, err)
		}
	}
}

func TestAcquireHonorsContext(t *testing.T) {
	b := New(1, 1)
	ctx := context.Background()
	if err := b.Acquire(ctx); err != nil {
		t.Fatal(err)
	}
	// Budget exhausted; a cancelled context must not wait a full minute.
	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if err := b.Acquire(cancelled); err == nil {
		t.Error("acquire succeeded with cancelled context")
	}
}

func TestDefaults(t *testing.T) {
	b := New(0, 0)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := b.Acquire(ctx); err != nil {
		t.Fatalf("defaulted budget: %v", err)
	}
}
