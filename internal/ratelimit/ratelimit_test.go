package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestInMemoryLimiterBurstPerKey(t *testing.T) {
	l := NewInMemoryLimiter(1, time.Hour, 2)

	if !l.Allow("narrate") || !l.Allow("narrate") {
		t.Fatal("burst of 2 should be allowed")
	}
	if l.Allow("narrate") {
		t.Fatal("third call inside the period should be throttled")
	}
	if !l.Allow("transcribe") {
		t.Fatal("keys must not share a bucket")
	}
}

func TestInMemoryLimiterWaitHonoursContext(t *testing.T) {
	l := NewInMemoryLimiter(1, time.Hour, 1)
	ctx := context.Background()
	if err := l.Wait(ctx, "narrate"); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	if err := l.Wait(ctx, "narrate"); err == nil {
		t.Fatal("expected wait to fail once the bucket is empty and the deadline is short")
	}
}
