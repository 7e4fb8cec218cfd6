package auth

import (
	"testing"
	"time"
)

func TestThrottle_BurstThenRefill(t *testing.T) {
	throttle := NewThrottle(60, 2)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	throttle.now = func() time.Time { return now }

	if !throttle.Allow("k") || !throttle.Allow("k") {
		t.Fatal("burst attempts must be allowed")
	}
	if throttle.Allow("k") {
		t.Fatal("attempt beyond the burst must be refused")
	}

	now = now.Add(time.Second)
	if !throttle.Allow("k") {
		t.Error("one attempt per second must refill")
	}
}

func TestThrottle_KeysAreIndependent(t *testing.T) {
	throttle := NewThrottle(1, 1)
	if !throttle.Allow("a") {
		t.Fatal("first attempt must pass")
	}
	if throttle.Allow("a") {
		t.Fatal("second attempt on a must be refused")
	}
	if !throttle.Allow("b") {
		t.Error("b has its own budget")
	}
}

func TestThrottle_Disabled(t *testing.T) {
	throttle := NewThrottle(0, 0)
	for i := 0; i < 100; i++ {
		if !throttle.Allow("k") {
			t.Fatalf("disabled throttle refused attempt %d", i+1)
		}
	}
}

func TestThrottle_SweepsIdleKeys(t *testing.T) {
	throttle := NewThrottle(60, 1)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	throttle.now = func() time.Time { return now }

	throttle.Allow("a")
	throttle.Allow("b")
	if throttle.size() != 2 {
		t.Fatalf("expected 2 buckets, got %d", throttle.size())
	}

	now = now.Add(time.Hour)
	throttle.Allow("c")
	if throttle.size() != 1 {
		t.Errorf("idle buckets must be dropped, %d left", throttle.size())
	}
}
