package app

import (
	"testing"
	"time"
)

func TestRateLimiterWindow(t *testing.T) {
	rl := NewRateLimiter(3, 50*time.Millisecond)

	for i := 0; i < 3; i++ {
		if !rl.Allow("c1") {
			t.Fatalf("attempt %d within limit must pass", i)
		}
	}
	if rl.Allow("c1") {
		t.Fatal("over-limit attempt must be blocked")
	}
	if !rl.Allow("c2") {
		t.Fatal("limits are per connection")
	}

	time.Sleep(60 * time.Millisecond)
	if !rl.Allow("c1") {
		t.Fatal("window expiry must unblock")
	}
}

func TestRateLimiterForget(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	rl.Allow("c1")
	rl.Forget("c1")
	if !rl.Allow("c1") {
		t.Fatal("forgotten connection starts fresh")
	}
}
