package kafka

import (
	"context"
	"testing"
	"time"
)

func TestRetryPolicy_GrowsAndCaps(t *testing.T) {
	p := newRetryPolicy(4*time.Millisecond, 10*time.Millisecond, 1)

	bounds := []struct{ lo, hi time.Duration }{
		{2 * time.Millisecond, 4 * time.Millisecond},
		{4 * time.Millisecond, 8 * time.Millisecond},
		{5 * time.Millisecond, 10 * time.Millisecond},
		{5 * time.Millisecond, 10 * time.Millisecond},
	}
	for i, b := range bounds {
		if d := p.next(); d < b.lo || d > b.hi {
			t.Fatalf("attempt %d: delay %s out of [%s, %s]", i, d, b.lo, b.hi)
		}
	}

	p.reset()
	if d := p.next(); d < 2*time.Millisecond || d > 4*time.Millisecond {
		t.Fatalf("after reset: delay %s out of [2ms, 4ms]", d)
	}
}

func TestRetryPolicy_Jitter(t *testing.T) {
	p := newRetryPolicy(time.Millisecond, time.Millisecond, 42)

	for i := 0; i < 100; i++ {
		if d := p.jitter(10 * time.Millisecond); d < 5*time.Millisecond || d > 10*time.Millisecond {
			t.Fatalf("jitter out of range: %s", d)
		}
	}
	if d := p.jitter(0); d != 0 {
		t.Fatalf("jitter of zero: want 0, got %s", d)
	}
}

func TestSleepCtx(t *testing.T) {
	if !sleepCtx(context.Background(), time.Millisecond) {
		t.Fatal("sleep must complete")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if sleepCtx(ctx, time.Minute) {
		t.Fatal("sleep must stop on cancelled context")
	}
}
