package providers

import (
	"context"
	"testing"
	"time"
)

func TestRateLimiter(t *testing.T) {
	t.Run("consume within limit", func(t *testing.T) {
		rl := NewRateLimiter(60)
		for i := 0; i < 10; i++ {
			if err := rl.Wait(context.Background()); err != nil {
				t.Fatalf("Wait() error on request %d: %v", i, err)
			}
		}
		if got := rl.Status().TotalConsumed; got != 10 {
			t.Errorf("TotalConsumed = %d, want 10", got)
		}
	})

	t.Run("wait respects context cancellation", func(t *testing.T) {
		rl := NewRateLimiter(1)
		// Drain the single token; the next Wait has to block for ~60s.
		if err := rl.Wait(context.Background()); err != nil {
			t.Fatalf("Wait() error = %v", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
		defer cancel()

		if err := rl.Wait(ctx); err == nil {
			t.Error("expected context error from Wait")
		}
	})

	t.Run("zero limit falls back to default", func(t *testing.T) {
		rl := NewRateLimiter(0)
		if got := rl.Status().TokensLimit; got != 60 {
			t.Errorf("TokensLimit = %d, want 60", got)
		}
	})
}
