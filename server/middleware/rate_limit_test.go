package middleware

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_PerUser(t *testing.T) {
	rl := NewRateLimiter(3)

	for i := 0; i < 3; i++ {
		assert.True(t, rl.AllowUser(1), "message %d", i)
	}
	assert.False(t, rl.AllowUser(1))

	// Other users have their own budget.
	assert.True(t, rl.AllowUser(2))
}

func TestRateLimiter_Disabled(t *testing.T) {
	for _, perMinute := range []int{0, -1} {
		rl := NewRateLimiter(perMinute)
		for i := 0; i < 100; i++ {
			assert.True(t, rl.AllowUser(1))
		}
	}
}

func TestRateLimiter_WaitCanceled(t *testing.T) {
	rl := NewRateLimiter(1)
	assert.True(t, rl.Allow("k"))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, rl.Wait(ctx, "k"))
}
