package providers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_AllowConsumesBurst(t *testing.T) {
	t.Parallel()
	rl := NewRateLimiter(1, 2)

	assert.True(t, rl.Allow())
	assert.True(t, rl.Allow())
	assert.False(t, rl.Allow())
}

func TestRateLimiter_WaitHonorsContext(t *testing.T) {
	t.Parallel()
	rl := NewRateLimiter(0.001, 1)
	require.True(t, rl.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := rl.Wait(ctx)
	assert.Error(t, err)
}

func TestFromConfig_ZeroConfigIsPermissive(t *testing.T) {
	t.Parallel()
	rl := FromConfig(RateLimitConfig{})
	for i := 0; i < 10; i++ {
		assert.True(t, rl.Allow())
	}
}

func TestFromConfig_DerivesRateFromWindow(t *testing.T) {
	t.Parallel()
	rl := FromConfig(RateLimitConfig{MaxRequests: 2, Window: time.Second})

	assert.True(t, rl.Allow())
	assert.True(t, rl.Allow())
	assert.False(t, rl.Allow())
}

func TestRateLimiter_SetRate(t *testing.T) {
	t.Parallel()
	rl := NewRateLimiter(1, 1)
	require.True(t, rl.Allow())
	require.False(t, rl.Allow())

	// Raising the sustained rate refills tokens quickly enough to observe.
	rl.SetRate(1000)
	time.Sleep(20 * time.Millisecond)
	assert.True(t, rl.Allow())
}
