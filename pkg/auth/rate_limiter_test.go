package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlidingWindowLimiter_AllowsUpToLimit(t *testing.T) {
	// Arrange
	limiter := NewSlidingWindowLimiter(3, time.Minute)

	// Act & Assert
	for i := 0; i < 3; i++ {
		allowed, err := limiter.Allow(context.Background(), "ip-1")
		require.NoError(t, err)
		assert.True(t, allowed, "request %d should pass", i+1)
	}

	allowed, err := limiter.Allow(context.Background(), "ip-1")
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestSlidingWindowLimiter_KeysAreIndependent(t *testing.T) {
	// Arrange
	limiter := NewSlidingWindowLimiter(1, time.Minute)
	_, err := limiter.Allow(context.Background(), "ip-1")
	require.NoError(t, err)

	// Act
	allowed, err := limiter.Allow(context.Background(), "ip-2")

	// Assert
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestSlidingWindowLimiter_ResetClearsKey(t *testing.T) {
	// Arrange
	limiter := NewSlidingWindowLimiter(1, time.Minute)
	_, err := limiter.Allow(context.Background(), "user-1")
	require.NoError(t, err)

	// Act
	require.NoError(t, limiter.Reset(context.Background(), "user-1"))
	allowed, err := limiter.Allow(context.Background(), "user-1")

	// Assert
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestSlidingWindowLimiter_WindowExpires(t *testing.T) {
	// Arrange: a very short window
	limiter := NewSlidingWindowLimiter(1, 10*time.Millisecond)
	_, err := limiter.Allow(context.Background(), "user-1")
	require.NoError(t, err)

	blocked, err := limiter.Allow(context.Background(), "user-1")
	require.NoError(t, err)
	require.False(t, blocked)

	// Act: wait out the window
	time.Sleep(20 * time.Millisecond)
	allowed, err := limiter.Allow(context.Background(), "user-1")

	// Assert
	require.NoError(t, err)
	assert.True(t, allowed)
}
