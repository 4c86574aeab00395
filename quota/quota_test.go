package quota

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podforge/config"
)

func newLimiter(perMinute, perDay int) *GenerationQuotaLimiter {
	return NewFromConfig(config.AppConfig{
		GenerationQuota: config.GenerationQuotaConfig{
			RequestsPerMinute: perMinute,
			RequestsPerDay:    perDay,
		},
	})
}

func TestWaitAndReserveDailyCap(t *testing.T) {
	l := newLimiter(0, 2)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := l.WaitAndReserve(ctx)
		require.NoError(t, err)
		require.True(t, ok)
	}

	ok, err := l.WaitAndReserve(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "third call must be rejected at a daily cap of 2")
}

func TestWaitAndReserveUnlimited(t *testing.T) {
	l := newLimiter(0, 0)
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		ok, err := l.WaitAndReserve(ctx)
		require.NoError(t, err)
		require.True(t, ok)
	}
}

func TestWaitAndReserveSpacesCalls(t *testing.T) {
	// 60 requests/minute means one-second spacing.
	l := newLimiter(60, 0)
	ctx := context.Background()

	ok, err := l.WaitAndReserve(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	start := time.Now()
	ok, err = l.WaitAndReserve(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.GreaterOrEqual(t, time.Since(start), 500*time.Millisecond)
}

func TestWaitAndReserveContextCancelled(t *testing.T) {
	// One request/minute forces a long wait on the second call.
	l := newLimiter(1, 0)

	ok, err := l.WaitAndReserve(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	ok, err = l.WaitAndReserve(ctx)
	assert.False(t, ok)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
