package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedDelay_Waits(t *testing.T) {
	l := NewFixedDelay(20 * time.Millisecond)

	start := time.Now()
	require.NoError(t, l.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestFixedDelay_Zero(t *testing.T) {
	l := NewFixedDelay(0)
	assert.NoError(t, l.Wait(context.Background()))
}

func TestFixedDelay_Cancelled(t *testing.T) {
	l := NewFixedDelay(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := l.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTokenBucket_FirstWaitIsSpaced(t *testing.T) {
	// 600/min is one request every 100ms.
	l := NewTokenBucket(600)

	start := time.Now()
	require.NoError(t, l.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)

	start = time.Now()
	require.NoError(t, l.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
}

func TestTokenBucket_Cancelled(t *testing.T) {
	// The next token is a minute away, so a short deadline must fail.
	l := NewTokenBucket(1)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, l.Wait(ctx))
}

func TestNone(t *testing.T) {
	var l Limiter = None{}
	assert.NoError(t, l.Wait(context.Background()))
}
