package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fd1az/balancer-connector/internal/apperror"
)

func TestBurstIsSpentFirst(t *testing.T) {
	l := New(0.1, 2)

	assert.True(t, l.Allow())
	assert.True(t, l.Allow())
	assert.False(t, l.Allow())
}

func TestWaitFailsWhenContextTooShort(t *testing.T) {
	l := New(0.001, 0)
	require.NoError(t, l.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := l.Wait(ctx)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeRateLimitExceeded))
}

func TestNonPositiveRateIsUnlimited(t *testing.T) {
	l := New(0, 1)
	for i := 0; i < 100; i++ {
		require.True(t, l.Allow())
	}
}
