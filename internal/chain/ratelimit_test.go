package chain_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/web3twenty/3twenty-wallet/internal/chain"
)

func TestRateLimiterAllowsBurst(t *testing.T) {
	t.Parallel()
	rl := chain.NewRateLimiter(1, 3)

	assert.True(t, rl.Allow("indexer"))
	assert.True(t, rl.Allow("indexer"))
	assert.True(t, rl.Allow("indexer"))
	assert.False(t, rl.Allow("indexer"))
}

func TestRateLimiterPerEndpoint(t *testing.T) {
	t.Parallel()
	rl := chain.NewRateLimiter(1, 1)

	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	// A different endpoint has its own bucket
	assert.True(t, rl.Allow("b"))
}

func TestRateLimiterWaitContextCanceled(t *testing.T) {
	t.Parallel()
	rl := chain.NewRateLimiter(0.001, 1)
	require.True(t, rl.Allow("slow"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := rl.Wait(ctx, "slow")
	require.Error(t, err)
}
