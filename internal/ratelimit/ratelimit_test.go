package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllow_BurstThenDeny(t *testing.T) {
	kl := New(1, 2)
	defer kl.Stop()

	assert.True(t, kl.Allow("10.0.0.1"))
	assert.True(t, kl.Allow("10.0.0.1"))
	assert.False(t, kl.Allow("10.0.0.1"))
}

func TestAllow_KeysAreIndependent(t *testing.T) {
	kl := New(1, 1)
	defer kl.Stop()

	assert.True(t, kl.Allow("10.0.0.1"))
	assert.False(t, kl.Allow("10.0.0.1"))
	assert.True(t, kl.Allow("10.0.0.2"))
}

func TestWait_RespectsContext(t *testing.T) {
	kl := New(0.01, 1)
	defer kl.Stop()

	require.True(t, kl.Allow("upstream"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := kl.Wait(ctx, "upstream")
	assert.Error(t, err)
}

func TestStop_Idempotent(t *testing.T) {
	kl := New(1, 1)
	kl.Stop()
	kl.Stop()
}
