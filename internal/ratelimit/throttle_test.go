package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestThrottle_BurstThenReject(t *testing.T) {
	th := NewThrottle(0.01, 2)

	assert.True(t, th.Allow("ip"))
	assert.True(t, th.Allow("ip"))
	assert.False(t, th.Allow("ip"))
	assert.True(t, th.Allow("other"))
}

func TestThrottle_CleanupRecreatesIdle(t *testing.T) {
	th := NewThrottle(0.01, 1)
	th.idleTTL = time.Millisecond

	assert.True(t, th.Allow("ip"))
	assert.False(t, th.Allow("ip"))

	time.Sleep(3 * time.Millisecond)
	th.Cleanup()

	assert.True(t, th.Allow("ip"))
}
