package cache

import (
	"testing"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/stretchr/testify/assert"
)

// This test requires a running memcached instance
// If memcached is not available, the test will be skipped
func TestMemcacheService(t *testing.T) {
	mc := NewMemcacheService("localhost:11211")

	// Test if memcached is available
	_, err := mc.client.Get("ping")
	if err != nil && err != memcache.ErrCacheMiss {
		t.Skip("Memcached is not available, skipping test")
	}

	// Set a guard key the way the fetch layer does after a rate limit
	err = mc.Set("gym_rate_limited", []byte("60"), 1*time.Second)
	assert.NoError(t, err)

	// Get the value back through the service
	value, err := mc.Get("gym_rate_limited")
	assert.NoError(t, err)
	assert.Equal(t, "60", string(value))

	// The stored key carries the worker namespace
	item, err := mc.client.Get("deckworker:gym_rate_limited")
	assert.NoError(t, err)
	assert.Equal(t, "60", string(item.Value))

	// Delete lifts the block
	err = mc.Delete("gym_rate_limited")
	assert.NoError(t, err)

	// A deleted guard key misses, meaning the source is open again
	_, err = mc.Get("gym_rate_limited")
	assert.Equal(t, memcache.ErrCacheMiss, err)
}
