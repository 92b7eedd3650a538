package cache

import (
	"time"

	"github.com/bradfitz/gomemcache/memcache"
)

// keyPrefix namespaces this worker's entries on a shared memcached, so the
// rate-limit guard keys ("gym_rate_limited", ...) cannot collide with
// other tenants
const keyPrefix = "deckworker:"

// MemcacheService implements CacheService on memcached. The fetch layer
// uses it as the rate-limit guard store: a present key means the source is
// still blocked, and expiry reopens it without any cleanup pass.
type MemcacheService struct {
	client *memcache.Client
}

// NewMemcacheService creates a new memcache service
func NewMemcacheService(serverAddr string) *MemcacheService {
	return &MemcacheService{
		client: memcache.New(serverAddr),
	}
}

// Get retrieves a value. A missing or expired key returns
// memcache.ErrCacheMiss, which the guard reads as "not blocked".
func (m *MemcacheService) Get(key string) ([]byte, error) {
	item, err := m.client.Get(keyPrefix + key)
	if err != nil {
		return nil, err
	}
	return item.Value, nil
}

// Set stores a value with an expiration time; for guard keys the
// expiration is the block window
func (m *MemcacheService) Set(key string, value []byte, expiration time.Duration) error {
	return m.client.Set(&memcache.Item{
		Key:        keyPrefix + key,
		Value:      value,
		Expiration: int32(expiration.Seconds()),
	})
}

// Delete removes a value, lifting the block early
func (m *MemcacheService) Delete(key string) error {
	return m.client.Delete(keyPrefix + key)
}
