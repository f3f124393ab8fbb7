// Package cache stores GET responses of the employee API in Redis so that
// reads can be revalidated with conditional requests.
package cache

import (
	"time"
)

// CacheEntry is a stored API response body with its validators.
type CacheEntry struct {
	// Data is the response body
	Data []byte `json:"data"`

	// ETag is sent back as If-None-Match
	ETag string `json:"etag"`

	// LastModified is sent back as If-Modified-Since when there is no ETag
	LastModified time.Time `json:"last_modified"`

	// Expires is when the entry is dropped from Redis
	Expires time.Time `json:"expires"`

	// CachedAt is when we stored this response
	CachedAt time.Time `json:"cached_at"`
}

// IsExpired returns true if the cache entry has expired.
func (e *CacheEntry) IsExpired() bool {
	return time.Now().After(e.Expires)
}

// TTL returns the time until expiration, 0 if already expired.
func (e *CacheEntry) TTL() time.Duration {
	ttl := time.Until(e.Expires)
	if ttl < 0 {
		return 0
	}
	return ttl
}
