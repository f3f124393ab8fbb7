package cache

import (
	"net/http"
	"time"
)

const (
	// DefaultTTL is how long an entry is kept when the response carries no
	// usable Expires header. Entries are always revalidated, so this only
	// bounds how long Redis holds them.
	DefaultTTL = 5 * time.Minute
)

// NewEntry builds a cache entry from a response whose body has already been
// read.
func NewEntry(resp *http.Response, body []byte) *CacheEntry {
	entry := &CacheEntry{
		Data:     append([]byte(nil), body...),
		ETag:     resp.Header.Get("ETag"),
		Expires:  ParseExpires(resp.Header),
		CachedAt: time.Now(),
	}

	if lastModStr := resp.Header.Get("Last-Modified"); lastModStr != "" {
		if lastMod, err := http.ParseTime(lastModStr); err == nil {
			entry.LastModified = lastMod
		}
	}

	return entry
}

// ParseExpires returns the Expires header when it lies in the future and
// now + DefaultTTL otherwise.
func ParseExpires(headers http.Header) time.Time {
	fallback := time.Now().Add(DefaultTTL)

	expiresStr := headers.Get("Expires")
	if expiresStr == "" {
		return fallback
	}

	expires, err := http.ParseTime(expiresStr)
	if err != nil || !expires.After(time.Now()) {
		return fallback
	}

	return expires
}

// ShouldMakeConditionalRequest reports whether entry carries a validator.
func ShouldMakeConditionalRequest(entry *CacheEntry) bool {
	if entry == nil {
		return false
	}
	return entry.ETag != "" || !entry.LastModified.IsZero()
}

// AddConditionalHeaders adds If-None-Match, or If-Modified-Since when only a
// Last-Modified validator is known.
func AddConditionalHeaders(req *http.Request, entry *CacheEntry) {
	if entry == nil || req == nil {
		return
	}

	if entry.ETag != "" {
		req.Header.Set("If-None-Match", entry.ETag)
	} else if !entry.LastModified.IsZero() {
		req.Header.Set("If-Modified-Since", entry.LastModified.Format(http.TimeFormat))
	}
}
