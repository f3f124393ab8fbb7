// Package cache keeps employee API GET responses in Redis and turns later
// reads of the same URL into conditional requests.
//
// Every read is still sent to the API. When a cached entry has an ETag (or a
// Last-Modified date) the request carries If-None-Match (or
// If-Modified-Since); a 304 answer is served from the stored body. The server
// therefore stays the authority on freshness, and a create, update or delete
// never leaves a stale listing behind.
//
// # Basic Usage
//
//	manager := cache.NewManager(redisClient)
//
//	key := cache.CacheKey{
//		Origin:      "http://localhost:3000/api",
//		Endpoint:    "/employees/search",
//		QueryParams: url.Values{"term": {""}, "page": {"1"}, "pageSize": {"10"}},
//	}
//
//	entry, err := manager.Get(ctx, key)
//	if err == cache.ErrCacheMiss {
//		// plain request
//	}
//	if cache.ShouldMakeConditionalRequest(entry) {
//		cache.AddConditionalHeaders(req, entry)
//	}
//
// # Metrics
//
//   - employee_cache_hits_total
//   - employee_cache_misses_total
//   - employee_conditional_requests_total
//   - employee_304_responses_total
//   - employee_cache_errors_total{operation}
package cache
