package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// KeyPrefix namespaces every key this package writes.
const KeyPrefix = "emp"

// CacheKey identifies a cached GET response.
type CacheKey struct {
	// Origin is the API base URL. Clients of different APIs sharing one
	// Redis get disjoint keys.
	Origin string

	// Endpoint is the request path relative to the API base (e.g. "/employees/search")
	Endpoint string

	// QueryParams are the request query parameters
	QueryParams url.Values
}

// String generates a deterministic cache key string.
//
// Example:
//
//	emp:1f2e3d4c5b6a7980:employees/search:page=2:pageSize=10:term=ada
//
// The second segment is a short hash of Origin and is left out when Origin
// is empty.
func (k CacheKey) String() string {
	parts := []string{KeyPrefix}

	if k.Origin != "" {
		sum := sha256.Sum256([]byte(k.Origin))
		parts = append(parts, hex.EncodeToString(sum[:8]))
	}

	if endpoint := strings.Trim(k.Endpoint, "/"); endpoint != "" {
		parts = append(parts, endpoint)
	}

	if len(k.QueryParams) > 0 {
		keys := make([]string, 0, len(k.QueryParams))
		for key := range k.QueryParams {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			values := append([]string(nil), k.QueryParams[key]...)
			sort.Strings(values)
			parts = append(parts, fmt.Sprintf("%s=%s", key, strings.Join(values, ",")))
		}
	}

	return strings.Join(parts, ":")
}
