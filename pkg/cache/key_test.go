package cache

import (
	"net/url"
	"strings"
	"testing"
)

func TestCacheKey_String(t *testing.T) {
	tests := []struct {
		name string
		key  CacheKey
		want string
	}{
		{
			name: "listing without query",
			key:  CacheKey{Endpoint: "/employees"},
			want: "emp:employees",
		},
		{
			name: "record by id",
			key:  CacheKey{Endpoint: "/employees/123/"},
			want: "emp:employees/123",
		},
		{
			name: "search query sorted by name",
			key: CacheKey{
				Endpoint: "/employees/search",
				QueryParams: url.Values{
					"term":     []string{"ada"},
					"page":     []string{"2"},
					"pageSize": []string{"10"},
				},
			},
			want: "emp:employees/search:page=2:pageSize=10:term=ada",
		},
		{
			name: "empty term is kept",
			key: CacheKey{
				Endpoint:    "/employees/search",
				QueryParams: url.Values{"term": []string{""}, "page": []string{"1"}},
			},
			want: "emp:employees/search:page=1:term=",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.key.String(); got != tt.want {
				t.Errorf("CacheKey.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCacheKey_Origin(t *testing.T) {
	a := CacheKey{Origin: "http://hr-a.example/api", Endpoint: "/employees"}
	b := CacheKey{Origin: "http://hr-b.example/api", Endpoint: "/employees"}

	if a.String() == b.String() {
		t.Errorf("keys for different origins collide: %v", a.String())
	}
	if got := a.String(); !strings.HasPrefix(got, KeyPrefix+":") || !strings.HasSuffix(got, ":employees") {
		t.Errorf("unexpected key layout %v", got)
	}
	if parts := strings.Split(a.String(), ":"); len(parts) != 3 || len(parts[1]) != 16 {
		t.Errorf("origin segment should be 16 hex chars, got %v", parts)
	}
	if again := (CacheKey{Origin: "http://hr-a.example/api", Endpoint: "/employees"}).String(); again != a.String() {
		t.Errorf("origin hash not stable: %v vs %v", again, a.String())
	}
}

func TestCacheKey_Determinism(t *testing.T) {
	key := CacheKey{
		Endpoint: "/employees/search",
		QueryParams: url.Values{
			"term":     []string{"b", "a"},
			"page":     []string{"1"},
			"pageSize": []string{"10"},
		},
	}

	first := key.String()
	for i := 0; i < 10; i++ {
		if got := key.String(); got != first {
			t.Errorf("iteration %d: %v, want %v (not deterministic)", i, got, first)
		}
	}
	if first != "emp:employees/search:page=1:pageSize=10:term=a,b" {
		t.Errorf("unexpected key %v", first)
	}
}
