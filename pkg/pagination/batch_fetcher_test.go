package pagination

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/Sternrassler/employee-client/pkg/model"
	"github.com/Sternrassler/employee-client/pkg/repository"
)

func seeded(n int) *repository.Memory {
	seed := make([]model.Employee, 0, n)
	for i := 1; i <= n; i++ {
		seed = append(seed, model.Employee{
			ID:       fmt.Sprintf("%03d", i),
			FullName: fmt.Sprintf("Employee %03d", i),
		})
	}
	return repository.NewMemory(seed...)
}

// failingFetcher fails the listed pages.
type failingFetcher struct {
	PageFetcher
	fail map[int]bool

	mu    sync.Mutex
	calls int
}

func (f *failingFetcher) FetchPage(ctx context.Context, term string, page, size int) (model.Page, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.fail[page] {
		return model.Page{}, fmt.Errorf("page %d unavailable", page)
	}
	return f.PageFetcher.FetchPage(ctx, term, page, size)
}

func TestNewBatchFetcher_Defaults(t *testing.T) {
	bf := NewBatchFetcher(seeded(1), Config{})

	if bf.config != DefaultConfig() {
		t.Errorf("config = %+v, want defaults", bf.config)
	}
}

func TestFetchAll_Ordered(t *testing.T) {
	tests := []struct {
		name    string
		records int
		size    int
		workers int
	}{
		{"empty", 0, 10, 4},
		{"single page", 7, 10, 4},
		{"exact pages", 30, 10, 2},
		{"partial last page", 95, 10, 4},
		{"more workers than pages", 12, 5, 16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bf := NewBatchFetcher(seeded(tt.records), Config{MaxConcurrency: tt.workers, PageSize: tt.size})

			got, err := bf.FetchAll(context.Background(), "")
			if err != nil {
				t.Fatalf("FetchAll failed: %v", err)
			}
			if len(got) != tt.records {
				t.Fatalf("got %d records, want %d", len(got), tt.records)
			}
			for i, e := range got {
				if want := fmt.Sprintf("%03d", i+1); e.ID != want {
					t.Fatalf("record %d = %s, want %s", i, e.ID, want)
				}
			}
		})
	}
}

func TestFetchAll_Term(t *testing.T) {
	bf := NewBatchFetcher(seeded(40), Config{PageSize: 3})

	got, err := bf.FetchAll(context.Background(), "Employee 01")
	if err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}
	if len(got) != 10 {
		t.Errorf("got %d records, want 10 (010..019)", len(got))
	}
}

func TestFetchAll_FirstPageFails(t *testing.T) {
	f := &failingFetcher{PageFetcher: seeded(30), fail: map[int]bool{1: true}}
	bf := NewBatchFetcher(f, Config{PageSize: 10})

	got, err := bf.FetchAll(context.Background(), "")
	if err == nil {
		t.Fatal("Expected error")
	}
	if got != nil {
		t.Errorf("Expected no data, got %d records", len(got))
	}
	if f.calls != 1 {
		t.Errorf("no further pages should be requested, got %d calls", f.calls)
	}
}

// inflatedFetcher announces more records than it holds.
type inflatedFetcher struct {
	total int
	calls int
}

func (f *inflatedFetcher) FetchPage(ctx context.Context, term string, page, size int) (model.Page, error) {
	f.calls++
	return model.Page{Page: page, PageSize: size, TotalRecords: f.total, Data: []model.Employee{{ID: "001"}}}, nil
}

func TestFetchAll_TooManyPages(t *testing.T) {
	tests := []struct {
		name   string
		total  int
		config Config
	}{
		{"absurd total", math.MaxInt, Config{PageSize: 10}},
		{"custom limit", 31, Config{PageSize: 10, MaxPages: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &inflatedFetcher{total: tt.total}
			got, err := NewBatchFetcher(f, tt.config).FetchAll(context.Background(), "")

			if !errors.Is(err, ErrTooManyPages) {
				t.Fatalf("error = %v, want ErrTooManyPages", err)
			}
			if got != nil {
				t.Errorf("Expected no data, got %d records", len(got))
			}
			if f.calls != 1 {
				t.Errorf("only the first page should be requested, got %d calls", f.calls)
			}
		})
	}
}

func TestFetchAll_PartialResults(t *testing.T) {
	f := &failingFetcher{PageFetcher: seeded(30), fail: map[int]bool{2: true}}
	bf := NewBatchFetcher(f, Config{PageSize: 10, MaxConcurrency: 2})

	got, err := bf.FetchAll(context.Background(), "")

	var partial *PartialError
	if !errors.As(err, &partial) {
		t.Fatalf("Expected *PartialError, got %v", err)
	}
	if partial.Fetched != 2 || partial.Total != 3 {
		t.Errorf("partial = %d/%d, want 2/3", partial.Fetched, partial.Total)
	}
	if len(partial.Failed) != 1 || partial.Failed[0] != 2 {
		t.Errorf("Failed = %v, want [2]", partial.Failed)
	}
	if len(got) != 20 {
		t.Fatalf("got %d records, want 20", len(got))
	}
	if got[10].ID != "021" {
		t.Errorf("page 3 should follow page 1, got %s", got[10].ID)
	}
}
