package orchestrator

import (
	"github.com/Sternrassler/employee-client/pkg/model"
)

// DefaultPageSize is the page size used when none is configured.
const DefaultPageSize = 10

// State is the query state owned by an Orchestrator. Callers only ever see
// copies of it.
type State struct {
	CurrentPage  int
	PageSize     int
	TotalPages   int
	TotalRecords int

	// SearchTerm is empty when no search is active.
	SearchTerm  string
	IsSearching bool

	// Cache is the merged non-search listing, page 1 first.
	Cache []model.Employee

	// View is what the caller renders: a copy of Cache in listing mode, the
	// last search result in search mode.
	View []model.Employee

	IsLoading bool

	// Approximate is set when records were removed locally and TotalRecords
	// and TotalPages have not been refreshed since.
	Approximate bool
}

// initialState is Idle on page 1 with nothing loaded.
func initialState(pageSize int) State {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return State{
		CurrentPage: 1,
		PageSize:    pageSize,
		Cache:       []model.Employee{},
		View:        []model.Employee{},
	}
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	s.Cache = cloneRecords(s.Cache)
	s.View = cloneRecords(s.View)
	return s
}

// HasMore reports whether the listing has pages that have not been loaded.
func (s State) HasMore() bool {
	return !s.IsSearching && s.CurrentPage < s.TotalPages
}

func cloneRecords(in []model.Employee) []model.Employee {
	out := make([]model.Employee, len(in))
	copy(out, in)
	return out
}

// beginListing marks a listing fetch as started. The full-screen loading flag
// is raised only for a fresh load of the first page.
func beginListing(s State, fresh bool) State {
	if fresh && s.CurrentPage == 1 {
		s.IsLoading = true
	}
	return s
}

// applyListing merges a listing page: page 1 replaces the cache, later pages
// are appended. The view becomes a copy of the cache.
func applyListing(s State, p model.Page) State {
	if s.CurrentPage == 1 {
		s.Cache = cloneRecords(p.Data)
	} else {
		s.Cache = append(cloneRecords(s.Cache), p.Data...)
	}
	s.View = cloneRecords(s.Cache)
	s.TotalRecords = p.TotalRecords
	s.TotalPages = model.TotalPages(p.TotalRecords, s.PageSize)
	s.IsSearching = false
	s.SearchTerm = ""
	s.IsLoading = false
	s.Approximate = false
	return s
}

// failListing settles a failed listing fetch. A page that was advanced to
// for the fetch is given back so the next load-more retries it.
func failListing(s State, advanced bool) State {
	s = endLoading(s)
	if advanced && s.CurrentPage > 1 {
		s.CurrentPage--
	}
	return s
}

// advancePage moves to the next listing page.
func advancePage(s State) State {
	s.CurrentPage++
	return s
}

// beginSearch enters search mode. The cache is left untouched.
func beginSearch(s State, term string) State {
	s.IsSearching = true
	s.SearchTerm = term
	s.CurrentPage = 1
	s.IsLoading = true
	return s
}

// applySearch replaces the view with exactly the search result.
func applySearch(s State, p model.Page) State {
	s.View = cloneRecords(p.Data)
	s.IsLoading = false
	return s
}

func endLoading(s State) State {
	s.IsLoading = false
	return s
}

// clearSearch leaves search mode and shows the cached listing again from
// page 1.
func clearSearch(s State) State {
	s.IsSearching = false
	s.SearchTerm = ""
	s.CurrentPage = 1
	s.View = cloneRecords(s.Cache)
	return s
}

// resetForReload prepares a full reload after a mutation.
func resetForReload(s State) State {
	s.View = []model.Employee{}
	s.SearchTerm = ""
	s.IsSearching = false
	s.CurrentPage = 1
	return s
}

// removeRecord drops id from the cache and the view. Totals are not touched;
// they are flagged approximate until the next listing response.
func removeRecord(s State, id string) State {
	s.Cache = withoutID(s.Cache, id)
	s.View = withoutID(s.View, id)
	s.Approximate = true
	return s
}

func withoutID(in []model.Employee, id string) []model.Employee {
	out := make([]model.Employee, 0, len(in))
	for _, e := range in {
		if e.ID != id {
			out = append(out, e)
		}
	}
	return out
}
