// Package orchestrator drives paginated loading and searching of employee
// records on top of a repository.Repository.
//
// The orchestrator owns a single State. Listing loads merge pages into a
// cache; searches replace only the view, so leaving search mode shows the
// cached listing again. Every view-changing request carries a sequence
// number and responses that have been superseded are dropped.
package orchestrator

import (
	"context"
	"strings"
	"sync"

	"github.com/Sternrassler/employee-client/pkg/model"
	"github.com/Sternrassler/employee-client/pkg/repository"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for the orchestrator.
var (
	loadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "employee_orchestrator_loads_total",
		Help: "Total view loads by kind (listing, search) and outcome (success, failure, stale)",
	}, []string{"kind", "outcome"})

	loadMoreSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "employee_orchestrator_load_more_skipped_total",
		Help: "Load-more requests answered without a fetch, by reason",
	}, []string{"reason"})

	mutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "employee_orchestrator_mutations_total",
		Help: "Total create/update/delete operations by outcome",
	}, []string{"operation", "outcome"})
)

// Continuation is a handle supplied with a load, e.g. by an infinite-scroll
// widget. Complete is called exactly once per call that received it.
type Continuation interface {
	Complete()
}

// ContinuationFunc adapts a function to Continuation.
type ContinuationFunc func()

// Complete implements Continuation.
func (f ContinuationFunc) Complete() { f() }

// Confirmer asks the user whether a record should really be deleted.
type Confirmer interface {
	Confirm(ctx context.Context, id string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, id string) bool

// Confirm implements Confirmer.
func (f ConfirmFunc) Confirm(ctx context.Context, id string) bool { return f(ctx, id) }

// Options configures an Orchestrator.
type Options struct {
	// PageSize defaults to DefaultPageSize.
	PageSize int

	// Logger defaults to the global logger with component "orchestrator".
	Logger *zerolog.Logger

	// OnChange receives a snapshot after every state transition.
	OnChange func(State)

	// OnError receives every error that reaches the caller.
	OnError func(error)
}

// Orchestrator owns the query state of one listing/search screen. It is safe
// for concurrent use; the lock is never held while the repository is called.
type Orchestrator struct {
	repo repository.Repository

	mu    sync.Mutex
	state State

	// issued is the sequence number of the newest view request, settled the
	// one whose response has been applied.
	issued  uint64
	settled uint64

	onChange func(State)
	onError  func(error)
	logger   zerolog.Logger
}

// New creates an orchestrator in its initial state.
func New(repo repository.Repository, opts Options) *Orchestrator {
	logger := log.With().Str("component", "orchestrator").Logger()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	return &Orchestrator{
		repo:     repo,
		state:    initialState(opts.PageSize),
		onChange: opts.OnChange,
		onError:  opts.OnError,
		logger:   logger,
	}
}

// State returns a snapshot of the current state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.Clone()
}

// listingRequest is a listing fetch that has been registered under the lock.
type listingRequest struct {
	token    uint64
	page     int
	size     int
	advanced bool
}

// LoadPage fetches the current page of the non-search listing. Without a
// continuation a load of page 1 raises IsLoading. cont, if any, is completed
// before LoadPage returns, whatever the outcome.
func (o *Orchestrator) LoadPage(ctx context.Context, cont Continuation) error {
	defer complete(cont)

	o.mu.Lock()
	req := o.beginListingLocked(cont == nil, false)
	snapshot := o.state.Clone()
	o.mu.Unlock()

	o.notify(snapshot)
	return o.fetchListing(ctx, req)
}

// LoadMore appends the next listing page. It completes cont without fetching
// when searching, when a load is already outstanding, or at the end of the
// listing.
func (o *Orchestrator) LoadMore(ctx context.Context, cont Continuation) error {
	defer complete(cont)

	o.mu.Lock()
	if reason := o.loadMoreBlockedLocked(); reason != "" {
		page, total := o.state.CurrentPage, o.state.TotalPages
		o.mu.Unlock()

		loadMoreSkipped.WithLabelValues(reason).Inc()
		o.logger.Debug().
			Str("reason", reason).
			Int("page", page).
			Int("total_pages", total).
			Msg("Load more skipped")
		return nil
	}
	o.state = advancePage(o.state)
	req := o.beginListingLocked(false, true)
	snapshot := o.state.Clone()
	o.mu.Unlock()

	o.notify(snapshot)
	return o.fetchListing(ctx, req)
}

// Search shows the first page of results for term. A blank term leaves
// search mode and reloads page 1 of the listing.
func (o *Orchestrator) Search(ctx context.Context, term string) error {
	term = strings.TrimSpace(term)

	o.mu.Lock()
	if term == "" {
		o.state = clearSearch(o.state)
		req := o.beginListingLocked(true, false)
		snapshot := o.state.Clone()
		o.mu.Unlock()

		o.notify(snapshot)
		return o.fetchListing(ctx, req)
	}

	o.state = beginSearch(o.state, term)
	token := o.nextTokenLocked()
	size := o.state.PageSize
	snapshot := o.state.Clone()
	o.mu.Unlock()

	o.notify(snapshot)

	page, err := o.repo.FetchPage(ctx, term, 1, size)

	o.mu.Lock()
	if token != o.issued {
		o.mu.Unlock()
		o.dropStale("search", token, err)
		return nil
	}
	o.settled = token
	if err != nil {
		o.state = endLoading(o.state)
	} else {
		o.state = applySearch(o.state, page)
	}
	snapshot = o.state.Clone()
	o.mu.Unlock()

	o.notify(snapshot)

	if err != nil {
		loadsTotal.WithLabelValues("search", "failure").Inc()
		return o.report(err, "Search failed")
	}

	loadsTotal.WithLabelValues("search", "success").Inc()
	o.logger.Info().
		Str("term", term).
		Int("results", len(page.Data)).
		Int("total_records", page.TotalRecords).
		Msg("Search loaded")
	return nil
}

// InvalidateAndReload discards the view and any search and reloads page 1.
// It is called after a successful mutation.
func (o *Orchestrator) InvalidateAndReload(ctx context.Context) error {
	o.mu.Lock()
	o.state = resetForReload(o.state)
	req := o.beginListingLocked(true, false)
	snapshot := o.state.Clone()
	o.mu.Unlock()

	o.notify(snapshot)
	return o.fetchListing(ctx, req)
}

// RemoveLocally drops the record with id from the cache and the view without
// a round trip. Totals become approximate until the next listing load.
func (o *Orchestrator) RemoveLocally(id string) {
	o.mu.Lock()
	o.state = removeRecord(o.state, id)
	snapshot := o.state.Clone()
	o.mu.Unlock()

	o.notify(snapshot)
}

// Delete removes a record after confirmation. A nil confirm deletes without
// asking. It reports whether the record was deleted.
func (o *Orchestrator) Delete(ctx context.Context, id string, confirm Confirmer) (bool, error) {
	if confirm != nil && !confirm.Confirm(ctx, id) {
		mutationsTotal.WithLabelValues("delete", "cancelled").Inc()
		o.logger.Debug().Str("id", id).Msg("Delete cancelled")
		return false, nil
	}

	if err := o.repo.Delete(ctx, id); err != nil {
		mutationsTotal.WithLabelValues("delete", "failure").Inc()
		return false, o.report(err, "Delete failed")
	}

	mutationsTotal.WithLabelValues("delete", "success").Inc()
	o.logger.Info().Str("id", id).Msg("Employee deleted")
	o.RemoveLocally(id)
	return true, nil
}

// Create stores a new record and reloads the listing. Nothing is reloaded
// when the store rejects the record. The returned error only ever describes
// the write: a failed reload goes to OnError and the log.
func (o *Orchestrator) Create(ctx context.Context, e model.Employee) error {
	if err := o.repo.Create(ctx, e); err != nil {
		mutationsTotal.WithLabelValues("create", "failure").Inc()
		return o.report(err, "Create failed")
	}

	mutationsTotal.WithLabelValues("create", "success").Inc()
	o.logger.Info().Str("full_name", e.FullName).Msg("Employee created")
	o.reloadAfter(ctx, "create")
	return nil
}

// Update saves changes to an existing record and reloads the listing. As
// with Create, a failed reload is not returned.
func (o *Orchestrator) Update(ctx context.Context, e model.Employee) error {
	if err := o.repo.Update(ctx, e); err != nil {
		mutationsTotal.WithLabelValues("update", "failure").Inc()
		return o.report(err, "Update failed")
	}

	mutationsTotal.WithLabelValues("update", "success").Inc()
	o.logger.Info().Str("id", e.ID).Msg("Employee updated")
	o.reloadAfter(ctx, "update")
	return nil
}

// reloadAfter refreshes the listing after a persisted mutation. The reload
// has already been reported through OnError when it fails.
func (o *Orchestrator) reloadAfter(ctx context.Context, operation string) {
	if err := o.InvalidateAndReload(ctx); err != nil {
		o.logger.Warn().
			Err(err).
			Str("operation", operation).
			Msg("Mutation saved, listing reload failed")
	}
}

// Get loads a single record, e.g. for an edit form.
func (o *Orchestrator) Get(ctx context.Context, id string) (model.Employee, error) {
	e, err := o.repo.FetchByID(ctx, id)
	if err != nil {
		return model.Employee{}, o.report(err, "Get failed")
	}
	return e, nil
}

func (o *Orchestrator) nextTokenLocked() uint64 {
	o.issued++
	return o.issued
}

func (o *Orchestrator) beginListingLocked(fresh, advanced bool) listingRequest {
	o.state = beginListing(o.state, fresh)
	return listingRequest{
		token:    o.nextTokenLocked(),
		page:     o.state.CurrentPage,
		size:     o.state.PageSize,
		advanced: advanced,
	}
}

func (o *Orchestrator) loadMoreBlockedLocked() string {
	switch {
	case o.state.IsSearching:
		return "searching"
	case o.settled != o.issued:
		return "in_flight"
	case o.state.CurrentPage >= o.state.TotalPages:
		return "end_of_list"
	default:
		return ""
	}
}

func (o *Orchestrator) fetchListing(ctx context.Context, req listingRequest) error {
	page, err := o.repo.FetchPage(ctx, "", req.page, req.size)

	o.mu.Lock()
	if req.token != o.issued {
		o.mu.Unlock()
		o.dropStale("listing", req.token, err)
		return nil
	}
	o.settled = req.token
	if err != nil {
		o.state = failListing(o.state, req.advanced)
	} else {
		o.state = applyListing(o.state, page)
	}
	snapshot := o.state.Clone()
	o.mu.Unlock()

	o.notify(snapshot)

	if err != nil {
		loadsTotal.WithLabelValues("listing", "failure").Inc()
		return o.report(err, "Listing load failed")
	}

	loadsTotal.WithLabelValues("listing", "success").Inc()
	o.logger.Info().
		Int("page", req.page).
		Int("records", len(page.Data)).
		Int("cached", len(snapshot.Cache)).
		Int("total_pages", snapshot.TotalPages).
		Msg("Listing page loaded")
	return nil
}

func (o *Orchestrator) dropStale(kind string, token uint64, err error) {
	loadsTotal.WithLabelValues(kind, "stale").Inc()
	event := o.logger.Warn().Str("kind", kind).Uint64("token", token)
	if err != nil {
		event = event.Err(err)
	}
	event.Msg("Dropping superseded response")
}

func (o *Orchestrator) report(err error, msg string) error {
	o.logger.Error().Err(err).Msg(msg)
	if o.onError != nil {
		o.onError(err)
	}
	return err
}

func (o *Orchestrator) notify(s State) {
	if o.onChange != nil {
		o.onChange(s)
	}
}

func complete(cont Continuation) {
	if cont != nil {
		cont.Complete()
	}
}
