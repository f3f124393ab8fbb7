package pagination

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Sternrassler/employee-client/pkg/model"
	"github.com/rs/zerolog/log"
)

// Config holds batch fetcher configuration
type Config struct {
	// MaxConcurrency is the maximum number of parallel page requests
	MaxConcurrency int
	// PageSize is the number of records requested per page
	PageSize int
	// Timeout per page fetch, including the repository's own retries
	Timeout time.Duration
	// MaxPages bounds the listing size the server may announce
	MaxPages int
}

// ErrTooManyPages is returned when the first page announces more pages than
// Config.MaxPages.
var ErrTooManyPages = errors.New("listing exceeds page limit")

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		MaxConcurrency: 4,
		PageSize:       50,
		Timeout:        30 * time.Second,
		MaxPages:       10000,
	}
}

// PageFetcher fetches a single page of a listing filtered by term.
// repository.Repository satisfies it.
type PageFetcher interface {
	FetchPage(ctx context.Context, term string, page, pageSize int) (model.Page, error)
}

// PageResult represents the result of fetching a single page
type PageResult struct {
	PageNumber int
	Data       []model.Employee
	Error      error
}

// PartialError is returned when some pages could not be fetched. The
// records of the successful pages are still returned.
type PartialError struct {
	Fetched int
	Total   int
	Failed  []int
	Err     error
}

func (e *PartialError) Error() string {
	return fmt.Sprintf("partial listing (%d/%d pages, failed %v): %v", e.Fetched, e.Total, e.Failed, e.Err)
}

func (e *PartialError) Unwrap() error {
	return e.Err
}

// BatchFetcher handles parallel fetching of multiple pages
type BatchFetcher struct {
	fetcher PageFetcher
	config  Config
}

// NewBatchFetcher creates a new batch fetcher
func NewBatchFetcher(fetcher PageFetcher, config Config) *BatchFetcher {
	defaults := DefaultConfig()
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = defaults.MaxConcurrency
	}
	if config.PageSize <= 0 {
		config.PageSize = defaults.PageSize
	}
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}
	if config.MaxPages <= 0 {
		config.MaxPages = defaults.MaxPages
	}

	return &BatchFetcher{
		fetcher: fetcher,
		config:  config,
	}
}

// FetchAll fetches every page of the listing for term and returns the
// records in page order. If some pages fail, the records that were fetched
// are returned together with a *PartialError.
func (bf *BatchFetcher) FetchAll(ctx context.Context, term string) ([]model.Employee, error) {
	start := time.Now()

	firstCtx, cancel := context.WithTimeout(ctx, bf.config.Timeout)
	first, err := bf.fetcher.FetchPage(firstCtx, term, 1, bf.config.PageSize)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch first page: %w", err)
	}

	totalPages := model.TotalPages(first.TotalRecords, bf.config.PageSize)
	if totalPages > bf.config.MaxPages {
		log.Warn().
			Str("term", term).
			Int("total_records", first.TotalRecords).
			Int("max_pages", bf.config.MaxPages).
			Msg("Refusing oversized listing")
		return nil, fmt.Errorf("%w: %d records in %d pages, limit %d",
			ErrTooManyPages, first.TotalRecords, totalPages, bf.config.MaxPages)
	}

	log.Info().
		Str("term", term).
		Int("total_records", first.TotalRecords).
		Int("total_pages", totalPages).
		Msg("Starting parallel page fetch")

	if totalPages <= 1 {
		log.Info().
			Str("term", term).
			Int("records", len(first.Data)).
			Dur("duration", time.Since(start)).
			Msg("Fetch complete (single page)")
		return first.Data, nil
	}

	pages := make([][]model.Employee, totalPages+1)
	pages[1] = first.Data

	pageQueue := make(chan int, totalPages)
	pageResults := make(chan PageResult, totalPages)

	for page := 2; page <= totalPages; page++ {
		pageQueue <- page
	}
	close(pageQueue)

	workers := bf.config.MaxConcurrency
	if workers > totalPages-1 {
		workers = totalPages - 1
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go bf.worker(ctx, term, pageQueue, pageResults, &wg, i)
	}

	go func() {
		wg.Wait()
		close(pageResults)
	}()

	fetchedPages := 1
	var failed []int
	var lastErr error
	for result := range pageResults {
		if result.Error != nil {
			failed = append(failed, result.PageNumber)
			lastErr = result.Error
			continue
		}

		pages[result.PageNumber] = result.Data
		fetchedPages++

		if fetchedPages%10 == 0 {
			log.Info().
				Int("fetched", fetchedPages).
				Int("total", totalPages).
				Float64("progress_pct", float64(fetchedPages)/float64(totalPages)*100).
				Msg("Fetch progress")
		}
	}

	employees := make([]model.Employee, 0, first.TotalRecords)
	for _, data := range pages[1:] {
		employees = append(employees, data...)
	}

	if lastErr == nil && fetchedPages < totalPages {
		lastErr = ctx.Err()
	}
	if lastErr != nil {
		log.Warn().
			Err(lastErr).
			Int("fetched_pages", fetchedPages).
			Int("total_pages", totalPages).
			Msg("Some pages failed - returning partial results")
		return employees, &PartialError{
			Fetched: fetchedPages,
			Total:   totalPages,
			Failed:  failed,
			Err:     lastErr,
		}
	}

	log.Info().
		Str("term", term).
		Int("pages", fetchedPages).
		Int("records", len(employees)).
		Dur("duration", time.Since(start)).
		Msg("Fetch complete")

	return employees, nil
}

// worker processes pages from the queue
func (bf *BatchFetcher) worker(ctx context.Context, term string, pageQueue <-chan int, results chan<- PageResult, wg *sync.WaitGroup, workerID int) {
	defer wg.Done()
	pagesProcessed := 0

	for pageNum := range pageQueue {
		select {
		case <-ctx.Done():
			log.Debug().
				Int("worker_id", workerID).
				Int("pages_processed", pagesProcessed).
				Msg("Worker stopping (context cancelled)")
			return
		default:
		}

		pageCtx, cancel := context.WithTimeout(ctx, bf.config.Timeout)
		page, err := bf.fetcher.FetchPage(pageCtx, term, pageNum, bf.config.PageSize)
		cancel()

		if err != nil {
			log.Warn().
				Err(err).
				Int("worker_id", workerID).
				Int("page", pageNum).
				Msg("Page fetch failed")
		}

		results <- PageResult{PageNumber: pageNum, Data: page.Data, Error: err}
		pagesProcessed++
	}

	if pagesProcessed > 0 {
		log.Debug().
			Int("worker_id", workerID).
			Int("pages_processed", pagesProcessed).
			Msg("Worker completed")
	}
}
