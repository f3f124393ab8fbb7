// Package pagination fetches every page of an employee listing in parallel.
//
// The first page is fetched alone to learn the total record count; the
// remaining pages are distributed over a bounded worker pool. Results are
// returned in page order.
//
// Example usage:
//
//	fetcher := pagination.NewBatchFetcher(repo, pagination.DefaultConfig())
//	employees, err := fetcher.FetchAll(ctx, "engineer")
//
// The batch fetcher:
//   - Fetches page 1 to determine the total pages
//   - Spawns a worker pool (default 4 workers)
//   - Logs progress while collecting results
//   - Returns partial data together with an error when some pages fail
package pagination
