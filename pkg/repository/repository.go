// Package repository defines the employee repository capability and its
// implementations: the resilient HTTP facade and an in-memory store.
package repository

import (
	"context"
	"net/http"

	"github.com/Sternrassler/employee-client/pkg/client"
	"github.com/Sternrassler/employee-client/pkg/model"
)

// Repository is everything the orchestrator and the CLI need from the
// remote store. Errors returned by implementations are *client.APIError.
type Repository interface {
	// FetchPage returns one page of the listing filtered by term. An empty
	// term means the unfiltered listing.
	FetchPage(ctx context.Context, term string, page, pageSize int) (model.Page, error)
	FetchByID(ctx context.Context, id string) (model.Employee, error)
	FetchAll(ctx context.Context) ([]model.Employee, error)
	Create(ctx context.Context, e model.Employee) error
	Update(ctx context.Context, e model.Employee) error
	Delete(ctx context.Context, id string) error
}

// IsNotFound reports whether err is a 404 from the store.
func IsNotFound(err error) bool {
	apiErr, ok := client.AsAPIError(err)
	return ok && apiErr.Status == http.StatusNotFound
}

// errMissingID is returned without a round trip when an operation needs an
// ID that the caller did not supply.
func errMissingID(url string) *client.APIError {
	return client.Normalize(client.Failure{
		Status:  http.StatusBadRequest,
		URL:     url,
		Message: "employee id is required",
	})
}
