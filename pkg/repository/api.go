package repository

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Sternrassler/employee-client/pkg/client"
	"github.com/Sternrassler/employee-client/pkg/model"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// API paths of the employee service.
const (
	pathEmployees = "/employees"
	pathSearch    = "/employees/search"
)

// API is the Repository backed by the remote employee API. Reads go through
// the client's retry policy; mutations are sent once because they are not
// guaranteed to be idempotent.
type API struct {
	client *client.Client
	logger zerolog.Logger
}

// NewAPI creates the HTTP-backed repository.
func NewAPI(c *client.Client) *API {
	return &API{
		client: c,
		logger: log.With().Str("component", "employee-repository").Logger(),
	}
}

// FetchPage implements Repository.
func (a *API) FetchPage(ctx context.Context, term string, page, pageSize int) (model.Page, error) {
	query := url.Values{
		"term":     {term},
		"page":     {strconv.Itoa(page)},
		"pageSize": {strconv.Itoa(pageSize)},
	}

	result, err := client.Retry(ctx, a.client.Retrier(), "fetch_page", func(ctx context.Context) (model.Page, error) {
		var p model.Page
		err := a.client.GetJSON(ctx, pathSearch, query, &p)
		return p, err
	})
	if err != nil {
		return model.Page{}, err
	}

	if result.Data == nil {
		result.Data = []model.Employee{}
	}

	a.logger.Debug().
		Str("term", term).
		Int("page", page).
		Int("page_size", pageSize).
		Int("records", len(result.Data)).
		Int("total_records", result.TotalRecords).
		Msg("Fetched page")

	return result, nil
}

// FetchByID implements Repository.
func (a *API) FetchByID(ctx context.Context, id string) (model.Employee, error) {
	if id == "" {
		return model.Employee{}, errMissingID(pathEmployees)
	}

	return client.Retry(ctx, a.client.Retrier(), "fetch_by_id", func(ctx context.Context) (model.Employee, error) {
		var e model.Employee
		err := a.client.GetJSON(ctx, employeePath(id), nil, &e)
		return e, err
	})
}

// FetchAll implements Repository.
func (a *API) FetchAll(ctx context.Context) ([]model.Employee, error) {
	employees, err := client.Retry(ctx, a.client.Retrier(), "fetch_all", func(ctx context.Context) ([]model.Employee, error) {
		var list []model.Employee
		err := a.client.GetJSON(ctx, pathEmployees, nil, &list)
		return list, err
	})
	if err != nil {
		return nil, err
	}
	if employees == nil {
		employees = []model.Employee{}
	}
	return employees, nil
}

// Create implements Repository. Any client-side ID is dropped; the store
// assigns one.
func (a *API) Create(ctx context.Context, e model.Employee) error {
	e.ID = ""
	if err := a.client.Send(ctx, http.MethodPost, pathEmployees, e); err != nil {
		return err
	}
	a.logger.Info().Str("full_name", e.FullName).Msg("Employee created")
	return nil
}

// Update implements Repository.
func (a *API) Update(ctx context.Context, e model.Employee) error {
	if e.ID == "" {
		return errMissingID(pathEmployees)
	}
	if err := a.client.Send(ctx, http.MethodPut, employeePath(e.ID), e); err != nil {
		return err
	}
	a.logger.Info().Str("id", e.ID).Msg("Employee updated")
	return nil
}

// Delete implements Repository.
func (a *API) Delete(ctx context.Context, id string) error {
	if id == "" {
		return errMissingID(pathEmployees)
	}
	if err := a.client.Send(ctx, http.MethodDelete, employeePath(id), nil); err != nil {
		return err
	}
	a.logger.Info().Str("id", id).Msg("Employee deleted")
	return nil
}

func employeePath(id string) string {
	return pathEmployees + "/" + url.PathEscape(id)
}
