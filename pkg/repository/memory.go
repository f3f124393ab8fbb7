package repository

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/Sternrassler/employee-client/pkg/client"
	"github.com/Sternrassler/employee-client/pkg/model"
	"github.com/google/uuid"
)

// Memory is a Repository kept in process memory. It assigns IDs the way the
// remote store does and backs the fake API server.
type Memory struct {
	mu        sync.RWMutex
	employees map[string]model.Employee
	newID     func() string
}

// NewMemory creates an empty in-memory repository, optionally seeded.
func NewMemory(seed ...model.Employee) *Memory {
	m := &Memory{
		employees: make(map[string]model.Employee),
		newID:     uuid.NewString,
	}
	for _, e := range seed {
		if e.ID == "" {
			e.ID = m.newID()
		}
		m.employees[e.ID] = e
	}
	return m
}

// FetchPage implements Repository. Matching is a case-insensitive substring
// test on name, position and department; results are ordered by name.
func (m *Memory) FetchPage(ctx context.Context, term string, page, pageSize int) (model.Page, error) {
	if page < 1 || pageSize < 1 {
		return model.Page{}, client.Normalize(client.Failure{
			Status:  http.StatusBadRequest,
			URL:     pathSearch,
			Message: "page and pageSize must be positive",
		})
	}

	found := m.filter(strings.ToLower(strings.TrimSpace(term)))

	// Pages past the end are empty; checking before multiplying keeps huge
	// page numbers from overflowing the offset.
	start := len(found)
	if page-1 <= len(found)/pageSize {
		start = min((page-1)*pageSize, len(found))
	}
	end := start + pageSize
	if end > len(found) {
		end = len(found)
	}

	return model.Page{
		Page:         page,
		PageSize:     pageSize,
		TotalRecords: len(found),
		Data:         append([]model.Employee{}, found[start:end]...),
	}, nil
}

// FetchByID implements Repository.
func (m *Memory) FetchByID(ctx context.Context, id string) (model.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.employees[id]
	if !ok {
		return model.Employee{}, notFound(id)
	}
	return e, nil
}

// FetchAll implements Repository.
func (m *Memory) FetchAll(ctx context.Context) ([]model.Employee, error) {
	return m.filter(""), nil
}

// Create implements Repository.
func (m *Memory) Create(ctx context.Context, e model.Employee) error {
	_, err := m.Insert(e)
	return err
}

// Insert stores e under a new ID and returns the stored record.
func (m *Memory) Insert(e model.Employee) (model.Employee, error) {
	if err := e.Validate(); err != nil {
		return model.Employee{}, client.Normalize(client.Failure{
			Status:  http.StatusBadRequest,
			URL:     pathEmployees,
			Message: err.Error(),
		})
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	e.ID = m.newID()
	m.employees[e.ID] = e
	return e, nil
}

// Update implements Repository.
func (m *Memory) Update(ctx context.Context, e model.Employee) error {
	if e.ID == "" {
		return errMissingID(pathEmployees)
	}
	if err := e.Validate(); err != nil {
		return client.Normalize(client.Failure{
			Status:  http.StatusBadRequest,
			URL:     employeePath(e.ID),
			Message: err.Error(),
		})
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.employees[e.ID]; !ok {
		return notFound(e.ID)
	}
	m.employees[e.ID] = e
	return nil
}

// Delete implements Repository.
func (m *Memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.employees[id]; !ok {
		return notFound(id)
	}
	delete(m.employees, id)
	return nil
}

// Len returns the number of stored records.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.employees)
}

func (m *Memory) filter(term string) []model.Employee {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]model.Employee, 0, len(m.employees))
	for _, e := range m.employees {
		if term == "" || matches(e, term) {
			out = append(out, e)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].FullName != out[j].FullName {
			return out[i].FullName < out[j].FullName
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func matches(e model.Employee, term string) bool {
	return strings.Contains(strings.ToLower(e.FullName), term) ||
		strings.Contains(strings.ToLower(e.Position), term) ||
		strings.Contains(strings.ToLower(e.Department), term)
}

func notFound(id string) *client.APIError {
	return client.Normalize(client.Failure{
		Status:  http.StatusNotFound,
		URL:     employeePath(id),
		Body:    []byte(`{"message":"Employee not found"}`),
		Message: "404 Not Found",
	})
}
