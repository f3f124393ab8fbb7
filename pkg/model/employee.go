// Package model defines the employee record and the paginated result shape
// exchanged with the remote employee API.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidEmployee is returned by Validate for records the API would reject.
var ErrInvalidEmployee = errors.New("invalid employee")

// Employee is the managed record. ID is assigned by the remote store and is
// empty until the record has been persisted.
type Employee struct {
	ID         string    `json:"id,omitempty" yaml:"id,omitempty"`
	FullName   string    `json:"fullName" yaml:"fullName"`
	HireDate   time.Time `json:"hireDate" yaml:"hireDate"`
	Position   string    `json:"position" yaml:"position"`
	Salary     float64   `json:"salary" yaml:"salary"`
	Department string    `json:"department" yaml:"department"`
}

// Validate checks the fields the API requires.
func (e Employee) Validate() error {
	if strings.TrimSpace(e.FullName) == "" {
		return fmt.Errorf("%w: full name is required", ErrInvalidEmployee)
	}
	if e.Salary < 0 {
		return fmt.Errorf("%w: salary must be >= 0 (got %.2f)", ErrInvalidEmployee, e.Salary)
	}
	return nil
}

// Page is one slice of a paginated listing.
type Page struct {
	Page         int        `json:"page"`
	PageSize     int        `json:"pageSize"`
	TotalRecords int        `json:"totalRecords"`
	Data         []Employee `json:"data"`
}

// TotalPages returns the number of pages the listing spans.
func (p Page) TotalPages() int {
	return TotalPages(p.TotalRecords, p.PageSize)
}

// TotalPages returns ceil(totalRecords / pageSize). A non-positive page size
// yields 0.
func TotalPages(totalRecords, pageSize int) int {
	if pageSize <= 0 || totalRecords <= 0 {
		return 0
	}
	pages := totalRecords / pageSize
	if totalRecords%pageSize != 0 {
		pages++
	}
	return pages
}
