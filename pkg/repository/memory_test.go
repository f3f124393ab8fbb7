package repository

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/Sternrassler/employee-client/pkg/client"
	"github.com/Sternrassler/employee-client/pkg/model"
)

func seedMemory(n int) *Memory {
	seed := make([]model.Employee, 0, n)
	for i := 1; i <= n; i++ {
		seed = append(seed, model.Employee{
			FullName:   fmt.Sprintf("Employee %02d", i),
			Position:   "Engineer",
			Department: "R&D",
			Salary:     float64(i * 100),
		})
	}
	return NewMemory(seed...)
}

func TestMemory_FetchPage(t *testing.T) {
	repo := seedMemory(25)
	ctx := context.Background()

	tests := []struct {
		page      int
		wantLen   int
		wantFirst string
	}{
		{page: 1, wantLen: 10, wantFirst: "Employee 01"},
		{page: 2, wantLen: 10, wantFirst: "Employee 11"},
		{page: 3, wantLen: 5, wantFirst: "Employee 21"},
		{page: 4, wantLen: 0},
		{page: math.MaxInt/4 + 2, wantLen: 0},
		{page: math.MaxInt, wantLen: 0},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("page_%d", tt.page), func(t *testing.T) {
			page, err := repo.FetchPage(ctx, "", tt.page, 10)
			if err != nil {
				t.Fatalf("FetchPage failed: %v", err)
			}
			if page.TotalRecords != 25 {
				t.Errorf("TotalRecords = %d, want 25", page.TotalRecords)
			}
			if len(page.Data) != tt.wantLen {
				t.Fatalf("len(Data) = %d, want %d", len(page.Data), tt.wantLen)
			}
			if tt.wantLen > 0 && page.Data[0].FullName != tt.wantFirst {
				t.Errorf("first = %q, want %q", page.Data[0].FullName, tt.wantFirst)
			}
		})
	}
}

func TestMemory_FetchPage_Search(t *testing.T) {
	repo := NewMemory(
		model.Employee{FullName: "Ada Lovelace", Position: "Engineer", Department: "R&D"},
		model.Employee{FullName: "Grace Hopper", Position: "Admiral", Department: "Navy"},
		model.Employee{FullName: "Alan Turing", Position: "Engineer", Department: "Crypto"},
	)

	page, err := repo.FetchPage(context.Background(), "  ENGINEER ", 1, 10)
	if err != nil {
		t.Fatalf("FetchPage failed: %v", err)
	}
	if page.TotalRecords != 2 {
		t.Errorf("TotalRecords = %d, want 2", page.TotalRecords)
	}
	if page.Data[0].FullName != "Ada Lovelace" || page.Data[1].FullName != "Alan Turing" {
		t.Errorf("unexpected order: %+v", page.Data)
	}
}

func TestMemory_FetchPage_InvalidArguments(t *testing.T) {
	repo := NewMemory()

	_, err := repo.FetchPage(context.Background(), "", 0, 10)
	apiErr, ok := client.AsAPIError(err)
	if !ok || apiErr.Status != 400 {
		t.Errorf("Expected 400 APIError, got %v", err)
	}
}

func TestMemory_CRUD(t *testing.T) {
	repo := NewMemory()
	ctx := context.Background()

	if err := repo.Create(ctx, model.Employee{ID: "ignored", FullName: "Ada", Salary: 10}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	all, _ := repo.FetchAll(ctx)
	if len(all) != 1 {
		t.Fatalf("Expected 1 employee, got %d", len(all))
	}
	id := all[0].ID
	if id == "" || id == "ignored" {
		t.Fatalf("store must assign the id, got %q", id)
	}

	updated := all[0]
	updated.Position = "Lead"
	if err := repo.Update(ctx, updated); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := repo.FetchByID(ctx, id)
	if err != nil {
		t.Fatalf("FetchByID failed: %v", err)
	}
	if got.Position != "Lead" {
		t.Errorf("Position = %q, want Lead", got.Position)
	}

	if err := repo.Delete(ctx, id); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := repo.FetchByID(ctx, id); !IsNotFound(err) {
		t.Errorf("Expected not found after delete, got %v", err)
	}
	if err := repo.Delete(ctx, id); !IsNotFound(err) {
		t.Errorf("Expected not found on second delete, got %v", err)
	}
}

func TestMemory_Validation(t *testing.T) {
	repo := NewMemory()
	ctx := context.Background()

	err := repo.Create(ctx, model.Employee{FullName: "", Salary: 1})
	apiErr, ok := client.AsAPIError(err)
	if !ok || apiErr.Class != client.ErrorClassBadRequest {
		t.Errorf("Expected bad request, got %v", err)
	}
	if repo.Len() != 0 {
		t.Error("invalid employee must not be stored")
	}

	if err := repo.Update(ctx, model.Employee{ID: "nope", FullName: "Ada"}); !IsNotFound(err) {
		t.Errorf("Expected not found for unknown id, got %v", err)
	}
}

var _ Repository = (*Memory)(nil)
var _ Repository = (*API)(nil)
