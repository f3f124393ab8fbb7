package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/Sternrassler/employee-client/pkg/model"
	"github.com/Sternrassler/employee-client/pkg/orchestrator"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

const dateLayout = "2006-01-02"

// printEmployees renders employees as a table. An empty list prints a single
// line instead of an empty table.
func printEmployees(w io.Writer, employees []model.Employee) {
	if len(employees) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No employees found."))
		return
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		Headers("ID", "NAME", "POSITION", "DEPARTMENT", "HIRED", "SALARY").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 5 {
				return cellStyle.Align(lipgloss.Right)
			}
			return cellStyle
		})

	for _, e := range employees {
		t.Row(
			e.ID,
			e.FullName,
			e.Position,
			e.Department,
			formatDate(e),
			strconv.FormatFloat(e.Salary, 'f', 2, 64),
		)
	}

	fmt.Fprintln(w, t.Render())
}

// printSummary prints where the listing stands, e.g.
// "Showing 20 of 25 employees (page 2/3)".
func printSummary(w io.Writer, s orchestrator.State) {
	if s.IsSearching {
		fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("%d result(s) for %q", len(s.View), s.SearchTerm)))
		return
	}

	total := strconv.Itoa(s.TotalRecords)
	if s.Approximate {
		total = "~" + total
	}
	fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("Showing %d of %s employees (page %d/%d)",
		len(s.View), total, s.CurrentPage, s.TotalPages)))
}

func formatDate(e model.Employee) string {
	if e.HireDate.IsZero() {
		return ""
	}
	return e.HireDate.Format(dateLayout)
}
