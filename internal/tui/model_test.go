package tui

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/Sternrassler/employee-client/pkg/client"
	"github.com/Sternrassler/employee-client/pkg/model"
	"github.com/Sternrassler/employee-client/pkg/orchestrator"
	"github.com/Sternrassler/employee-client/pkg/repository"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
)

// failingRepo fails every listing fetch.
type failingRepo struct {
	*repository.Memory
}

func (r failingRepo) FetchPage(ctx context.Context, term string, page, size int) (model.Page, error) {
	return model.Page{}, client.Normalize(client.Failure{Status: http.StatusInternalServerError})
}

func newTestModel(t *testing.T, repo repository.Repository) Model {
	t.Helper()
	nop := zerolog.Nop()
	o := orchestrator.New(repo, orchestrator.Options{PageSize: 10, Logger: &nop})

	m := New(o)
	m = apply(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	return run(t, m, m.Init())
}

func seededRepo(n int) *repository.Memory {
	seed := make([]model.Employee, 0, n)
	for i := 1; i <= n; i++ {
		seed = append(seed, model.Employee{
			ID:         fmt.Sprintf("%03d", i),
			FullName:   fmt.Sprintf("Employee %02d", i),
			Position:   "Engineer",
			Department: "R&D",
		})
	}
	return repository.NewMemory(seed...)
}

func apply(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

// run executes cmd, if any, and feeds its message back into the model.
func run(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		return m
	}
	return apply(t, m, cmd())
}

// press sends a key and runs the command it returns.
func press(t *testing.T, m Model, k tea.KeyMsg) Model {
	t.Helper()
	next, cmd := m.Update(k)
	return run(t, next.(Model), cmd)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel_InitLoadsFirstPage(t *testing.T) {
	m := newTestModel(t, seededRepo(25))

	if len(m.state.View) != 10 {
		t.Fatalf("view = %d rows, want 10", len(m.state.View))
	}
	if !strings.Contains(m.View(), "Employee 01") {
		t.Error("first row should be rendered")
	}
	if !strings.Contains(m.View(), "page 1/3") {
		t.Errorf("summary should show the page, got:\n%s", m.View())
	}
}

func TestModel_ScrollLoadsMore(t *testing.T) {
	m := newTestModel(t, seededRepo(25))

	for i := 0; i < 6; i++ {
		m = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	}
	if len(m.state.View) != 10 {
		t.Fatalf("no load should happen far from the end, got %d rows", len(m.state.View))
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	if len(m.state.View) != 20 {
		t.Fatalf("nearing the end should load page 2, got %d rows", len(m.state.View))
	}
	if m.loadingMore {
		t.Error("loadingMore should be released after the load")
	}

	m = press(t, m, runes("G"))
	m = press(t, m, runes("G"))
	if len(m.state.View) != 25 {
		t.Errorf("jumping to the end should load the last page, got %d rows", len(m.state.View))
	}
}

func TestModel_Search(t *testing.T) {
	m := newTestModel(t, seededRepo(25))

	m = press(t, m, runes("/"))
	if !m.typing {
		t.Fatal("/ should open the search input")
	}
	for _, r := range "Employee 2" {
		m = press(t, m, runes(string(r)))
	}
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if !m.state.IsSearching || len(m.state.View) != 6 {
		t.Fatalf("search state: searching=%v rows=%d", m.state.IsSearching, len(m.state.View))
	}
	if !strings.Contains(m.View(), "search: Employee 2") {
		t.Error("active search should be shown")
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEscape})
	if m.state.IsSearching || len(m.state.View) != 10 {
		t.Errorf("esc should return to the listing: searching=%v rows=%d", m.state.IsSearching, len(m.state.View))
	}
}

func TestModel_DeleteConfirmation(t *testing.T) {
	repo := seededRepo(3)
	m := newTestModel(t, repo)

	m = press(t, m, runes("d"))
	if m.confirm == nil || m.confirm.ID != "001" {
		t.Fatalf("d should ask to confirm the selected row, got %+v", m.confirm)
	}
	if !strings.Contains(m.View(), "[y/n]") {
		t.Error("confirmation prompt should be rendered")
	}

	m = press(t, m, runes("n"))
	if m.confirm != nil || repo.Len() != 3 {
		t.Fatalf("n must cancel without deleting (len %d)", repo.Len())
	}

	m = press(t, m, runes("d"))
	m = press(t, m, runes("y"))
	if repo.Len() != 2 {
		t.Errorf("y should delete, store has %d records", repo.Len())
	}
	for _, e := range m.state.View {
		if e.ID == "001" {
			t.Error("deleted record should be removed from the view")
		}
	}
	if !strings.Contains(m.View(), "~3") {
		t.Errorf("totals should be marked approximate after a local removal:\n%s", m.View())
	}

	m = press(t, m, runes("r"))
	if m.state.Approximate || m.state.TotalRecords != 2 {
		t.Errorf("reload should refresh the totals, got %d (approximate=%v)", m.state.TotalRecords, m.state.Approximate)
	}
}

func TestModel_LoadErrorShown(t *testing.T) {
	m := newTestModel(t, failingRepo{Memory: seededRepo(3)})

	if m.err == nil {
		t.Fatal("load error should be kept for display")
	}
	if !strings.Contains(m.View(), client.MessageUnexpected) {
		t.Errorf("the normalized message should be shown, got:\n%s", m.View())
	}
	if m.state.IsLoading {
		t.Error("loading indicator should be off after a failure")
	}
}

func TestModel_Quit(t *testing.T) {
	m := newTestModel(t, seededRepo(1))

	_, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}
