// Package tui is a terminal browser for employee records. It renders the
// orchestrator's view, loads more rows when the cursor nears the end of the
// list, and offers search, reload and delete with confirmation.
package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Sternrassler/employee-client/pkg/model"
	"github.com/Sternrassler/employee-client/pkg/orchestrator"
	"github.com/Sternrassler/employee-client/pkg/repository"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// loadMoreThreshold is how close to the last row the cursor must be to
// trigger the next page.
const loadMoreThreshold = 3

// chrome is the number of lines around the table.
const chrome = 7

var columns = []struct {
	title string
	width int
	right bool
}{
	{"Name", 28, false},
	{"Position", 22, false},
	{"Department", 14, false},
	{"Hired", 10, false},
	{"Salary", 11, true},
}

// Model is the bubbletea model of the browser.
type Model struct {
	orch  *orchestrator.Orchestrator
	keys  KeyMap
	input textinput.Model

	state  orchestrator.State
	cursor int
	offset int
	width  int
	height int

	typing      bool
	loadingMore bool
	confirm     *model.Employee
	status      string
	err         error
}

// New creates the browser model over o.
func New(o *orchestrator.Orchestrator) Model {
	ti := textinput.New()
	ti.Placeholder = "name, position or department"
	ti.Prompt = "/ "
	ti.CharLimit = 80
	ti.Width = 40
	ti.PlaceholderStyle = DimStyle

	return Model{
		orch:   o,
		keys:   DefaultKeyMap(),
		input:  ti,
		state:  o.State(),
		height: 24,
	}
}

// Run starts the browser on the terminal and blocks until the user quits or
// ctx is done.
func Run(ctx context.Context, repo repository.Repository, pageSize int) error {
	var p *tea.Program
	o := orchestrator.New(repo, orchestrator.Options{
		PageSize: pageSize,
		OnChange: func(orchestrator.State) {
			if p != nil {
				p.Send(StateChangedMsg{})
			}
		},
	})

	p = tea.NewProgram(New(o), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// Init loads the first page.
func (m Model) Init() tea.Cmd {
	return LoadFirstPageCmd(m.orch)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.clamp()
		return m, nil

	case StateChangedMsg:
		m.refresh()
		return m, nil

	case ErrMsg:
		m.refresh()
		m.err = msg
		return m, nil

	case LoadMoreDoneMsg:
		m.loadingMore = false
		m.refresh()
		if msg.Err != nil {
			m.err = ErrMsg{Err: msg.Err, Context: "loading more"}
		}
		return m, nil

	case DeletedMsg:
		m.refresh()
		switch {
		case msg.Err != nil:
			m.err = ErrMsg{Err: msg.Err, Context: "deleting"}
		case msg.Deleted:
			m.status = "Deleted " + msg.ID
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.confirm != nil {
		switch {
		case key.Matches(msg, m.keys.Confirm):
			id := m.confirm.ID
			m.confirm = nil
			m.status = "Deleting " + id + "..."
			return m, DeleteCmd(m.orch, id)
		case key.Matches(msg, m.keys.Deny):
			m.confirm = nil
			m.status = "Delete cancelled"
		}
		return m, nil
	}

	if m.typing {
		switch {
		case key.Matches(msg, m.keys.Submit):
			m.typing = false
			m.input.Blur()
			m.cursor, m.offset = 0, 0
			m.err = nil
			return m, SearchCmd(m.orch, m.input.Value())
		case key.Matches(msg, m.keys.Escape):
			m.typing = false
			m.input.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		m.move(-1)
	case key.Matches(msg, m.keys.Down):
		m.move(1)
	case key.Matches(msg, m.keys.PageUp):
		m.move(-m.visibleRows())
	case key.Matches(msg, m.keys.PageDown):
		m.move(m.visibleRows())
	case key.Matches(msg, m.keys.Home):
		m.move(-len(m.state.View))
	case key.Matches(msg, m.keys.End):
		m.move(len(m.state.View))

	case key.Matches(msg, m.keys.Search):
		m.typing = true
		m.input.SetValue(m.state.SearchTerm)
		m.input.CursorEnd()
		m.input.Focus()
		return m, nil

	case key.Matches(msg, m.keys.Escape):
		if m.state.IsSearching {
			m.input.SetValue("")
			m.cursor, m.offset = 0, 0
			return m, SearchCmd(m.orch, "")
		}
		m.err = nil
		m.status = ""
		return m, nil

	case key.Matches(msg, m.keys.Delete):
		if e, ok := m.selected(); ok {
			m.confirm = &e
		}
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		m.cursor, m.offset = 0, 0
		m.err = nil
		m.status = ""
		return m, ReloadCmd(m.orch)

	default:
		return m, nil
	}

	return m, m.maybeLoadMore()
}

// maybeLoadMore requests the next page when the cursor is near the end.
func (m *Model) maybeLoadMore() tea.Cmd {
	if m.loadingMore || !m.state.HasMore() {
		return nil
	}
	if m.cursor < len(m.state.View)-loadMoreThreshold {
		return nil
	}
	m.loadingMore = true
	return LoadMoreCmd(m.orch)
}

func (m *Model) refresh() {
	m.state = m.orch.State()
	m.clamp()
}

func (m *Model) move(delta int) {
	m.cursor += delta
	m.clamp()
}

func (m *Model) clamp() {
	n := len(m.state.View)
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}

	rows := m.visibleRows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

func (m Model) visibleRows() int {
	rows := m.height - chrome
	if rows < 1 {
		rows = 1
	}
	return rows
}

func (m Model) selected() (model.Employee, bool) {
	if m.cursor < 0 || m.cursor >= len(m.state.View) {
		return model.Employee{}, false
	}
	return m.state.View[m.cursor], true
}

// View renders the browser.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("Employees"))
	b.WriteString("  ")
	b.WriteString(m.summary())
	b.WriteString("\n")

	if m.typing {
		b.WriteString(m.input.View())
	} else if m.state.IsSearching {
		b.WriteString(AccentStyle.Render("search: " + m.state.SearchTerm))
	}
	b.WriteString("\n")

	b.WriteString(m.renderTable())

	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(DimStyle.Render(m.keys.helpLine()))

	return b.String()
}

func (m Model) summary() string {
	s := m.state
	switch {
	case s.IsLoading:
		return WarnStyle.Render("Loading...")
	case s.IsSearching:
		return DimStyle.Render(fmt.Sprintf("%d results", len(s.View)))
	}

	total := strconv.Itoa(s.TotalRecords)
	if s.Approximate {
		total = "~" + total
	}
	text := fmt.Sprintf("%d of %s · page %d/%d", len(s.View), total, s.CurrentPage, s.TotalPages)
	if m.loadingMore {
		text += " · loading more..."
	}
	return DimStyle.Render(text)
}

func (m Model) renderTable() string {
	var b strings.Builder

	header := make([]string, 0, len(columns))
	for _, col := range columns {
		header = append(header, cell(col.title, col.width, col.right))
	}
	b.WriteString(HeaderStyle.Render(strings.Join(header, " ")))
	b.WriteString("\n")

	if len(m.state.View) == 0 && !m.state.IsLoading {
		b.WriteString(DimStyle.Render("No employees"))
		b.WriteString("\n")
		return b.String()
	}

	end := m.offset + m.visibleRows()
	if end > len(m.state.View) {
		end = len(m.state.View)
	}
	for i := m.offset; i < end; i++ {
		line := m.row(m.state.View[i])
		if i == m.cursor {
			line = SelectedStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) row(e model.Employee) string {
	hired := ""
	if !e.HireDate.IsZero() {
		hired = e.HireDate.Format("2006-01-02")
	}
	values := []string{
		e.FullName,
		e.Position,
		e.Department,
		hired,
		strconv.FormatFloat(e.Salary, 'f', 2, 64),
	}

	cells := make([]string, 0, len(columns))
	for i, col := range columns {
		cells = append(cells, cell(values[i], col.width, col.right))
	}
	return strings.Join(cells, " ")
}

func (m Model) statusLine() string {
	switch {
	case m.confirm != nil:
		return WarnStyle.Render(fmt.Sprintf("Delete %s (%s)? [y/n]", m.confirm.FullName, m.confirm.ID))
	case m.err != nil:
		return ErrorStyle.Render(m.err.Error())
	case m.status != "":
		return SuccessStyle.Render(m.status)
	default:
		return ""
	}
}

func cell(s string, width int, right bool) string {
	style := lipgloss.NewStyle().Width(width).MaxWidth(width)
	if right {
		style = style.Align(lipgloss.Right)
	}
	return style.Render(s)
}
