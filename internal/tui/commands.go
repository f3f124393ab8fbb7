package tui

import (
	"context"
	"time"

	"github.com/Sternrassler/employee-client/pkg/orchestrator"
	tea "github.com/charmbracelet/bubbletea"
)

// opTimeout bounds one orchestrator call, retries included.
const opTimeout = 60 * time.Second

// Command factories for async orchestrator operations

func resultMsg(err error, action string) tea.Msg {
	if err != nil {
		return ErrMsg{Err: err, Context: action}
	}
	return StateChangedMsg{}
}

// LoadFirstPageCmd loads page 1 of the listing.
func LoadFirstPageCmd(o *orchestrator.Orchestrator) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		return resultMsg(o.LoadPage(ctx, nil), "loading employees")
	}
}

// LoadMoreCmd appends the next page. LoadMoreDoneMsg releases the model's
// scroll flag once the orchestrator has settled the request.
func LoadMoreCmd(o *orchestrator.Orchestrator) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		return LoadMoreDoneMsg{Err: o.LoadMore(ctx, nil)}
	}
}

// SearchCmd runs a search; a blank term returns to the listing.
func SearchCmd(o *orchestrator.Orchestrator, term string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		return resultMsg(o.Search(ctx, term), "searching")
	}
}

// ReloadCmd discards the view and reloads from page 1.
func ReloadCmd(o *orchestrator.Orchestrator) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		return resultMsg(o.InvalidateAndReload(ctx), "reloading")
	}
}

// DeleteCmd deletes a record the user already confirmed in the UI.
func DeleteCmd(o *orchestrator.Orchestrator, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		deleted, err := o.Delete(ctx, id, nil)
		return DeletedMsg{ID: id, Deleted: deleted, Err: err}
	}
}
