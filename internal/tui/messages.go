package tui

import (
	"github.com/Sternrassler/employee-client/pkg/client"
)

// StateChangedMsg signals that the orchestrator state changed. The model
// always re-reads the latest snapshot, so late messages are harmless.
type StateChangedMsg struct{}

// ErrMsg represents a failed operation. The orchestrator has already
// returned to a stable state.
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface. Normalized API errors show only
// their user-facing message.
func (e ErrMsg) Error() string {
	text := e.Err.Error()
	if apiErr, ok := client.AsAPIError(e.Err); ok {
		text = apiErr.Message
	}
	if e.Context != "" {
		return e.Context + ": " + text
	}
	return text
}

// LoadMoreDoneMsg signals that the scroll continuation was completed.
type LoadMoreDoneMsg struct {
	Err error
}

// DeletedMsg signals the outcome of a confirmed delete.
type DeletedMsg struct {
	ID      string
	Deleted bool
	Err     error
}
