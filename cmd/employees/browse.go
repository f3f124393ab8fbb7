package main

import (
	"github.com/Sternrassler/employee-client/internal/tui"
	"github.com/spf13/cobra"
)

func newBrowseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse employees in an interactive terminal view",
		Long: `Opens a scrollable list that loads further pages as you reach the end.
Set logging.file to keep logs, the terminal is used by the view.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return tui.Run(cmd.Context(), a.repo, a.cfg.Paging.PageSize)
		},
	}
}
