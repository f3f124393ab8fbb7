package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Sternrassler/employee-client/pkg/export"
	"github.com/Sternrassler/employee-client/pkg/pagination"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		formatName string
		output     string
		term       string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all employees as JSON, YAML, CSV or PDF",
		Long: `Fetches every page of the listing in parallel and writes the records to a file
or stdout. Without --format the format is taken from the --output extension.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := exportFormat(formatName, output)
			if err != nil {
				return err
			}

			fetcher := pagination.NewBatchFetcher(a.repo, pagination.Config{
				MaxConcurrency: a.cfg.Paging.ExportWorkers,
				Timeout:        a.cfg.API.Timeout,
			})

			employees, err := fetcher.FetchAll(cmd.Context(), term)
			var partial *pagination.PartialError
			switch {
			case errors.As(err, &partial):
				log.Warn().Ints("failed_pages", partial.Failed).Msg("Export is incomplete")
			case err != nil:
				return userError(err)
			}

			toFile := output != "" && output != "-"
			w := cmd.OutOrStdout()
			if toFile {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create %s: %w", output, err)
				}
				defer f.Close()
				w = f
			}

			if err := export.Write(w, format, exportTitle(term), employees); err != nil {
				return fmt.Errorf("write export: %w", err)
			}

			if toFile {
				fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d employees to %s\n", len(employees), filepath.Clean(output))
			}
			if partial != nil {
				return fmt.Errorf("export incomplete: pages %v could not be fetched", partial.Failed)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&formatName, "format", "f", "", "json, yaml, csv or pdf (default: from --output, else json)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&term, "term", "", "only export records matching this search term")
	return cmd
}

func exportFormat(name, output string) (export.Format, error) {
	if name != "" {
		return export.ParseFormat(name)
	}
	if output != "" && output != "-" {
		return export.FormatFromPath(output)
	}
	return export.FormatJSON, nil
}

func exportTitle(term string) string {
	if term == "" {
		return "Employees"
	}
	return fmt.Sprintf("Employees matching %q", term)
}
