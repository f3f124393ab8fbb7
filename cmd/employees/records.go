package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Sternrassler/employee-client/pkg/model"
	"github.com/Sternrassler/employee-client/pkg/orchestrator"
	"github.com/spf13/cobra"
)

func newListCmd(a *app) *cobra.Command {
	var pages int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List employees page by page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if pages < 1 {
				return fmt.Errorf("--pages must be >= 1 (got %d)", pages)
			}

			ctx := cmd.Context()
			o := a.orchestrator()
			if err := o.LoadPage(ctx, nil); err != nil {
				return userError(err)
			}
			for i := 1; i < pages && o.State().HasMore(); i++ {
				if err := o.LoadMore(ctx, nil); err != nil {
					return userError(err)
				}
			}

			s := o.State()
			printEmployees(cmd.OutOrStdout(), s.View)
			printSummary(cmd.OutOrStdout(), s)
			return nil
		},
	}

	cmd.Flags().IntVarP(&pages, "pages", "p", 1, "number of pages to load")
	return cmd
}

func newSearchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "search TERM",
		Short: "Search employees by name, position or department",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o := a.orchestrator()
			if err := o.Search(cmd.Context(), strings.Join(args, " ")); err != nil {
				return userError(err)
			}

			s := o.State()
			printEmployees(cmd.OutOrStdout(), s.View)
			printSummary(cmd.OutOrStdout(), s)
			return nil
		},
	}
}

func newGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show a single employee",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.orchestrator().Get(cmd.Context(), args[0])
			if err != nil {
				return userError(err)
			}
			printEmployees(cmd.OutOrStdout(), []model.Employee{e})
			return nil
		},
	}
}

// employeeFlags are the editable fields shared by create and update.
type employeeFlags struct {
	name       string
	position   string
	department string
	salary     float64
	hired      string
}

func (f *employeeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "full name")
	cmd.Flags().StringVar(&f.position, "position", "", "position")
	cmd.Flags().StringVar(&f.department, "department", "", "department")
	cmd.Flags().Float64Var(&f.salary, "salary", 0, "yearly salary")
	cmd.Flags().StringVar(&f.hired, "hired", "", "hire date (YYYY-MM-DD)")
}

// apply copies the flags that were set on cmd into e.
func (f *employeeFlags) apply(cmd *cobra.Command, e *model.Employee) error {
	changed := cmd.Flags().Changed
	if changed("name") {
		e.FullName = f.name
	}
	if changed("position") {
		e.Position = f.position
	}
	if changed("department") {
		e.Department = f.department
	}
	if changed("salary") {
		e.Salary = f.salary
	}
	if changed("hired") {
		hired, err := time.Parse(dateLayout, f.hired)
		if err != nil {
			return fmt.Errorf("--hired must be YYYY-MM-DD (got %q)", f.hired)
		}
		e.HireDate = hired
	}
	return nil
}

func newCreateCmd(a *app) *cobra.Command {
	var fields employeeFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an employee",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e := model.Employee{HireDate: time.Now().UTC().Truncate(24 * time.Hour)}
			if err := fields.apply(cmd, &e); err != nil {
				return err
			}
			if err := e.Validate(); err != nil {
				return err
			}

			if err := a.orchestrator().Create(cmd.Context(), e); err != nil {
				return userError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", e.FullName)
			return nil
		},
	}

	fields.register(cmd)
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newUpdateCmd(a *app) *cobra.Command {
	var fields employeeFlags

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Change fields of an existing employee",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			o := a.orchestrator()

			e, err := o.Get(ctx, args[0])
			if err != nil {
				return userError(err)
			}
			if err := fields.apply(cmd, &e); err != nil {
				return err
			}
			if err := e.Validate(); err != nil {
				return err
			}

			if err := o.Update(ctx, e); err != nil {
				return userError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", e.ID)
			return nil
		},
	}

	fields.register(cmd)
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete an employee after confirmation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var confirm orchestrator.Confirmer
			if !yes {
				confirm = promptConfirmer(cmd.InOrStdin(), cmd.OutOrStdout())
			}

			deleted, err := a.orchestrator().Delete(cmd.Context(), args[0], confirm)
			if err != nil {
				return userError(err)
			}
			if !deleted {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

// promptConfirmer asks on out and accepts "y" or "yes" from in. Anything
// else, including end of input, cancels.
func promptConfirmer(in io.Reader, out io.Writer) orchestrator.Confirmer {
	return orchestrator.ConfirmFunc(func(ctx context.Context, id string) bool {
		fmt.Fprintf(out, "Delete employee %s? [y/N] ", id)
		line, _ := bufio.NewReader(in).ReadString('\n')
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		default:
			return false
		}
	})
}
