package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"

	"github.com/campusdesk/campusdesk/modules/accounting"
	accountingapi "github.com/campusdesk/campusdesk/modules/accounting/infrastructure/api"
	"github.com/campusdesk/campusdesk/modules/dcp"
	dcpapi "github.com/campusdesk/campusdesk/modules/dcp/infrastructure/api"
	"github.com/campusdesk/campusdesk/modules/personnel"
	personnelapi "github.com/campusdesk/campusdesk/modules/personnel/infrastructure/api"
	"github.com/campusdesk/campusdesk/pkg/apiclient"
	"github.com/campusdesk/campusdesk/pkg/configuration"
	"github.com/campusdesk/campusdesk/pkg/export"
	"github.com/campusdesk/campusdesk/pkg/notify"
	"github.com/campusdesk/campusdesk/pkg/prompt"
	"github.com/campusdesk/campusdesk/pkg/roster"
	"github.com/campusdesk/campusdesk/pkg/serrors"
)

func main() {
	root := &cobra.Command{
		Use:           "deskctl",
		Short:         "School administration console from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	conf := configuration.Use()
	logger := conf.Logger()
	api := apiclient.New(conf.API.BaseURL, conf.API.Token, conf.API.Timeout, logger)

	deps := func(area string) roster.Deps {
		return roster.Deps{
			Confirmer: prompt.NewTerminal(os.Stdin, os.Stdout),
			Notifier:  notify.NewLogNotifier(logger, area),
			Resolver:  roster.BaseURLResolver{Base: conf.API.BaseURL},
			Logger:    logger,
		}
	}

	root.AddCommand(
		areaCommands("staff", "School personnel",
			personnel.NewController(personnelapi.NewStaffSource(api), conf.PageSize, deps("personnel"))),
		areaCommands("accountants", "Accounting staff",
			accounting.NewController(accountingapi.NewAccountantSource(api), conf.PageSize, deps("accounting"))),
		areaCommands("batches", "Equipment packages",
			dcp.NewController(dcpapi.NewBatchSource(api), conf.PageSize, deps("dcp"))),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// areaCommands builds the shared verb set over one feature area's roster.
func areaCommands[T any, D any](use, short string, ctl *roster.Controller[T, D]) *cobra.Command {
	cmd := &cobra.Command{Use: use, Short: short}

	var (
		search   string
		sortBy   string
		page     int
		dataFile string
		outFile  string
		status   string
		reason   string
	)

	load := func(ctx context.Context) error { return ctl.Refresh(ctx) }

	list := &cobra.Command{
		Use:   "list",
		Short: "Show one page of the roster",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := load(cmd.Context()); err != nil {
				return err
			}
			if search != "" {
				ctl.Search(search)
			}
			if sortBy != "" {
				ctl.SortBy(sortBy)
			}
			if page > 0 {
				ctl.GoToPage(page)
			}
			view := ctl.View()
			headers, _ := ctl.ExportRows()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			printRow(w, headers)
			for _, rec := range view.Page {
				printRow(w, ctl.ExportRow(rec))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "page %d of %d (%d matching)\n",
				view.CurrentPage, view.TotalPages, view.TotalFiltered)
			return nil
		},
	}
	list.Flags().StringVar(&search, "search", "", "substring search")
	list.Flags().StringVar(&sortBy, "sort", "", "sort field")
	list.Flags().IntVar(&page, "page", 0, "page number")

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write the filtered roster to an xlsx file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := load(cmd.Context()); err != nil {
				return err
			}
			if search != "" {
				ctl.Search(search)
			}
			headers, rows := ctl.ExportRows()
			f, err := os.Create(outFile)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := export.Write(f, "Export", headers, rows); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d rows to %s\n", len(rows), outFile)
			return nil
		},
	}
	exportCmd.Flags().StringVar(&search, "search", "", "substring search")
	exportCmd.Flags().StringVar(&outFile, "out", use+".xlsx", "output file")

	create := &cobra.Command{
		Use:   "create",
		Short: "Create a record from a JSON draft file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := load(cmd.Context()); err != nil {
				return err
			}
			draft, err := readDraft[D](dataFile)
			if err != nil {
				return err
			}
			form, err := ctl.BeginCreate()
			if err != nil {
				return err
			}
			form.ReplaceDraft(draft)
			return submitAndReport(cmd.Context(), cmd.OutOrStdout(), form)
		},
	}
	create.Flags().StringVar(&dataFile, "data", "", "JSON draft file")
	_ = create.MarkFlagRequired("data")

	edit := &cobra.Command{
		Use:   "edit <id>",
		Short: "Update a record from a JSON draft file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := load(cmd.Context()); err != nil {
				return err
			}
			draft, err := readDraft[D](dataFile)
			if err != nil {
				return err
			}
			form, err := ctl.BeginEdit(args[0])
			if err != nil {
				return err
			}
			form.ReplaceDraft(draft)
			return submitAndReport(cmd.Context(), cmd.OutOrStdout(), form)
		},
	}
	edit.Flags().StringVar(&dataFile, "data", "", "JSON draft file")
	_ = edit.MarkFlagRequired("data")

	setStatus := &cobra.Command{
		Use:   "set-status <id>",
		Short: "Change a record's status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := load(cmd.Context()); err != nil {
				return err
			}
			return ctl.SetStatus(cmd.Context(), args[0], status, reason)
		},
	}
	setStatus.Flags().StringVar(&status, "status", "", "target status")
	setStatus.Flags().StringVar(&reason, "reason", "", "reason for the change")
	_ = setStatus.MarkFlagRequired("status")

	remove := &cobra.Command{
		Use:   "remove <id>",
		Short: "Delete a record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := load(cmd.Context()); err != nil {
				return err
			}
			return ctl.Remove(cmd.Context(), args[0])
		},
	}

	cmd.AddCommand(list, exportCmd, create, edit, setStatus, remove)
	return cmd
}

func printRow(w *tabwriter.Writer, cells []string) {
	for i, c := range cells {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, c)
	}
	fmt.Fprintln(w)
}

func readDraft[D any](path string) (D, error) {
	var draft D
	raw, err := os.ReadFile(path)
	if err != nil {
		return draft, err
	}
	if err := json.Unmarshal(raw, &draft); err != nil {
		return draft, err
	}
	return draft, nil
}

// submitAndReport drives a bound form to completion. The process exits
// right after, so the form is never explicitly closed. A declined
// confirmation is a clean cancellation, not a save.
func submitAndReport[T any, D any](ctx context.Context, out io.Writer, form *roster.Form[T, D]) error {
	err := form.Submit(ctx)
	if errors.Is(err, serrors.ErrSubmitDeclined) {
		fmt.Fprintln(out, "cancelled, nothing saved")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "saved %s\n", form.RecordID())
	return nil
}
