package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/finboard/internal/cli"
	"github.com/Veraticus/finboard/internal/common"
	"github.com/Veraticus/finboard/internal/config"
	"github.com/Veraticus/finboard/internal/dashboard"
	"github.com/Veraticus/finboard/internal/model"
	"github.com/Veraticus/finboard/internal/tui/viewmodel"
)

func transactionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"txn"},
		Short:   "Browse and manage transactions",
	}

	cmd.AddCommand(listTransactionsCmd())
	cmd.AddCommand(updateTransactionCmd())
	cmd.AddCommand(deleteTransactionsCmd())
	cmd.AddCommand(uploadStatementCmd())

	return cmd
}

func listTransactionsCmd() *cobra.Command {
	var (
		filters []string
		sortBy  string
		desc    bool
		all     bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions",
		Long: `List your transactions. Filters are case-insensitive substring matches on a
column, e.g. --filter Category=food --filter Bank=hdfc.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			store := dashboard.NewTransactions(a.client, a.session, nil, a.logger)
			if err := store.Refresh(ctx); err != nil {
				return err
			}
			table := store.Table
			if all {
				for _, col := range dashboard.HiddenTransactionColumns {
					table.ToggleColumn(col)
				}
			}

			if err := applyTableFlags(table, filters, sortBy, desc); err != nil {
				return err
			}

			rows := table.Rows()
			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), cli.Empty("transactions", "Upload a statement with `finboard transactions upload`."))
				return nil
			}
			if err := printRecords(cmd, table, rows); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.SubtleStyle.Render(fmt.Sprintf("%d of %d transactions", len(rows), table.Len())))
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&filters, "filter", nil, "column=text filter, repeatable")
	cmd.Flags().StringVar(&sortBy, "sort", "", "sort by column")
	cmd.Flags().BoolVar(&desc, "desc", false, "sort descending")
	cmd.Flags().BoolVar(&all, "all-columns", false, "include the ID and balance columns")
	return cmd
}

// applyTableFlags applies --filter and --sort to table.
func applyTableFlags(table *viewmodel.Table, filters []string, sortBy string, desc bool) error {
	for _, f := range filters {
		col, text, ok := strings.Cut(f, "=")
		if !ok || col == "" {
			return common.NewUserError(fmt.Sprintf("Filter %q is not column=text.", f), nil)
		}
		table.SetFilter(col, text)
	}
	if sortBy != "" {
		table.CycleSort(sortBy)
		if desc {
			table.CycleSort(sortBy)
		}
	}
	return nil
}

func printRecords(cmd *cobra.Command, table *viewmodel.Table, rows []model.Record) error {
	cols := table.Columns()
	headers := make([]string, len(cols))
	for i, c := range cols {
		headers[i] = table.Label(c)
	}
	out := make([][]string, len(rows))
	for i, r := range rows {
		line := make([]string, len(cols))
		for j, c := range cols {
			line[j] = viewmodel.SanitizeForDisplay(r.String(c))
		}
		out[i] = line
	}
	return cli.PrintTable(cmd.OutOrStdout(), headers, out)
}

func updateTransactionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update <transaction-id> <category>",
		Short: "Change the category of one transaction",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()
			if _, err := a.email(); err != nil {
				return err
			}

			store := dashboard.NewTransactions(a.client, a.session, nil, a.logger)
			category := strings.TrimSpace(args[1])
			if err := store.UpdateCategory(ctx, args[0], category); err != nil {
				return common.NewUserError(store.Status.Err, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Transaction %s is now %q.", args[0], category)))
			return nil
		},
	}
}

func deleteTransactionsCmd() *cobra.Command {
	var (
		from, to, bank string
		yes            bool
	)

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete transactions in a date range",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			start, err := model.ParseDate(from)
			if err != nil {
				return common.NewUserError("Use the YYYY-MM-DD format for --from.", err)
			}
			end, err := model.ParseDate(to)
			if err != nil {
				return common.NewUserError("Use the YYYY-MM-DD format for --to.", err)
			}

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			question := fmt.Sprintf("Delete %s transactions from %s to %s?", bank, start, end)
			ok, err := cli.NewNonBlockingReader(os.Stdin).Confirm(ctx, cmd.OutOrStdout(), question, yes)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Nothing deleted."))
				return nil
			}

			form := dashboard.NewDeleteForm(a.client, a.session, nil, a.logger)
			if err := form.Submit(ctx, model.DeleteRange{StartDate: start, EndDate: end, Bank: bank}); err != nil {
				return common.NewUserError(form.Status.Err, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(form.Status.Notice))
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "first day, YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&to, "to", "", "last day, YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&bank, "bank", model.AllBanks, "bank to delete from: "+strings.Join(model.ChartBanks, ", "))
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func uploadStatementCmd() *cobra.Command {
	var bank string

	cmd := &cobra.Command{
		Use:   "upload <statement>",
		Short: "Upload a bank statement (PDF, XLS or XLSX)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			path := config.ExpandPath(args[0])
			info, err := os.Stat(path)
			if err != nil {
				return common.NewUserError(fmt.Sprintf("Cannot read %s.", args[0]), err)
			}

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			bar := cli.NewTransferProgress(cmd.ErrOrStderr(), info.Size(), "Uploading "+filepath.Base(path))
			form := dashboard.NewUploadForm(a.client, a.session, nil, bar, a.logger)
			if err := form.Submit(ctx, model.StatementUpload{Bank: bank, Path: path}); err != nil {
				return common.NewUserError(form.Status.Err, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(form.Status.Notice))
			return nil
		},
	}

	cmd.Flags().StringVar(&bank, "bank", "", "issuing bank: "+strings.Join(model.StatementBanks, ", ")+" (required)")
	_ = cmd.MarkFlagRequired("bank")
	return cmd
}
