package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/finboard/internal/cli"
	"github.com/Veraticus/finboard/internal/dashboard"
)

func summariesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summaries",
		Short: "Show the per-bank statement summaries",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			store := dashboard.NewSummaries(a.client, a.session, a.logger)
			if err := store.Refresh(ctx); err != nil {
				return err
			}
			rows := store.Table.Rows()
			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), cli.Empty("bank summaries", ""))
				return nil
			}
			return printRecords(cmd, store.Table, rows)
		},
	}
}
