package main

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/finboard/internal/chart"
	"github.com/Veraticus/finboard/internal/cli"
	"github.com/Veraticus/finboard/internal/common"
	"github.com/Veraticus/finboard/internal/dashboard"
	"github.com/Veraticus/finboard/internal/model"
	"github.com/Veraticus/finboard/internal/tui/viewmodel"
)

func chartsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "charts",
		Short: "Credit and debit totals by category or year",
	}

	cmd.PersistentFlags().String("bank", model.AllBanks, "bank to chart: "+strings.Join(model.ChartBanks, ", "))
	cmd.PersistentFlags().String("side", "", "credit or debit (default: both)")

	cmd.AddCommand(categoryChartCmd())
	cmd.AddCommand(yearChartCmd())

	return cmd
}

// chartFlags reads the shared --bank and --side flags.
func chartFlags(cmd *cobra.Command) (string, []chart.Side, error) {
	bank, _ := cmd.Flags().GetString("bank")
	if !slices.Contains(model.ChartBanks, bank) {
		return "", nil, common.NewUserError(fmt.Sprintf("Unknown bank %q. Choose one of: %s.", bank, strings.Join(model.ChartBanks, ", ")), nil)
	}

	side, _ := cmd.Flags().GetString("side")
	switch strings.ToLower(side) {
	case "":
		return bank, chart.Sides, nil
	case "credit":
		return bank, []chart.Side{chart.Credit}, nil
	case "debit":
		return bank, []chart.Side{chart.Debit}, nil
	}
	return "", nil, common.NewUserError(fmt.Sprintf("Unknown side %q. Use credit or debit.", side), nil)
}

func categoryChartCmd() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Totals per category, or the transactions of one category",
		RunE: func(cmd *cobra.Command, _ []string) error {
			bank, sides, err := chartFlags(cmd)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			c := dashboard.NewCategoryChart(a.client, a.session, a.logger)
			c.SetBank(bank)
			if err := c.Refresh(ctx); err != nil {
				return common.NewUserError(c.Status.Err, err)
			}

			if category != "" {
				i := slices.IndexFunc(c.Totals(), func(t model.CategoryTotal) bool {
					return strings.EqualFold(t.Category, category)
				})
				if i < 0 {
					return common.NewUserError(fmt.Sprintf("No %s totals for category %q.", bank, category), common.ErrNotFound)
				}
				for _, side := range sides {
					if err := c.Drill(ctx, side, i); err != nil {
						return common.NewUserError(c.DrillErr, err)
					}
				}
			}

			for _, side := range sides {
				if err := printSeries(cmd, c.Series(side)); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "list the transactions of this category")
	return cmd
}

func yearChartCmd() *cobra.Command {
	var year int

	cmd := &cobra.Command{
		Use:   "years",
		Short: "Totals per year, or the category breakdown of one year",
		RunE: func(cmd *cobra.Command, _ []string) error {
			bank, sides, err := chartFlags(cmd)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			c := dashboard.NewYearChart(a.client, a.session, a.logger)
			c.SetBank(bank)
			if err := c.Refresh(ctx); err != nil {
				return common.NewUserError(c.Status.Err, err)
			}

			if year != 0 {
				overview := c.Series(chart.Credit)
				i := slices.IndexFunc(overview.Bars, func(b chart.Bar) bool {
					return b.Label == strconv.Itoa(year)
				})
				if i < 0 {
					return common.NewUserError(fmt.Sprintf("No %s totals for %d.", bank, year), common.ErrNotFound)
				}
				for _, side := range sides {
					if err := c.Drill(ctx, side, i); err != nil {
						return common.NewUserError(c.DrillErr, err)
					}
				}
			}

			for _, side := range sides {
				if err := printSeries(cmd, c.Series(side)); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "break this year down by category")
	return cmd
}

func printSeries(cmd *cobra.Command, s chart.Series) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, cli.FormatTitle(s.Name))
	if s.Len() == 0 {
		fmt.Fprintln(out, cli.Empty("data", ""))
		fmt.Fprintln(out)
		return nil
	}
	rows := make([][]string, s.Len())
	for i, b := range s.Bars {
		rows[i] = []string{viewmodel.SanitizeForDisplay(b.Label), viewmodel.FormatAmount(b.Value)}
	}
	if err := cli.PrintTable(out, []string{"", "Amount"}, rows); err != nil {
		return err
	}
	fmt.Fprintln(out)
	return nil
}
