package main

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/Veraticus/finboard/internal/cli"
	"github.com/Veraticus/finboard/internal/common"
	"github.com/Veraticus/finboard/internal/model"
	"github.com/Veraticus/finboard/internal/networth"
	"github.com/Veraticus/finboard/internal/tui/viewmodel"
	"github.com/Veraticus/finboard/internal/validation"
)

// ledgerCommand describes one profile-scoped ledger on the command line.
type ledgerCommand[T model.Entry] struct {
	use      string
	singular string
	open     func(a *app, p *networth.Profiles) *networth.Ledger[T]
	headers  []string
	row      func(T) []string
	// bind registers the add flags and returns a reader for them.
	bind func(cmd *cobra.Command) func() (T, error)
}

func (lc ledgerCommand[T]) command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   lc.use,
		Short: fmt.Sprintf("Manage the %s of a profile", lc.use),
	}
	cmd.PersistentFlags().String("profile", "", "profile id or name (default: the first profile)")

	cmd.AddCommand(lc.listCmd())
	cmd.AddCommand(lc.addCmd())
	cmd.AddCommand(lc.deleteCmd())
	return cmd
}

// load resolves --profile and loads the ledger.
func (lc ledgerCommand[T]) load(cmd *cobra.Command, a *app) (*networth.Ledger[T], error) {
	ref, _ := cmd.Flags().GetString("profile")
	p, err := a.profiles(cmd.Context(), ref)
	if err != nil {
		return nil, err
	}
	l := lc.open(a, p)
	if err := l.Refresh(cmd.Context()); err != nil {
		return nil, common.NewUserError(l.Status.Err, err)
	}
	return l, nil
}

func (lc ledgerCommand[T]) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: fmt.Sprintf("List %s", lc.use),
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			l, err := lc.load(cmd, a)
			if err != nil {
				return err
			}
			entries := l.Entries()
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), cli.Empty(lc.use, fmt.Sprintf("Add one with `finboard %s add`.", lc.use)))
				return nil
			}
			rows := make([][]string, len(entries))
			for i, e := range entries {
				rows[i] = append([]string{strconv.FormatInt(e.EntryID(), 10)}, lc.row(e)...)
			}
			return cli.PrintTable(cmd.OutOrStdout(), append([]string{"ID"}, lc.headers...), rows)
		},
	}
}

func (lc ledgerCommand[T]) addCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: fmt.Sprintf("Add %s %s", article(lc.singular), lc.singular),
	}
	read := lc.bind(cmd)
	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		entry, err := read()
		if err != nil {
			return err
		}

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		l, err := lc.load(cmd, a)
		if err != nil {
			return err
		}
		if err := l.Add(cmd.Context(), entry); err != nil {
			return common.NewUserError(ledgerError(l.Status.Err, l.Fields), err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Added %s %s", article(lc.singular), lc.singular)))
		return nil
	}
	return cmd
}

func (lc ledgerCommand[T]) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: fmt.Sprintf("Delete %s %s", article(lc.singular), lc.singular),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return common.NewUserError(fmt.Sprintf("%q is not an id.", args[0]), err)
			}

			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			l, err := lc.load(cmd, a)
			if err != nil {
				return err
			}
			if _, ok := l.Find(id); !ok {
				return common.NewUserError(fmt.Sprintf("No %s with id %d in this profile.", lc.singular, id), common.ErrNotFound)
			}
			if err := l.Delete(cmd.Context(), id); err != nil {
				return common.NewUserError(l.Status.Err, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted %s %d", lc.singular, id)))
			return nil
		},
	}
}

// ledgerError joins the status message with the per-field messages.
func ledgerError(status string, fields validation.FieldErrors) string {
	if len(fields) == 0 {
		return status
	}
	parts := make([]string, 0, len(fields))
	for _, msg := range fields {
		parts = append(parts, msg)
	}
	slices.Sort(parts)
	return strings.TrimSpace(status + " " + strings.Join(parts, " "))
}

func article(noun string) string {
	if noun != "" && strings.ContainsRune("aeiou", rune(noun[0])) {
		return "an"
	}
	return "a"
}

func incomesCmd() *cobra.Command {
	return ledgerCommand[model.Income]{
		use:      "incomes",
		singular: "income",
		open: func(a *app, p *networth.Profiles) *networth.Ledger[model.Income] {
			return networth.NewIncomes(a.client.Incomes(), a.session, p, nil, a.logger)
		},
		headers: []string{"Source", "Frequency", "Value", "Start", "End", "Growth %"},
		row: func(i model.Income) []string {
			return []string{i.Source, i.Frequency.Label(), viewmodel.FormatAmount(i.Value), i.StartDate.String(), i.EndDate.String(), i.GrowthRate.String()}
		},
		bind: func(cmd *cobra.Command) func() (model.Income, error) {
			var f recurringFlags
			f.bind(cmd, "source", "income source: "+strings.Join(model.IncomeSources, ", "), "growth-rate", "yearly growth rate in percent")
			return func() (model.Income, error) {
				if err := f.parse(); err != nil {
					return model.Income{}, err
				}
				return model.Income{
					Source:     f.kind,
					Frequency:  f.frequency,
					Value:      f.value,
					StartDate:  f.start,
					EndDate:    f.end,
					GrowthRate: f.rate,
				}, nil
			}
		},
	}.command()
}

func expensesCmd() *cobra.Command {
	return ledgerCommand[model.Expense]{
		use:      "expenses",
		singular: "expense",
		open: func(a *app, p *networth.Profiles) *networth.Ledger[model.Expense] {
			return networth.NewExpenses(a.client.Expenses(), a.session, p, nil, a.logger)
		},
		headers: []string{"Type", "Frequency", "Value", "Start", "End", "Inflation %"},
		row: func(e model.Expense) []string {
			return []string{e.Type, e.Frequency.Label(), viewmodel.FormatAmount(e.Value), e.StartDate.String(), e.EndDate.String(), e.InflationRate.String()}
		},
		bind: func(cmd *cobra.Command) func() (model.Expense, error) {
			var f recurringFlags
			f.bind(cmd, "type", "expense type, e.g. Rent", "inflation-rate", "yearly inflation rate in percent")
			return func() (model.Expense, error) {
				if err := f.parse(); err != nil {
					return model.Expense{}, err
				}
				return model.Expense{
					Type:          f.kind,
					Frequency:     f.frequency,
					Value:         f.value,
					StartDate:     f.start,
					EndDate:       f.end,
					InflationRate: f.rate,
				}, nil
			}
		},
	}.command()
}

func investmentsCmd() *cobra.Command {
	return ledgerCommand[model.Investment]{
		use:      "investments",
		singular: "investment",
		open: func(a *app, p *networth.Profiles) *networth.Ledger[model.Investment] {
			return networth.NewInvestments(a.client.Investments(), a.session, p, nil, a.logger)
		},
		headers: []string{"Type", "Amount", "Start", "End", "Return %"},
		row: func(i model.Investment) []string {
			return []string{i.Type, viewmodel.FormatAmount(i.Amount), i.StartDate.String(), i.EndDate.String(), i.RateOfReturn.String()}
		},
		bind: func(cmd *cobra.Command) func() (model.Investment, error) {
			var kind, amount, start, end, rate string
			cmd.Flags().StringVar(&kind, "type", "", "investment type: "+strings.Join(model.InvestmentTypes, ", "))
			cmd.Flags().StringVar(&amount, "amount", "", "amount invested")
			cmd.Flags().StringVar(&start, "start", "", "start date (YYYY-MM-DD)")
			cmd.Flags().StringVar(&end, "end", "", "end date (YYYY-MM-DD)")
			cmd.Flags().StringVar(&rate, "return-rate", "0", "yearly rate of return in percent")
			return func() (model.Investment, error) {
				inv := model.Investment{Type: kind}
				var err error
				if inv.Amount, err = parseDecimal("amount", amount); err != nil {
					return inv, err
				}
				if inv.RateOfReturn, err = parseDecimal("return-rate", rate); err != nil {
					return inv, err
				}
				if inv.StartDate, err = parseDateFlag("start", start); err != nil {
					return inv, err
				}
				inv.EndDate, err = parseDateFlag("end", end)
				return inv, err
			}
		},
	}.command()
}

func savingsCmd() *cobra.Command {
	return ledgerCommand[model.Saving]{
		use:      "savings",
		singular: "saving rate",
		open: func(a *app, p *networth.Profiles) *networth.Ledger[model.Saving] {
			return networth.NewSavings(a.client.Savings(), a.session, p, nil, a.logger)
		},
		headers: []string{"Saving Rate %"},
		row: func(s model.Saving) []string {
			return []string{s.SavingRate.String()}
		},
		bind: func(cmd *cobra.Command) func() (model.Saving, error) {
			var rate string
			cmd.Flags().StringVar(&rate, "rate", "", "share of surplus income saved, 0 to 100")
			return func() (model.Saving, error) {
				r, err := parseDecimal("rate", rate)
				return model.Saving{SavingRate: r}, err
			}
		},
	}.command()
}

// recurringFlags are the add flags shared by incomes and expenses.
type recurringFlags struct {
	kindRaw, frequencyRaw, valueRaw, startRaw, endRaw, rateRaw string

	kind      string
	frequency model.Frequency
	value     decimal.Decimal
	start     model.Date
	end       model.Date
	rate      decimal.Decimal
}

func (f *recurringFlags) bind(cmd *cobra.Command, kindFlag, kindUsage, rateFlag, rateUsage string) {
	labels := make([]string, len(model.Frequencies))
	for i, freq := range model.Frequencies {
		labels[i] = string(freq)
	}
	cmd.Flags().StringVar(&f.kindRaw, kindFlag, "", kindUsage)
	cmd.Flags().StringVar(&f.frequencyRaw, "frequency", string(model.FrequencyMonthly), "one of "+strings.Join(labels, ", "))
	cmd.Flags().StringVar(&f.valueRaw, "value", "", "amount per period")
	cmd.Flags().StringVar(&f.startRaw, "start", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.endRaw, "end", "", "end date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.rateRaw, rateFlag, "0", rateUsage)
}

func (f *recurringFlags) parse() error {
	var err error
	f.kind = strings.TrimSpace(f.kindRaw)
	if f.frequency, err = parseFrequency(f.frequencyRaw); err != nil {
		return err
	}
	if f.value, err = parseDecimal("value", f.valueRaw); err != nil {
		return err
	}
	if f.rate, err = parseDecimal("rate", f.rateRaw); err != nil {
		return err
	}
	if f.start, err = parseDateFlag("start", f.startRaw); err != nil {
		return err
	}
	f.end, err = parseDateFlag("end", f.endRaw)
	return err
}

// parseFrequency matches s against the known frequencies, ignoring case and
// dashes, so "bi-weekly" is BiWeekly.
func parseFrequency(s string) (model.Frequency, error) {
	norm := strings.ReplaceAll(strings.TrimSpace(s), "-", "")
	for _, f := range model.Frequencies {
		if strings.EqualFold(string(f), norm) {
			return f, nil
		}
	}
	return "", common.NewUserError(fmt.Sprintf("Unknown frequency %q.", s), nil)
}

func parseDecimal(flag, s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, common.NewUserError(fmt.Sprintf("--%s is required.", flag), nil)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, common.NewUserError(fmt.Sprintf("--%s must be a number.", flag), err)
	}
	return d, nil
}

func parseDateFlag(flag, s string) (model.Date, error) {
	d, err := model.ParseDate(s)
	if err != nil {
		return d, common.NewUserError(fmt.Sprintf("--%s: %v", flag, err), err)
	}
	return d, nil
}
