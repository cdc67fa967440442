package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/finboard/internal/chart"
	"github.com/Veraticus/finboard/internal/cli"
	"github.com/Veraticus/finboard/internal/common"
	"github.com/Veraticus/finboard/internal/config"
	"github.com/Veraticus/finboard/internal/networth"
	"github.com/Veraticus/finboard/internal/sheets"
)

func networthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "networth",
		Aliases: []string{"nw"},
		Short:   "Net-worth projection of a profile",
	}
	cmd.PersistentFlags().String("profile", "", "profile id or name (default: the first profile)")

	cmd.AddCommand(networthSummaryCmd())
	cmd.AddCommand(networthExportCmd())
	cmd.AddCommand(networthPushCmd())
	return cmd
}

// loadProjection resolves --profile and fetches its projection.
func loadProjection(cmd *cobra.Command, a *app) (*networth.Projection, *networth.Profiles, error) {
	ref, _ := cmd.Flags().GetString("profile")
	p, err := a.profiles(cmd.Context(), ref)
	if err != nil {
		return nil, nil, err
	}
	proj := networth.NewProjection(a.client, a.session, p, a.logger)
	if err := proj.Refresh(cmd.Context()); err != nil {
		return nil, nil, common.NewUserError(proj.Status.Err, err)
	}
	return proj, p, nil
}

func networthSummaryCmd() *cobra.Command {
	var charts bool

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show the line items and the projected net worth",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			proj, profiles, err := loadProjection(cmd, a)
			if err != nil {
				return err
			}
			prof, _ := profiles.Selected()
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.FormatTitle("Net Worth Summary: "+prof.Name))

			rows := proj.Table.Rows()
			if len(rows) == 0 {
				fmt.Fprintln(out, cli.Empty("line items", "Add incomes, expenses or investments first."))
			} else if err := printRecords(cmd, proj.Table, rows); err != nil {
				return err
			}
			fmt.Fprintln(out)

			series := []chart.Series{proj.NetWorthSeries()}
			if charts {
				income, assets := proj.IncomeSeries()
				series = append(series, income, assets, proj.ExpenseSeries(), proj.SavingsRatioSeries())
			}
			for _, s := range series {
				if err := printSeries(cmd, s); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&charts, "all", false, "also show income, expense and savings-ratio projections")
	return cmd
}

func networthExportCmd() *cobra.Command {
	var dest string

	cmd := &cobra.Command{
		Use:   "export [destination]",
		Short: "Download the projection spreadsheet",
		Long: `Download the projection spreadsheet of a profile. The destination may be a file
or a directory; the default is the current directory.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				dest = args[0]
			}

			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			ref, _ := cmd.Flags().GetString("profile")
			p, err := a.profiles(cmd.Context(), ref)
			if err != nil {
				return err
			}
			proj := networth.NewProjection(a.client, a.session, p, a.logger)

			bar := cli.NewTransferProgress(cmd.ErrOrStderr(), -1, "Saving")
			path, err := proj.Export(cmd.Context(), config.ExpandPath(dest), bar)
			_ = bar.Finish()
			if err != nil {
				return common.NewUserError(proj.Status.Err, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Saved "+path))
			return nil
		},
	}

	return cmd
}

func networthPushCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "push-sheets",
		Short: "Write the projection to Google Sheets",
		Long: `Write the summary and yearly projection of a profile to a Google Sheets
spreadsheet. Authenticate once with a service account (sheets.service_account_path)
or with ` + "`finboard sheets auth`" + `.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sheetsCfg, err := config.LoadSheetsConfig(viper.GetViper())
			if err != nil {
				return common.NewUserError("Google Sheets is not configured. Run `finboard sheets auth` or set sheets.service_account_path.", err)
			}

			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			email, err := a.email()
			if err != nil {
				return err
			}
			proj, profiles, err := loadProjection(cmd, a)
			if err != nil {
				return err
			}
			prof, _ := profiles.Selected()

			writer, err := sheets.NewWriter(cmd.Context(), *sheetsCfg, a.logger)
			if err != nil {
				return fmt.Errorf("failed to connect to Google Sheets: %w", err)
			}
			id, err := writer.Write(cmd.Context(), sheets.Report{
				Generated: time.Now(),
				Profile:   prof.Name,
				Email:     email,
				Data:      proj.Data(),
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Projection written to https://docs.google.com/spreadsheets/d/"+id))
			return nil
		},
	}
}

func sheetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "Google Sheets access",
	}

	var port int
	auth := &cobra.Command{
		Use:   "auth",
		Short: "Authorize finboard to write spreadsheets",
		Long: `Run the browser authorization for Google Sheets and save the token to
sheets.token_file. Needs sheets.client_id and sheets.client_secret (or the
GOOGLE_SHEETS_CLIENT_ID and GOOGLE_SHEETS_CLIENT_SECRET variables).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			clientID := firstNonEmpty(viper.GetString("sheets.client_id"), os.Getenv("GOOGLE_SHEETS_CLIENT_ID"))
			secret := firstNonEmpty(viper.GetString("sheets.client_secret"), os.Getenv("GOOGLE_SHEETS_CLIENT_SECRET"))
			if clientID == "" || secret == "" {
				return common.NewUserError("Set sheets.client_id and sheets.client_secret first.", common.ErrMissingConfig)
			}
			tokenFile := config.ExpandPath(viper.GetString("sheets.token_file"))

			_, err := sheets.Authorize(cmd.Context(), sheets.OAuth2Config{
				ClientID:     clientID,
				ClientSecret: secret,
				TokenFile:    tokenFile,
				Port:         port,
				Timeout:      5 * time.Minute,
				Announce: func(url string) {
					fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Open this URL to authorize Google Sheets access:"))
					fmt.Fprintln(cmd.OutOrStdout(), url)
				},
			})
			if err != nil {
				return fmt.Errorf("sheets authorization failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Authorized. Token saved to "+tokenFile))
			return nil
		},
	}
	auth.Flags().IntVar(&port, "port", 8085, "local callback port")
	cmd.AddCommand(auth)

	return cmd
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
