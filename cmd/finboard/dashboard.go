package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Veraticus/finboard/internal/common"
	"github.com/Veraticus/finboard/internal/dashboard"
	"github.com/Veraticus/finboard/internal/networth"
	"github.com/Veraticus/finboard/internal/signal"
	"github.com/Veraticus/finboard/internal/tui"
	"github.com/Veraticus/finboard/internal/tui/themes"
)

func dashboardCmd() *cobra.Command {
	var (
		metricsAddr string
		exportDir   string
		theme       string
		noMouse     bool
	)

	cmd := &cobra.Command{
		Use:     "dashboard",
		Aliases: []string{"ui"},
		Short:   "Open the full-screen dashboard",
		Long: `Open the interactive dashboard with every screen: transactions, bank summaries,
charts, tools, profiles, the net-worth ledgers, dependents and the projection.

Logs go to logging.file while the dashboard is open.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			var reg *prometheus.Registry
			opts := []appOption{}
			if metricsAddr != "" {
				reg = prometheus.NewRegistry()
				reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
				opts = append(opts, withMetrics(reg))
			}

			a, err := newApp(ctx, opts...)
			if err != nil {
				return err
			}
			defer a.Close()
			if _, err := a.email(); err != nil {
				return err
			}

			logFile, err := common.RedirectToFile(a.cfg.Logging.File, a.cfg.Logging.Level, a.cfg.Logging.Format)
			if err != nil {
				return err
			}
			defer func() {
				_ = logFile.Close()
				_ = setupLogging()
			}()

			if theme == "" {
				theme = a.cfg.TUI.Theme
			}
			stores := buildStores(a, slog.Default())
			tuiOpts := []tui.Option{
				tui.WithTheme(themes.GetTheme(theme)),
				tui.WithTimeout(a.cfg.API.Timeout),
				tui.WithExportDir(exportDir),
				tui.WithMouse(!noMouse),
				tui.WithLogger(slog.Default()),
			}

			if reg == nil {
				return tui.Run(ctx, stores, tuiOpts...)
			}
			return runWithMetrics(ctx, metricsAddr, reg, func(ctx context.Context) error {
				return tui.Run(ctx, stores, tuiOpts...)
			})
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")
	cmd.Flags().StringVar(&exportDir, "export-dir", ".", "where net-worth exports are saved")
	cmd.Flags().StringVar(&theme, "theme", "", "color theme (default from tui.theme)")
	cmd.Flags().BoolVar(&noMouse, "no-mouse", false, "disable mouse support")
	return cmd
}

// buildStores wires every dashboard store to the backend client.
func buildStores(a *app, logger *slog.Logger) tui.Stores {
	changes := signal.New()
	profiles := networth.NewProfiles(a.client, a.session, logger)
	return tui.Stores{
		Identity:      a.session,
		Changes:       changes,
		Transactions:  dashboard.NewTransactions(a.client, a.session, changes, logger),
		Summaries:     dashboard.NewSummaries(a.client, a.session, logger),
		CategoryChart: dashboard.NewCategoryChart(a.client, a.session, logger),
		YearChart:     dashboard.NewYearChart(a.client, a.session, logger),
		UploadForm:    dashboard.NewUploadForm(a.client, a.session, changes, nil, logger),
		RuleForm:      dashboard.NewRuleForm(a.client, logger),
		DeleteForm:    dashboard.NewDeleteForm(a.client, a.session, changes, logger),
		FeedbackForm:  dashboard.NewFeedbackForm(a.client, a.session, logger),
		Profiles:      profiles,
		Incomes:       networth.NewIncomes(a.client.Incomes(), a.session, profiles, changes, logger),
		Expenses:      networth.NewExpenses(a.client.Expenses(), a.session, profiles, changes, logger),
		Investments:   networth.NewInvestments(a.client.Investments(), a.session, profiles, changes, logger),
		Savings:       networth.NewSavings(a.client.Savings(), a.session, profiles, changes, logger),
		Dependents:    networth.NewDependents(a.client, a.session, logger),
		Projection:    networth.NewProjection(a.client, a.session, profiles, logger),
	}
}

// runWithMetrics serves reg on addr while run is active.
func runWithMetrics(ctx context.Context, addr string, reg *prometheus.Registry, run func(context.Context) error) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		common.LogInfo("serving metrics", common.Fields{"addr": addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		return run(ctx)
	})
	return g.Wait()
}
