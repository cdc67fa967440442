package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/finboard/internal/api"
	"github.com/Veraticus/finboard/internal/cli"
	"github.com/Veraticus/finboard/internal/common"
	"github.com/Veraticus/finboard/internal/networth"
)

func profilesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "Manage net-worth profiles",
		Long: `A profile groups incomes, expenses, investments and savings into one
net-worth projection. Other net-worth commands take --profile to pick one by id
or name; the first profile is used by default.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List profiles",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if _, err := a.email(); err != nil {
				return err
			}
			p := networth.NewProfiles(a.client, a.session, a.logger)
			if err := p.Fetch(ctx); err != nil {
				return fmt.Errorf("failed to fetch profiles: %w", err)
			}
			profiles := p.List()
			if len(profiles) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), cli.Empty("profiles", "Create one with `finboard profiles add <name>`."))
				return nil
			}
			rows := make([][]string, len(profiles))
			for i, prof := range profiles {
				rows[i] = []string{strconv.FormatInt(prof.ID, 10), prof.Name}
			}
			return cli.PrintTable(cmd.OutOrStdout(), []string{"ID", "Name"}, rows)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <name>",
		Short: "Create a profile",
		Args:  cobra.MinimumNArgs(1),
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
			p := networth.NewProfiles(a.client, a.session, a.logger)
			created, err := p.Add(ctx, strings.Join(args, " "))
			if err != nil {
				return common.NewUserError(api.Message(err, "Failed to create profile."), err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Profile %q created (id %d)", created.Name, created.ID)))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id-or-name>",
		Short: "Delete a profile and everything in it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			p, err := a.profiles(ctx, args[0])
			if err != nil {
				return err
			}
			prof, _ := p.Selected()
			if err := p.Delete(ctx, prof.ID); err != nil {
				return common.NewUserError(api.Message(err, "Failed to delete profile."), err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Profile %q deleted", prof.Name)))
			return nil
		},
	})

	return cmd
}
