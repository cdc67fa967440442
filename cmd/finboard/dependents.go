package main

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/finboard/internal/cli"
	"github.com/Veraticus/finboard/internal/common"
	"github.com/Veraticus/finboard/internal/model"
	"github.com/Veraticus/finboard/internal/networth"
)

// loadDependents requires a sign-in and fetches the dependents.
func loadDependents(cmd *cobra.Command, a *app) (*networth.Dependents, error) {
	if _, err := a.email(); err != nil {
		return nil, err
	}
	d := networth.NewDependents(a.client, a.session, a.logger)
	if err := d.Refresh(cmd.Context()); err != nil {
		return nil, common.NewUserError(d.Status.Err, err)
	}
	return d, nil
}

// pick returns the option equal to s ignoring case, or s unchanged.
func pick(options []string, s string) string {
	s = strings.TrimSpace(s)
	if i := slices.IndexFunc(options, func(o string) bool { return strings.EqualFold(o, s) }); i >= 0 {
		return options[i]
	}
	return s
}

func dependentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dependents",
		Short: "Manage the people who depend on you",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List dependents",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			d, err := loadDependents(cmd, a)
			if err != nil {
				return err
			}
			deps := d.List()
			if len(deps) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), cli.Empty("dependents", ""))
				return nil
			}
			rows := make([][]string, len(deps))
			for i, dep := range deps {
				rows[i] = []string{strconv.FormatInt(dep.ID, 10), dep.Name, dep.Relationship, dep.Gender, dep.DateOfBirth.String()}
			}
			return cli.PrintTable(cmd.OutOrStdout(), []string{"ID", "Name", "Relationship", "Gender", "Date of Birth"}, rows)
		},
	})

	cmd.AddCommand(addDependentCmd())

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a dependent",
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

			d, err := loadDependents(cmd, a)
			if err != nil {
				return err
			}
			dep, ok := d.Find(id)
			if !ok {
				return common.NewUserError(fmt.Sprintf("No dependent with id %d.", id), common.ErrNotFound)
			}
			if err := d.Delete(cmd.Context(), id); err != nil {
				return common.NewUserError(d.Status.Err, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted %s", dep.Name)))
			return nil
		},
	})

	return cmd
}

func addDependentCmd() *cobra.Command {
	var name, dob, gender, relationship string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a dependent",
		RunE: func(cmd *cobra.Command, _ []string) error {
			born, err := parseDateFlag("dob", dob)
			if err != nil {
				return err
			}
			dep := model.Dependent{
				Name:         name,
				DateOfBirth:  born,
				Gender:       pick(model.Genders, gender),
				Relationship: pick(model.Relationships, relationship),
			}

			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			d, err := loadDependents(cmd, a)
			if err != nil {
				return err
			}
			if err := d.Add(cmd.Context(), dep); err != nil {
				return common.NewUserError(ledgerError(d.Status.Err, d.Fields), err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Added %s", dep.Name)))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "full name")
	cmd.Flags().StringVar(&dob, "dob", "", "date of birth (YYYY-MM-DD)")
	cmd.Flags().StringVar(&gender, "gender", "", strings.Join(model.Genders, ", "))
	cmd.Flags().StringVar(&relationship, "relationship", "", strings.Join(model.Relationships, ", "))
	return cmd
}

func personalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "personal",
		Short: "Show or set your personal details",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show your personal details",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			d, err := loadDependents(cmd, a)
			if err != nil {
				return err
			}
			p := d.Personal()
			if !p.Exists() {
				fmt.Fprintln(cmd.OutOrStdout(), cli.Empty("personal details", "Save them with `finboard personal set`."))
				return nil
			}
			body := fmt.Sprintf("Name:           %s\nDate of Birth:  %s\nGender:         %s", p.Name, p.DateOfBirth, p.Gender)
			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderBox(cli.ProfileIcon+" Personal Profile", body))
			return nil
		},
	})

	cmd.AddCommand(setPersonalCmd())
	return cmd
}

func setPersonalCmd() *cobra.Command {
	var name, dob, gender string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Create or update your personal details",
		Long:  "Create or update your personal details. Flags left out keep their saved values.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			d, err := loadDependents(cmd, a)
			if err != nil {
				return err
			}

			p := d.Personal()
			if cmd.Flags().Changed("name") {
				p.Name = name
			}
			if cmd.Flags().Changed("gender") {
				p.Gender = pick(model.Genders, gender)
			}
			if cmd.Flags().Changed("dob") {
				if p.DateOfBirth, err = parseDateFlag("dob", dob); err != nil {
					return err
				}
			}

			if err := d.SavePersonal(cmd.Context(), p); err != nil {
				return common.NewUserError(ledgerError(d.Status.Err, d.Fields), err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Personal profile saved"))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "full name")
	cmd.Flags().StringVar(&dob, "dob", "", "date of birth (YYYY-MM-DD)")
	cmd.Flags().StringVar(&gender, "gender", "", strings.Join(model.Genders, ", "))
	return cmd
}
