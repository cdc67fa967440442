package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Veraticus/finboard/internal/cli"
	"github.com/Veraticus/finboard/internal/common"
	"github.com/Veraticus/finboard/internal/dashboard"
	"github.com/Veraticus/finboard/internal/model"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List categories and add keyword rules",
	}

	cmd.AddCommand(listCategoriesCmd())
	cmd.AddCommand(addCategoryRuleCmd())

	return cmd
}

func listCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the categories transactions can be assigned",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			categories, err := a.client.Categories(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to get categories: %w", err)
			}
			if len(categories) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), cli.Empty("categories", ""))
				return nil
			}

			rows := make([][]string, len(categories))
			for i, c := range categories {
				rows[i] = []string{strconv.FormatInt(c.CategoryID, 10), c.Category}
			}
			return cli.PrintTable(cmd.OutOrStdout(), []string{"ID", "Category"}, rows)
		},
	}
}

func addCategoryRuleCmd() *cobra.Command {
	var catType string

	cmd := &cobra.Command{
		Use:   "add <keyword> <category>",
		Short: "Categorize narrations containing keyword",
		Long: `Add a rule that assigns category to every transaction whose narration contains
keyword, e.g. finboard categories add swiggy "Food & Dining" --type Debit.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			form := dashboard.NewRuleForm(a.client, a.logger)
			rule := model.CategoryRule{Keyword: args[0], Category: args[1], Type: catType}
			if err := form.Submit(cmd.Context(), rule); err != nil {
				return common.NewUserError(form.Status.Err, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(form.Status.Notice))
			return nil
		},
	}

	cmd.Flags().StringVar(&catType, "type", "Debit", "Credit or Debit")
	return cmd
}
