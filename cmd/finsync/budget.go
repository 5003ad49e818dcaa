package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GregMSThompson/finance-sync/internal/dto"
)

func budgetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Set or remove monthly budgets",
	}
	cmd.AddCommand(budgetTotalCmd())
	cmd.AddCommand(budgetCategoryCmd())
	return cmd
}

func budgetTotalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "total <YYYY-MM> [amount]",
		Short: "Set the month's total budget, or remove it with --remove",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			remove, _ := cmd.Flags().GetBool("remove")
			currency, _ := cmd.Flags().GetString("currency")
			month := args[0]

			var amount float64
			if !remove {
				if len(args) != 2 {
					return fmt.Errorf("amount is required unless --remove is set")
				}
				if _, err := fmt.Sscanf(args[1], "%g", &amount); err != nil {
					return fmt.Errorf("invalid amount %q", args[1])
				}
			}

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := a.withLogger(cmd.Context())

			if remove {
				return a.container.RemoveTotalBudget(ctx, a.uid, month)
			}
			return a.container.SetTotalBudget(ctx, a.uid, month, dto.TotalBudgetRequest{Amount: amount, Currency: currency})
		},
	}
	cmd.Flags().Bool("remove", false, "remove the total instead of setting it")
	cmd.Flags().String("currency", "", "ISO currency code (default: the user's default currency)")
	return cmd
}

func budgetCategoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "category <YYYY-MM> <category> [amount]",
		Short: "Set one category's budget, or remove it with --remove",
		Long: `category merges a single category ceiling into the month's budget. Other
categories and the total are left untouched.`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			remove, _ := cmd.Flags().GetBool("remove")
			month, category := args[0], args[1]

			req := dto.CategoryBudgetRequest{}
			if !remove {
				if len(args) != 3 {
					return fmt.Errorf("amount is required unless --remove is set")
				}
				if _, err := fmt.Sscanf(args[2], "%g", &req.Amount); err != nil {
					return fmt.Errorf("invalid amount %q", args[2])
				}
				req.Currency, _ = cmd.Flags().GetString("currency")
				req.Period, _ = cmd.Flags().GetString("period")
			}

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := a.withLogger(cmd.Context())

			if remove {
				return a.container.RemoveCategoryBudget(ctx, a.uid, month, category)
			}
			return a.container.SetCategoryBudget(ctx, a.uid, month, category, req)
		},
	}
	cmd.Flags().Bool("remove", false, "remove the category instead of setting it")
	cmd.Flags().String("currency", "", "ISO currency code (default: the user's default currency)")
	cmd.Flags().String("period", "", "weekly, monthly or yearly (default: monthly)")
	return cmd
}
