package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GregMSThompson/finance-sync/internal/dto"
	"github.com/GregMSThompson/finance-sync/internal/period"
	"github.com/GregMSThompson/finance-sync/pkg/helpers"
)

type transactionAdder func(ctx context.Context, uid string, in dto.TransactionInput) (string, error)

// transactionCmd builds the command group for one transaction collection.
func transactionCmd(use, short string, adder func(*app) transactionAdder) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
	}

	add := &cobra.Command{
		Use:   "add <title> <amount>",
		Short: "Add a record; currency, category and date fall back to defaults",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var amount float64
			if _, err := fmt.Sscanf(args[1], "%g", &amount); err != nil {
				return fmt.Errorf("invalid amount %q", args[1])
			}
			in := dto.TransactionInput{Title: args[0], Amount: amount}

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if s, _ := cmd.Flags().GetString("currency"); s != "" {
				in.Currency = helpers.Ptr(s)
			}
			if s, _ := cmd.Flags().GetString("category"); s != "" {
				in.Category = helpers.Ptr(s)
			}
			if s, _ := cmd.Flags().GetString("date"); s != "" {
				date, err := period.ParseDate(s, a.cfg.Location)
				if err != nil {
					return err
				}
				in.Date = &date
			}

			id, err := adder(a)(a.withLogger(cmd.Context()), a.uid, in)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
	add.Flags().String("currency", "", "ISO currency code (default: the user's default currency)")
	add.Flags().String("category", "", "category (default: Other)")
	add.Flags().String("date", "", "effective date, YYYY-MM-DD or RFC 3339 (default: now)")

	cmd.AddCommand(add)
	return cmd
}
