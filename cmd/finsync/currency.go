package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GregMSThompson/finance-sync/internal/errs"
)

func currencyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "currency",
		Short: "Manage the default currency",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "set <code>",
		Short: "Change the default currency and relabel existing records",
		Long: `set stores the new default currency, then rewrites the currency label on
every budget, expense and income record. Amounts are not converted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.container.SetDefaultCurrency(a.withLogger(cmd.Context()), a.uid, args[0])
			var partial *errs.PropagationPartialFailureError
			if errors.As(err, &partial) {
				for _, path := range partial.Failed {
					fmt.Fprintln(cmd.ErrOrStderr(), "not relabelled:", path)
				}
			}
			if err != nil {
				return err
			}
			return json.NewEncoder(cmd.OutOrStdout()).Encode(res)
		},
	})
	return cmd
}
