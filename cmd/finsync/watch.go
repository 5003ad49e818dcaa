package main

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	"github.com/GregMSThompson/finance-sync/internal/dto"
	"github.com/GregMSThompson/finance-sync/internal/period"
)

func watchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print the user's state as JSON lines whenever it changes",
		Long: `watch follows expenses, income, the month's budget and settings, printing
a full snapshot after every change until interrupted. Without --month every
transaction is followed and no budget is loaded.`,
		Args: cobra.NoArgs,
		RunE: runWatch,
	}
	cmd.Flags().String("month", "", "month to follow (YYYY-MM)")
	return cmd
}

func runWatch(cmd *cobra.Command, _ []string) error {
	month, _ := cmd.Flags().GetString("month")
	if month != "" {
		if err := period.Validate(month); err != nil {
			return err
		}
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := a.withLogger(cmd.Context())

	var mu sync.Mutex
	enc := json.NewEncoder(cmd.OutOrStdout())
	stop := a.container.Observe(func(snap dto.Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		if err := enc.Encode(snap); err != nil {
			a.bs.Log.Error("failed to print snapshot", "error", err)
		}
	})
	defer stop()

	settings, err := a.sync.SubscribeSettings(ctx, a.uid, a.container)
	if err != nil {
		return err
	}
	defer settings.Cancel()

	sub, err := a.sync.Subscribe(ctx, a.uid, month, a.container)
	if err != nil {
		return err
	}
	defer sub.Cancel()

	// Both error channels close once ctx is cancelled.
	settingsErrs, monthErrs := settings.Errors(), sub.Errors()
	for settingsErrs != nil || monthErrs != nil {
		select {
		case err, ok := <-settingsErrs:
			if !ok {
				settingsErrs = nil
				continue
			}
			fmt.Fprintln(cmd.ErrOrStderr(), err)
		case err, ok := <-monthErrs:
			if !ok {
				monthErrs = nil
				continue
			}
			fmt.Fprintln(cmd.ErrOrStderr(), err)
		}
	}
	return nil
}
