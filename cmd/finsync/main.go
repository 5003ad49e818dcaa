package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/GregMSThompson/finance-sync/internal/config"
)

var (
	cfgFile string
	v       = config.NewViper()
	rootCmd = &cobra.Command{
		Use:   "finsync",
		Short: "Read and write synced finance data for one user",
		Long: `finsync acts as a single user against the Firestore backend used by the
API. It can follow a month live or record expenses, income, budgets and the
default currency.`,
		SilenceUsage:      true,
		PersistentPreRunE: initConfig,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml, json or toml)")
	rootCmd.PersistentFlags().String("uid", "", "user id to act as")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("project", "", "Google Cloud project id")

	_ = v.BindPFlag("uid", rootCmd.PersistentFlags().Lookup("uid"))
	_ = v.BindPFlag("loglevel", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = v.BindPFlag("projectid", rootCmd.PersistentFlags().Lookup("project"))
	_ = v.BindEnv("uid", "FINSYNC_UID")

	rootCmd.AddCommand(watchCmd())
	rootCmd.AddCommand(transactionCmd("expense", "Record expenses", func(a *app) transactionAdder { return a.container.AddExpense }))
	rootCmd.AddCommand(transactionCmd("income", "Record income", func(a *app) transactionAdder { return a.container.AddIncome }))
	rootCmd.AddCommand(budgetCmd())
	rootCmd.AddCommand(currencyCmd())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initConfig(_ *cobra.Command, _ []string) error {
	if cfgFile == "" {
		return nil
	}
	v.SetConfigFile(cfgFile)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}
	return nil
}
