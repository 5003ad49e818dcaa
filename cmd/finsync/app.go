package main

import (
	"context"
	"fmt"

	"github.com/GregMSThompson/finance-sync/internal/bootstrap"
	"github.com/GregMSThompson/finance-sync/internal/config"
	"github.com/GregMSThompson/finance-sync/internal/errs"
	"github.com/GregMSThompson/finance-sync/internal/realtime"
	"github.com/GregMSThompson/finance-sync/internal/services"
	"github.com/GregMSThompson/finance-sync/internal/state"
	"github.com/GregMSThompson/finance-sync/internal/store"
	"github.com/GregMSThompson/finance-sync/internal/taxonomy"
	"github.com/GregMSThompson/finance-sync/pkg/logger"
)

// app is one CLI invocation's view of a user's data.
type app struct {
	cfg       *config.Config
	bs        *bootstrap.Bootstrap
	uid       string
	container *state.Container
	sync      *realtime.Controller
}

func newApp() (*app, error) {
	uid := v.GetString("uid")
	if uid == "" {
		return nil, errs.Required("uid")
	}
	cfg, err := config.FromViper(v)
	if err != nil {
		return nil, err
	}
	bs, err := bootstrap.RunStore(cfg, logger.NewConsoleHandler)
	if err != nil {
		if bs != nil {
			bs.Close()
		}
		return nil, fmt.Errorf("failed to connect to firestore: %w", err)
	}

	// stores
	exstore := store.NewTransactionStore(bs.Firestore, taxonomy.Expense)
	instore := store.NewTransactionStore(bs.Firestore, taxonomy.Income)
	bstore := store.NewBudgetStore(bs.Firestore)
	sstore := store.NewSettingsStore(bs.Firestore)

	// services
	setserv := services.NewSettingsService(sstore, exstore, instore, bstore, cfg.PropagationConcurrency, bs.Metrics)
	exserv := services.NewTransactionRepository(taxonomy.Expense, exstore, setserv, cfg.Location, bs.Metrics)
	inserv := services.NewTransactionRepository(taxonomy.Income, instore, setserv, cfg.Location, bs.Metrics)
	bserv := services.NewBudgetRepository(bstore, setserv, bs.Metrics)

	bs.Log.Debug("cli ready", "uid", uid, "project", cfg.ProjectID)
	return &app{
		cfg: cfg,
		bs:  bs,
		uid: uid,
		container: state.New(state.Repositories{
			Expenses: exserv,
			Income:   inserv,
			Budgets:  bserv,
			Settings: setserv,
		}),
		sync: realtime.NewController(exserv, inserv, bserv, setserv, bs.Metrics),
	}, nil
}

// withLogger returns ctx carrying the CLI logger.
func (a *app) withLogger(ctx context.Context) context.Context {
	return logger.ToContext(ctx, a.bs.Log)
}

func (a *app) Close() {
	a.bs.Close()
}
