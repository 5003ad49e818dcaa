package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GregMSThompson/finance-sync/internal/bootstrap"
	"github.com/GregMSThompson/finance-sync/internal/config"
	"github.com/GregMSThompson/finance-sync/internal/handlers"
	"github.com/GregMSThompson/finance-sync/internal/middleware"
	"github.com/GregMSThompson/finance-sync/internal/realtime"
	"github.com/GregMSThompson/finance-sync/internal/response"
	"github.com/GregMSThompson/finance-sync/internal/router"
	"github.com/GregMSThompson/finance-sync/internal/services"
	"github.com/GregMSThompson/finance-sync/internal/store"
	"github.com/GregMSThompson/finance-sync/internal/taxonomy"
)

func exitOnError(message string, err error, log *slog.Logger) {
	if err != nil {
		log.Error(message, "error", err)
		os.Exit(1)
	}
}

func main() {
	// bootstrap
	cfg, err := config.New()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	bs, err := bootstrap.Run(cfg)
	exitOnError("bootstrap failed", err, bs.Log)
	defer bs.Close()

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
	rserv := services.NewReportService(exserv, inserv, bserv)
	ctrl := realtime.NewController(exserv, inserv, bserv, setserv, bs.Metrics)

	// response handler
	rh := response.New(bs.Log)

	// dependencies
	deps := new(handlers.Deps)
	deps.Log = bs.Log
	deps.ResponseHandler = rh
	deps.ExpenseSvc = exserv
	deps.IncomeSvc = inserv
	deps.BudgetSvc = bserv
	deps.SettingsSvc = setserv
	deps.ReportSvc = rserv
	deps.Sync = ctrl
	deps.Location = cfg.Location

	// router
	r, live := router.NewRouter(deps, middleware.NewMiddleware(bs.Firebase), bs.Metrics)
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	idle := make(chan struct{})
	go func() {
		defer close(idle)
		<-ctx.Done()
		bs.Log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := live.Close(); err != nil {
			bs.Log.Warn("failed to close sync sessions", "error", err)
		}
		if err := srv.Shutdown(shutdownCtx); err != nil {
			bs.Log.Error("server shutdown failed", "error", err)
		}
	}()

	bs.Log.Info("server starting", "addr", cfg.ListenAddr)
	err = srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		<-idle
		return
	}
	exitOnError("server start failed", err, bs.Log)
}
