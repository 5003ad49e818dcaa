package router

import (
	"io"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/GregMSThompson/finance-sync/internal/handlers"
	"github.com/GregMSThompson/finance-sync/internal/metrics"
	"github.com/GregMSThompson/finance-sync/internal/middleware"
)

// NewRouter mounts the API. The returned closer disconnects live sync
// clients and should be closed on shutdown.
func NewRouter(deps *handlers.Deps, auth *middleware.Middleware, m *metrics.Metrics) (chi.Router, io.Closer) {
	r := chi.NewRouter()

	lm := middleware.NewLoggerMiddleware(deps.Log)
	r.Use(chimiddleware.RequestID)
	r.Use(lm.LoggerMiddleware)
	r.Use(chimiddleware.Recoverer)

	r.Method("GET", "/metrics", m.Handler())

	exh := handlers.NewExpenseHandlers(deps)
	inh := handlers.NewIncomeHandlers(deps)
	bh := handlers.NewBudgetHandlers(deps)
	sh := handlers.NewSettingsHandlers(deps)
	rh := handlers.NewReportHandlers(deps)
	syh := handlers.NewSyncHandlers(deps, m)

	r.Group(func(r chi.Router) {
		r.Use(auth.FirebaseAuth)

		r.Mount("/expenses", exh.Routes())
		r.Mount("/income", inh.Routes())
		r.Mount("/budgets", bh.BudgetRoutes())
		r.Mount("/settings", sh.SettingsRoutes())
		r.Mount("/reports", rh.ReportRoutes())
		r.Get("/sync", syh.Sync)
	})
	return r, syh
}
