package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/finance-sync/internal/middleware"
	"github.com/GregMSThompson/finance-sync/internal/response"
)

type reportHandlers struct {
	ResponseHandler response.ResponseHandler
	ReportSvc       ReportService
}

func NewReportHandlers(deps *Deps) *reportHandlers {
	return &reportHandlers{
		ResponseHandler: deps.ResponseHandler,
		ReportSvc:       deps.ReportSvc,
	}
}

func (h *reportHandlers) ReportRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/{month}", h.MonthReport)
	return r
}

func (h *reportHandlers) MonthReport(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	report, err := h.ReportSvc.MonthReport(r.Context(), uid, chi.URLParam(r, "month"))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, report)
}
