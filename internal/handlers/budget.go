package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/finance-sync/internal/dto"
	"github.com/GregMSThompson/finance-sync/internal/middleware"
	"github.com/GregMSThompson/finance-sync/internal/response"
)

type budgetHandlers struct {
	ResponseHandler response.ResponseHandler
	BudgetSvc       BudgetService
}

func NewBudgetHandlers(deps *Deps) *budgetHandlers {
	return &budgetHandlers{
		ResponseHandler: deps.ResponseHandler,
		BudgetSvc:       deps.BudgetSvc,
	}
}

func (h *budgetHandlers) BudgetRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListMonths)
	r.Get("/{month}", h.GetMonth)
	r.Put("/{month}/total", h.SetTotal)
	r.Delete("/{month}/total", h.RemoveTotal)
	r.Put("/{month}/categories/{category}", h.SetCategory)
	r.Delete("/{month}/categories/{category}", h.RemoveCategory)
	return r
}

func (h *budgetHandlers) ListMonths(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	months, err := h.BudgetSvc.ListMonths(r.Context(), uid)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, months)
}

func (h *budgetHandlers) GetMonth(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	b, err := h.BudgetSvc.GetMonth(r.Context(), uid, chi.URLParam(r, "month"))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, b)
}

func (h *budgetHandlers) SetTotal(w http.ResponseWriter, r *http.Request) {
	var req dto.TotalBudgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	uid := middleware.UID(r.Context())
	if err := h.BudgetSvc.SetTotalBudget(r.Context(), uid, chi.URLParam(r, "month"), req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}

func (h *budgetHandlers) RemoveTotal(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	if err := h.BudgetSvc.RemoveTotalBudget(r.Context(), uid, chi.URLParam(r, "month")); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}

func (h *budgetHandlers) SetCategory(w http.ResponseWriter, r *http.Request) {
	var req dto.CategoryBudgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	uid := middleware.UID(r.Context())
	month, category := chi.URLParam(r, "month"), pathParam(r, "category")
	if err := h.BudgetSvc.SetCategoryBudget(r.Context(), uid, month, category, req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}

func (h *budgetHandlers) RemoveCategory(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	month, category := chi.URLParam(r, "month"), pathParam(r, "category")
	if err := h.BudgetSvc.RemoveCategoryBudget(r.Context(), uid, month, category); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}
