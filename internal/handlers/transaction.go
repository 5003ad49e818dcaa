package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/finance-sync/internal/dto"
	"github.com/GregMSThompson/finance-sync/internal/errs"
	"github.com/GregMSThompson/finance-sync/internal/middleware"
	"github.com/GregMSThompson/finance-sync/internal/period"
	"github.com/GregMSThompson/finance-sync/internal/response"
	"github.com/GregMSThompson/finance-sync/pkg/helpers"
)

// transactionHandlers serves one transaction collection; the router mounts
// one instance for expenses and one for income.
type transactionHandlers struct {
	ResponseHandler response.ResponseHandler
	Svc             TransactionService
	Location        *time.Location
}

func NewExpenseHandlers(deps *Deps) *transactionHandlers {
	return &transactionHandlers{ResponseHandler: deps.ResponseHandler, Svc: deps.ExpenseSvc, Location: deps.Location}
}

func NewIncomeHandlers(deps *Deps) *transactionHandlers {
	return &transactionHandlers{ResponseHandler: deps.ResponseHandler, Svc: deps.IncomeSvc, Location: deps.Location}
}

func (h *transactionHandlers) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/", h.Add)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	return r
}

func (h *transactionHandlers) List(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	txs, err := h.Svc.ListByMonth(r.Context(), uid, r.URL.Query().Get("month"))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, txs)
}

func (h *transactionHandlers) Add(w http.ResponseWriter, r *http.Request) {
	var req dto.TransactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	if req.Amount == nil {
		h.ResponseHandler.HandleError(w, r, errs.Required("amount"))
		return
	}
	in := dto.TransactionInput{
		Title:    helpers.Value(req.Title),
		Amount:   *req.Amount,
		Currency: req.Currency,
		Category: req.Category,
	}
	if req.Date != nil {
		date, err := period.ParseDate(*req.Date, h.Location)
		if err != nil {
			h.ResponseHandler.HandleError(w, r, err)
			return
		}
		in.Date = &date
	}

	uid := middleware.UID(r.Context())
	id, err := h.Svc.Add(r.Context(), uid, in)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusCreated, map[string]string{"id": id})
}

func (h *transactionHandlers) Get(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	tx, err := h.Svc.Get(r.Context(), uid, chi.URLParam(r, "id"))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, tx)
}

func (h *transactionHandlers) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.TransactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	patch := dto.TransactionPatch{
		Title:    req.Title,
		Amount:   req.Amount,
		Currency: req.Currency,
		Category: req.Category,
	}
	if req.Date != nil {
		date, err := period.ParseDate(*req.Date, h.Location)
		if err != nil {
			h.ResponseHandler.HandleError(w, r, err)
			return
		}
		patch.Date = &date
	}

	uid := middleware.UID(r.Context())
	if err := h.Svc.Update(r.Context(), uid, chi.URLParam(r, "id"), patch); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}

func (h *transactionHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	if err := h.Svc.Delete(r.Context(), uid, chi.URLParam(r, "id")); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}
