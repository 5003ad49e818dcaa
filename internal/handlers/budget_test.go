package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/GregMSThompson/finance-sync/internal/dto"
	"github.com/GregMSThompson/finance-sync/internal/models"
)

type stubBudgetService struct {
	err      error
	month    models.Budget
	months   []models.Budget
	calls    []string
	lastUID  string
	lastMon  string
	lastCat  string
	lastCReq dto.CategoryBudgetRequest
	lastTReq dto.TotalBudgetRequest
}

func (s *stubBudgetService) SetCategoryBudget(_ context.Context, uid, month, category string, req dto.CategoryBudgetRequest) error {
	s.calls = append(s.calls, "SetCategoryBudget")
	s.lastUID, s.lastMon, s.lastCat, s.lastCReq = uid, month, category, req
	return s.err
}

func (s *stubBudgetService) SetTotalBudget(_ context.Context, uid, month string, req dto.TotalBudgetRequest) error {
	s.calls = append(s.calls, "SetTotalBudget")
	s.lastUID, s.lastMon, s.lastTReq = uid, month, req
	return s.err
}

func (s *stubBudgetService) RemoveCategoryBudget(_ context.Context, uid, month, category string) error {
	s.calls = append(s.calls, "RemoveCategoryBudget")
	s.lastUID, s.lastMon, s.lastCat = uid, month, category
	return s.err
}

func (s *stubBudgetService) RemoveTotalBudget(_ context.Context, uid, month string) error {
	s.calls = append(s.calls, "RemoveTotalBudget")
	s.lastUID, s.lastMon = uid, month
	return s.err
}

func (s *stubBudgetService) GetMonth(_ context.Context, uid, month string) (models.Budget, error) {
	s.calls = append(s.calls, "GetMonth")
	s.lastUID, s.lastMon = uid, month
	return s.month, s.err
}

func (s *stubBudgetService) ListMonths(_ context.Context, uid string) ([]models.Budget, error) {
	s.calls = append(s.calls, "ListMonths")
	s.lastUID = uid
	return s.months, s.err
}

func TestSetCategoryBudget_OK(t *testing.T) {
	svc := &stubBudgetService{}
	resp := &stubResponseHandler{}
	h := NewBudgetHandlers(&Deps{ResponseHandler: resp, BudgetSvc: svc})

	body := `{"amount":300,"period":"monthly"}`
	req := httptest.NewRequest(http.MethodPut, "/budgets/2025-09/categories/Food%20%26%20Dining", strings.NewReader(body))
	req = withChiParams(withUID(req, "uid-1"), "month", "2025-09", "category", "Food%20%26%20Dining")
	h.SetCategory(httptest.NewRecorder(), req)

	if !resp.writeSuccessCalled {
		t.Fatalf("expected WriteSuccess, got error %v", resp.handleError)
	}
	if svc.lastMon != "2025-09" || svc.lastCat != "Food & Dining" {
		t.Fatalf("unexpected month/category: %q %q", svc.lastMon, svc.lastCat)
	}
	if svc.lastCReq.Amount != 300 || svc.lastCReq.Period != "monthly" || svc.lastCReq.Currency != "" {
		t.Fatalf("unexpected request: %+v", svc.lastCReq)
	}
}

func TestSetTotalBudget_OK(t *testing.T) {
	svc := &stubBudgetService{}
	resp := &stubResponseHandler{}
	h := NewBudgetHandlers(&Deps{ResponseHandler: resp, BudgetSvc: svc})

	req := httptest.NewRequest(http.MethodPut, "/budgets/2025-09/total", strings.NewReader(`{"amount":500,"currency":"GHS"}`))
	req = withChiParams(withUID(req, "uid-1"), "month", "2025-09")
	h.SetTotal(httptest.NewRecorder(), req)

	if !resp.writeSuccessCalled {
		t.Fatalf("expected WriteSuccess, got error %v", resp.handleError)
	}
	if svc.lastTReq.Amount != 500 || svc.lastTReq.Currency != "GHS" {
		t.Fatalf("unexpected request: %+v", svc.lastTReq)
	}
}

func TestSetTotalBudget_BadBody(t *testing.T) {
	svc := &stubBudgetService{}
	resp := &stubResponseHandler{}
	h := NewBudgetHandlers(&Deps{ResponseHandler: resp, BudgetSvc: svc})

	req := httptest.NewRequest(http.MethodPut, "/budgets/2025-09/total", strings.NewReader(`{"amount":`))
	req = withChiParams(withUID(req, "uid-1"), "month", "2025-09")
	h.SetTotal(httptest.NewRecorder(), req)

	if !resp.handleErrorCalled || len(svc.calls) != 0 {
		t.Fatalf("expected rejection before the service, calls=%v", svc.calls)
	}
}

func TestRemoveBudgets(t *testing.T) {
	svc := &stubBudgetService{}
	resp := &stubResponseHandler{}
	h := NewBudgetHandlers(&Deps{ResponseHandler: resp, BudgetSvc: svc})

	req := httptest.NewRequest(http.MethodDelete, "/budgets/2025-09/categories/Food", nil)
	h.RemoveCategory(httptest.NewRecorder(), withChiParams(withUID(req, "uid-1"), "month", "2025-09", "category", "Food"))
	req = httptest.NewRequest(http.MethodDelete, "/budgets/2025-09/total", nil)
	h.RemoveTotal(httptest.NewRecorder(), withChiParams(withUID(req, "uid-1"), "month", "2025-09"))

	if len(svc.calls) != 2 || svc.calls[0] != "RemoveCategoryBudget" || svc.calls[1] != "RemoveTotalBudget" {
		t.Fatalf("unexpected calls: %v", svc.calls)
	}
}

func TestGetBudgetMonth_ServiceError(t *testing.T) {
	svc := &stubBudgetService{err: errors.New("boom")}
	resp := &stubResponseHandler{}
	h := NewBudgetHandlers(&Deps{ResponseHandler: resp, BudgetSvc: svc})

	req := withChiParams(withUID(httptest.NewRequest(http.MethodGet, "/budgets/2025-09", nil), "uid-1"), "month", "2025-09")
	h.GetMonth(httptest.NewRecorder(), req)

	if !resp.handleErrorCalled || resp.writeSuccessCalled {
		t.Fatal("expected HandleError only")
	}
}
