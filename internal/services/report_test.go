package services

import (
	"errors"
	"testing"
	"time"

	"github.com/GregMSThompson/finance-sync/internal/dto"
	"github.com/GregMSThompson/finance-sync/internal/errs"
	"github.com/GregMSThompson/finance-sync/pkg/helpers"
)

func TestMonthReport(t *testing.T) {
	f := newFixture()
	ctx := helpers.TestCtx()
	report := NewReportService(f.expenses, f.income, f.budgets)

	_ = f.budgets.SetTotalBudget(ctx, "u1", "2025-09", dto.TotalBudgetRequest{Amount: 500})
	_ = f.budgets.SetCategoryBudget(ctx, "u1", "2025-09", "Food", dto.CategoryBudgetRequest{Amount: 200})
	_ = f.budgets.SetCategoryBudget(ctx, "u1", "2025-09", "Utilities", dto.CategoryBudgetRequest{Amount: 80})

	day := time.Date(2025, time.September, 15, 0, 0, 0, 0, time.UTC)
	outside := time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC)
	add := func(repo *transactionRepository, title string, amount float64, category string, date time.Time) {
		t.Helper()
		in := dto.TransactionInput{Title: title, Amount: amount, Date: &date}
		if category != "" {
			in.Category = helpers.Ptr(category)
		}
		if _, err := repo.Add(ctx, "u1", in); err != nil {
			t.Fatalf("add %s: %v", title, err)
		}
	}
	add(f.expenses, "Lunch", 50.10, "Food", day)
	add(f.expenses, "Dinner", 70.20, "Food", day)
	add(f.expenses, "Cinema", 30, "Entertainment", day)
	add(f.expenses, "Misc", 9.70, "", day)
	add(f.expenses, "Next month", 999, "Food", outside)
	add(f.income, "Salary", 1000, "Salary", day)

	got, err := report.MonthReport(ctx, "u1", "2025-09")
	if err != nil {
		t.Fatalf("report: %v", err)
	}

	if got.TotalExpenses != 160 {
		t.Fatalf("expected expenses 160, got %v", got.TotalExpenses)
	}
	if got.TotalIncome != 1000 || got.NetSavings != 840 {
		t.Fatalf("unexpected income/savings: %v / %v", got.TotalIncome, got.NetSavings)
	}
	if got.TotalBudget != 500 || got.RemainingBudget != 340 || got.BudgetUtilization != 32 {
		t.Fatalf("unexpected budget figures: %+v", got)
	}
	if got.Currency != "GHS" {
		t.Fatalf("expected GHS, got %s", got.Currency)
	}

	wantCats := []dto.CategoryUsage{
		{Category: "Entertainment", Budgeted: 0, Spent: 30, Remaining: -30, HasBudget: false},
		{Category: "Food", Budgeted: 200, Spent: 120.3, Remaining: 79.7, HasBudget: true},
		{Category: "Other", Budgeted: 0, Spent: 9.7, Remaining: -9.7, HasBudget: false},
		{Category: "Utilities", Budgeted: 80, Spent: 0, Remaining: 80, HasBudget: true},
	}
	if len(got.Categories) != len(wantCats) {
		t.Fatalf("expected %d categories, got %+v", len(wantCats), got.Categories)
	}
	for i, want := range wantCats {
		if got.Categories[i] != want {
			t.Fatalf("category %d: expected %+v, got %+v", i, want, got.Categories[i])
		}
	}

	if len(got.ExpenseBreakdown) != 3 || got.ExpenseBreakdown[0].Key != "Food" || got.ExpenseBreakdown[0].Count != 2 {
		t.Fatalf("unexpected breakdown: %+v", got.ExpenseBreakdown)
	}
	if len(got.IncomeBreakdown) != 1 || got.IncomeBreakdown[0].Total != 1000 {
		t.Fatalf("unexpected income breakdown: %+v", got.IncomeBreakdown)
	}
}

func TestMonthReportWithoutBudget(t *testing.T) {
	f := newFixture()
	report := NewReportService(f.expenses, f.income, f.budgets)

	got, err := report.MonthReport(helpers.TestCtx(), "u1", "2025-01")
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if got.BudgetUtilization != 0 || got.TotalBudget != 0 || len(got.Categories) != 0 {
		t.Fatalf("unexpected empty report: %+v", got)
	}
}

func TestMonthReportRejectsBadMonth(t *testing.T) {
	f := newFixture()
	report := NewReportService(f.expenses, f.income, f.budgets)

	_, err := report.MonthReport(helpers.TestCtx(), "u1", "bad")
	var vErr *errs.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}
