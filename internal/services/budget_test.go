package services

import (
	"errors"
	"testing"
	"time"

	"github.com/GregMSThompson/finance-sync/internal/dto"
	"github.com/GregMSThompson/finance-sync/internal/errs"
	"github.com/GregMSThompson/finance-sync/internal/taxonomy"
	"github.com/GregMSThompson/finance-sync/pkg/helpers"
)

func TestSetCategoryBudgetMergesSiblings(t *testing.T) {
	f := newFixture()
	ctx := helpers.TestCtx()

	if err := f.budgets.SetCategoryBudget(ctx, "u1", "2025-08", "Food", dto.CategoryBudgetRequest{Amount: 300}); err != nil {
		t.Fatalf("food: %v", err)
	}
	if err := f.budgets.SetCategoryBudget(ctx, "u1", "2025-08", "Housing", dto.CategoryBudgetRequest{Amount: 500}); err != nil {
		t.Fatalf("housing: %v", err)
	}

	b, err := f.budgets.GetMonth(ctx, "u1", "2025-08")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if b.Categories["Food"] != 300 || b.Categories["Housing"] != 500 {
		t.Fatalf("expected both categories, got %v", b.Categories)
	}
	if b.Period != taxonomy.PeriodMonthly || b.Currency != "GHS" || b.StartDate == nil {
		t.Fatalf("expected defaults applied, got %+v", b)
	}
}

func TestSetCategoryBudgetOverwritesSameCategory(t *testing.T) {
	f := newFixture()
	ctx := helpers.TestCtx()

	_ = f.budgets.SetCategoryBudget(ctx, "u1", "2025-08", "Food", dto.CategoryBudgetRequest{Amount: 300})
	_ = f.budgets.SetCategoryBudget(ctx, "u1", "2025-08", "Food", dto.CategoryBudgetRequest{Amount: 250})

	b, _ := f.budgets.GetMonth(ctx, "u1", "2025-08")
	if len(b.Categories) != 1 || b.Categories["Food"] != 250 {
		t.Fatalf("expected single overwritten ceiling, got %v", b.Categories)
	}
}

func TestSetCategoryBudgetKeepsExplicitFields(t *testing.T) {
	f := newFixture()
	ctx := helpers.TestCtx()
	start := time.Date(2025, time.August, 4, 0, 0, 0, 0, time.UTC)

	err := f.budgets.SetCategoryBudget(ctx, "u1", "2025-08", "Food", dto.CategoryBudgetRequest{
		Amount: 70, Currency: "EUR", Period: taxonomy.PeriodWeekly, StartDate: &start,
	})
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	b, _ := f.budgets.GetMonth(ctx, "u1", "2025-08")
	if b.Currency != "EUR" || b.Period != taxonomy.PeriodWeekly || !b.StartDate.Equal(start) {
		t.Fatalf("unexpected budget: %+v", b)
	}
}

func TestBudgetValidation(t *testing.T) {
	f := newFixture()
	ctx := helpers.TestCtx()

	cases := []struct {
		name string
		err  error
	}{
		{"negative category amount", f.budgets.SetCategoryBudget(ctx, "u1", "2025-08", "Food", dto.CategoryBudgetRequest{Amount: -1})},
		{"negative total", f.budgets.SetTotalBudget(ctx, "u1", "2025-08", dto.TotalBudgetRequest{Amount: -5})},
		{"missing category", f.budgets.SetCategoryBudget(ctx, "u1", "2025-08", "", dto.CategoryBudgetRequest{Amount: 1})},
		{"bad month", f.budgets.SetTotalBudget(ctx, "u1", "Aug 2025", dto.TotalBudgetRequest{Amount: 1})},
		{"missing user", f.budgets.RemoveTotalBudget(ctx, "", "2025-08")},
		{"bad period", f.budgets.SetCategoryBudget(ctx, "u1", "2025-08", "Food", dto.CategoryBudgetRequest{Amount: 1, Period: "Daily"})},
		{"bad currency", f.budgets.SetTotalBudget(ctx, "u1", "2025-08", dto.TotalBudgetRequest{Amount: 1, Currency: "XYZ"})},
	}
	for _, tc := range cases {
		var vErr *errs.ValidationError
		if !errors.As(tc.err, &vErr) {
			t.Fatalf("%s: expected ValidationError, got %v", tc.name, tc.err)
		}
	}
	if f.mem.Writes() != 0 {
		t.Fatalf("expected no writes, got %d", f.mem.Writes())
	}
}

func TestRemoveCategoryBudgetIsolation(t *testing.T) {
	f := newFixture()
	ctx := helpers.TestCtx()

	_ = f.budgets.SetTotalBudget(ctx, "u1", "2025-08", dto.TotalBudgetRequest{Amount: 1000})
	_ = f.budgets.SetCategoryBudget(ctx, "u1", "2025-08", "Food", dto.CategoryBudgetRequest{Amount: 300})
	_ = f.budgets.SetCategoryBudget(ctx, "u1", "2025-08", "Housing", dto.CategoryBudgetRequest{Amount: 500})

	if err := f.budgets.RemoveCategoryBudget(ctx, "u1", "2025-08", "Food"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	b, _ := f.budgets.GetMonth(ctx, "u1", "2025-08")
	if b.TotalAmount() != 1000 {
		t.Fatalf("expected total 1000, got %v", b.TotalAmount())
	}
	if len(b.Categories) != 1 || b.Categories["Housing"] != 500 {
		t.Fatalf("expected only Housing, got %v", b.Categories)
	}
}

func TestRemoveTotalBudgetKeepsCategories(t *testing.T) {
	f := newFixture()
	ctx := helpers.TestCtx()

	_ = f.budgets.SetTotalBudget(ctx, "u1", "2025-08", dto.TotalBudgetRequest{Amount: 1000})
	_ = f.budgets.SetCategoryBudget(ctx, "u1", "2025-08", "Food", dto.CategoryBudgetRequest{Amount: 300})

	if err := f.budgets.RemoveTotalBudget(ctx, "u1", "2025-08"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	b, _ := f.budgets.GetMonth(ctx, "u1", "2025-08")
	if b.Total != nil {
		t.Fatalf("expected total removed, got %v", *b.Total)
	}
	if b.Categories["Food"] != 300 {
		t.Fatalf("expected Food kept, got %v", b.Categories)
	}
}

func TestGetMonthDefaultsForUnwrittenMonth(t *testing.T) {
	f := newFixture()
	ctx := helpers.TestCtx()
	_ = f.mem.Settings().SetDefaultCurrency(ctx, "u1", "EUR")

	b, err := f.budgets.GetMonth(ctx, "u1", "2031-02")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if b.Month != "2031-02" || b.TotalAmount() != 0 || len(b.Categories) != 0 || b.Currency != "EUR" {
		t.Fatalf("unexpected default: %+v", b)
	}
}

func TestListMonths(t *testing.T) {
	f := newFixture()
	ctx := helpers.TestCtx()
	_ = f.budgets.SetTotalBudget(ctx, "u1", "2025-09", dto.TotalBudgetRequest{Amount: 1})
	_ = f.budgets.SetTotalBudget(ctx, "u1", "2025-08", dto.TotalBudgetRequest{Amount: 1})

	months, err := f.budgets.ListMonths(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(months) != 2 || months[0].Month != "2025-08" || months[1].Month != "2025-09" {
		t.Fatalf("unexpected months: %+v", months)
	}
}
