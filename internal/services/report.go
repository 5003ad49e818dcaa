package services

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/GregMSThompson/finance-sync/internal/dto"
	"github.com/GregMSThompson/finance-sync/internal/models"
	"github.com/GregMSThompson/finance-sync/internal/taxonomy"
)

type reportTransactions interface {
	ListByMonth(ctx context.Context, uid, month string) ([]models.Transaction, error)
}

type reportBudgets interface {
	GetMonth(ctx context.Context, uid, month string) (models.Budget, error)
}

type reportService struct {
	expenses reportTransactions
	income   reportTransactions
	budgets  reportBudgets
}

func NewReportService(expenses, income reportTransactions, budgets reportBudgets) *reportService {
	return &reportService{expenses: expenses, income: income, budgets: budgets}
}

// MonthReport compares a month's spending with its budget and summarises
// income and expenses by category.
func (s *reportService) MonthReport(ctx context.Context, uid, month string) (dto.MonthReport, error) {
	report := dto.MonthReport{Month: month}

	budget, err := s.budgets.GetMonth(ctx, uid, month)
	if err != nil {
		return report, err
	}
	expenses, err := s.expenses.ListByMonth(ctx, uid, month)
	if err != nil {
		return report, err
	}
	income, err := s.income.ListByMonth(ctx, uid, month)
	if err != nil {
		return report, err
	}

	spent, totalExpenses := groupByCategory(expenses)
	earned, totalIncome := groupByCategory(income)
	totalBudget := decimal.NewFromFloat(budget.TotalAmount())

	report.Currency = budget.Currency
	report.TotalBudget = money(totalBudget)
	report.TotalExpenses = money(totalExpenses)
	report.TotalIncome = money(totalIncome)
	report.NetSavings = money(totalIncome.Sub(totalExpenses))
	report.RemainingBudget = money(totalBudget.Sub(totalExpenses))
	if totalBudget.IsPositive() {
		report.BudgetUtilization = money(totalExpenses.Div(totalBudget).Mul(decimal.NewFromInt(100)))
	}
	report.Categories = categoryUsage(budget.Categories, spent)
	report.ExpenseBreakdown = breakdownItems(spent)
	report.IncomeBreakdown = breakdownItems(earned)
	return report, nil
}

type categoryTotal struct {
	total decimal.Decimal
	count int
}

func groupByCategory(txs []models.Transaction) (map[string]*categoryTotal, decimal.Decimal) {
	groups := map[string]*categoryTotal{}
	sum := decimal.Zero
	for _, tx := range txs {
		key := tx.Category
		if key == "" {
			key = taxonomy.CategoryOther
		}
		g, ok := groups[key]
		if !ok {
			g = &categoryTotal{total: decimal.Zero}
			groups[key] = g
		}
		amount := decimal.NewFromFloat(tx.Amount)
		g.total = g.total.Add(amount)
		g.count++
		sum = sum.Add(amount)
	}
	return groups, sum
}

// categoryUsage lists every budgeted category plus any category with spending
// but no ceiling, sorted by name.
func categoryUsage(ceilings map[string]float64, spent map[string]*categoryTotal) []dto.CategoryUsage {
	names := make(map[string]struct{}, len(ceilings)+len(spent))
	for name := range ceilings {
		names[name] = struct{}{}
	}
	for name := range spent {
		names[name] = struct{}{}
	}

	out := make([]dto.CategoryUsage, 0, len(names))
	for name := range names {
		ceiling, hasBudget := ceilings[name]
		budgeted := decimal.NewFromFloat(ceiling)
		used := decimal.Zero
		if g, ok := spent[name]; ok {
			used = g.total
		}
		out = append(out, dto.CategoryUsage{
			Category:  name,
			Budgeted:  money(budgeted),
			Spent:     money(used),
			Remaining: money(budgeted.Sub(used)),
			HasBudget: hasBudget,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}

// breakdownItems orders categories by total descending, then by name.
func breakdownItems(groups map[string]*categoryTotal) []dto.BreakdownItem {
	out := make([]dto.BreakdownItem, 0, len(groups))
	for key, g := range groups {
		out = append(out, dto.BreakdownItem{Key: key, Total: money(g.total), Count: g.count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total == out[j].Total {
			return out[i].Key < out[j].Key
		}
		return out[i].Total > out[j].Total
	})
	return out
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
