package dto

// CategoryUsage compares a category's ceiling with what was spent against it.
type CategoryUsage struct {
	Category  string  `json:"category"`
	Budgeted  float64 `json:"budgeted"`
	Spent     float64 `json:"spent"`
	Remaining float64 `json:"remaining"`
	HasBudget bool    `json:"hasBudget"`
}

type BreakdownItem struct {
	Key   string  `json:"key"`
	Total float64 `json:"total"`
	Count int     `json:"count"`
}

// MonthReport is the budget-versus-actual summary of one month.
type MonthReport struct {
	Month             string          `json:"month"`
	Currency          string          `json:"currency"`
	TotalBudget       float64         `json:"totalBudget"`
	TotalIncome       float64         `json:"totalIncome"`
	TotalExpenses     float64         `json:"totalExpenses"`
	NetSavings        float64         `json:"netSavings"`
	RemainingBudget   float64         `json:"remainingBudget"`
	BudgetUtilization float64         `json:"budgetUtilization"` // percent, 0 when no total is set
	Categories        []CategoryUsage `json:"categories"`
	ExpenseBreakdown  []BreakdownItem `json:"expenseBreakdown"`
	IncomeBreakdown   []BreakdownItem `json:"incomeBreakdown"`
}
