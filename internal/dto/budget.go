package dto

import "time"

// CategoryBudgetWrite is one category ceiling merged into a month document.
type CategoryBudgetWrite struct {
	Category  string
	Amount    float64
	Currency  string
	Period    string
	StartDate time.Time
}

// CategoryBudgetRequest is the API payload for a category ceiling. Empty
// optional fields are defaulted by the budget repository.
type CategoryBudgetRequest struct {
	Amount    float64    `json:"amount"`
	Currency  string     `json:"currency,omitempty"`
	Period    string     `json:"period,omitempty"`
	StartDate *time.Time `json:"startDate,omitempty"`
}

type TotalBudgetRequest struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency,omitempty"`
}
