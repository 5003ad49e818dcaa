package dto

type CurrencyRequest struct {
	Currency string `json:"currency"`
}

// PropagationResult summarises a currency fan-out.
type PropagationResult struct {
	Currency string `json:"currency"`
	Budgets  int    `json:"budgets"`
	Expenses int    `json:"expenses"`
	Income   int    `json:"income"`
}

func (r PropagationResult) Total() int {
	return r.Budgets + r.Expenses + r.Income
}
