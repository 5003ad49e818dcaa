package dto

import "time"

// TransactionInput is the payload for adding an expense or income record.
// Nil pointers mean "not supplied" and are filled from the defaulting table.
type TransactionInput struct {
	Title    string     `json:"title"`
	Amount   float64    `json:"amount"`
	Currency *string    `json:"currency,omitempty"`
	Category *string    `json:"category,omitempty"`
	Date     *time.Time `json:"date,omitempty"`
}

// TransactionPatch carries a partial update. Only non-nil fields are written.
type TransactionPatch struct {
	Title    *string    `json:"title,omitempty"`
	Amount   *float64   `json:"amount,omitempty"`
	Currency *string    `json:"currency,omitempty"`
	Category *string    `json:"category,omitempty"`
	Date     *time.Time `json:"date,omitempty"`
}

// DateWindow is a half-open [From, Until) range on the transaction date.
type DateWindow struct {
	From  time.Time
	Until time.Time
}

// Contains reports whether From <= t < Until.
func (w DateWindow) Contains(t time.Time) bool {
	return !t.Before(w.From) && t.Before(w.Until)
}
