package models

import "time"

// Budget is the per-month budget document stored under users/{uid}/budgets/{YYYY-MM}.
type Budget struct {
	Month      string             `firestore:"-" json:"month"` // document ID
	Total      *float64           `firestore:"total,omitempty" json:"total,omitempty"`
	Categories map[string]float64 `firestore:"categories,omitempty" json:"categories"`
	Currency   string             `firestore:"currency,omitempty" json:"currency"`
	Period     string             `firestore:"period,omitempty" json:"period,omitempty"`
	StartDate  *time.Time         `firestore:"startDate,omitempty" json:"startDate,omitempty"`
	UpdatedAt  time.Time          `firestore:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// TotalAmount returns the whole-month ceiling, or 0 when none is set.
func (b Budget) TotalAmount() float64 {
	if b.Total == nil {
		return 0
	}
	return *b.Total
}

// Clone returns a copy that shares no maps or pointers with b.
func (b Budget) Clone() Budget {
	out := b
	if b.Total != nil {
		total := *b.Total
		out.Total = &total
	}
	if b.StartDate != nil {
		start := *b.StartDate
		out.StartDate = &start
	}
	out.Categories = make(map[string]float64, len(b.Categories))
	for k, v := range b.Categories {
		out.Categories[k] = v
	}
	return out
}
