package models

import (
	"time"
)

// Transaction is the shared shape of expenses and income records.
type Transaction struct {
	ID        string    `firestore:"-" json:"id"` // document ID
	Title     string    `firestore:"title" json:"title"`
	Amount    float64   `firestore:"amount" json:"amount"`
	Currency  string    `firestore:"currency" json:"currency"`
	Category  string    `firestore:"category" json:"category"`
	Date      time.Time `firestore:"date" json:"date"` // user-chosen effective date
	CreatedAt time.Time `firestore:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `firestore:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}
