package models

import "time"

// Settings holds per-user preferences, stored at users/{uid}/settings/preferences.
type Settings struct {
	DefaultCurrency string    `firestore:"defaultCurrency" json:"defaultCurrency"`
	UpdatedAt       time.Time `firestore:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}
