package dto

import "github.com/GregMSThompson/finance-sync/internal/models"

// Snapshot is a point-in-time copy of the synchronized finance state.
type Snapshot struct {
	Expenses []models.Transaction     `json:"expenses"`
	Income   []models.Transaction     `json:"income"`
	Budgets  map[string]models.Budget `json:"budgets"`
	Settings models.Settings          `json:"settings"`
}

// SyncMessage is one frame pushed to live clients.
type SyncMessage struct {
	Type   string    `json:"type"` // "snapshot" or "error"
	Data   *Snapshot `json:"data,omitempty"`
	Stream string    `json:"stream,omitempty"`
	Error  string    `json:"error,omitempty"`
}

const (
	SyncMessageSnapshot = "snapshot"
	SyncMessageError    = "error"
)
