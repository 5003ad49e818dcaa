package dto

// TransactionRequest is the HTTP body for creating or patching an expense or
// income record. Date is YYYY-MM-DD or RFC 3339.
type TransactionRequest struct {
	Title    *string  `json:"title,omitempty"`
	Amount   *float64 `json:"amount,omitempty"`
	Currency *string  `json:"currency,omitempty"`
	Category *string  `json:"category,omitempty"`
	Date     *string  `json:"date,omitempty"`
}

// SyncRequest is sent by live clients to move their subscription to another
// month. An empty month follows every record.
type SyncRequest struct {
	Month string `json:"month"`
}
