package pot

import "time"

// TransactionKind identifies what moved money in or out of a pot
type TransactionKind string

const (
	KindContribution TransactionKind = "contribution"
	KindExpense      TransactionKind = "expense"
	KindRefund       TransactionKind = "refund"
)

// UserPot is the mutable balance summary for one user's pot. It is kept
// consistent with the append-only PotTransaction entries.
type UserPot struct {
	UserID    string    `json:"user_id"`
	Balance   float64   `json:"balance"`
	UpdatedAt time.Time `json:"updated_at"`

	// Populated via JOIN
	UserName string `json:"user_name,omitempty"`
}

// Transaction is one entry in a user's append-only pot ledger. Amount is
// signed (positive = inflow).
type Transaction struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id"`
	Kind          TransactionKind `json:"type"`
	Amount        float64         `json:"amount"`
	BalanceAfter  float64         `json:"balance_after"`
	ReferenceID   *string         `json:"reference_id,omitempty"`
	ReferenceType *string         `json:"reference_type,omitempty"`
	Description   string          `json:"description"`
	CreatedBy     string          `json:"created_by"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Member is a non-admin user eligible for pot funding
type Member struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
