package wallet

import "time"

// TransactionKind identifies what moved money in or out of a wallet
type TransactionKind string

const (
	KindTopup              TransactionKind = "topup"
	KindExpensePaid        TransactionKind = "expense_paid"
	KindSettlementSent     TransactionKind = "settlement_sent"
	KindSettlementReceived TransactionKind = "settlement_received"
	KindPotContribution    TransactionKind = "pot_contribution"
)

// Transaction is one entry in a user's append-only cash ledger. Amount is
// signed (positive = inflow); BalanceAfter is the running balance once this
// entry is applied. Entries are never updated in place — reversals insert a
// compensating entry instead.
type Transaction struct {
	ID             string          `json:"id"`
	UserID         string          `json:"user_id"`
	Kind           TransactionKind `json:"type"`
	Amount         float64         `json:"amount"`
	BalanceAfter   float64         `json:"balance_after"`
	ReferenceID    *string         `json:"reference_id,omitempty"`
	ReferenceType  *string         `json:"reference_type,omitempty"`
	CounterpartyID *string         `json:"counterparty_id,omitempty"`
	Description    string          `json:"description"`
	CreatedAt      time.Time       `json:"created_at"`

	// Populated via JOIN
	CounterpartyName string `json:"counterparty,omitempty"`
}

// Topup records cash loaded into a wallet, with the exchange rate it was
// bought at. Creating one appends the matching ledger entry.
type Topup struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	AmountThb    float64   `json:"amount_thb"`
	ExchangeRate float64   `json:"exchange_rate"`
	Source       *string   `json:"source,omitempty"`
	CreatedAt    time.Time `json:"created_at"`

	// Populated via JOIN
	UserName string `json:"user,omitempty"`
}
