package settlement

import "time"

// Status is a settlement's lifecycle state. Rejected rows are kept for the
// audit trail rather than deleted.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusRejected  Status = "rejected"
)

// Direction says who initiated the settlement
type Direction string

const (
	// DirectionPay is the debtor recording "I paid you" (needs confirmation)
	DirectionPay Direction = "pay"
	// DirectionReceive is the creditor recording "you paid me" (immediate)
	DirectionReceive Direction = "receive"
)

// Settlement records money moving from the payer (debtor) to the receiver
// (creditor) outside the expense ledger
type Settlement struct {
	ID                    string     `json:"id"`
	PayerID               string     `json:"payer_id"`
	ReceiverID            string     `json:"receiver_id"`
	AmountThb             float64    `json:"amount_thb"`
	AmountInr             *float64   `json:"amount_inr,omitempty"`
	Status                Status     `json:"status"`
	AffectsPayerWallet    bool       `json:"affects_payer_wallet"`
	AffectsReceiverWallet bool       `json:"affects_receiver_wallet"`
	CreatedAt             time.Time  `json:"created_at"`
	ConfirmedAt           *time.Time `json:"confirmed_at,omitempty"`

	Links []*ExpenseLink `json:"links,omitempty"`

	// Populated via JOIN
	PayerName    string `json:"payer_name,omitempty"`
	ReceiverName string `json:"receiver_name,omitempty"`
}

// ExpenseLink attributes a portion of a settlement to one expense
type ExpenseLink struct {
	SettlementID string  `json:"settlement_id"`
	ExpenseID    string  `json:"expense_id"`
	AmountThb    float64 `json:"amount_thb"`

	ExpenseTitle string `json:"expense_title,omitempty"`
}
