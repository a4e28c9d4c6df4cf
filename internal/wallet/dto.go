package wallet

import (
	"time"

	"github.com/sanjaibalajee/weebsworldxplorers/pkg/currency"
)

// CreateTopupRequest represents the request to load cash into a wallet
type CreateTopupRequest struct {
	AmountThb    float64 `json:"amount_thb" validate:"required,gt=0"`
	ExchangeRate float64 `json:"exchange_rate" validate:"required,gt=0"`
	Source       *string `json:"source,omitempty"`
}

// BalanceResponse represents the current wallet balance in baht, with the
// rupee equivalent at the trip's display rate
type BalanceResponse struct {
	Balance    float64 `json:"balance"`
	BalanceInr float64 `json:"balance_inr"`
}

// TopupResponse represents the response for a topup
type TopupResponse struct {
	ID           string  `json:"id"`
	AmountThb    float64 `json:"amount_thb"`
	ExchangeRate float64 `json:"exchange_rate"`
	InrAmount    float64 `json:"inr_amount"`
	Source       *string `json:"source,omitempty"`
	User         string  `json:"user,omitempty"`
	Date         string  `json:"date"`
}

// TransactionResponse represents one ledger entry
type TransactionResponse struct {
	ID             string  `json:"id"`
	Type           string  `json:"type"`
	Amount         float64 `json:"amount"`
	BalanceAfter   float64 `json:"balance_after"`
	Description    string  `json:"description"`
	Counterparty   string  `json:"counterparty,omitempty"`
	CounterpartyID *string `json:"counterparty_id,omitempty"`
	ReferenceID    *string `json:"reference_id,omitempty"`
	ReferenceType  *string `json:"reference_type,omitempty"`
	Date           string  `json:"date"`
}

// ToResponse converts a Topup model to a TopupResponse DTO
func (t *Topup) ToResponse() *TopupResponse {
	return &TopupResponse{
		ID:           t.ID,
		AmountThb:    t.AmountThb,
		ExchangeRate: t.ExchangeRate,
		InrAmount:    currency.INRAt(t.AmountThb, t.ExchangeRate),
		Source:       t.Source,
		User:         t.UserName,
		Date:         t.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// ToResponse converts a Transaction model to a TransactionResponse DTO
func (t *Transaction) ToResponse() *TransactionResponse {
	return &TransactionResponse{
		ID:             t.ID,
		Type:           string(t.Kind),
		Amount:         t.Amount,
		BalanceAfter:   t.BalanceAfter,
		Description:    t.Description,
		Counterparty:   t.CounterpartyName,
		CounterpartyID: t.CounterpartyID,
		ReferenceID:    t.ReferenceID,
		ReferenceType:  t.ReferenceType,
		Date:           t.CreatedAt.UTC().Format(time.RFC3339),
	}
}
