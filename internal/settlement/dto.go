package settlement

import (
	"time"

	"github.com/sanjaibalajee/weebsworldxplorers/internal/balance"
)

// LinkInput is an explicit settlement-to-expense attribution in a request
type LinkInput struct {
	ExpenseID string  `json:"expense_id" validate:"required"`
	AmountThb float64 `json:"amount_thb" validate:"required,gt=0"`
}

// CreateSettlementRequest records a settlement with the other party.
// Direction "receive" means the caller is the creditor confirming money
// arrived; "pay" means the caller is the debtor and the receiver must
// confirm. When Links is empty the server attributes the amount to
// outstanding expenses newest-first.
type CreateSettlementRequest struct {
	OtherUserID   string      `json:"other_user_id" validate:"required"`
	AmountThb     float64     `json:"amount_thb" validate:"required,gt=0"`
	AmountInr     *float64    `json:"amount_inr,omitempty"`
	Direction     string      `json:"direction" validate:"required,oneof=pay receive"`
	AffectsWallet bool        `json:"affects_wallet"`
	Links         []LinkInput `json:"links,omitempty"`
}

// ConfirmSettlementRequest lets the receiver decide whether their own
// wallet is credited when confirming
type ConfirmSettlementRequest struct {
	AffectsMyWallet bool `json:"affects_my_wallet"`
}

// LinkResponse represents one settlement-to-expense attribution
type LinkResponse struct {
	ExpenseID    string  `json:"expense_id"`
	ExpenseTitle string  `json:"expense_title,omitempty"`
	AmountThb    float64 `json:"amount_thb"`
}

// SettlementResponse represents a settlement in API responses
type SettlementResponse struct {
	ID                    string          `json:"id"`
	PayerID               string          `json:"payer_id"`
	PayerName             string          `json:"payer_name,omitempty"`
	ReceiverID            string          `json:"receiver_id"`
	ReceiverName          string          `json:"receiver_name,omitempty"`
	AmountThb             float64         `json:"amount_thb"`
	AmountInr             *float64        `json:"amount_inr,omitempty"`
	Status                string          `json:"status"`
	AffectsPayerWallet    bool            `json:"affects_payer_wallet"`
	AffectsReceiverWallet bool            `json:"affects_receiver_wallet"`
	CreatedAt             string          `json:"created_at"`
	ConfirmedAt           *string         `json:"confirmed_at,omitempty"`
	Links                 []*LinkResponse `json:"links,omitempty"`
}

// ToResponse converts a Settlement model to a SettlementResponse DTO
func (s *Settlement) ToResponse() *SettlementResponse {
	resp := &SettlementResponse{
		ID:                    s.ID,
		PayerID:               s.PayerID,
		PayerName:             s.PayerName,
		ReceiverID:            s.ReceiverID,
		ReceiverName:          s.ReceiverName,
		AmountThb:             s.AmountThb,
		AmountInr:             s.AmountInr,
		Status:                string(s.Status),
		AffectsPayerWallet:    s.AffectsPayerWallet,
		AffectsReceiverWallet: s.AffectsReceiverWallet,
		CreatedAt:             s.CreatedAt.Format(time.RFC3339),
	}
	if s.ConfirmedAt != nil {
		v := s.ConfirmedAt.Format(time.RFC3339)
		resp.ConfirmedAt = &v
	}
	for _, l := range s.Links {
		resp.Links = append(resp.Links, &LinkResponse{
			ExpenseID:    l.ExpenseID,
			ExpenseTitle: l.ExpenseTitle,
			AmountThb:    l.AmountThb,
		})
	}
	return resp
}

// DashboardBalancesResponse is the aggregate owe/owed view plus cash in hand
type DashboardBalancesResponse struct {
	OwedToMe      float64 `json:"owed_to_me"`
	OwedByMe      float64 `json:"owed_by_me"`
	WalletBalance float64 `json:"wallet_balance"`
}

// DetailedBalancesResponse wraps the balance engine's per-person view
type DetailedBalancesResponse struct {
	OwedToYou []balance.PersonBalance `json:"owed_to_you"`
	OwedByYou []balance.PersonBalance `json:"owed_by_you"`
}
