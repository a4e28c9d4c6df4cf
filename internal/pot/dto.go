package pot

import "time"

// LoadPotRequest represents the request to load one user's pot from their
// wallet (admin only)
type LoadPotRequest struct {
	UserID    string  `json:"user_id" validate:"required"`
	AmountThb float64 `json:"amount_thb" validate:"required,gt=0"`
}

// BulkLoadRequest represents the request to load every member's pot with the
// same amount (admin only)
type BulkLoadRequest struct {
	AmountThbPerPerson float64 `json:"amount_thb_per_person" validate:"required,gt=0"`
}

// LoadPotResponse reports the balances after a load
type LoadPotResponse struct {
	NewPotBalance    float64 `json:"new_pot_balance"`
	NewWalletBalance float64 `json:"new_wallet_balance"`
}

// BulkLoadResult reports the outcome of one user's bulk load
type BulkLoadResult struct {
	UserID  string `json:"user_id"`
	Name    string `json:"name"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// BulkLoadResponse summarizes a bulk load
type BulkLoadResponse struct {
	Message string            `json:"message"`
	Results []*BulkLoadResult `json:"results"`
}

// UserPotResponse pairs a user with their pot balance
type UserPotResponse struct {
	UserID     string  `json:"id"`
	Name       string  `json:"name"`
	PotBalance float64 `json:"pot_balance"`
}

// PotBalancesResponse lists every pot balance with the grand total
type PotBalancesResponse struct {
	Total    float64            `json:"total"`
	Balances []*UserPotResponse `json:"balances"`
}

// ToResponse converts a UserPot model to a UserPotResponse DTO
func (p *UserPot) ToResponse() *UserPotResponse {
	return &UserPotResponse{
		UserID:     p.UserID,
		Name:       p.UserName,
		PotBalance: p.Balance,
	}
}

// TransactionResponse represents one pot ledger entry
type TransactionResponse struct {
	ID           string  `json:"id"`
	Type         string  `json:"type"`
	Amount       float64 `json:"amount"`
	BalanceAfter float64 `json:"balance_after"`
	Description  string  `json:"description"`
	Date         string  `json:"date"`
}

// ToResponse converts a Transaction model to a TransactionResponse DTO
func (t *Transaction) ToResponse() *TransactionResponse {
	return &TransactionResponse{
		ID:           t.ID,
		Type:         string(t.Kind),
		Amount:       t.Amount,
		BalanceAfter: t.BalanceAfter,
		Description:  t.Description,
		Date:         t.CreatedAt.UTC().Format(time.RFC3339),
	}
}
