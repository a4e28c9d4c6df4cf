package expense

import (
	"time"

	"github.com/sanjaibalajee/weebsworldxplorers/internal/expense/split"
)

// PayerInput represents one payer in a create/update request
type PayerInput struct {
	UserID      string  `json:"user_id" validate:"required"`
	CashGiven   float64 `json:"cash_given" validate:"gte=0"`
	ChangeTaken float64 `json:"change_taken" validate:"gte=0"`
}

// CreateExpenseRequest represents the request to record an expense.
// Participants carry the per-user values the chosen split type needs; owed
// amounts are computed server-side. Pot expenses take no payers: the admin
// is recorded as the single synthetic payer.
type CreateExpenseRequest struct {
	Title        string        `json:"title" validate:"required"`
	TotalAmount  float64       `json:"total_amount" validate:"required,gt=0"`
	Date         string        `json:"date" validate:"required"` // YYYY-MM-DD
	Kind         string        `json:"type" validate:"required,oneof=group individual pot"`
	SplitType    string        `json:"split_type" validate:"required,oneof=EVEN SHARES EXACT"`
	Payers       []PayerInput  `json:"payers,omitempty"`
	Participants []split.Input `json:"participants" validate:"required,min=1"`
}

// UpdateExpenseRequest replaces an expense's payers and splits wholesale
type UpdateExpenseRequest struct {
	Title        string        `json:"title" validate:"required"`
	TotalAmount  float64       `json:"total_amount" validate:"required,gt=0"`
	Date         string        `json:"date" validate:"required"`
	SplitType    string        `json:"split_type" validate:"required,oneof=EVEN SHARES EXACT"`
	Payers       []PayerInput  `json:"payers,omitempty"`
	Participants []split.Input `json:"participants" validate:"required,min=1"`
}

// PayerResponse represents one payer in an expense response
type PayerResponse struct {
	UserID      string  `json:"user_id"`
	UserName    string  `json:"user_name,omitempty"`
	CashGiven   float64 `json:"cash_given"`
	ChangeTaken float64 `json:"change_taken"`
	Net         float64 `json:"net"`
}

// SplitResponse represents one split in an expense response
type SplitResponse struct {
	UserID     string  `json:"user_id"`
	UserName   string  `json:"user_name,omitempty"`
	Shares     float64 `json:"shares"`
	OwedAmount float64 `json:"owed_amount"`
}

// ExpenseResponse represents an expense in API responses
type ExpenseResponse struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	TotalAmount float64          `json:"total_amount"`
	Date        string           `json:"date"`
	Kind        string           `json:"type"`
	CreatedBy   string           `json:"created_by"`
	CreatorName string           `json:"creator_name,omitempty"`
	CreatedAt   string           `json:"created_at"`
	Payers      []*PayerResponse `json:"payers"`
	Splits      []*SplitResponse `json:"splits"`
}

// ToResponse converts an Expense model to an ExpenseResponse DTO
func (e *Expense) ToResponse() *ExpenseResponse {
	resp := &ExpenseResponse{
		ID:          e.ID,
		Title:       e.Title,
		TotalAmount: e.TotalAmount,
		Date:        e.Date.Format("2006-01-02"),
		Kind:        string(e.Kind),
		CreatedBy:   e.CreatedBy,
		CreatorName: e.CreatorName,
		CreatedAt:   e.CreatedAt.UTC().Format(time.RFC3339),
		Payers:      make([]*PayerResponse, len(e.Payers)),
		Splits:      make([]*SplitResponse, len(e.Splits)),
	}
	for i, p := range e.Payers {
		resp.Payers[i] = &PayerResponse{
			UserID:      p.UserID,
			UserName:    p.UserName,
			CashGiven:   p.CashGiven,
			ChangeTaken: p.ChangeTaken,
			Net:         p.Net(),
		}
	}
	for i, s := range e.Splits {
		resp.Splits[i] = &SplitResponse{
			UserID:     s.UserID,
			UserName:   s.UserName,
			Shares:     s.Shares,
			OwedAmount: s.OwedAmount,
		}
	}
	return resp
}
