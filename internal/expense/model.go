package expense

import "time"

// Kind identifies how an expense was funded and who may see it
type Kind string

const (
	KindGroup      Kind = "group"      // paid from members' wallets, split among participants
	KindIndividual Kind = "individual" // personal spend, visible to creator only
	KindPot        Kind = "pot"        // paid from the group pot, admin only
)

// Expense represents one recorded spend with its payers and splits
type Expense struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	TotalAmount float64   `json:"total_amount"`
	Date        time.Time `json:"date"`
	Kind        Kind      `json:"type"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`

	Payers []*Payer `json:"payers,omitempty"`
	Splits []*Split `json:"splits,omitempty"`

	// Populated via JOIN
	CreatorName string `json:"creator_name,omitempty"`
}

// Payer records who put money in. Net contribution = CashGiven - ChangeTaken.
type Payer struct {
	ExpenseID   string  `json:"expense_id"`
	UserID      string  `json:"user_id"`
	CashGiven   float64 `json:"cash_given"`
	ChangeTaken float64 `json:"change_taken"`

	UserName string `json:"user_name,omitempty"`
}

// Net returns the payer's net contribution
func (p *Payer) Net() float64 {
	return p.CashGiven - p.ChangeTaken
}

// Split records who owes what portion of the expense
type Split struct {
	ExpenseID  string  `json:"expense_id"`
	UserID     string  `json:"user_id"`
	Shares     float64 `json:"shares"`
	OwedAmount float64 `json:"owed_amount"`

	UserName string `json:"user_name,omitempty"`
}
