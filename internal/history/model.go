package history

import "time"

// EntryKind identifies what produced a history entry
type EntryKind string

const (
	KindExpense    EntryKind = "expense"
	KindSettlement EntryKind = "settlement"
)

// Entry is one row in the unified activity feed
type Entry struct {
	ID        string    `json:"id"`
	Kind      EntryKind `json:"kind"`
	Title     string    `json:"title"`
	Amount    float64   `json:"amount"`
	Date      time.Time `json:"date"`
	ActorID   string    `json:"actor_id"`
	ActorName string    `json:"actor_name"`
	Detail    string    `json:"detail,omitempty"`
}

// Stats summarizes trip spending for the dashboard
type Stats struct {
	TotalTripSpend float64 `json:"total_trip_spend"`
	MySpend        float64 `json:"my_spend"`
	ExpenseCount   int     `json:"expense_count"`
}
