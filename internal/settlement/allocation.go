package settlement

import (
	"sort"
	"time"
)

// Outstanding is one expense's remaining unsettled amount between two users
type Outstanding struct {
	ExpenseID string
	Date      time.Time
	Remaining float64
}

// Allocate attributes a settle amount to outstanding expenses newest-first,
// consuming each expense's remaining amount until the settle amount runs
// out; the last expense touched may be partially consumed. Any amount left
// after all expenses are consumed is simply unattributed — attribution is
// for display, not for balance math.
func Allocate(amount float64, outstanding []Outstanding) []*ExpenseLink {
	sorted := make([]Outstanding, len(outstanding))
	copy(sorted, outstanding)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date)
	})

	var links []*ExpenseLink
	remaining := amount
	for _, o := range sorted {
		if remaining <= 0 {
			break
		}
		if o.Remaining <= 0 {
			continue
		}
		take := o.Remaining
		if take > remaining {
			take = remaining
		}
		links = append(links, &ExpenseLink{
			ExpenseID: o.ExpenseID,
			AmountThb: take,
		})
		remaining -= take
	}

	return links
}
