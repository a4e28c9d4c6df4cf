// Package balance computes who owes whom across the trip's group expenses.
// It is a pure aggregation: callers feed it expense and settlement data and
// it returns the netted, rounded view for one user. Nothing is cached.
package balance

import (
	"math"
	"sort"
	"time"
)

const (
	// contributionFloor drops per-expense allocations too small to matter
	contributionFloor = 0.5
	// squareEpsilon treats a participant as even on an expense
	squareEpsilon = 0.01
)

// Participant is one person's stake in a group expense: what they paid net
// and what they owed. A payer who is in no split still participates with
// owed 0.
type Participant struct {
	UserID string
	Paid   float64
	Owed   float64
}

// Net returns the participant's net contribution. Positive = overpaid.
func (p Participant) Net() float64 {
	return p.Paid - p.Owed
}

// Expense is one group expense as the engine sees it
type Expense struct {
	ID           string
	Title        string
	Date         time.Time
	PrimaryPayer string // who paid most, for display
	Participants []Participant
}

// Settlement is one confirmed settlement as the engine sees it
type Settlement struct {
	PayerID    string
	ReceiverID string
	Amount     float64
}

// ExpenseShare attributes part of a person's balance to one expense
type ExpenseShare struct {
	ExpenseID string    `json:"expense_id"`
	Title     string    `json:"title"`
	Amount    float64   `json:"amount"`
	Date      time.Time `json:"date"`
	PaidBy    string    `json:"paid_by"`
}

// PersonBalance is the netted amount between the requesting user and one
// other person, with the expenses that produced it
type PersonBalance struct {
	UserID   string         `json:"user_id"`
	UserName string         `json:"user_name,omitempty"`
	Amount   float64        `json:"amount"`
	Expenses []ExpenseShare `json:"expenses"`
}

// Detailed is the full owe/owed view for one user
type Detailed struct {
	OwedToYou []PersonBalance `json:"owed_to_you"`
	OwedByYou []PersonBalance `json:"owed_by_you"`
}

// RoundHalfUp rounds to the nearest whole unit, halves away from zero on
// the magnitude: 2.5 -> 3, -2.5 -> -3. Go's math.Round happens to match,
// but the policy is load-bearing (a settlement of the displayed amount must
// zero the balance exactly), so it gets its own name.
func RoundHalfUp(x float64) float64 {
	if x < 0 {
		return -math.Floor(-x + 0.5)
	}
	return math.Floor(x + 0.5)
}

type running struct {
	amount   float64
	expenses []ExpenseShare
}

// Compute produces the detailed balances for userID over the given group
// expenses and confirmed settlements. Positive running amounts mean "they
// owe me"; settlements net against the aggregate, not expense by expense.
func Compute(userID string, expenses []Expense, settlements []Settlement) Detailed {
	balances := make(map[string]*running)

	for _, e := range expenses {
		myNet := 0.0
		totalOverpaid := 0.0
		found := false
		for _, p := range e.Participants {
			net := p.Net()
			if net > 0 {
				totalOverpaid += net
			}
			if p.UserID == userID {
				myNet = net
				found = true
			}
		}
		if !found || math.Abs(myNet) < squareEpsilon || totalOverpaid == 0 {
			continue
		}

		for _, p := range e.Participants {
			if p.UserID == userID {
				continue
			}
			theirNet := p.Net()

			// Money flows from underpayers to overpayers, allocated in
			// proportion to each creditor's share of the surplus.
			var contribution float64
			switch {
			case myNet > 0 && theirNet < 0:
				contribution = -theirNet * (myNet / totalOverpaid)
			case myNet < 0 && theirNet > 0:
				contribution = -(-myNet * (theirNet / totalOverpaid))
			default:
				continue
			}

			if math.Abs(contribution) < contributionFloor {
				continue
			}

			r := balances[p.UserID]
			if r == nil {
				r = &running{}
				balances[p.UserID] = r
			}
			r.amount += contribution
			r.expenses = append(r.expenses, ExpenseShare{
				ExpenseID: e.ID,
				Title:     e.Title,
				Amount:    RoundHalfUp(contribution),
				Date:      e.Date,
				PaidBy:    e.PrimaryPayer,
			})
		}
	}

	// Round before netting settlements so settling the displayed amount
	// zeroes the balance.
	for _, r := range balances {
		r.amount = RoundHalfUp(r.amount)
	}

	for _, s := range settlements {
		var other string
		var delta float64
		switch userID {
		case s.ReceiverID:
			other = s.PayerID
			delta = -s.Amount
		case s.PayerID:
			other = s.ReceiverID
			delta = s.Amount
		default:
			continue
		}
		r := balances[other]
		if r == nil {
			r = &running{}
			balances[other] = r
		}
		r.amount += delta
	}

	var detailed Detailed
	for otherID, r := range balances {
		amount := RoundHalfUp(r.amount)
		if math.Abs(amount) < 1 {
			continue
		}
		if amount > 0 {
			detailed.OwedToYou = append(detailed.OwedToYou, PersonBalance{
				UserID:   otherID,
				Amount:   amount,
				Expenses: r.expenses,
			})
		} else {
			detailed.OwedByYou = append(detailed.OwedByYou, PersonBalance{
				UserID:   otherID,
				Amount:   -amount,
				Expenses: r.expenses,
			})
		}
	}

	sort.Slice(detailed.OwedToYou, func(i, j int) bool {
		return detailed.OwedToYou[i].Amount > detailed.OwedToYou[j].Amount
	})
	sort.Slice(detailed.OwedByYou, func(i, j int) bool {
		return detailed.OwedByYou[i].Amount > detailed.OwedByYou[j].Amount
	})

	return detailed
}

// Totals sums the two sides of a detailed view for the dashboard
func (d Detailed) Totals() (owedToMe, owedByMe float64) {
	for _, b := range d.OwedToYou {
		owedToMe += b.Amount
	}
	for _, b := range d.OwedByYou {
		owedByMe += b.Amount
	}
	return owedToMe, owedByMe
}
