package balance

import (
	"testing"
)

func groupExpense(id string, payer string, parts ...Participant) Expense {
	return Expense{ID: id, Title: id, PrimaryPayer: payer, Participants: parts}
}

func findBalance(t *testing.T, list []PersonBalance, userID string) PersonBalance {
	t.Helper()
	for _, b := range list {
		if b.UserID == userID {
			return b
		}
	}
	t.Fatalf("no balance entry for %s in %+v", userID, list)
	return PersonBalance{}
}

func TestRoundHalfUp(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{2.4, 2},
		{2.5, 3},
		{2.6, 3},
		{-2.4, -2},
		{-2.5, -3},
		{0.49, 0},
		{0, 0},
	}
	for _, tt := range tests {
		if got := RoundHalfUp(tt.in); got != tt.want {
			t.Errorf("RoundHalfUp(%g) = %g, want %g", tt.in, got, tt.want)
		}
	}
}

func TestEqualThreeWaySplit(t *testing.T) {
	// A pays 300 for dinner split three ways; B and C each owe A 100.
	expenses := []Expense{
		groupExpense("dinner", "a",
			Participant{UserID: "a", Paid: 300, Owed: 100},
			Participant{UserID: "b", Owed: 100},
			Participant{UserID: "c", Owed: 100},
		),
	}

	fromA := Compute("a", expenses, nil)
	if len(fromA.OwedToYou) != 2 || len(fromA.OwedByYou) != 0 {
		t.Fatalf("A's view: owedTo=%d owedBy=%d, want 2/0", len(fromA.OwedToYou), len(fromA.OwedByYou))
	}
	if b := findBalance(t, fromA.OwedToYou, "b"); b.Amount != 100 {
		t.Errorf("B owes A %g, want 100", b.Amount)
	}
	if c := findBalance(t, fromA.OwedToYou, "c"); c.Amount != 100 {
		t.Errorf("C owes A %g, want 100", c.Amount)
	}

	fromB := Compute("b", expenses, nil)
	if len(fromB.OwedByYou) != 1 {
		t.Fatalf("B's view: owedBy=%d, want 1", len(fromB.OwedByYou))
	}
	if a := findBalance(t, fromB.OwedByYou, "a"); a.Amount != 100 {
		t.Errorf("B owes A %g, want 100", a.Amount)
	}
}

func TestProportionalAllocation(t *testing.T) {
	// A overpaid by 100, B underpaid 60, C underpaid 40. All of the
	// deficit is absorbed by A's surplus.
	expenses := []Expense{
		groupExpense("mixed", "a",
			Participant{UserID: "a", Paid: 100},
			Participant{UserID: "b", Owed: 60},
			Participant{UserID: "c", Owed: 40},
		),
	}

	fromA := Compute("a", expenses, nil)
	if b := findBalance(t, fromA.OwedToYou, "b"); b.Amount != 60 {
		t.Errorf("B owes A %g, want 60", b.Amount)
	}
	if c := findBalance(t, fromA.OwedToYou, "c"); c.Amount != 40 {
		t.Errorf("C owes A %g, want 40", c.Amount)
	}
}

func TestSplitSurplusAllocation(t *testing.T) {
	// Two creditors: A over by 60, B over by 40, C under by 100. C's debt
	// splits 60/40 between them.
	expenses := []Expense{
		groupExpense("shared", "a",
			Participant{UserID: "a", Paid: 60},
			Participant{UserID: "b", Paid: 40},
			Participant{UserID: "c", Owed: 100},
		),
	}

	fromA := Compute("a", expenses, nil)
	if c := findBalance(t, fromA.OwedToYou, "c"); c.Amount != 60 {
		t.Errorf("C owes A %g, want 60", c.Amount)
	}

	fromB := Compute("b", expenses, nil)
	if c := findBalance(t, fromB.OwedToYou, "c"); c.Amount != 40 {
		t.Errorf("C owes B %g, want 40", c.Amount)
	}

	// Creditors owe each other nothing.
	if len(fromA.OwedByYou) != 0 || len(fromB.OwedByYou) != 0 {
		t.Errorf("creditors should not owe anyone")
	}
}

func TestSymmetry(t *testing.T) {
	expenses := []Expense{
		groupExpense("e1", "a",
			Participant{UserID: "a", Paid: 500, Owed: 200},
			Participant{UserID: "b", Owed: 150},
			Participant{UserID: "c", Owed: 150},
		),
		groupExpense("e2", "b",
			Participant{UserID: "a", Owed: 90},
			Participant{UserID: "b", Paid: 180, Owed: 90},
		),
	}

	for _, pair := range [][2]string{{"a", "b"}, {"a", "c"}, {"b", "c"}} {
		u, v := pair[0], pair[1]
		fromU := Compute(u, expenses, nil)
		fromV := Compute(v, expenses, nil)

		amount := func(d Detailed, other string) float64 {
			for _, b := range d.OwedToYou {
				if b.UserID == other {
					return b.Amount
				}
			}
			for _, b := range d.OwedByYou {
				if b.UserID == other {
					return -b.Amount
				}
			}
			return 0
		}

		if got, want := amount(fromU, v), -amount(fromV, u); got != want {
			t.Errorf("asymmetry between %s and %s: %g vs %g", u, v, got, -want)
		}
	}
}

func TestSettlementZeroesBalance(t *testing.T) {
	expenses := []Expense{
		groupExpense("dinner", "a",
			Participant{UserID: "a", Paid: 300, Owed: 100},
			Participant{UserID: "b", Owed: 100},
			Participant{UserID: "c", Owed: 100},
		),
	}
	settlements := []Settlement{
		{PayerID: "b", ReceiverID: "a", Amount: 100},
	}

	fromA := Compute("a", expenses, settlements)
	for _, b := range fromA.OwedToYou {
		if b.UserID == "b" {
			t.Errorf("B should be settled, still owes %g", b.Amount)
		}
	}
	if c := findBalance(t, fromA.OwedToYou, "c"); c.Amount != 100 {
		t.Errorf("C owes A %g, want 100", c.Amount)
	}

	fromB := Compute("b", expenses, settlements)
	if len(fromB.OwedByYou) != 0 {
		t.Errorf("B should owe nothing after settling, got %+v", fromB.OwedByYou)
	}
}

func TestIndividualAndPotExcluded(t *testing.T) {
	// The engine only ever receives group expenses; an empty input means
	// clean balances even if settlements reference unknown users with
	// amounts under the display threshold.
	d := Compute("a", nil, []Settlement{{PayerID: "a", ReceiverID: "b", Amount: 0.4}})
	if len(d.OwedToYou) != 0 || len(d.OwedByYou) != 0 {
		t.Errorf("expected empty balances, got %+v", d)
	}
}

func TestOverpaymentFlipsDirection(t *testing.T) {
	// B settles more than owed: the excess shows up as A owing B.
	expenses := []Expense{
		groupExpense("dinner", "a",
			Participant{UserID: "a", Paid: 200, Owed: 100},
			Participant{UserID: "b", Owed: 100},
		),
	}
	settlements := []Settlement{
		{PayerID: "b", ReceiverID: "a", Amount: 150},
	}

	fromA := Compute("a", expenses, settlements)
	if len(fromA.OwedToYou) != 0 {
		t.Errorf("nobody should owe A, got %+v", fromA.OwedToYou)
	}
	if b := findBalance(t, fromA.OwedByYou, "b"); b.Amount != 50 {
		t.Errorf("A owes B %g, want 50", b.Amount)
	}
}

func TestNoiseContributionsDropped(t *testing.T) {
	// Contributions under half a unit are noise.
	expenses := []Expense{
		groupExpense("snack", "a",
			Participant{UserID: "a", Paid: 0.8, Owed: 0.4},
			Participant{UserID: "b", Owed: 0.4},
		),
	}
	d := Compute("a", expenses, nil)
	if len(d.OwedToYou) != 0 {
		t.Errorf("sub-threshold contribution should be dropped, got %+v", d.OwedToYou)
	}
}

func TestTotals(t *testing.T) {
	d := Detailed{
		OwedToYou: []PersonBalance{{Amount: 120}, {Amount: 30}},
		OwedByYou: []PersonBalance{{Amount: 45}},
	}
	toMe, byMe := d.Totals()
	if toMe != 150 || byMe != 45 {
		t.Errorf("Totals() = %g, %g; want 150, 45", toMe, byMe)
	}
}
