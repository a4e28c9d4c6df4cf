package expense

import (
	"context"
	"database/sql"
	"reflect"
	"testing"
	"time"

	"github.com/sanjaibalajee/weebsworldxplorers/internal/wallet"
)

type fakeWalletLedger struct {
	balances map[string]float64
	locked   [][]string
	appends  []wallet.AppendParams
}

func newFakeWalletLedger() *fakeWalletLedger {
	return &fakeWalletLedger{balances: make(map[string]float64)}
}

func (f *fakeWalletLedger) AppendTx(_ context.Context, _ *sql.Tx, p wallet.AppendParams) (*wallet.Transaction, error) {
	f.balances[p.UserID] += p.Amount
	f.appends = append(f.appends, p)
	return &wallet.Transaction{
		UserID:       p.UserID,
		Kind:         p.Kind,
		Amount:       p.Amount,
		BalanceAfter: f.balances[p.UserID],
	}, nil
}

func (f *fakeWalletLedger) LockUsersTx(_ context.Context, _ *sql.Tx, userIDs []string) error {
	f.locked = append(f.locked, userIDs)
	return nil
}

type fakePotLedger struct {
	balances map[string]float64
	entries  []string
}

func (f *fakePotLedger) DeductForExpenseTx(_ context.Context, _ *sql.Tx, userID string, amount float64, _, _, _ string) error {
	f.balances[userID] -= amount
	f.entries = append(f.entries, "expense:"+userID)
	return nil
}

func (f *fakePotLedger) RefundTx(_ context.Context, _ *sql.Tx, userID string, amount float64, _, _ string) error {
	f.balances[userID] += amount
	f.entries = append(f.entries, "refund:"+userID)
	return nil
}

func potExpense() *Expense {
	return &Expense{
		ID:          "e1",
		Title:       "Hostel night",
		TotalAmount: 250,
		Date:        time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
		Kind:        KindPot,
		CreatedBy:   "admin1",
		Payers:      []*Payer{{UserID: "admin1", CashGiven: 250}},
		Splits: []*Split{
			{UserID: "alice", Shares: 1, OwedAmount: 100},
			{UserID: "bob", Shares: 1, OwedAmount: 150},
		},
	}
}

func TestPotExpenseDeleteRestoresPots(t *testing.T) {
	pots := &fakePotLedger{balances: map[string]float64{"alice": 500, "bob": 500}}
	r := &Repository{wallets: newFakeWalletLedger(), pots: pots}
	e := potExpense()

	if err := r.applySideEffects(context.Background(), nil, e); err != nil {
		t.Fatalf("applySideEffects() unexpected error: %v", err)
	}
	if pots.balances["alice"] != 400 || pots.balances["bob"] != 350 {
		t.Fatalf("after deduct: alice=%g bob=%g, want 400/350", pots.balances["alice"], pots.balances["bob"])
	}

	if err := r.reverseSideEffects(context.Background(), nil, e, "Refund for deleted expense", false); err != nil {
		t.Fatalf("reverseSideEffects() unexpected error: %v", err)
	}
	if pots.balances["alice"] != 500 || pots.balances["bob"] != 500 {
		t.Errorf("after refund: alice=%g bob=%g, want both back at 500", pots.balances["alice"], pots.balances["bob"])
	}

	want := []string{"expense:alice", "expense:bob", "refund:alice", "refund:bob"}
	if !reflect.DeepEqual(pots.entries, want) {
		t.Errorf("pot ledger entries = %v, want %v", pots.entries, want)
	}
}

func TestGroupExpenseDeleteRestoresWallets(t *testing.T) {
	wallets := newFakeWalletLedger()
	r := &Repository{wallets: wallets, pots: &fakePotLedger{balances: map[string]float64{}}}

	e := &Expense{
		ID:          "e2",
		Title:       "Street food",
		TotalAmount: 450,
		Kind:        KindGroup,
		CreatedBy:   "alice",
		Payers: []*Payer{
			{UserID: "alice", CashGiven: 300},
			{UserID: "bob", CashGiven: 200, ChangeTaken: 50},
			{UserID: "carol"}, // net zero, no ledger entry
		},
		Splits: []*Split{
			{UserID: "alice", Shares: 1, OwedAmount: 150},
			{UserID: "bob", Shares: 1, OwedAmount: 150},
			{UserID: "carol", Shares: 1, OwedAmount: 150},
		},
	}

	if err := r.applySideEffects(context.Background(), nil, e); err != nil {
		t.Fatalf("applySideEffects() unexpected error: %v", err)
	}
	if wallets.balances["alice"] != -300 || wallets.balances["bob"] != -150 {
		t.Fatalf("after debit: alice=%g bob=%g, want -300/-150", wallets.balances["alice"], wallets.balances["bob"])
	}
	if _, ok := wallets.balances["carol"]; ok {
		t.Error("net-zero payer got a ledger entry")
	}

	if err := r.reverseSideEffects(context.Background(), nil, e, "Refund for deleted expense", false); err != nil {
		t.Fatalf("reverseSideEffects() unexpected error: %v", err)
	}
	for _, user := range []string{"alice", "bob"} {
		if wallets.balances[user] != 0 {
			t.Errorf("%s wallet = %g after reversal, want 0", user, wallets.balances[user])
		}
	}

	// Delete-path compensating entries carry no expense reference
	for _, p := range wallets.appends[2:] {
		if p.ReferenceID != nil || p.ReferenceType != nil {
			t.Errorf("compensating entry for %s still references the expense", p.UserID)
		}
	}
}

func TestAffectedUsersSortedUnion(t *testing.T) {
	old := &Expense{
		Payers: []*Payer{{UserID: "dave", CashGiven: 100}, {UserID: "bob", CashGiven: 50}},
		Splits: []*Split{{UserID: "bob", OwedAmount: 75}, {UserID: "erin", OwedAmount: 75}},
	}
	updated := &Expense{
		Payers: []*Payer{{UserID: "alice", CashGiven: 150}},
		Splits: []*Split{{UserID: "bob", OwedAmount: 75}, {UserID: "carol", OwedAmount: 75}},
	}

	got := affectedUsers(old, updated)
	want := []string{"alice", "bob", "carol", "dave", "erin"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("affectedUsers = %v, want %v", got, want)
	}

	if got := affectedUsers(nil, updated); !reflect.DeepEqual(got, []string{"alice", "bob", "carol"}) {
		t.Errorf("affectedUsers with nil old = %v", got)
	}
}
