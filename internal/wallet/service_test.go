package wallet

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

// fakeStore reproduces the ledger chain arithmetic in memory: every append
// reads the latest balance and writes balance_after = balance + amount.
type fakeStore struct {
	transactions map[string][]*Transaction
	topups       []*Topup
	nextID       int
}

func newFakeStore() *fakeStore {
	return &fakeStore{transactions: make(map[string][]*Transaction)}
}

func (f *fakeStore) CurrentBalance(_ context.Context, userID string) (float64, error) {
	txns := f.transactions[userID]
	if len(txns) == 0 {
		return 0, nil
	}
	return txns[len(txns)-1].BalanceAfter, nil
}

func (f *fakeStore) Append(_ context.Context, p AppendParams) (*Transaction, error) {
	balance, _ := f.CurrentBalance(context.Background(), p.UserID)
	f.nextID++
	txn := &Transaction{
		ID:           fmt.Sprintf("t%d", f.nextID),
		UserID:       p.UserID,
		Kind:         p.Kind,
		Amount:       p.Amount,
		BalanceAfter: balance + p.Amount,
		Description:  p.Description,
		CreatedAt:    time.Now(),
	}
	f.transactions[p.UserID] = append(f.transactions[p.UserID], txn)
	return txn, nil
}

func (f *fakeStore) CreateTopup(_ context.Context, topup *Topup) (*Topup, error) {
	f.nextID++
	topup.ID = fmt.Sprintf("tp%d", f.nextID)
	topup.CreatedAt = time.Now()
	f.topups = append(f.topups, topup)
	if _, err := f.Append(context.Background(), AppendParams{
		UserID: topup.UserID,
		Kind:   KindTopup,
		Amount: topup.AmountThb,
	}); err != nil {
		return nil, err
	}
	return topup, nil
}

func (f *fakeStore) ListTransactions(_ context.Context, userID string) ([]*Transaction, error) {
	return f.transactions[userID], nil
}

func (f *fakeStore) ListTopups(_ context.Context, userID string) ([]*Topup, error) {
	var out []*Topup
	for _, t := range f.topups {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeStore) ListAllTopups(_ context.Context) ([]*Topup, error) {
	return f.topups, nil
}

func (f *fakeStore) HasTransactions(_ context.Context, userID string) (bool, error) {
	return len(f.transactions[userID]) > 0, nil
}

func TestTopupValidation(t *testing.T) {
	tests := []struct {
		name    string
		req     *CreateTopupRequest
		wantErr error
	}{
		{
			name: "accepts valid topup",
			req:  &CreateTopupRequest{AmountThb: 500, ExchangeRate: 2.4},
		},
		{
			name:    "rejects zero amount",
			req:     &CreateTopupRequest{AmountThb: 0, ExchangeRate: 2.4},
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "rejects negative rate",
			req:     &CreateTopupRequest{AmountThb: 500, ExchangeRate: -1},
			wantErr: ErrInvalidRate,
		},
		{
			name: "defaults omitted rate",
			req:  &CreateTopupRequest{AmountThb: 500},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(newFakeStore(), 2.4)
			topup, err := svc.Topup(context.Background(), "u1", tt.req)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Topup() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Topup() unexpected error: %v", err)
			}
			if topup.ExchangeRate <= 0 {
				t.Errorf("ExchangeRate = %g, want positive", topup.ExchangeRate)
			}
		})
	}
}

func TestBalanceChainStaysConsistent(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, 2.4)

	// topup, spend, settle in, contribute to pot
	if _, err := svc.Topup(context.Background(), "u1", &CreateTopupRequest{AmountThb: 1000, ExchangeRate: 2.4}); err != nil {
		t.Fatalf("Topup() unexpected error: %v", err)
	}
	steps := []AppendParams{
		{UserID: "u1", Kind: KindExpensePaid, Amount: -350},
		{UserID: "u1", Kind: KindSettlementReceived, Amount: 120},
		{UserID: "u1", Kind: KindPotContribution, Amount: -200},
	}
	for _, p := range steps {
		if _, err := store.Append(context.Background(), p); err != nil {
			t.Fatalf("Append() unexpected error: %v", err)
		}
	}

	balance, err := svc.Balance(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Balance() unexpected error: %v", err)
	}
	if balance.Balance != 570 {
		t.Errorf("Balance = %g, want 570", balance.Balance)
	}
	if balance.BalanceInr != 1368 {
		t.Errorf("BalanceInr = %g, want 1368 (570 at rate 2.4)", balance.BalanceInr)
	}

	// Every entry's balance_after equals the prior one plus its amount
	txns, _ := svc.Transactions(context.Background(), "u1")
	prev := 0.0
	for _, txn := range txns {
		if txn.BalanceAfter != prev+txn.Amount {
			t.Errorf("chain broken at %s: %g != %g + %g", txn.ID, txn.BalanceAfter, prev, txn.Amount)
		}
		prev = txn.BalanceAfter
	}
}

func TestHasSetup(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, 2.4)

	has, err := svc.HasSetup(context.Background(), "u1")
	if err != nil || has {
		t.Fatalf("HasSetup() = %v, %v; want false, nil", has, err)
	}

	if _, err := svc.Topup(context.Background(), "u1", &CreateTopupRequest{AmountThb: 100, ExchangeRate: 2.4}); err != nil {
		t.Fatalf("Topup() unexpected error: %v", err)
	}

	has, err = svc.HasSetup(context.Background(), "u1")
	if err != nil || !has {
		t.Fatalf("HasSetup() = %v, %v; want true, nil", has, err)
	}
}
