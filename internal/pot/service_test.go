package pot

import (
	"context"
	"testing"
)

// fakeStore keeps pot and wallet balances in maps, mirroring the
// insufficient-funds behavior of the real repository.
type fakeStore struct {
	wallets map[string]float64
	pots    map[string]float64
	members []*Member
	ledger  map[string][]*Transaction
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		wallets: make(map[string]float64),
		pots:    make(map[string]float64),
		ledger:  make(map[string][]*Transaction),
	}
}

func (f *fakeStore) Balance(_ context.Context, userID string) (float64, error) {
	return f.pots[userID], nil
}

func (f *fakeStore) ListTransactions(_ context.Context, userID string) ([]*Transaction, error) {
	return f.ledger[userID], nil
}

func (f *fakeStore) Load(_ context.Context, userID string, amount float64, _ string) (float64, float64, error) {
	if f.wallets[userID] < amount {
		return 0, 0, ErrInsufficientWallet
	}
	f.wallets[userID] -= amount
	f.pots[userID] += amount
	f.ledger[userID] = append(f.ledger[userID], &Transaction{
		UserID:       userID,
		Kind:         KindContribution,
		Amount:       amount,
		BalanceAfter: f.pots[userID],
	})
	return f.pots[userID], f.wallets[userID], nil
}

func (f *fakeStore) MemberUsers(_ context.Context) ([]*Member, error) {
	return f.members, nil
}

func (f *fakeStore) MembersWithPots(_ context.Context) ([]*UserPot, error) {
	pots := make([]*UserPot, 0, len(f.members))
	for _, m := range f.members {
		pots = append(pots, &UserPot{UserID: m.ID, UserName: m.Name, Balance: f.pots[m.ID]})
	}
	return pots, nil
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name          string
		walletBalance float64
		req           *LoadPotRequest
		wantErr       error
		wantPot       float64
		wantWallet    float64
	}{
		{
			name:          "moves wallet money into pot",
			walletBalance: 500,
			req:           &LoadPotRequest{UserID: "u1", AmountThb: 200},
			wantPot:       200,
			wantWallet:    300,
		},
		{
			name:          "rejects insufficient wallet",
			walletBalance: 100,
			req:           &LoadPotRequest{UserID: "u1", AmountThb: 200},
			wantErr:       ErrInsufficientWallet,
		},
		{
			name:    "rejects zero amount",
			req:     &LoadPotRequest{UserID: "u1", AmountThb: 0},
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "rejects missing user",
			req:     &LoadPotRequest{AmountThb: 100},
			wantErr: ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			store.wallets["u1"] = tt.walletBalance
			svc := NewService(store)

			resp, err := svc.Load(context.Background(), "admin", tt.req)
			if tt.wantErr != nil {
				if err != tt.wantErr {
					t.Fatalf("Load() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Load() unexpected error: %v", err)
			}
			if resp.NewPotBalance != tt.wantPot {
				t.Errorf("NewPotBalance = %g, want %g", resp.NewPotBalance, tt.wantPot)
			}
			if resp.NewWalletBalance != tt.wantWallet {
				t.Errorf("NewWalletBalance = %g, want %g", resp.NewWalletBalance, tt.wantWallet)
			}
		})
	}
}

func TestBulkLoadSkipsBrokeMembers(t *testing.T) {
	store := newFakeStore()
	store.members = []*Member{
		{ID: "u1", Name: "Ana"},
		{ID: "u2", Name: "Ben"},
		{ID: "u3", Name: "Cam"},
	}
	store.wallets["u1"] = 1000
	store.wallets["u2"] = 50 // cannot cover the load
	store.wallets["u3"] = 1000

	svc := NewService(store)
	resp, err := svc.BulkLoad(context.Background(), "admin", &BulkLoadRequest{AmountThbPerPerson: 300})
	if err != nil {
		t.Fatalf("BulkLoad() unexpected error: %v", err)
	}

	if len(resp.Results) != 3 {
		t.Fatalf("got %d results, want 3", len(resp.Results))
	}

	byUser := make(map[string]*BulkLoadResult)
	for _, r := range resp.Results {
		byUser[r.UserID] = r
	}

	if !byUser["u1"].Success || !byUser["u3"].Success {
		t.Errorf("expected u1 and u3 to be loaded")
	}
	if byUser["u2"].Success {
		t.Errorf("expected u2 to be skipped")
	}
	if byUser["u2"].Error == "" {
		t.Errorf("expected skip reason for u2")
	}

	if store.pots["u1"] != 300 || store.pots["u3"] != 300 {
		t.Errorf("pot balances = %v, want 300 for u1 and u3", store.pots)
	}
	if store.pots["u2"] != 0 {
		t.Errorf("u2 pot = %g, want 0", store.pots["u2"])
	}
}

func TestAllBalancesTotals(t *testing.T) {
	store := newFakeStore()
	store.members = []*Member{{ID: "u1", Name: "Ana"}, {ID: "u2", Name: "Ben"}}
	store.pots["u1"] = 250
	store.pots["u2"] = 150

	svc := NewService(store)
	resp, err := svc.AllBalances(context.Background())
	if err != nil {
		t.Fatalf("AllBalances() unexpected error: %v", err)
	}
	if resp.Total != 400 {
		t.Errorf("Total = %g, want 400", resp.Total)
	}
	if len(resp.Balances) != 2 {
		t.Errorf("got %d balances, want 2", len(resp.Balances))
	}
}
