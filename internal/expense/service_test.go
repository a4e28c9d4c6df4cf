package expense

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sanjaibalajee/weebsworldxplorers/internal/expense/split"
)

type fakeStore struct {
	expenses []*Expense
	nextID   int
	deleted  []string
}

func (f *fakeStore) Create(_ context.Context, e *Expense) (*Expense, error) {
	f.nextID++
	e.ID = fmt.Sprintf("e%d", f.nextID)
	e.CreatedAt = time.Now()
	f.expenses = append(f.expenses, e)
	return e, nil
}

func (f *fakeStore) Update(_ context.Context, e *Expense) (*Expense, error) {
	for i, existing := range f.expenses {
		if existing.ID == e.ID {
			e.Kind = existing.Kind
			e.CreatedBy = existing.CreatedBy
			e.CreatedAt = existing.CreatedAt
			f.expenses[i] = e
			return e, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) Delete(_ context.Context, id string) error {
	for i, e := range f.expenses {
		if e.ID == id {
			f.expenses = append(f.expenses[:i], f.expenses[i+1:]...)
			f.deleted = append(f.deleted, id)
			return nil
		}
	}
	return errors.New("not found")
}

func (f *fakeStore) GetByID(_ context.Context, id string) (*Expense, error) {
	for _, e := range f.expenses {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) List(_ context.Context) ([]*Expense, error) {
	return f.expenses, nil
}

func fptr(v float64) *float64 { return &v }

func evenParticipants(userIDs ...string) []split.Input {
	inputs := make([]split.Input, len(userIDs))
	for i, id := range userIDs {
		inputs[i] = split.Input{UserID: id}
	}
	return inputs
}

func TestCreateGroupExpense(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store)

	resp, err := svc.Create(context.Background(), "alice", false, &CreateExpenseRequest{
		Title:        "Dinner",
		TotalAmount:  300,
		Date:         "2026-01-15",
		Kind:         "group",
		SplitType:    "EVEN",
		Payers:       []PayerInput{{UserID: "alice", CashGiven: 300}},
		Participants: evenParticipants("alice", "bob", "carol"),
	})
	if err != nil {
		t.Fatalf("Create() unexpected error: %v", err)
	}

	if len(resp.Splits) != 3 {
		t.Fatalf("got %d splits, want 3", len(resp.Splits))
	}
	for _, s := range resp.Splits {
		if s.OwedAmount != 100 {
			t.Errorf("split %s owes %g, want 100", s.UserID, s.OwedAmount)
		}
	}
	if len(resp.Payers) != 1 || resp.Payers[0].Net != 300 {
		t.Errorf("expected single payer with net 300, got %+v", resp.Payers)
	}
}

func TestCreateRejectsPayerMismatch(t *testing.T) {
	svc := NewService(&fakeStore{})

	_, err := svc.Create(context.Background(), "alice", false, &CreateExpenseRequest{
		Title:        "Dinner",
		TotalAmount:  300,
		Date:         "2026-01-15",
		Kind:         "group",
		SplitType:    "EVEN",
		Payers:       []PayerInput{{UserID: "alice", CashGiven: 250}},
		Participants: evenParticipants("alice", "bob"),
	})
	if !errors.Is(err, ErrPayerMismatch) {
		t.Fatalf("Create() error = %v, want ErrPayerMismatch", err)
	}
}

func TestCreatePotExpense(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store)

	// Non-admin is refused
	_, err := svc.Create(context.Background(), "bob", false, &CreateExpenseRequest{
		Title:        "Hotel",
		TotalAmount:  1000,
		Date:         "2026-01-16",
		Kind:         "pot",
		SplitType:    "EVEN",
		Participants: evenParticipants("alice", "bob"),
	})
	if !errors.Is(err, ErrAdminOnly) {
		t.Fatalf("Create() error = %v, want ErrAdminOnly", err)
	}

	// Admin gets a single synthetic payer covering the total
	resp, err := svc.Create(context.Background(), "admin1", true, &CreateExpenseRequest{
		Title:        "Hotel",
		TotalAmount:  1000,
		Date:         "2026-01-16",
		Kind:         "pot",
		SplitType:    "EVEN",
		Participants: evenParticipants("alice", "bob"),
	})
	if err != nil {
		t.Fatalf("Create() unexpected error: %v", err)
	}
	if len(resp.Payers) != 1 {
		t.Fatalf("got %d payers, want 1", len(resp.Payers))
	}
	if resp.Payers[0].UserID != "admin1" || resp.Payers[0].CashGiven != 1000 {
		t.Errorf("synthetic payer = %+v, want admin1 paying 1000", resp.Payers[0])
	}
}

func TestCreateSharesSplit(t *testing.T) {
	svc := NewService(&fakeStore{})

	resp, err := svc.Create(context.Background(), "alice", false, &CreateExpenseRequest{
		Title:       "Taxi",
		TotalAmount: 400,
		Date:        "2026-01-17",
		Kind:        "group",
		SplitType:   "SHARES",
		Payers:      []PayerInput{{UserID: "alice", CashGiven: 400}},
		Participants: []split.Input{
			{UserID: "alice", Shares: fptr(2)},
			{UserID: "bob", Shares: fptr(1)},
			{UserID: "carol", Shares: fptr(1)},
		},
	})
	if err != nil {
		t.Fatalf("Create() unexpected error: %v", err)
	}

	owed := map[string]float64{}
	for _, s := range resp.Splits {
		owed[s.UserID] = s.OwedAmount
	}
	if owed["alice"] != 200 || owed["bob"] != 100 || owed["carol"] != 100 {
		t.Errorf("owed = %v, want alice 200, bob 100, carol 100", owed)
	}
}

func seedExpenses(store *fakeStore) {
	store.expenses = []*Expense{
		{
			ID: "e1", Kind: KindGroup, CreatedBy: "alice", Title: "Dinner",
			Payers: []*Payer{{UserID: "alice", CashGiven: 300}},
			Splits: []*Split{{UserID: "alice", OwedAmount: 100}, {UserID: "bob", OwedAmount: 100}, {UserID: "carol", OwedAmount: 100}},
		},
		{
			ID: "e2", Kind: KindIndividual, CreatedBy: "bob", Title: "Souvenirs",
			Payers: []*Payer{{UserID: "bob", CashGiven: 50}},
			Splits: []*Split{{UserID: "bob", OwedAmount: 50}},
		},
		{
			ID: "e3", Kind: KindPot, CreatedBy: "admin1", Title: "Hotel",
			Payers: []*Payer{{UserID: "admin1", CashGiven: 1000}},
			Splits: []*Split{{UserID: "alice", OwedAmount: 500}, {UserID: "dave", OwedAmount: 500}},
		},
		{
			ID: "e4", Kind: KindGroup, CreatedBy: "dave", Title: "Drinks",
			Payers: []*Payer{{UserID: "dave", CashGiven: 120}},
			Splits: []*Split{{UserID: "dave", OwedAmount: 60}, {UserID: "carol", OwedAmount: 60}},
		},
	}
}

func TestListVisibility(t *testing.T) {
	tests := []struct {
		name    string
		userID  string
		isAdmin bool
		filter  ListFilter
		wantIDs []string
	}{
		{
			name:    "group participant sees their group expenses",
			userID:  "bob",
			wantIDs: []string{"e1", "e2"},
		},
		{
			name:    "individual expense hidden from others",
			userID:  "alice",
			wantIDs: []string{"e1"},
		},
		{
			name:    "admin sees pot expenses but not others' private ones",
			userID:  "admin1",
			isAdmin: true,
			wantIDs: []string{"e3"},
		},
		{
			name:    "pot expense hidden from split member",
			userID:  "dave",
			wantIDs: []string{"e4"},
		},
		{
			name:    "only_mine drops non-participant rows",
			userID:  "admin1",
			isAdmin: true,
			filter:  ListFilter{OnlyMine: true},
			wantIDs: []string{"e3"},
		},
		{
			name:    "kind filter",
			userID:  "carol",
			filter:  ListFilter{Kind: "group"},
			wantIDs: []string{"e1", "e4"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{}
			seedExpenses(store)
			svc := NewService(store)

			got, err := svc.List(context.Background(), tt.userID, tt.isAdmin, tt.filter)
			if err != nil {
				t.Fatalf("List() unexpected error: %v", err)
			}

			var ids []string
			for _, e := range got {
				ids = append(ids, e.ID)
			}
			if len(ids) != len(tt.wantIDs) {
				t.Fatalf("got %v, want %v", ids, tt.wantIDs)
			}
			for i, want := range tt.wantIDs {
				if ids[i] != want {
					t.Errorf("got %v, want %v", ids, tt.wantIDs)
					break
				}
			}
		})
	}
}

func TestUpdateKeepsKindAndOwner(t *testing.T) {
	store := &fakeStore{}
	seedExpenses(store)
	svc := NewService(store)

	// Someone else cannot edit
	_, err := svc.Update(context.Background(), "carol", false, "e1", &UpdateExpenseRequest{
		Title: "Dinner v2", TotalAmount: 200, Date: "2026-01-15", SplitType: "EVEN",
		Payers:       []PayerInput{{UserID: "alice", CashGiven: 200}},
		Participants: evenParticipants("alice", "bob"),
	})
	if !errors.Is(err, ErrNotExpenseOwner) {
		t.Fatalf("Update() error = %v, want ErrNotExpenseOwner", err)
	}

	// The creator can; kind stays group
	resp, err := svc.Update(context.Background(), "alice", false, "e1", &UpdateExpenseRequest{
		Title: "Dinner v2", TotalAmount: 200, Date: "2026-01-15", SplitType: "EVEN",
		Payers:       []PayerInput{{UserID: "alice", CashGiven: 200}},
		Participants: evenParticipants("alice", "bob"),
	})
	if err != nil {
		t.Fatalf("Update() unexpected error: %v", err)
	}
	if resp.Kind != "group" {
		t.Errorf("Kind = %s, want group", resp.Kind)
	}
	if resp.Title != "Dinner v2" || resp.TotalAmount != 200 {
		t.Errorf("update not applied: %+v", resp)
	}
}

func TestDeleteRequiresOwnership(t *testing.T) {
	store := &fakeStore{}
	seedExpenses(store)
	svc := NewService(store)

	if err := svc.Delete(context.Background(), "bob", false, "e1"); !errors.Is(err, ErrNotExpenseOwner) {
		t.Fatalf("Delete() error = %v, want ErrNotExpenseOwner", err)
	}
	if err := svc.Delete(context.Background(), "admin1", true, "e1"); err != nil {
		t.Fatalf("Delete() as admin unexpected error: %v", err)
	}
	if err := svc.Delete(context.Background(), "alice", false, "missing"); !errors.Is(err, ErrExpenseNotFound) {
		t.Fatalf("Delete() error = %v, want ErrExpenseNotFound", err)
	}
}
